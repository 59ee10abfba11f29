package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type RefundMethod string

const (
	RefundOriginalPayment RefundMethod = "original_payment"
	RefundStoreCredit     RefundMethod = "store_credit"
	RefundBankTransfer    RefundMethod = "bank_transfer"
)

func ParseRefundMethod(s string) (RefundMethod, error) {
	switch RefundMethod(s) {
	case "":
		return RefundOriginalPayment, nil
	case RefundOriginalPayment, RefundStoreCredit, RefundBankTransfer:
		return RefundMethod(s), nil
	}
	return "", fmt.Errorf("unknown refund method %q", s)
}

type PickupStatus string

const (
	PickupNotScheduled PickupStatus = "not_scheduled"
	PickupScheduled    PickupStatus = "scheduled"
	PickupPickedUp     PickupStatus = "picked_up"
	PickupCancelled    PickupStatus = "cancelled"
)

type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type RefundDetails struct {
	OriginalAmount    decimal.Decimal `json:"original_amount"`
	RefundMethod      RefundMethod    `json:"refund_method"`
	RefundSucceeded   bool            `json:"refund_succeeded"`
	RefundProcessedAt *time.Time      `json:"refund_processed_at"`
	GatewayRefundID   string          `json:"gateway_refund_id,omitempty"`
}

type Pickup struct {
	ScheduledDate     *time.Time   `json:"scheduled_date"`
	ScheduledTimeSlot string       `json:"scheduled_time_slot,omitempty"`
	PickupStatus      PickupStatus `json:"pickup_status"`
	CarrierShipmentID string       `json:"carrier_shipment_id,omitempty"`
	AWBCode           string       `json:"awb_code,omitempty"`
	Manual            bool         `json:"manual"`
}

type StatusChange struct {
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changed_by"`
	Note      string    `json:"note,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

type Message struct {
	Message        string    `json:"message"`
	SentBy         string    `json:"sent_by"`
	IsFromCustomer bool      `json:"is_from_customer"`
	SentAt         time.Time `json:"sent_at"`
}

// Return is a snapshot of one return request. Status changes go through
// Transition, CancelByCustomer and AddNote so that Status always equals the
// status of the last History entry.
type Return struct {
	ID               int64          `json:"id"`
	ReturnNumber     string         `json:"return_number"`
	OrderID          string         `json:"order_id"`
	UserID           string         `json:"user_id"`
	Reason           string         `json:"reason,omitempty"`
	Items            []Item         `json:"items"`
	Status           Status         `json:"status"`
	Refund           RefundDetails  `json:"refund_details"`
	Pickup           Pickup         `json:"pickup"`
	History          []StatusChange `json:"status_history"`
	CustomerMessages []Message      `json:"customer_messages"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// NewReturn builds a freshly requested return with its first history entry.
func NewReturn(orderID, userID, reason string, items []Item, method RefundMethod, at time.Time) *Return {
	r := &Return{
		OrderID: orderID,
		UserID:  userID,
		Reason:  reason,
		Items:   items,
		Status:  StatusRequested,
		Refund: RefundDetails{
			OriginalAmount: ItemsTotal(items),
			RefundMethod:   method,
		},
		Pickup:    Pickup{PickupStatus: PickupNotScheduled},
		CreatedAt: at,
		UpdatedAt: at,
	}
	r.History = append(r.History, StatusChange{
		Status:    StatusRequested,
		ChangedBy: userID,
		Note:      "Return requested",
		ChangedAt: at,
	})
	return r
}

func ItemsTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// Transition moves the return to target if the edge is in the table and
// appends the audit entry. On error nothing is modified.
func (r *Return) Transition(target Status, actor, note string, at time.Time) error {
	if !r.Status.CanTransitionTo(target) {
		return InvalidTransition(r.Status, target)
	}
	if r.Refund.RefundSucceeded && !target.refundSettled() {
		return InvalidTransition(r.Status, target)
	}
	r.apply(target, actor, note, at)
	if target == StatusPickedUp {
		r.Pickup.PickupStatus = PickupPickedUp
	}
	return nil
}

// CancelByCustomer is narrower than Transition: only pre-pickup statuses may
// be cancelled, whatever the generic table says.
func (r *Return) CancelByCustomer(actor, note string, at time.Time) error {
	if !r.Status.CustomerCancellable() {
		return TransitionNotAllowed(r.Status,
			fmt.Sprintf("return in status %s can no longer be cancelled by the customer", r.Status))
	}
	if note == "" {
		note = "Cancelled by customer"
	}
	r.apply(StatusCancelled, actor, note, at)
	return nil
}

// AddNote appends an audit entry without changing the status.
func (r *Return) AddNote(actor, note string, at time.Time) {
	r.apply(r.Status, actor, note, at)
}

func (r *Return) AddMessage(text, sender string, fromCustomer bool, at time.Time) Message {
	msg := Message{
		Message:        text,
		SentBy:         sender,
		IsFromCustomer: fromCustomer,
		SentAt:         at,
	}
	r.CustomerMessages = append(r.CustomerMessages, msg)
	r.UpdatedAt = at
	return msg
}

// MarkRefunded records a successful settlement. It reports false when the
// refund was already settled.
func (r *Return) MarkRefunded(gatewayRefundID string, at time.Time) bool {
	if r.Refund.RefundSucceeded {
		return false
	}
	processed := at
	r.Refund.RefundSucceeded = true
	r.Refund.RefundProcessedAt = &processed
	r.Refund.GatewayRefundID = gatewayRefundID
	r.UpdatedAt = at
	return true
}

func (r *Return) LastChange() (StatusChange, bool) {
	if len(r.History) == 0 {
		return StatusChange{}, false
	}
	return r.History[len(r.History)-1], true
}

// Consistent reports whether Status matches the last history entry.
func (r *Return) Consistent() bool {
	last, ok := r.LastChange()
	return ok && last.Status == r.Status
}

func (r *Return) OwnedBy(userID string) bool {
	return r.UserID == userID
}

func (r *Return) apply(status Status, actor, note string, at time.Time) {
	r.History = append(r.History, StatusChange{
		Status:    status,
		ChangedBy: actor,
		Note:      note,
		ChangedAt: at,
	})
	r.Status = status
	r.UpdatedAt = at
}
