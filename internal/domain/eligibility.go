package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusDelivered = "delivered"
	OrderStatusReturned  = "returned"

	PaymentStatusRefunded = "refunded"
)

const ReasonExistingReturn = "A return request already exists for this order"

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Address struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// OrderSnapshot is the read-only view of an order owned by the storefront.
type OrderSnapshot struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	PaymentID       string          `json:"payment_id,omitempty"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	ShippingAddress Address         `json:"shipping_address"`
	Items           []OrderItem     `json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (o *OrderSnapshot) Item(productID string) (OrderItem, bool) {
	for _, it := range o.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return OrderItem{}, false
}

type ReturnPolicy struct {
	WindowDays     int
	CategoryWindow map[string]int
	MinOrderAmount decimal.Decimal
}

// WindowFor returns the return window that applies to the order: the
// smallest category override among its items, else the default.
func (p ReturnPolicy) WindowFor(order OrderSnapshot) int {
	days := p.WindowDays
	found := false
	for _, it := range order.Items {
		d, ok := p.CategoryWindow[it.Category]
		if !ok {
			continue
		}
		if !found || d < days {
			days = d
			found = true
		}
	}
	return days
}

type Eligibility struct {
	IsEligible         bool     `json:"is_eligible"`
	IsDelivered        bool     `json:"is_delivered"`
	WithinReturnWindow bool     `json:"within_return_window"`
	NoExistingReturn   bool     `json:"no_existing_return"`
	OrderAmount        bool     `json:"order_amount"`
	DaysSinceOrder     int      `json:"days_since_order"`
	DaysRemaining      int      `json:"days_remaining"`
	WindowDays         int      `json:"window_days"`
	Reasons            []string `json:"reasons"`
}

// CheckEligibility evaluates every rule independently. A failed rule adds a
// reason in rule order; it is never an error.
func CheckEligibility(order OrderSnapshot, policy ReturnPolicy, existing []Status, now time.Time) Eligibility {
	window := policy.WindowFor(order)
	daysSince := int(now.Sub(order.CreatedAt) / (24 * time.Hour))
	if daysSince < 0 {
		daysSince = 0
	}

	res := Eligibility{
		IsDelivered:        order.Status == OrderStatusDelivered,
		WithinReturnWindow: daysSince <= window,
		NoExistingReturn:   true,
		OrderAmount:        order.TotalAmount.GreaterThanOrEqual(policy.MinOrderAmount),
		DaysSinceOrder:     daysSince,
		DaysRemaining:      max(0, window-daysSince),
		WindowDays:         window,
		Reasons:            []string{},
	}
	for _, st := range existing {
		if st.IsOpen() {
			res.NoExistingReturn = false
			break
		}
	}

	if !res.IsDelivered {
		res.Reasons = append(res.Reasons, "Order must be delivered before it can be returned")
	}
	if !res.WithinReturnWindow {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Return window of %d days has expired", window))
	}
	if !res.NoExistingReturn {
		res.Reasons = append(res.Reasons, ReasonExistingReturn)
	}
	if !res.OrderAmount {
		res.Reasons = append(res.Reasons, fmt.Sprintf("Order total must be at least %s", policy.MinOrderAmount.StringFixed(2)))
	}

	res.IsEligible = res.IsDelivered && res.WithinReturnWindow && res.NoExistingReturn && res.OrderAmount
	return res
}
