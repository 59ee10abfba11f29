package domain

import "fmt"

type Status string

const (
	StatusRequested       Status = "requested"
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusPickupScheduled Status = "pickup_scheduled"
	StatusPickedUp        Status = "picked_up"
	StatusInTransit       Status = "in_transit"
	StatusReceived        Status = "received"
	StatusInspected       Status = "inspected"
	StatusApprovedRefund  Status = "approved_refund"
	StatusRejectedRefund  Status = "rejected_refund"
	StatusRefundProcessed Status = "refund_processed"
	StatusCompleted       Status = "completed"
	StatusCancelled       Status = "cancelled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusRequested,
	StatusPendingApproval,
	StatusApproved,
	StatusRejected,
	StatusPickupScheduled,
	StatusPickedUp,
	StatusInTransit,
	StatusReceived,
	StatusInspected,
	StatusApprovedRefund,
	StatusRejectedRefund,
	StatusRefundProcessed,
	StatusCompleted,
	StatusCancelled,
}

// transitions is the allowed-edge table. A status missing from the map, or
// mapped to an empty list, is terminal.
// rejected_refund has no outgoing edge: nothing in the lifecycle leads out of it.
var transitions = map[Status][]Status{
	StatusRequested:       {StatusApproved, StatusRejected, StatusCancelled},
	StatusPendingApproval: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:        {StatusPickupScheduled, StatusCancelled},
	StatusPickupScheduled: {StatusPickedUp},
	StatusPickedUp:        {StatusInTransit},
	StatusInTransit:       {StatusReceived},
	StatusReceived:        {StatusInspected},
	StatusInspected:       {StatusApprovedRefund, StatusRejectedRefund},
	StatusApprovedRefund:  {StatusRefundProcessed},
	StatusRefundProcessed: {StatusCompleted},
}

var customerCancellable = map[Status]bool{
	StatusRequested:       true,
	StatusPendingApproval: true,
	StatusApproved:        true,
}

// statuses up to and including in_transit, where a carrier pickup may still be called off
var pickupCancellable = map[Status]bool{
	StatusRequested:       true,
	StatusPendingApproval: true,
	StatusApproved:        true,
	StatusPickupScheduled: true,
	StatusPickedUp:        true,
	StatusInTransit:       true,
}

// ParseStatus converts raw input into a known Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown return status %q", s)
}

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

// ValidNext returns the statuses reachable from s in one step. The returned
// slice is a copy and may be modified by the caller.
func (s Status) ValidNext() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, st := range transitions[s] {
		if st == target {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// CustomerCancellable reports whether a customer may still cancel a return in
// this status. It never extends past physical pickup.
func (s Status) CustomerCancellable() bool {
	return customerCancellable[s]
}

func (s Status) PickupCancellable() bool {
	return pickupCancellable[s]
}

// IsOpen reports whether a return in this status blocks a new return for the same order.
func (s Status) IsOpen() bool {
	return s != StatusCancelled && s != StatusCompleted
}

// refundSettledStatuses are the only statuses a return may hold once its refund succeeded.
func (s Status) refundSettled() bool {
	return s == StatusRefundProcessed || s == StatusCompleted
}
