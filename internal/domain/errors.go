package domain

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindNotFound             Kind = "NotFound"
	KindInvalidTransition    Kind = "InvalidTransition"
	KindTransitionNotAllowed Kind = "TransitionNotAllowed"
	KindInvalidState         Kind = "InvalidState"
	KindCarrierUnavailable   Kind = "CarrierUnavailable"
	KindSettlementConflict   Kind = "SettlementConflict"
	KindOperationInProgress  Kind = "OperationInProgress"
	KindPersistenceFailure   Kind = "PersistenceFailure"
	KindNotEligible          Kind = "NotEligible"
	KindInvalidArgument      Kind = "InvalidArgument"
	KindForbidden            Kind = "Forbidden"
	KindPaymentFailed        Kind = "PaymentFailed"
)

// Error is the single error type returned by the returns core. Callers switch
// on Kind; Current and ValidNext are set for transition failures so a UI can
// offer the legal next actions.
type Error struct {
	Kind      Kind
	Message   string
	Current   Status
	ValidNext []Status
	Reasons   []string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on kind only, so errors.Is(err, &Error{Kind: KindNotFound}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf extracts the kind of a returns error, or "" for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func NotFound(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

func InvalidTransition(current, target Status) *Error {
	next := current.ValidNext()
	return &Error{
		Kind:      KindInvalidTransition,
		Message:   fmt.Sprintf("cannot change status from %s to %s (valid next: %s)", current, target, joinStatuses(next)),
		Current:   current,
		ValidNext: next,
	}
}

func TransitionNotAllowed(current Status, msg string) *Error {
	return &Error{
		Kind:      KindTransitionNotAllowed,
		Message:   msg,
		Current:   current,
		ValidNext: current.ValidNext(),
	}
}

func InvalidState(current Status, msg string) *Error {
	return &Error{
		Kind:      KindInvalidState,
		Message:   msg,
		Current:   current,
		ValidNext: current.ValidNext(),
	}
}

// OperationInProgress reports that another side-effecting operation holds the
// return. It carries no status: the caller never read one.
func OperationInProgress(msg string) *Error {
	return &Error{Kind: KindOperationInProgress, Message: msg}
}

func InvalidArgument(msg string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func PersistenceFailure(msg string, err error) *Error {
	return &Error{Kind: KindPersistenceFailure, Message: msg, Err: err}
}

func CarrierUnavailable(err error) *Error {
	return &Error{Kind: KindCarrierUnavailable, Message: "carrier unavailable", Err: err}
}

func PaymentFailed(err error) *Error {
	return &Error{Kind: KindPaymentFailed, Message: "payment gateway refund failed", Err: err}
}

func NotEligible(reasons []string) *Error {
	return &Error{
		Kind:    KindNotEligible,
		Message: "order is not eligible for return: " + strings.Join(reasons, "; "),
		Reasons: reasons,
	}
}

func joinStatuses(statuses []Status) string {
	if len(statuses) == 0 {
		return "none"
	}
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
