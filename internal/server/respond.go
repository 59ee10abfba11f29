package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/service"
)

type response struct {
	Success        bool                 `json:"success"`
	Message        string               `json:"message,omitempty"`
	Return         *domain.Return       `json:"return,omitempty"`
	Returns        []*domain.Return     `json:"returns,omitempty"`
	Total          *int                 `json:"total,omitempty"`
	Page           int                  `json:"page,omitempty"`
	Limit          int                  `json:"limit,omitempty"`
	Eligibility    *domain.Eligibility  `json:"eligibility,omitempty"`
	Transitions    *service.Transitions `json:"transitions,omitempty"`
	ManualPickup   bool                 `json:"manual_pickup,omitempty"`
	AlreadySettled bool                 `json:"already_settled,omitempty"`
	Warnings       []string             `json:"warnings,omitempty"`
	Error          *errorBody           `json:"error,omitempty"`
}

type errorBody struct {
	Kind          string          `json:"kind"`
	Message       string          `json:"message"`
	CurrentStatus domain.Status   `json:"current_status,omitempty"`
	ValidNext     []domain.Status `json:"valid_next_statuses,omitempty"`
	Reasons       []string        `json:"reasons,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondResult(w http.ResponseWriter, status int, message string, res *service.Result) {
	respondJSON(w, status, response{
		Success:        true,
		Message:        message,
		Return:         res.Return,
		ManualPickup:   res.ManualPickup,
		AlreadySettled: res.AlreadySettled,
		Warnings:       res.Warnings,
	})
}

// respondError renders any error in the common envelope. Errors that are not
// a *domain.Error are reported as internal without leaking their text.
func respondError(w http.ResponseWriter, err error) {
	var derr *domain.Error
	body := &errorBody{Kind: string(domain.KindPersistenceFailure), Message: "internal error"}
	if errors.As(err, &derr) {
		body = &errorBody{
			Kind:          string(derr.Kind),
			Message:       derr.Message,
			CurrentStatus: derr.Current,
			ValidNext:     derr.ValidNext,
			Reasons:       derr.Reasons,
		}
		if derr.Kind == domain.KindPersistenceFailure {
			body.Message = "internal error"
		}
	}
	respondJSON(w, statusFor(domain.Kind(body.Kind)), response{Success: false, Error: body})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidTransition, domain.KindTransitionNotAllowed, domain.KindInvalidState, domain.KindSettlementConflict, domain.KindOperationInProgress:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotEligible:
		return http.StatusUnprocessableEntity
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindPaymentFailed, domain.KindCarrierUnavailable:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
