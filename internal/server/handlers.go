package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/service"
)

type itemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type createReturnRequest struct {
	OrderID      string        `json:"order_id" validate:"required"`
	Reason       string        `json:"reason" validate:"max=1000"`
	RefundMethod string        `json:"refund_method" validate:"omitempty,oneof=original_payment store_credit bank_transfer"`
	Items        []itemRequest `json:"items" validate:"omitempty,dive"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=1000"`
}

type noteRequest struct {
	Note string `json:"note" validate:"max=1000"`
}

type messageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func (s *Server) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["orderID"]
	res, err := s.service.CheckEligibility(r.Context(), actorFrom(r.Context()), orderID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, response{Success: true, Eligibility: res})
}

func (s *Server) handleCreateReturn(w http.ResponseWriter, r *http.Request) {
	var req createReturnRequest
	if err := s.decode(r, &req, false); err != nil {
		respondError(w, err)
		return
	}

	in := service.CreateReturnInput{
		OrderID:      req.OrderID,
		Reason:       req.Reason,
		RefundMethod: req.RefundMethod,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.ItemSelection{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	ret, err := s.service.CreateReturn(r.Context(), actorFrom(r.Context()), in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, response{
		Success: true,
		Message: "Return request created",
		Return:  ret,
	})
}

func (s *Server) handleListReturns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := positiveQueryInt(q.Get("page"), "page")
	if err != nil {
		respondError(w, err)
		return
	}
	limit, err := positiveQueryInt(q.Get("limit"), "limit")
	if err != nil {
		respondError(w, err)
		return
	}

	res, err := s.service.ListReturns(r.Context(), actorFrom(r.Context()), service.ListQuery{
		Status:  q.Get("status"),
		OrderID: q.Get("order_id"),
		UserID:  q.Get("user_id"),
		Page:    page,
		Limit:   limit,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	total := res.Total
	returns := res.Returns
	if returns == nil {
		returns = []*domain.Return{}
	}
	respondJSON(w, http.StatusOK, struct {
		response
		Returns []*domain.Return `json:"returns"`
	}{
		response: response{Success: true, Total: &total, Page: res.Page, Limit: res.Limit},
		Returns:  returns,
	})
}

func (s *Server) handleGetReturn(w http.ResponseWriter, r *http.Request) {
	id, err := returnID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	ret, err := s.service.GetReturn(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, response{Success: true, Return: ret})
}

func (s *Server) handleTransitions(w http.ResponseWriter, r *http.Request) {
	id, err := returnID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	tr, err := s.service.ValidNextStatuses(r.Context(), actorFrom(r.Context()), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, response{Success: true, Transitions: tr})
}

func (s *Server) handleCancelReturn(w http.ResponseWriter, r *http.Request) {
	id, err := returnID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req noteRequest
	if err := s.decode(r, &req, true); err != nil {
		respondError(w, err)
		return
	}
	ret, err := s.service.CancelReturn(r.Context(), actorFrom(r.Context()), id, req.Note)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, response{Success: true, Message: "Return cancelled", Return: ret})
}

func (s *Server) handleAddMessage(w http.ResponseWriter, r *http.Request) {
	id, err := returnID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req messageRequest
	if err := s.decode(r, &req, false); err != nil {
		respondError(w, err)
		return
	}
	ret, err := s.service.AddMessage(r.Context(), actorFrom(r.Context()), id, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, response{Success: true, Message: "Message added", Return: ret})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := returnID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req statusRequest
	if err := s.decode(r, &req, false); err != nil {
		respondError(w, err)
		return
	}
	res, err := s.service.UpdateStatus(r.Context(), actorFrom(r.Context()), id, domain.Status(req.Status), req.Note)
	if err != nil {
		respondError(w, err)
		return
	}
	respondResult(w, http.StatusOK, "Return status updated to "+res.Return.Status.String(), res)
}

func (s *Server) handleSchedulePickup(w http.ResponseWriter, r *http.Request) {
	s.handleNoteAction(w, r, s.service.SchedulePickup, func(res *service.Result) string {
		if res.ManualPickup {
			return "Pickup scheduled manually"
		}
		return "Pickup scheduled with carrier"
	})
}

func (s *Server) handleCancelPickup(w http.ResponseWriter, r *http.Request) {
	s.handleNoteAction(w, r, s.service.CancelPickup, func(*service.Result) string {
		return "Pickup cancelled"
	})
}

func (s *Server) handleSettleRefund(w http.ResponseWriter, r *http.Request) {
	s.handleNoteAction(w, r, s.service.SettleRefund, func(res *service.Result) string {
		if res.AlreadySettled {
			return "Refund already processed"
		}
		return "Refund processed"
	})
}

type resultAction func(ctx context.Context, actor service.Actor, id int64, note string) (*service.Result, error)

// handleNoteAction serves the admin actions that take an optional note and
// answer with a Result.
func (s *Server) handleNoteAction(w http.ResponseWriter, r *http.Request, action resultAction, message func(*service.Result) string) {
	id, err := returnID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	var req noteRequest
	if err := s.decode(r, &req, true); err != nil {
		respondError(w, err)
		return
	}
	res, err := action(r.Context(), actorFrom(r.Context()), id, req.Note)
	if err != nil {
		respondError(w, err)
		return
	}
	respondResult(w, http.StatusOK, message(res), res)
}

func returnID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.InvalidArgument(fmt.Sprintf("invalid return id %q", raw))
	}
	return id, nil
}

func positiveQueryInt(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, domain.InvalidArgument(fmt.Sprintf("invalid value for '%s' parameter", name))
	}
	return n, nil
}

// decode reads a JSON body into dst and validates it. An optional body may be
// empty.
func (s *Server) decode(r *http.Request, dst interface{}, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case errors.Is(err, io.EOF) && optional:
	case err != nil:
		return domain.InvalidArgument("invalid request body")
	}
	if err := s.validate.Struct(dst); err != nil {
		return domain.InvalidArgument(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed on '%s=%s'", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
