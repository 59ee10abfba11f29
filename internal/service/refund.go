package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/metrics"
)

var errAlreadySettled = errors.New("refund already settled")

// SettleRefund records the refund of a return whose refund was approved.
// Settling twice is a no-op success: the gateway and the order are touched
// at most once per return.
func (s *Service) SettleRefund(ctx context.Context, actor Actor, id int64, note string) (*Result, error) {
	release, err := s.acquire(ctx, id, func() error {
		return &domain.Error{
			Kind:    domain.KindSettlementConflict,
			Message: "a refund for this return is already being processed",
		}
	})
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	ret, err := s.store.GetReturn(ctx, id)
	if err != nil {
		return nil, err
	}
	if ret.Refund.RefundSucceeded {
		return &Result{Return: ret, AlreadySettled: true}, nil
	}
	if err := checkSettleable(ret); err != nil {
		return nil, err
	}

	log := s.logger.With(zap.Int64("return_id", id), zap.String("actor", actor.ID))

	order, orderErr := s.store.GetOrder(ctx, ret.OrderID)
	var warnings []string
	gatewayRefundID, err := s.refundPayment(ctx, ret, order, orderErr, &warnings)
	if err != nil {
		log.Warn("Gateway refund failed", zap.Error(err))
		s.fail("settle_refund", err)
		if _, nerr := s.store.UpdateReturn(ctx, id, func(r *domain.Return) error {
			r.AddNote(actor.ID, fmt.Sprintf("Refund attempt failed: %v", err), s.now())
			return nil
		}); nerr != nil {
			log.Error("Failed to record refund failure", zap.Error(nerr))
		}
		return nil, err
	}

	settleNote := appendNote("Refund processed", note)
	if gatewayRefundID != "" {
		settleNote = appendNote("Refund processed, gateway refund: "+gatewayRefundID, note)
	}

	updated, err := s.store.UpdateReturn(ctx, id, func(r *domain.Return) error {
		if r.Refund.RefundSucceeded {
			return errAlreadySettled
		}
		now := s.now()
		switch r.Status {
		case domain.StatusApprovedRefund:
			if err := r.Transition(domain.StatusRefundProcessed, actor.ID, settleNote, now); err != nil {
				return err
			}
		case domain.StatusRefundProcessed:
			r.AddNote(actor.ID, settleNote, now)
		default:
			return domain.InvalidTransition(r.Status, domain.StatusRefundProcessed)
		}
		r.MarkRefunded(gatewayRefundID, now)
		return nil
	})
	if errors.Is(err, errAlreadySettled) {
		current, gerr := s.store.GetReturn(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		return &Result{Return: current, AlreadySettled: true}, nil
	}
	if err != nil {
		if gatewayRefundID != "" {
			log.Error("Refund issued but not recorded",
				zap.String("gateway_refund_id", gatewayRefundID),
				zap.Error(err))
		}
		s.fail("settle_refund", err)
		return nil, err
	}

	metrics.RefundsSettledTotal.WithLabelValues(string(updated.Refund.RefundMethod)).Inc()
	metrics.ReturnTransitionsTotal.WithLabelValues(domain.StatusRefundProcessed.String()).Inc()
	log.Info("Refund settled",
		zap.String("amount", updated.Refund.OriginalAmount.StringFixed(2)),
		zap.String("method", string(updated.Refund.RefundMethod)))

	if w := s.syncOrder(ctx, actor, updated, log); w != "" {
		warnings = append(warnings, w)
		if withNote, err := s.store.GetReturn(ctx, id); err == nil {
			updated = withNote
		}
	}
	return &Result{Return: updated, Warnings: warnings}, nil
}

func checkSettleable(r *domain.Return) error {
	switch r.Status {
	case domain.StatusApprovedRefund, domain.StatusRefundProcessed:
		return nil
	}
	return domain.InvalidTransition(r.Status, domain.StatusRefundProcessed)
}

// refundPayment calls the gateway for original-payment refunds. Other refund
// methods are settled outside the gateway and only recorded here.
func (s *Service) refundPayment(ctx context.Context, ret *domain.Return, order *domain.OrderSnapshot, orderErr error, warnings *[]string) (string, error) {
	if ret.Refund.RefundMethod != domain.RefundOriginalPayment {
		return "", nil
	}
	if orderErr != nil {
		return "", orderErr
	}
	if !ret.Refund.OriginalAmount.IsPositive() {
		*warnings = append(*warnings, "nothing to refund through the gateway: return amount is zero")
		return "", nil
	}
	if s.gateway == nil || order.PaymentID == "" {
		*warnings = append(*warnings, "no captured payment to refund through the gateway; refund must be issued manually")
		return "", nil
	}

	refund, err := s.gateway.Refund(ctx, order.PaymentID, ret.Refund.OriginalAmount, ret.ReturnNumber)
	if err != nil {
		return "", domain.PaymentFailed(err)
	}
	return refund.ID, nil
}

// syncOrder marks the order refunded. A failure leaves the return settled
// and appends a warning note to its history.
func (s *Service) syncOrder(ctx context.Context, actor Actor, ret *domain.Return, log *zap.Logger) string {
	err := s.store.UpdateOrderPayment(ctx, ret.OrderID, domain.PaymentStatusRefunded, domain.OrderStatusReturned)
	if err == nil {
		return ""
	}

	metrics.OrderUpdateFailuresTotal.Inc()
	log.Warn("Failed to update order after refund", zap.String("order_id", ret.OrderID), zap.Error(err))

	warning := fmt.Sprintf("Warning: order %s could not be marked refunded (%v)", ret.OrderID, err)
	if _, nerr := s.store.UpdateReturn(ctx, ret.ID, func(r *domain.Return) error {
		r.AddNote(actor.ID, warning, s.now())
		return nil
	}); nerr != nil {
		log.Error("Failed to record order update failure", zap.Error(nerr))
	}
	return warning
}
