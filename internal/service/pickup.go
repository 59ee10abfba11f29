package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/carrier"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/metrics"
)

var errCarrierDisabled = errors.New("carrier integration is not configured")

func pickupInProgress() error {
	return domain.OperationInProgress("another pickup or refund operation is in progress for this return")
}

type booking struct {
	pickup domain.Pickup
	note   string
	manual bool
	cause  error
}

// SchedulePickup moves an approved return to pickup_scheduled. A carrier
// failure never fails the call: the pickup is then booked manually and the
// audit note says so.
func (s *Service) SchedulePickup(ctx context.Context, actor Actor, id int64, note string) (*Result, error) {
	release, err := s.acquire(ctx, id, pickupInProgress)
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	ret, err := s.store.GetReturn(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkSchedulable(ret); err != nil {
		return nil, err
	}

	b := s.book(ctx, ret)
	auditNote := appendNote(b.note, note)

	updated, err := s.store.UpdateReturn(ctx, id, func(r *domain.Return) error {
		if err := checkSchedulable(r); err != nil {
			return err
		}
		prev := r.Pickup
		r.Pickup = b.pickup
		if err := r.Transition(domain.StatusPickupScheduled, actor.ID, auditNote, s.now()); err != nil {
			r.Pickup = prev
			return err
		}
		return nil
	})
	if err != nil {
		s.fail("schedule_pickup", err)
		s.releaseShipment(ctx, id, b.pickup)
		return nil, err
	}

	res := &Result{Return: updated, ManualPickup: b.manual}
	mode := "carrier"
	if b.manual {
		mode = "manual"
		res.Warnings = append(res.Warnings, domain.CarrierUnavailable(b.cause).Error())
	}
	metrics.PickupsScheduledTotal.WithLabelValues(mode).Inc()
	metrics.ReturnTransitionsTotal.WithLabelValues(domain.StatusPickupScheduled.String()).Inc()
	s.logger.Info("Pickup scheduled",
		zap.Int64("return_id", id),
		zap.String("mode", mode),
		zap.String("awb", b.pickup.AWBCode),
		zap.String("actor", actor.ID))
	return res, nil
}

func checkSchedulable(r *domain.Return) error {
	if r.Status != domain.StatusApproved {
		return domain.InvalidState(r.Status, fmt.Sprintf("pickup can only be scheduled for approved returns, current status is %s", r.Status))
	}
	if !r.Status.CanTransitionTo(domain.StatusPickupScheduled) {
		return domain.InvalidTransition(r.Status, domain.StatusPickupScheduled)
	}
	return nil
}

// book tries the carrier and falls back to a manual booking on any error.
func (s *Service) book(ctx context.Context, ret *domain.Return) booking {
	shipment, window, err := s.bookWithCarrier(ctx, ret)
	if err == nil {
		date := window.Date
		return booking{
			pickup: domain.Pickup{
				ScheduledDate:     &date,
				ScheduledTimeSlot: window.TimeSlot,
				PickupStatus:      domain.PickupScheduled,
				CarrierShipmentID: shipment.ShipmentID,
				AWBCode:           shipment.AWBCode,
			},
			note: "Pickup scheduled with carrier, AWB: " + shipment.AWBCode,
		}
	}

	s.logger.Warn("Carrier unavailable, scheduling pickup manually",
		zap.Int64("return_id", ret.ID),
		zap.Error(err))

	date := s.now().AddDate(0, 0, s.opts.FallbackDays)
	pickup := domain.Pickup{
		ScheduledDate:     &date,
		ScheduledTimeSlot: s.opts.FallbackSlot,
		PickupStatus:      domain.PickupScheduled,
		Manual:            true,
	}
	if shipment != nil {
		pickup.CarrierShipmentID = shipment.ShipmentID
		pickup.AWBCode = shipment.AWBCode
	}
	return booking{
		pickup: pickup,
		note:   fmt.Sprintf("Pickup scheduled manually: carrier unavailable (%v)", err),
		manual: true,
		cause:  err,
	}
}

// bookWithCarrier returns the shipment even when only the window request
// failed, so the AWB is kept on the manual booking.
func (s *Service) bookWithCarrier(ctx context.Context, ret *domain.Return) (*carrier.Shipment, *carrier.PickupWindow, error) {
	if s.carrier == nil {
		return nil, nil, errCarrierDisabled
	}
	order, err := s.store.GetOrder(ctx, ret.OrderID)
	if err != nil {
		return nil, nil, fmt.Errorf("pickup address unavailable: %w", err)
	}

	shipment, err := s.carrier.CreateReversePickup(ctx, carrier.ReversePickupRequest{
		ReturnNumber: ret.ReturnNumber,
		OrderID:      ret.OrderID,
		OrderDate:    order.CreatedAt,
		Customer:     order.ShippingAddress,
		Items:        ret.Items,
		Amount:       ret.Refund.OriginalAmount,
	})
	if err != nil {
		return nil, nil, err
	}
	window, err := s.carrier.SchedulePickupWindow(ctx, shipment.ShipmentID)
	if err != nil {
		return shipment, nil, err
	}
	return shipment, window, nil
}

// releaseShipment cancels a carrier shipment whose local booking could not be
// persisted.
func (s *Service) releaseShipment(ctx context.Context, id int64, p domain.Pickup) {
	if s.carrier == nil || p.AWBCode == "" {
		return
	}
	if err := s.carrier.CancelPickup(context.WithoutCancel(ctx), p.AWBCode); err != nil {
		s.logger.Warn("Failed to release carrier shipment",
			zap.Int64("return_id", id),
			zap.String("awb", p.AWBCode),
			zap.Error(err))
	}
}

// CancelPickup calls off an active pickup. The carrier cancellation is best
// effort; the local pickup is cancelled whatever the carrier answers. The
// return status itself is left unchanged.
func (s *Service) CancelPickup(ctx context.Context, actor Actor, id int64, note string) (*Result, error) {
	release, err := s.acquire(ctx, id, pickupInProgress)
	if err != nil {
		return nil, err
	}
	defer release(context.WithoutCancel(ctx))

	ret, err := s.store.GetReturn(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkPickupCancellable(ret); err != nil {
		return nil, err
	}

	var warnings []string
	auditNote := "Pickup cancelled"
	if ret.Pickup.CarrierShipmentID != "" && ret.Pickup.AWBCode != "" {
		if s.carrier == nil {
			warnings = append(warnings, domain.CarrierUnavailable(errCarrierDisabled).Error())
			auditNote = "Pickup cancelled locally: carrier integration is not configured"
		} else if err := s.carrier.CancelPickup(ctx, ret.Pickup.AWBCode); err != nil {
			s.logger.Warn("Carrier pickup cancellation failed",
				zap.Int64("return_id", id),
				zap.String("awb", ret.Pickup.AWBCode),
				zap.Error(err))
			warnings = append(warnings, domain.CarrierUnavailable(err).Error())
			auditNote = fmt.Sprintf("Pickup cancelled locally: carrier cancellation failed (%v)", err)
		} else {
			auditNote = "Pickup cancelled with carrier, AWB: " + ret.Pickup.AWBCode
		}
	}
	auditNote = appendNote(auditNote, note)

	updated, err := s.store.UpdateReturn(ctx, id, func(r *domain.Return) error {
		if err := checkPickupCancellable(r); err != nil {
			return err
		}
		r.Pickup.PickupStatus = domain.PickupCancelled
		r.AddNote(actor.ID, auditNote, s.now())
		return nil
	})
	if err != nil {
		s.fail("cancel_pickup", err)
		return nil, err
	}

	s.logger.Info("Pickup cancelled", zap.Int64("return_id", id), zap.String("actor", actor.ID))
	return &Result{Return: updated, Warnings: warnings}, nil
}

func checkPickupCancellable(r *domain.Return) error {
	if !r.Status.PickupCancellable() {
		return domain.InvalidState(r.Status, fmt.Sprintf("pickup can no longer be cancelled in status %s", r.Status))
	}
	switch r.Pickup.PickupStatus {
	case domain.PickupScheduled, domain.PickupPickedUp:
		return nil
	}
	return domain.InvalidState(r.Status, "return has no active pickup")
}

func appendNote(base, extra string) string {
	if extra == "" {
		return base
	}
	return base + "; " + extra
}
