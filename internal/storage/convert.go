package storage

import (
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
)

func toReturnRow(r *domain.Return) *repository.ReturnRow {
	return &repository.ReturnRow{
		ID:                r.ID,
		ReturnNumber:      r.ReturnNumber,
		OrderID:           r.OrderID,
		UserID:            r.UserID,
		Reason:            r.Reason,
		Status:            r.Status.String(),
		RefundAmount:      r.Refund.OriginalAmount,
		RefundMethod:      string(r.Refund.RefundMethod),
		RefundSucceeded:   r.Refund.RefundSucceeded,
		RefundProcessedAt: r.Refund.RefundProcessedAt,
		GatewayRefundID:   r.Refund.GatewayRefundID,
		PickupDate:        r.Pickup.ScheduledDate,
		PickupTimeSlot:    r.Pickup.ScheduledTimeSlot,
		PickupStatus:      string(r.Pickup.PickupStatus),
		CarrierShipmentID: r.Pickup.CarrierShipmentID,
		AWBCode:           r.Pickup.AWBCode,
		PickupManual:      r.Pickup.Manual,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func fromReturnRow(row *repository.ReturnRow) *domain.Return {
	return &domain.Return{
		ID:           row.ID,
		ReturnNumber: row.ReturnNumber,
		OrderID:      row.OrderID,
		UserID:       row.UserID,
		Reason:       row.Reason,
		Status:       domain.Status(row.Status),
		Items:        []domain.Item{},
		Refund: domain.RefundDetails{
			OriginalAmount:    row.RefundAmount,
			RefundMethod:      domain.RefundMethod(row.RefundMethod),
			RefundSucceeded:   row.RefundSucceeded,
			RefundProcessedAt: row.RefundProcessedAt,
			GatewayRefundID:   row.GatewayRefundID,
		},
		Pickup: domain.Pickup{
			ScheduledDate:     row.PickupDate,
			ScheduledTimeSlot: row.PickupTimeSlot,
			PickupStatus:      domain.PickupStatus(row.PickupStatus),
			CarrierShipmentID: row.CarrierShipmentID,
			AWBCode:           row.AWBCode,
			Manual:            row.PickupManual,
		},
		History:          []domain.StatusChange{},
		CustomerMessages: []domain.Message{},
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func toItemRows(items []domain.Item) []*repository.ReturnItemRow {
	rows := make([]*repository.ReturnItemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, &repository.ReturnItemRow{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return rows
}

func fromItemRows(rows []*repository.ReturnItemRow) []domain.Item {
	items := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.Item{
			ProductID: row.ProductID,
			Name:      row.Name,
			Quantity:  row.Quantity,
			UnitPrice: row.UnitPrice,
		})
	}
	return items
}

func fromHistory(entries []*repository.HistoryEntry) []domain.StatusChange {
	history := make([]domain.StatusChange, 0, len(entries))
	for _, e := range entries {
		history = append(history, domain.StatusChange{
			Status:    domain.Status(e.Status),
			ChangedBy: e.ChangedBy,
			Note:      e.Note,
			ChangedAt: e.ChangedAt,
		})
	}
	return history
}

func fromMessages(entries []*repository.MessageEntry) []domain.Message {
	msgs := make([]domain.Message, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, domain.Message{
			Message:        e.Message,
			SentBy:         e.SentBy,
			IsFromCustomer: e.IsFromCustomer,
			SentAt:         e.SentAt,
		})
	}
	return msgs
}

func toOrderSnapshot(o *repository.Order, items []*repository.OrderItem) *domain.OrderSnapshot {
	snap := &domain.OrderSnapshot{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentID:     o.PaymentID,
		TotalAmount:   o.TotalAmount,
		ShippingAddress: domain.Address{
			Name:    o.ShippingName,
			Phone:   o.ShippingPhone,
			Line1:   o.ShippingLine1,
			City:    o.ShippingCity,
			State:   o.ShippingState,
			Pincode: o.ShippingPincode,
		},
		Items:     make([]domain.OrderItem, 0, len(items)),
		CreatedAt: o.CreatedAt,
	}
	for _, it := range items {
		snap.Items = append(snap.Items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Category:  it.Category,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return snap
}
