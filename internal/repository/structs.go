package repository

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrObjectNotFound = errors.New("not found")
	// ErrStaleState is returned when a guarded update finds the row in a different status than expected.
	ErrStaleState = errors.New("stale state")
	// ErrOpenReturnExists is returned when the order already has a return that is not cancelled or completed.
	ErrOpenReturnExists = errors.New("open return exists for order")
)

type ReturnRow struct {
	ID                int64           `db:"id"`
	ReturnNumber      string          `db:"return_number"`
	OrderID           string          `db:"order_id"`
	UserID            string          `db:"user_id"`
	Reason            string          `db:"reason"`
	Status            string          `db:"status"`
	RefundAmount      decimal.Decimal `db:"refund_amount"`
	RefundMethod      string          `db:"refund_method"`
	RefundSucceeded   bool            `db:"refund_succeeded"`
	RefundProcessedAt *time.Time      `db:"refund_processed_at"`
	GatewayRefundID   string          `db:"gateway_refund_id"`
	PickupDate        *time.Time      `db:"pickup_date"`
	PickupTimeSlot    string          `db:"pickup_time_slot"`
	PickupStatus      string          `db:"pickup_status"`
	CarrierShipmentID string          `db:"carrier_shipment_id"`
	AWBCode           string          `db:"awb_code"`
	PickupManual      bool            `db:"pickup_manual"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

type ReturnItemRow struct {
	ID        int64           `db:"id"`
	ReturnID  int64           `db:"return_id"`
	ProductID string          `db:"product_id"`
	Name      string          `db:"name"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

type ReturnFilter struct {
	Status  string
	OrderID string
	UserID  string
}

type HistoryEntry struct {
	ID        int64     `db:"id"`
	ReturnID  int64     `db:"return_id"`
	Status    string    `db:"status"`
	ChangedBy string    `db:"changed_by"`
	Note      string    `db:"note"`
	ChangedAt time.Time `db:"changed_at"`
}

type MessageEntry struct {
	ID             int64     `db:"id"`
	ReturnID       int64     `db:"return_id"`
	Message        string    `db:"message"`
	SentBy         string    `db:"sent_by"`
	IsFromCustomer bool      `db:"is_from_customer"`
	SentAt         time.Time `db:"sent_at"`
}

type Order struct {
	ID              string          `db:"id"`
	UserID          string          `db:"user_id"`
	Status          string          `db:"status"`
	PaymentStatus   string          `db:"payment_status"`
	PaymentID       string          `db:"payment_id"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	ShippingName    string          `db:"shipping_name"`
	ShippingPhone   string          `db:"shipping_phone"`
	ShippingLine1   string          `db:"shipping_line1"`
	ShippingCity    string          `db:"shipping_city"`
	ShippingState   string          `db:"shipping_state"`
	ShippingPincode string          `db:"shipping_pincode"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

type OrderItem struct {
	OrderID   string          `db:"order_id"`
	ProductID string          `db:"product_id"`
	Name      string          `db:"name"`
	Category  string          `db:"category"`
	Quantity  int             `db:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price"`
}

type User struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"`
	Role     string `db:"role"`
}
