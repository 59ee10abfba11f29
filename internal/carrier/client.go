package carrier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
)

const (
	createReturnPath   = "/v1/external/orders/create/return"
	assignAWBPath      = "/v1/external/courier/assign/awb"
	generatePickupPath = "/v1/external/courier/generate/pickup"
	cancelShipmentPath = "/v1/external/orders/cancel/shipment/awbs"

	pickupDateLayout = "2006-01-02 15:04:05"
	pickupSlotLength = 4 * time.Hour
)

var ErrBadResponse = errors.New("carrier: malformed response")

type Config struct {
	BaseURL          string
	Token            string
	WarehousePincode string
	Timeout          time.Duration
}

type Shipment struct {
	OrderID     string
	ShipmentID  string
	AWBCode     string
	CourierName string
}

type PickupWindow struct {
	Date     time.Time
	TimeSlot string
}

type ReversePickupRequest struct {
	ReturnNumber string
	OrderID      string
	OrderDate    time.Time
	Customer     domain.Address
	Items        []domain.Item
	Amount       decimal.Decimal
}

// Client talks to the reverse logistics REST API. Every call is bounded by
// Config.Timeout on top of the caller's context.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type returnOrderItem struct {
	Name         string  `json:"name"`
	SKU          string  `json:"sku"`
	Units        int     `json:"units"`
	SellingPrice float64 `json:"selling_price"`
}

type createReturnRequest struct {
	OrderID         string            `json:"order_id"`
	OrderDate       string            `json:"order_date"`
	PickupName      string            `json:"pickup_customer_name"`
	PickupAddress   string            `json:"pickup_address"`
	PickupCity      string            `json:"pickup_city"`
	PickupState     string            `json:"pickup_state"`
	PickupCountry   string            `json:"pickup_country"`
	PickupPincode   string            `json:"pickup_pincode"`
	PickupPhone     string            `json:"pickup_phone"`
	ShippingPincode string            `json:"shipping_pincode"`
	PaymentMethod   string            `json:"payment_method"`
	SubTotal        float64           `json:"sub_total"`
	Items           []returnOrderItem `json:"order_items"`
}

type createReturnResponse struct {
	OrderID    json.Number `json:"order_id"`
	ShipmentID json.Number `json:"shipment_id"`
	Status     string      `json:"status"`
}

type assignAWBResponse struct {
	AWBAssignStatus int `json:"awb_assign_status"`
	Response        struct {
		Data struct {
			AWBCode     string `json:"awb_code"`
			CourierName string `json:"courier_name"`
		} `json:"data"`
	} `json:"response"`
}

type generatePickupResponse struct {
	PickupStatus int `json:"pickup_status"`
	Response     struct {
		PickupScheduledDate string `json:"pickup_scheduled_date"`
	} `json:"response"`
}

// CreateReversePickup registers the return with the carrier and assigns an
// AWB to the resulting shipment.
func (c *Client) CreateReversePickup(ctx context.Context, req ReversePickupRequest) (*Shipment, error) {
	body := createReturnRequest{
		OrderID:         req.ReturnNumber,
		OrderDate:       req.OrderDate.Format("2006-01-02"),
		PickupName:      req.Customer.Name,
		PickupAddress:   req.Customer.Line1,
		PickupCity:      req.Customer.City,
		PickupState:     req.Customer.State,
		PickupCountry:   "India",
		PickupPincode:   req.Customer.Pincode,
		PickupPhone:     req.Customer.Phone,
		ShippingPincode: c.cfg.WarehousePincode,
		PaymentMethod:   "Prepaid",
		SubTotal:        req.Amount.InexactFloat64(),
	}
	for _, it := range req.Items {
		body.Items = append(body.Items, returnOrderItem{
			Name:         it.Name,
			SKU:          it.ProductID,
			Units:        it.Quantity,
			SellingPrice: it.UnitPrice.InexactFloat64(),
		})
	}

	var created createReturnResponse
	if err := c.post(ctx, createReturnPath, body, &created); err != nil {
		return nil, err
	}
	if created.ShipmentID == "" {
		return nil, fmt.Errorf("%w: no shipment id for %s", ErrBadResponse, req.ReturnNumber)
	}

	var assigned assignAWBResponse
	err := c.post(ctx, assignAWBPath, map[string]any{
		"shipment_id": created.ShipmentID.String(),
		"is_return":   1,
	}, &assigned)
	if err != nil {
		return nil, err
	}
	if assigned.AWBAssignStatus != 1 || assigned.Response.Data.AWBCode == "" {
		return nil, fmt.Errorf("%w: awb not assigned for shipment %s", ErrBadResponse, created.ShipmentID)
	}

	c.logger.Info("Reverse pickup created",
		zap.String("return_number", req.ReturnNumber),
		zap.String("shipment_id", created.ShipmentID.String()),
		zap.String("awb", assigned.Response.Data.AWBCode))

	return &Shipment{
		OrderID:     created.OrderID.String(),
		ShipmentID:  created.ShipmentID.String(),
		AWBCode:     assigned.Response.Data.AWBCode,
		CourierName: assigned.Response.Data.CourierName,
	}, nil
}

func (c *Client) SchedulePickupWindow(ctx context.Context, shipmentID string) (*PickupWindow, error) {
	var resp generatePickupResponse
	err := c.post(ctx, generatePickupPath, map[string]any{
		"shipment_id": []string{shipmentID},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.PickupStatus != 1 {
		return nil, fmt.Errorf("%w: pickup not generated for shipment %s", ErrBadResponse, shipmentID)
	}

	date, err := time.ParseInLocation(pickupDateLayout, resp.Response.PickupScheduledDate, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("%w: pickup date %q", ErrBadResponse, resp.Response.PickupScheduledDate)
	}
	return &PickupWindow{
		Date:     date,
		TimeSlot: date.Format("15:04") + "-" + date.Add(pickupSlotLength).Format("15:04"),
	}, nil
}

func (c *Client) CancelPickup(ctx context.Context, awbCode string) error {
	if awbCode == "" {
		return fmt.Errorf("carrier: cancel requires an awb code")
	}
	return c.post(ctx, cancelShipmentPath, map[string]any{"awbs": []string{awbCode}}, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("carrier: encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("carrier: build %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("carrier: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("carrier: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("Carrier request rejected",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", raw))
		return fmt.Errorf("carrier: %s returned status %d", path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadResponse, path, err)
	}
	return nil
}
