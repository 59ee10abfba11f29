package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// the gateway counts in minor units (paise)
const minorUnitExp = 2

var ErrRefundRejected = errors.New("payment: refund rejected")

type Config struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Timeout   time.Duration
}

type Refund struct {
	ID     string
	Status string
	Amount decimal.Decimal
}

type Gateway struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

func NewGateway(cfg Config, logger *zap.Logger) *Gateway {
	return &Gateway{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type refundRequest struct {
	Amount  int64             `json:"amount"`
	Speed   string            `json:"speed"`
	Receipt string            `json:"receipt,omitempty"`
	Notes   map[string]string `json:"notes,omitempty"`
}

type refundResponse struct {
	ID        string `json:"id"`
	Entity    string `json:"entity"`
	Amount    int64  `json:"amount"`
	PaymentID string `json:"payment_id"`
	Status    string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// Refund asks the gateway to return amount for paymentID. receipt is passed
// through so the gateway can correlate the refund with the return.
func (g *Gateway) Refund(ctx context.Context, paymentID string, amount decimal.Decimal, receipt string) (*Refund, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("%w: empty payment id", ErrRefundRejected)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: non-positive amount %s", ErrRefundRejected, amount)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(refundRequest{
		Amount:  amount.Shift(minorUnitExp).IntPart(),
		Speed:   "normal",
		Receipt: receipt,
		Notes:   map[string]string{"return_number": receipt},
	})
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(g.cfg.BaseURL, "/") + "/v1/payments/" + url.PathEscape(paymentID) + "/refund"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment: refund %s: %w", paymentID, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("payment: read refund response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorResponse
		_ = json.Unmarshal(raw, &e)
		g.logger.Warn("Refund rejected by gateway",
			zap.String("payment_id", paymentID),
			zap.Int("status", resp.StatusCode),
			zap.String("code", e.Error.Code))
		return nil, fmt.Errorf("%w: status %d: %s", ErrRefundRejected, resp.StatusCode, e.Error.Description)
	}

	var out refundResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("payment: decode refund response: %w", err)
	}
	if out.ID == "" || out.Status == "failed" {
		return nil, fmt.Errorf("%w: refund status %q", ErrRefundRejected, out.Status)
	}

	g.logger.Info("Refund issued",
		zap.String("payment_id", paymentID),
		zap.String("refund_id", out.ID),
		zap.String("amount", amount.StringFixed(minorUnitExp)))

	return &Refund{ID: out.ID, Status: out.Status, Amount: decimal.New(out.Amount, -minorUnitExp)}, nil
}
