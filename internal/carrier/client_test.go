package carrier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:          srv.URL,
		Token:            "secret-token",
		WarehousePincode: "560001",
		Timeout:          time.Second,
	}, zap.NewNop())
}

func TestClient_CreateReversePickup(t *testing.T) {
	req := ReversePickupRequest{
		ReturnNumber: "RET-000042",
		OrderID:      "order-1",
		OrderDate:    time.Date(2025, 2, 20, 0, 0, 0, 0, time.UTC),
		Customer:     domain.Address{Name: "Asha", Pincode: "110001", City: "Delhi"},
		Items:        []domain.Item{{ProductID: "ring-1", Name: "Ring", Quantity: 1, UnitPrice: decimal.RequireFromString("2499.50")}},
		Amount:       decimal.RequireFromString("2499.50"),
	}

	t.Run("creates shipment and assigns awb", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
			switch r.URL.Path {
			case createReturnPath:
				var body createReturnRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "RET-000042", body.OrderID)
				assert.Equal(t, "560001", body.ShippingPincode)
				assert.Equal(t, "110001", body.PickupPincode)
				assert.Equal(t, 2499.5, body.SubTotal)
				require.Len(t, body.Items, 1)
				assert.Equal(t, 2499.5, body.Items[0].SellingPrice)
				_, _ = w.Write([]byte(`{"order_id": 9001, "shipment_id": 777, "status": "RETURN PENDING"}`))
			case assignAWBPath:
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "777", body["shipment_id"])
				assert.EqualValues(t, 1, body["is_return"])
				_, _ = w.Write([]byte(`{"awb_assign_status": 1, "response": {"data": {"awb_code": "AWB123", "courier_name": "Delhivery"}}}`))
			default:
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
		})

		shipment, err := client.CreateReversePickup(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "777", shipment.ShipmentID)
		assert.Equal(t, "AWB123", shipment.AWBCode)
		assert.Equal(t, "Delhivery", shipment.CourierName)
	})

	t.Run("awb not assigned", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == createReturnPath {
				_, _ = w.Write([]byte(`{"order_id": 1, "shipment_id": 2}`))
				return
			}
			_, _ = w.Write([]byte(`{"awb_assign_status": 0}`))
		})

		_, err := client.CreateReversePickup(context.Background(), req)

		assert.ErrorIs(t, err, ErrBadResponse)
	})

	t.Run("remote error status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message": "invalid pincode"}`))
		})

		_, err := client.CreateReversePickup(context.Background(), req)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "422")
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()
		client := NewClient(Config{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, zap.NewNop())

		_, err := client.CreateReversePickup(context.Background(), req)

		assert.Error(t, err)
	})
}

func TestClient_SchedulePickupWindow(t *testing.T) {
	t.Run("parses scheduled date", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, generatePickupPath, r.URL.Path)
			_, _ = w.Write([]byte(`{"pickup_status": 1, "response": {"pickup_scheduled_date": "2025-03-04 10:00:00"}}`))
		})

		window, err := client.SchedulePickupWindow(context.Background(), "777")

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC), window.Date)
		assert.Equal(t, "10:00-14:00", window.TimeSlot)
	})

	t.Run("malformed date", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"pickup_status": 1, "response": {"pickup_scheduled_date": "soon"}}`))
		})

		_, err := client.SchedulePickupWindow(context.Background(), "777")

		assert.ErrorIs(t, err, ErrBadResponse)
	})
}

func TestClient_CancelPickup(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, cancelShipmentPath, r.URL.Path)
		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"AWB123"}, body["awbs"])
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, client.CancelPickup(context.Background(), "AWB123"))
	assert.Error(t, client.CancelPickup(context.Background(), ""))
}
