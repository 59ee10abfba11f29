package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
	mock_server "gitlab.ozon.dev/pupkingeorgij/returns/internal/server/mocks"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/service"
)

var (
	adminActor    = service.Actor{ID: "admin", Role: service.RoleAdmin}
	customerActor = service.Actor{ID: "user-1", Role: service.RoleCustomer}
)

type testServer struct {
	svc     *mock_server.MockReturnService
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctrl := gomock.NewController(t)

	svc := mock_server.NewMockReturnService(ctrl)
	users := mock_server.NewMockUserRepo(ctrl)
	users.EXPECT().Authenticate(gomock.Any(), "admin", "secret").
		Return(&repository.User{Username: "admin", Role: service.RoleAdmin}, nil).AnyTimes()
	users.EXPECT().Authenticate(gomock.Any(), "user-1", "secret").
		Return(&repository.User{Username: "user-1"}, nil).AnyTimes()
	users.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("invalid credentials")).AnyTimes()

	s := New(svc, users, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	s.AuditManager.Start(ctx)
	t.Cleanup(func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
		defer done()
		s.AuditManager.Shutdown(shutdownCtx)
	})

	return &testServer{svc: svc, handler: s.setupRoutes()}
}

func (ts *testServer) do(t *testing.T, method, path, user, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.SetBasicAuth(user, "secret")
	}
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	var decoded map[string]interface{}
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &decoded), rr.Body.String())
	}
	return rr, decoded
}

func errorKind(body map[string]interface{}) string {
	errBody, _ := body["error"].(map[string]interface{})
	kind, _ := errBody["kind"].(string)
	return kind
}

func sampleReturn(status domain.Status) *domain.Return {
	at := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	r := domain.NewReturn("order-1", "user-1", "too small",
		[]domain.Item{{ProductID: "ring-1", Name: "Ring", Quantity: 1, UnitPrice: decimal.RequireFromString("1999.50")}},
		domain.RefundOriginalPayment, at)
	r.ID = 1
	r.ReturnNumber = "RET-000001"
	r.Status = status
	return r
}

func TestBasicAuth(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		user string
	}{
		{name: "no credentials"},
		{name: "unknown user", user: "mallory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, body := ts.do(t, http.MethodGet, "/returns/1", tt.user, "")
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			assert.Equal(t, `Basic realm="Restricted"`, rr.Header().Get("WWW-Authenticate"))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, "Unauthorized", errorKind(body))
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	ts := newTestServer(t)

	paths := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPut, "/admin/returns/1/status", `{"status":"approved"}`},
		{http.MethodPost, "/admin/returns/1/pickup", ""},
		{http.MethodPost, "/admin/returns/1/pickup/cancel", ""},
		{http.MethodPost, "/admin/returns/1/refund", ""},
	}
	for _, p := range paths {
		t.Run(p.path, func(t *testing.T) {
			rr, body := ts.do(t, p.method, p.path, "user-1", p.body)
			assert.Equal(t, http.StatusForbidden, rr.Code)
			assert.Equal(t, string(domain.KindForbidden), errorKind(body))
		})
	}
}

func TestHandleCheckEligibility(t *testing.T) {
	ts := newTestServer(t)

	ts.svc.EXPECT().CheckEligibility(gomock.Any(), customerActor, "order-1").
		Return(&domain.Eligibility{IsEligible: true, IsDelivered: true, WindowDays: 7, DaysRemaining: 2}, nil)

	rr, body := ts.do(t, http.MethodGet, "/orders/order-1/return-eligibility", "user-1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	eligibility := body["eligibility"].(map[string]interface{})
	assert.Equal(t, true, eligibility["is_eligible"])
	assert.Equal(t, float64(2), eligibility["days_remaining"])
}

func TestHandleCreateReturn(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(svc *mock_server.MockReturnService)
		expectedStatus int
		expectedKind   string
	}{
		{
			name: "successful creation",
			body: `{"order_id":"order-1","reason":"too small","items":[{"product_id":"ring-1","quantity":1}]}`,
			setupMocks: func(svc *mock_server.MockReturnService) {
				svc.EXPECT().CreateReturn(gomock.Any(), customerActor, gomock.Any()).
					DoAndReturn(func(_ context.Context, _ service.Actor, in service.CreateReturnInput) (*domain.Return, error) {
						assert.Equal(t, "order-1", in.OrderID)
						assert.Equal(t, []service.ItemSelection{{ProductID: "ring-1", Quantity: 1}}, in.Items)
						return sampleReturn(domain.StatusRequested), nil
					})
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed json",
			body:           `{"order_id":`,
			setupMocks:     func(*mock_server.MockReturnService) {},
			expectedStatus: http.StatusBadRequest,
			expectedKind:   string(domain.KindInvalidArgument),
		},
		{
			name:           "missing order id",
			body:           `{"reason":"broken"}`,
			setupMocks:     func(*mock_server.MockReturnService) {},
			expectedStatus: http.StatusBadRequest,
			expectedKind:   string(domain.KindInvalidArgument),
		},
		{
			name:           "unknown refund method",
			body:           `{"order_id":"order-1","refund_method":"cash"}`,
			setupMocks:     func(*mock_server.MockReturnService) {},
			expectedStatus: http.StatusBadRequest,
			expectedKind:   string(domain.KindInvalidArgument),
		},
		{
			name:           "zero quantity",
			body:           `{"order_id":"order-1","items":[{"product_id":"ring-1","quantity":0}]}`,
			setupMocks:     func(*mock_server.MockReturnService) {},
			expectedStatus: http.StatusBadRequest,
			expectedKind:   string(domain.KindInvalidArgument),
		},
		{
			name: "not eligible",
			body: `{"order_id":"order-1"}`,
			setupMocks: func(svc *mock_server.MockReturnService) {
				svc.EXPECT().CreateReturn(gomock.Any(), customerActor, gomock.Any()).
					Return(nil, domain.NotEligible([]string{"Order has not been delivered yet"}))
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedKind:   string(domain.KindNotEligible),
		},
		{
			name: "foreign order",
			body: `{"order_id":"order-9"}`,
			setupMocks: func(svc *mock_server.MockReturnService) {
				svc.EXPECT().CreateReturn(gomock.Any(), customerActor, gomock.Any()).
					Return(nil, domain.Forbidden("order belongs to another customer"))
			},
			expectedStatus: http.StatusForbidden,
			expectedKind:   string(domain.KindForbidden),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			tt.setupMocks(ts.svc)

			rr, body := ts.do(t, http.MethodPost, "/returns", "user-1", tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.expectedKind != "" {
				assert.Equal(t, tt.expectedKind, errorKind(body))
				return
			}
			ret := body["return"].(map[string]interface{})
			assert.Equal(t, "RET-000001", ret["return_number"])
			assert.Equal(t, "requested", ret["status"])
		})
	}
}

func TestHandleCreateReturn_NotEligibleReasons(t *testing.T) {
	ts := newTestServer(t)
	reasons := []string{"Order has not been delivered yet", "Return window of 7 days has expired"}
	ts.svc.EXPECT().CreateReturn(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, domain.NotEligible(reasons))

	rr, body := ts.do(t, http.MethodPost, "/returns", "user-1", `{"order_id":"order-1"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	errBody := body["error"].(map[string]interface{})
	assert.Equal(t, []interface{}{reasons[0], reasons[1]}, errBody["reasons"])
}

func TestHandleListReturns(t *testing.T) {
	t.Run("empty page renders an array", func(t *testing.T) {
		ts := newTestServer(t)
		ts.svc.EXPECT().ListReturns(gomock.Any(), adminActor, service.ListQuery{Status: "approved", Page: 2, Limit: 5}).
			Return(&service.ReturnPage{Page: 2, Limit: 5}, nil)

		rr, body := ts.do(t, http.MethodGet, "/returns?status=approved&page=2&limit=5", "admin", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, []interface{}{}, body["returns"])
		assert.Equal(t, float64(0), body["total"])
		assert.Equal(t, float64(2), body["page"])
	})

	t.Run("filters pass through", func(t *testing.T) {
		ts := newTestServer(t)
		ts.svc.EXPECT().ListReturns(gomock.Any(), customerActor, service.ListQuery{OrderID: "order-1", UserID: "user-2"}).
			Return(&service.ReturnPage{Returns: []*domain.Return{sampleReturn(domain.StatusApproved)}, Total: 1, Page: 1, Limit: 20}, nil)

		rr, body := ts.do(t, http.MethodGet, "/returns?order_id=order-1&user_id=user-2", "user-1", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, body["returns"], 1)
		assert.Equal(t, float64(1), body["total"])
	})

	for _, query := range []string{"page=0", "page=abc", "limit=-1"} {
		t.Run("invalid "+query, func(t *testing.T) {
			ts := newTestServer(t)
			rr, body := ts.do(t, http.MethodGet, "/returns?"+query, "admin", "")
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, string(domain.KindInvalidArgument), errorKind(body))
		})
	}
}

func TestHandleGetReturn(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "found", expectedStatus: http.StatusOK},
		{name: "not found", err: domain.NotFound("return", 1), expectedStatus: http.StatusNotFound},
		{name: "other customer", err: domain.Forbidden("return belongs to another customer"), expectedStatus: http.StatusForbidden},
		{name: "storage failure", err: domain.PersistenceFailure("get return", errors.New("conn reset")), expectedStatus: http.StatusInternalServerError},
		{name: "unexpected error", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			var ret *domain.Return
			if tt.err == nil {
				ret = sampleReturn(domain.StatusRequested)
			}
			ts.svc.EXPECT().GetReturn(gomock.Any(), customerActor, int64(1)).Return(ret, tt.err)

			rr, body := ts.do(t, http.MethodGet, "/returns/1", "user-1", "")
			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedStatus == http.StatusOK {
				refund := body["return"].(map[string]interface{})["refund_details"].(map[string]interface{})
				assert.Equal(t, "1999.5", refund["original_amount"])
			}
			if tt.expectedStatus == http.StatusInternalServerError {
				errBody := body["error"].(map[string]interface{})
				assert.Equal(t, "internal error", errBody["message"])
			}
		})
	}
}

func TestHandleTransitions(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.EXPECT().ValidNextStatuses(gomock.Any(), customerActor, int64(1)).Return(&service.Transitions{
		Current:             domain.StatusRequested,
		ValidNext:           domain.StatusRequested.ValidNext(),
		CustomerCancellable: true,
	}, nil)

	rr, body := ts.do(t, http.MethodGet, "/returns/1/transitions", "user-1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	tr := body["transitions"].(map[string]interface{})
	assert.Equal(t, "requested", tr["current"])
	assert.Equal(t, []interface{}{"approved", "rejected", "cancelled"}, tr["valid_next_statuses"])
	assert.Equal(t, true, tr["customer_cancellable"])
}

func TestHandleCancelReturn(t *testing.T) {
	t.Run("empty body", func(t *testing.T) {
		ts := newTestServer(t)
		ts.svc.EXPECT().CancelReturn(gomock.Any(), customerActor, int64(1), "").
			Return(sampleReturn(domain.StatusCancelled), nil)

		rr, body := ts.do(t, http.MethodPost, "/returns/1/cancel", "user-1", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Return cancelled", body["message"])
	})

	t.Run("too late", func(t *testing.T) {
		ts := newTestServer(t)
		ts.svc.EXPECT().CancelReturn(gomock.Any(), customerActor, int64(1), "changed my mind").
			Return(nil, domain.TransitionNotAllowed(domain.StatusPickedUp, "return can no longer be cancelled"))

		rr, body := ts.do(t, http.MethodPost, "/returns/1/cancel", "user-1", `{"note":"changed my mind"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
		errBody := body["error"].(map[string]interface{})
		assert.Equal(t, "picked_up", errBody["current_status"])
	})
}

func TestHandleAddMessage(t *testing.T) {
	ts := newTestServer(t)
	ts.svc.EXPECT().AddMessage(gomock.Any(), customerActor, int64(1), "where is my courier?").
		Return(sampleReturn(domain.StatusPickupScheduled), nil)

	rr, _ := ts.do(t, http.MethodPost, "/returns/1/messages", "user-1", `{"message":"where is my courier?"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr, body := ts.do(t, http.MethodPost, "/returns/1/messages", "user-1", `{"message":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, string(domain.KindInvalidArgument), errorKind(body))
}

func TestHandleUpdateStatus(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMocks     func(svc *mock_server.MockReturnService)
		expectedStatus int
		check          func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "pickup scheduled manually",
			body: `{"status":"pickup_scheduled","note":"courier"}`,
			setupMocks: func(svc *mock_server.MockReturnService) {
				svc.EXPECT().UpdateStatus(gomock.Any(), adminActor, int64(1), domain.StatusPickupScheduled, "courier").
					Return(&service.Result{
						Return:       sampleReturn(domain.StatusPickupScheduled),
						ManualPickup: true,
						Warnings:     []string{"carrier not configured"},
					}, nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "Return status updated to pickup_scheduled", body["message"])
				assert.Equal(t, true, body["manual_pickup"])
				assert.Equal(t, []interface{}{"carrier not configured"}, body["warnings"])
			},
		},
		{
			name: "illegal transition",
			body: `{"status":"completed"}`,
			setupMocks: func(svc *mock_server.MockReturnService) {
				svc.EXPECT().UpdateStatus(gomock.Any(), adminActor, int64(1), domain.StatusCompleted, "").
					Return(nil, domain.InvalidTransition(domain.StatusRequested, domain.StatusCompleted))
			},
			expectedStatus: http.StatusConflict,
			check: func(t *testing.T, body map[string]interface{}) {
				errBody := body["error"].(map[string]interface{})
				assert.Equal(t, string(domain.KindInvalidTransition), errBody["kind"])
				assert.Equal(t, "requested", errBody["current_status"])
				assert.Equal(t, []interface{}{"approved", "rejected", "cancelled"}, errBody["valid_next_statuses"])
			},
		},
		{
			name: "payment gateway down",
			body: `{"status":"refund_processed"}`,
			setupMocks: func(svc *mock_server.MockReturnService) {
				svc.EXPECT().UpdateStatus(gomock.Any(), adminActor, int64(1), domain.StatusRefundProcessed, "").
					Return(nil, domain.PaymentFailed(errors.New("503")))
			},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "missing status",
			body:           `{"note":"x"}`,
			setupMocks:     func(*mock_server.MockReturnService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			tt.setupMocks(ts.svc)

			rr, body := ts.do(t, http.MethodPut, "/admin/returns/1/status", "admin", tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestHandleAdminActions(t *testing.T) {
	t.Run("pickup with carrier", func(t *testing.T) {
		ts := newTestServer(t)
		ts.svc.EXPECT().SchedulePickup(gomock.Any(), adminActor, int64(1), "").
			Return(&service.Result{Return: sampleReturn(domain.StatusPickupScheduled)}, nil)

		rr, body := ts.do(t, http.MethodPost, "/admin/returns/1/pickup", "admin", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Pickup scheduled with carrier", body["message"])
		assert.Nil(t, body["manual_pickup"])
	})

	t.Run("pickup while locked", func(t *testing.T) {
		ts := newTestServer(t)
		ts.svc.EXPECT().SchedulePickup(gomock.Any(), adminActor, int64(1), "").
			Return(nil, domain.InvalidState(domain.StatusApproved, "return is being updated"))

		rr, _ := ts.do(t, http.MethodPost, "/admin/returns/1/pickup", "admin", "")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("cancel pickup", func(t *testing.T) {
		ts := newTestServer(t)
		ts.svc.EXPECT().CancelPickup(gomock.Any(), adminActor, int64(1), "customer away").
			Return(&service.Result{Return: sampleReturn(domain.StatusPickupScheduled)}, nil)

		rr, body := ts.do(t, http.MethodPost, "/admin/returns/1/pickup/cancel", "admin", `{"note":"customer away"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Pickup cancelled", body["message"])
	})

	t.Run("refund already settled", func(t *testing.T) {
		ts := newTestServer(t)
		ts.svc.EXPECT().SettleRefund(gomock.Any(), adminActor, int64(1), "").
			Return(&service.Result{Return: sampleReturn(domain.StatusRefundProcessed), AlreadySettled: true}, nil)

		rr, body := ts.do(t, http.MethodPost, "/admin/returns/1/refund", "admin", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Refund already processed", body["message"])
		assert.Equal(t, true, body["already_settled"])
	})

	t.Run("malformed note", func(t *testing.T) {
		ts := newTestServer(t)
		rr, _ := ts.do(t, http.MethodPost, "/admin/returns/1/refund", "admin", `{"note":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind     domain.Kind
		expected int
	}{
		{domain.KindNotFound, http.StatusNotFound},
		{domain.KindInvalidTransition, http.StatusConflict},
		{domain.KindTransitionNotAllowed, http.StatusConflict},
		{domain.KindInvalidState, http.StatusConflict},
		{domain.KindSettlementConflict, http.StatusConflict},
		{domain.KindOperationInProgress, http.StatusConflict},
		{domain.KindForbidden, http.StatusForbidden},
		{domain.KindNotEligible, http.StatusUnprocessableEntity},
		{domain.KindInvalidArgument, http.StatusBadRequest},
		{domain.KindPaymentFailed, http.StatusBadGateway},
		{domain.KindCarrierUnavailable, http.StatusBadGateway},
		{domain.KindPersistenceFailure, http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusFor(tt.kind), tt.kind)
	}
}

func TestOldStatus(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		code     int
		expected string
	}{
		{
			name:     "previous status from history",
			body:     `{"return":{"status_history":[{"status":"requested"},{"status":"approved"}]}}`,
			code:     http.StatusOK,
			expected: "requested",
		},
		{
			name:     "repeated final status is skipped",
			body:     `{"return":{"status_history":[{"status":"requested"},{"status":"approved"},{"status":"approved"}]}}`,
			code:     http.StatusOK,
			expected: "requested",
		},
		{
			name:     "error carries current status",
			body:     `{"error":{"kind":"InvalidTransition","current_status":"received"}}`,
			code:     http.StatusConflict,
			expected: "received",
		},
		{
			name: "no return in body",
			body: `{"success":true}`,
			code: http.StatusOK,
		},
		{
			name: "not json",
			body: `oops`,
			code: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, oldStatus([]byte(tt.body), tt.code))
		})
	}
}
