//go:generate mockgen -source ./service.go -destination=./mocks/service.go -package=mock_service
package service

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/carrier"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/lock"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/metrics"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/payment"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100

	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

type Store interface {
	CreateReturn(ctx context.Context, r *domain.Return) error
	GetReturn(ctx context.Context, id int64) (*domain.Return, error)
	ListReturns(ctx context.Context, filter repository.ReturnFilter, page, limit int) ([]*domain.Return, int, error)
	ReturnStatusesForOrder(ctx context.Context, orderID string) ([]domain.Status, error)
	UpdateReturn(ctx context.Context, id int64, mutate func(*domain.Return) error) (*domain.Return, error)
	AddMessage(ctx context.Context, returnID int64, msg domain.Message) error
	GetOrder(ctx context.Context, orderID string) (*domain.OrderSnapshot, error)
	UpdateOrderPayment(ctx context.Context, orderID, paymentStatus, status string) error
}

type Carrier interface {
	CreateReversePickup(ctx context.Context, req carrier.ReversePickupRequest) (*carrier.Shipment, error)
	SchedulePickupWindow(ctx context.Context, shipmentID string) (*carrier.PickupWindow, error)
	CancelPickup(ctx context.Context, awbCode string) error
}

type PaymentGateway interface {
	Refund(ctx context.Context, paymentID string, amount decimal.Decimal, receipt string) (*payment.Refund, error)
}

type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context), error)
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role string
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type Options struct {
	Policy       domain.ReturnPolicy
	FallbackDays int
	FallbackSlot string
}

// Result is returned by operations that may touch external collaborators.
// Warnings list collaborator failures that were absorbed.
type Result struct {
	Return         *domain.Return
	ManualPickup   bool
	AlreadySettled bool
	Warnings       []string
}

type ListQuery struct {
	Status  string
	OrderID string
	UserID  string
	Page    int
	Limit   int
}

type ReturnPage struct {
	Returns []*domain.Return
	Total   int
	Page    int
	Limit   int
}

type ItemSelection struct {
	ProductID string
	Quantity  int
}

type CreateReturnInput struct {
	OrderID      string
	Reason       string
	RefundMethod string
	Items        []ItemSelection
}

type Transitions struct {
	Current             domain.Status   `json:"current"`
	ValidNext           []domain.Status `json:"valid_next_statuses"`
	CustomerCancellable bool            `json:"customer_cancellable"`
	Terminal            bool            `json:"terminal"`
}

type Service struct {
	store   Store
	carrier Carrier
	gateway PaymentGateway
	locker  Locker
	opts    Options
	logger  *zap.Logger
	now     func() time.Time
}

// New wires the returns service. carrier and gateway may be nil: pickups then
// always take the manual path and refunds are recorded without a gateway call.
func New(store Store, carrier Carrier, gateway PaymentGateway, locker Locker, opts Options, logger *zap.Logger) *Service {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	if opts.FallbackDays <= 0 {
		opts.FallbackDays = 2
	}
	if opts.FallbackSlot == "" {
		opts.FallbackSlot = "10:00-18:00"
	}
	return &Service{
		store:   store,
		carrier: carrier,
		gateway: gateway,
		locker:  locker,
		opts:    opts,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) GetReturn(ctx context.Context, actor Actor, id int64) (*domain.Return, error) {
	ret, err := s.store.GetReturn(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// ListReturns pages through returns. Customers only ever see their own.
func (s *Service) ListReturns(ctx context.Context, actor Actor, q ListQuery) (*ReturnPage, error) {
	if q.Status != "" {
		if _, err := domain.ParseStatus(q.Status); err != nil {
			return nil, domain.InvalidArgument(err.Error())
		}
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}
	if !actor.IsAdmin() {
		q.UserID = actor.ID
	}

	returns, total, err := s.store.ListReturns(ctx, repository.ReturnFilter{
		Status:  q.Status,
		OrderID: q.OrderID,
		UserID:  q.UserID,
	}, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	return &ReturnPage{Returns: returns, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *Service) CheckEligibility(ctx context.Context, actor Actor, orderID string) (*domain.Eligibility, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, domain.Forbidden("order belongs to another customer")
	}
	existing, err := s.store.ReturnStatusesForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	res := domain.CheckEligibility(*order, s.opts.Policy, existing, s.now())
	return &res, nil
}

// CreateReturn opens a return for the order after the eligibility rules pass.
// An empty item selection returns the whole order.
func (s *Service) CreateReturn(ctx context.Context, actor Actor, in CreateReturnInput) (*domain.Return, error) {
	method, err := domain.ParseRefundMethod(in.RefundMethod)
	if err != nil {
		return nil, domain.InvalidArgument(err.Error())
	}

	order, err := s.store.GetOrder(ctx, in.OrderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.UserID != actor.ID {
		return nil, domain.Forbidden("order belongs to another customer")
	}

	existing, err := s.store.ReturnStatusesForOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if res := domain.CheckEligibility(*order, s.opts.Policy, existing, now); !res.IsEligible {
		return nil, domain.NotEligible(res.Reasons)
	}

	items, err := selectItems(order, in.Items)
	if err != nil {
		return nil, err
	}

	ret := domain.NewReturn(order.ID, order.UserID, in.Reason, items, method, now)
	if err := s.store.CreateReturn(ctx, ret); err != nil {
		s.fail("create_return", err)
		return nil, err
	}

	metrics.ReturnsCreatedTotal.Inc()
	s.logger.Info("Return requested",
		zap.Int64("return_id", ret.ID),
		zap.String("return_number", ret.ReturnNumber),
		zap.String("order_id", ret.OrderID),
		zap.String("actor", actor.ID))
	return ret, nil
}

// CancelReturn is the customer cancellation path. It is narrower than
// UpdateStatus: only pre-pickup statuses qualify.
func (s *Service) CancelReturn(ctx context.Context, actor Actor, id int64, note string) (*domain.Return, error) {
	ret, err := s.store.UpdateReturn(ctx, id, func(r *domain.Return) error {
		if err := authorize(actor, r); err != nil {
			return err
		}
		return r.CancelByCustomer(actor.ID, note, s.now())
	})
	if err != nil {
		s.fail("cancel_return", err)
		return nil, err
	}

	metrics.ReturnTransitionsTotal.WithLabelValues(domain.StatusCancelled.String()).Inc()
	s.logger.Info("Return cancelled", zap.Int64("return_id", id), zap.String("actor", actor.ID))
	return ret, nil
}

// UpdateStatus applies an admin transition. Targets with side effects are
// routed to the pickup and settlement operations.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id int64, target domain.Status, note string) (*Result, error) {
	if !target.IsValid() {
		return nil, domain.InvalidArgument("unknown status " + target.String())
	}
	switch target {
	case domain.StatusPickupScheduled:
		return s.SchedulePickup(ctx, actor, id, note)
	case domain.StatusRefundProcessed:
		return s.SettleRefund(ctx, actor, id, note)
	}

	ret, err := s.transition(ctx, actor, id, target, note)
	if err != nil {
		return nil, err
	}
	return &Result{Return: ret}, nil
}

func (s *Service) transition(ctx context.Context, actor Actor, id int64, target domain.Status, note string) (*domain.Return, error) {
	var from domain.Status
	ret, err := s.store.UpdateReturn(ctx, id, func(r *domain.Return) error {
		from = r.Status
		return r.Transition(target, actor.ID, note, s.now())
	})
	if err != nil {
		s.fail("update_status", err)
		return nil, err
	}

	metrics.ReturnTransitionsTotal.WithLabelValues(target.String()).Inc()
	s.logger.Info("Return status changed",
		zap.Int64("return_id", id),
		zap.String("from", from.String()),
		zap.String("to", target.String()),
		zap.String("actor", actor.ID))
	return ret, nil
}

func (s *Service) ValidNextStatuses(ctx context.Context, actor Actor, id int64) (*Transitions, error) {
	ret, err := s.GetReturn(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &Transitions{
		Current:             ret.Status,
		ValidNext:           ret.Status.ValidNext(),
		CustomerCancellable: ret.Status.CustomerCancellable(),
		Terminal:            ret.Status.IsTerminal(),
	}, nil
}

func (s *Service) AddMessage(ctx context.Context, actor Actor, id int64, text string) (*domain.Return, error) {
	if text == "" {
		return nil, domain.InvalidArgument("message must not be empty")
	}
	ret, err := s.GetReturn(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	msg := ret.AddMessage(text, actor.ID, !actor.IsAdmin(), s.now())
	if err := s.store.AddMessage(ctx, id, msg); err != nil {
		s.fail("add_message", err)
		return nil, err
	}
	return ret, nil
}

// acquire takes the per-return lease, mapping contention to conflict.
func (s *Service) acquire(ctx context.Context, id int64, conflict func() error) (func(context.Context), error) {
	release, err := s.locker.Acquire(ctx, lock.ReturnKey(id))
	if errors.Is(err, lock.ErrLocked) {
		return nil, conflict()
	}
	if err != nil {
		return nil, domain.PersistenceFailure("failed to lock return", err)
	}
	return release, nil
}

func (s *Service) fail(op string, err error) {
	kind := domain.KindOf(err)
	metrics.OperationErrorsTotal.WithLabelValues(op, string(kind)).Inc()
	if kind == domain.KindPersistenceFailure {
		s.logger.Error("Operation failed", zap.String("operation", op), zap.Error(err))
	}
}

func authorize(actor Actor, r *domain.Return) error {
	if actor.IsAdmin() || r.OwnedBy(actor.ID) {
		return nil
	}
	return domain.Forbidden("return belongs to another customer")
}

func selectItems(order *domain.OrderSnapshot, sel []ItemSelection) ([]domain.Item, error) {
	if len(sel) == 0 {
		items := make([]domain.Item, 0, len(order.Items))
		for _, it := range order.Items {
			items = append(items, domain.Item{
				ProductID: it.ProductID,
				Name:      it.Name,
				Quantity:  it.Quantity,
				UnitPrice: it.UnitPrice,
			})
		}
		if len(items) == 0 {
			return nil, domain.InvalidArgument("order has no items to return")
		}
		return items, nil
	}

	seen := make(map[string]bool, len(sel))
	items := make([]domain.Item, 0, len(sel))
	for _, s := range sel {
		if seen[s.ProductID] {
			return nil, domain.InvalidArgument("product " + s.ProductID + " listed twice")
		}
		seen[s.ProductID] = true

		ordered, ok := order.Item(s.ProductID)
		if !ok {
			return nil, domain.InvalidArgument("product " + s.ProductID + " is not part of the order")
		}
		if s.Quantity < 1 || s.Quantity > ordered.Quantity {
			return nil, domain.InvalidArgument("invalid quantity for product " + s.ProductID)
		}
		items = append(items, domain.Item{
			ProductID: ordered.ProductID,
			Name:      ordered.Name,
			Quantity:  s.Quantity,
			UnitPrice: ordered.UnitPrice,
		})
	}
	return items, nil
}
