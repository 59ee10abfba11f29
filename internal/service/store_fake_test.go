package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
)

// memStore is an in-memory Store. UpdateReturn holds the mutex for the whole
// read-mutate-write cycle, the way the row lock does in Postgres.
type memStore struct {
	mu             sync.Mutex
	nextID         int64
	returns        map[int64]*domain.Return
	orders         map[string]*domain.OrderSnapshot
	orderUpdates   int
	orderUpdateErr error
}

func newMemStore() *memStore {
	return &memStore{
		returns: make(map[int64]*domain.Return),
		orders:  make(map[string]*domain.OrderSnapshot),
	}
}

func (m *memStore) CreateReturn(_ context.Context, r *domain.Return) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	r.ID = m.nextID
	r.ReturnNumber = fmt.Sprintf("RET-%06d", m.nextID)
	m.returns[r.ID] = clone(r)
	return nil
}

func (m *memStore) GetReturn(_ context.Context, id int64) (*domain.Return, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.returns[id]
	if !ok {
		return nil, domain.NotFound("return", id)
	}
	return clone(r), nil
}

func (m *memStore) ListReturns(_ context.Context, filter repository.ReturnFilter, page, limit int) ([]*domain.Return, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []*domain.Return
	for _, r := range m.returns {
		if filter.Status != "" && r.Status.String() != filter.Status {
			continue
		}
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if filter.OrderID != "" && r.OrderID != filter.OrderID {
			continue
		}
		all = append(all, clone(r))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := min(start+limit, len(all))
	return all[start:end], len(all), nil
}

func (m *memStore) ReturnStatusesForOrder(_ context.Context, orderID string) ([]domain.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Status
	for _, r := range m.returns {
		if r.OrderID == orderID {
			out = append(out, r.Status)
		}
	}
	return out, nil
}

func (m *memStore) UpdateReturn(_ context.Context, id int64, mutate func(*domain.Return) error) (*domain.Return, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.returns[id]
	if !ok {
		return nil, domain.NotFound("return", id)
	}
	working := clone(current)
	if err := mutate(working); err != nil {
		return nil, err
	}
	m.returns[id] = clone(working)
	return working, nil
}

func (m *memStore) AddMessage(_ context.Context, returnID int64, msg domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.returns[returnID]
	if !ok {
		return domain.NotFound("return", returnID)
	}
	r.CustomerMessages = append(r.CustomerMessages, msg)
	return nil
}

func (m *memStore) GetOrder(_ context.Context, orderID string) (*domain.OrderSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return nil, domain.NotFound("order", orderID)
	}
	cp := *o
	cp.Items = append([]domain.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (m *memStore) UpdateOrderPayment(_ context.Context, orderID, paymentStatus, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orderUpdates++
	if m.orderUpdateErr != nil {
		return m.orderUpdateErr
	}
	o, ok := m.orders[orderID]
	if !ok {
		return domain.NotFound("order", orderID)
	}
	o.PaymentStatus = paymentStatus
	o.Status = status
	return nil
}

func (m *memStore) put(r *domain.Return) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == 0 {
		m.nextID++
		r.ID = m.nextID
	}
	m.returns[r.ID] = clone(r)
}

func clone(r *domain.Return) *domain.Return {
	cp := *r
	cp.Items = append([]domain.Item(nil), r.Items...)
	cp.History = append([]domain.StatusChange(nil), r.History...)
	cp.CustomerMessages = append([]domain.Message(nil), r.CustomerMessages...)
	if r.Pickup.ScheduledDate != nil {
		d := *r.Pickup.ScheduledDate
		cp.Pickup.ScheduledDate = &d
	}
	if r.Refund.RefundProcessedAt != nil {
		d := *r.Refund.RefundProcessedAt
		cp.Refund.RefundProcessedAt = &d
	}
	return &cp
}
