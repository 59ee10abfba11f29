package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/storage"
)

// OrderRepo reads orders owned by the storefront. The only write is the
// refund outcome (payment_status, status).
type OrderRepo struct {
	db db.DB
}

func NewOrderRepo(db db.DB) storage.OrderRepository {
	return &OrderRepo{db: db}
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*repository.Order, error) {
	var order repository.Order
	err := r.db.Get(ctx, &order, `
        SELECT id, user_id, status, payment_status, payment_id, total_amount,
            shipping_name, shipping_phone, shipping_line1, shipping_city, shipping_state, shipping_pincode,
            created_at, updated_at
        FROM orders WHERE id = $1
    `, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepo) GetItems(ctx context.Context, orderID string) ([]*repository.OrderItem, error) {
	var items []*repository.OrderItem
	err := r.db.Select(ctx, &items, `
        SELECT order_id, product_id, name, category, quantity, unit_price
        FROM order_items
        WHERE order_id = $1
    `, orderID)
	return items, err
}

func (r *OrderRepo) UpdatePaymentStatus(ctx context.Context, id, paymentStatus, status string) error {
	tag, err := r.db.Exec(ctx, `
        UPDATE orders
        SET payment_status = $1, status = $2, updated_at = NOW()
        WHERE id = $3
    `, paymentStatus, status, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrObjectNotFound
	}
	return nil
}
