package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/storage"
)

const (
	uniqueViolation = "23505"
	openReturnIndex = "returns_one_open_per_order"
)

const returnColumns = `id, return_number, order_id, user_id, reason, status,
        refund_amount, refund_method, refund_succeeded, refund_processed_at, gateway_refund_id,
        pickup_date, pickup_time_slot, pickup_status, carrier_shipment_id, awb_code, pickup_manual,
        created_at, updated_at`

type ReturnRepo struct {
	db db.DB
}

func NewReturnRepo(db db.DB) storage.ReturnRepository {
	return &ReturnRepo{db: db}
}

func (r *ReturnRepo) NextNumberTx(ctx context.Context, tx db.Tx) (int64, error) {
	var n int64
	if err := tx.Get(ctx, &n, "SELECT nextval('return_number_seq')"); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *ReturnRepo) CreateTx(ctx context.Context, tx db.Tx, ret *repository.ReturnRow) error {
	err := tx.Get(ctx, &ret.ID, `
        INSERT INTO returns (
            return_number, order_id, user_id, reason, status,
            refund_amount, refund_method, refund_succeeded, pickup_status,
            created_at, updated_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id
    `, ret.ReturnNumber, ret.OrderID, ret.UserID, ret.Reason, ret.Status,
		ret.RefundAmount, ret.RefundMethod, ret.RefundSucceeded, ret.PickupStatus,
		ret.CreatedAt, ret.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == openReturnIndex {
		return repository.ErrOpenReturnExists
	}
	return err
}

func (r *ReturnRepo) CreateItemsTx(ctx context.Context, tx db.Tx, returnID int64, items []*repository.ReturnItemRow) error {
	for _, it := range items {
		_, err := tx.Exec(ctx, `
            INSERT INTO return_items (
                return_id, product_id, name, quantity, unit_price
            ) VALUES ($1, $2, $3, $4, $5)
        `, returnID, it.ProductID, it.Name, it.Quantity, it.UnitPrice)
		if err != nil {
			return fmt.Errorf("failed to insert return item %s: %w", it.ProductID, err)
		}
	}
	return nil
}

func (r *ReturnRepo) GetByID(ctx context.Context, id int64) (*repository.ReturnRow, error) {
	return r.getByID(ctx, r.db, "SELECT "+returnColumns+" FROM returns WHERE id = $1", id)
}

// GetByIDForUpdateTx locks the row until the transaction ends, serializing
// concurrent writers of the same return.
func (r *ReturnRepo) GetByIDForUpdateTx(ctx context.Context, tx db.Tx, id int64) (*repository.ReturnRow, error) {
	return r.getByID(ctx, tx, "SELECT "+returnColumns+" FROM returns WHERE id = $1 FOR UPDATE", id)
}

func (r *ReturnRepo) getByID(ctx context.Context, q db.Querier, query string, id int64) (*repository.ReturnRow, error) {
	var ret repository.ReturnRow
	err := q.Get(ctx, &ret, query, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrObjectNotFound
		}
		return nil, err
	}
	return &ret, nil
}

func (r *ReturnRepo) GetItems(ctx context.Context, returnID int64) ([]*repository.ReturnItemRow, error) {
	return r.getItems(ctx, r.db, returnID)
}

func (r *ReturnRepo) GetItemsTx(ctx context.Context, tx db.Tx, returnID int64) ([]*repository.ReturnItemRow, error) {
	return r.getItems(ctx, tx, returnID)
}

func (r *ReturnRepo) getItems(ctx context.Context, q db.Querier, returnID int64) ([]*repository.ReturnItemRow, error) {
	var items []*repository.ReturnItemRow
	err := q.Select(ctx, &items, `
        SELECT id, return_id, product_id, name, quantity, unit_price
        FROM return_items
        WHERE return_id = $1
        ORDER BY id ASC
    `, returnID)
	return items, err
}

func (r *ReturnRepo) GetPaginated(ctx context.Context, filter repository.ReturnFilter, page, limit int) ([]*repository.ReturnRow, error) {
	offset := (page - 1) * limit

	where, args := filterClause(filter)
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
        SELECT %s FROM returns
        %s
        ORDER BY created_at DESC
        LIMIT $%d OFFSET $%d
    `, returnColumns, where, len(args)-1, len(args))

	var returns []*repository.ReturnRow
	err := r.db.Select(ctx, &returns, query, args...)
	return returns, err
}

func (r *ReturnRepo) Count(ctx context.Context, filter repository.ReturnFilter) (int, error) {
	where, args := filterClause(filter)
	var total int
	err := r.db.Get(ctx, &total, "SELECT COUNT(*) FROM returns "+where, args...)
	return total, err
}

func (r *ReturnRepo) StatusesByOrderID(ctx context.Context, orderID string) ([]string, error) {
	var statuses []string
	err := r.db.Select(ctx, &statuses, "SELECT status FROM returns WHERE order_id = $1", orderID)
	return statuses, err
}

// UpdateStateTx writes the mutable columns only if the row still holds expectedStatus.
func (r *ReturnRepo) UpdateStateTx(ctx context.Context, tx db.Tx, ret *repository.ReturnRow, expectedStatus string) error {
	tag, err := tx.Exec(ctx, `
        UPDATE returns
        SET
            status = $1,
            refund_succeeded = $2,
            refund_processed_at = $3,
            gateway_refund_id = $4,
            pickup_date = $5,
            pickup_time_slot = $6,
            pickup_status = $7,
            carrier_shipment_id = $8,
            awb_code = $9,
            pickup_manual = $10,
            updated_at = $11
        WHERE id = $12 AND status = $13
    `, ret.Status, ret.RefundSucceeded, ret.RefundProcessedAt, ret.GatewayRefundID,
		ret.PickupDate, ret.PickupTimeSlot, ret.PickupStatus, ret.CarrierShipmentID, ret.AWBCode, ret.PickupManual,
		ret.UpdatedAt, ret.ID, expectedStatus)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrStaleState
	}
	return nil
}

func filterClause(filter repository.ReturnFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.OrderID != "" {
		args = append(args, filter.OrderID)
		conds = append(conds, fmt.Sprintf("order_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
