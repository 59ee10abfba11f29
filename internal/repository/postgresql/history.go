package postgresql

import (
	"context"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/storage"
)

type HistoryRepo struct {
	db db.DB
}

func NewHistoryRepo(db db.DB) storage.HistoryRepository {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error {
	_, err := tx.Exec(ctx, `
        INSERT INTO return_status_history (
            return_id, status, changed_by, note, changed_at
        ) VALUES ($1, $2, $3, $4, $5)
    `, entry.ReturnID, entry.Status, entry.ChangedBy, entry.Note, entry.ChangedAt)
	return err
}

func (r *HistoryRepo) GetByReturnID(ctx context.Context, returnID int64) ([]*repository.HistoryEntry, error) {
	return r.getByReturnID(ctx, r.db, returnID)
}

func (r *HistoryRepo) GetByReturnIDTx(ctx context.Context, tx db.Tx, returnID int64) ([]*repository.HistoryEntry, error) {
	return r.getByReturnID(ctx, tx, returnID)
}

func (r *HistoryRepo) getByReturnID(ctx context.Context, q db.Querier, returnID int64) ([]*repository.HistoryEntry, error) {
	var entries []*repository.HistoryEntry
	err := q.Select(ctx, &entries, `
        SELECT id, return_id, status, changed_by, note, changed_at
        FROM return_status_history
        WHERE return_id = $1
        ORDER BY id ASC
    `, returnID)
	return entries, err
}
