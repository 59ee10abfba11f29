package postgresql

import (
	"context"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/storage"
)

type MessageRepo struct {
	db db.DB
}

func NewMessageRepo(db db.DB) storage.MessageRepository {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) Create(ctx context.Context, msg *repository.MessageEntry) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO return_messages (
            return_id, message, sent_by, is_from_customer, sent_at
        ) VALUES ($1, $2, $3, $4, $5)
    `, msg.ReturnID, msg.Message, msg.SentBy, msg.IsFromCustomer, msg.SentAt)
	return err
}

func (r *MessageRepo) GetByReturnID(ctx context.Context, returnID int64) ([]*repository.MessageEntry, error) {
	var msgs []*repository.MessageEntry
	err := r.db.Select(ctx, &msgs, `
        SELECT id, return_id, message, sent_by, is_from_customer, sent_at
        FROM return_messages
        WHERE return_id = $1
        ORDER BY id ASC
    `, returnID)
	return msgs, err
}
