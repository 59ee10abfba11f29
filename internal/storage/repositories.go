//go:generate mockgen -source ./repositories.go -destination=./mocks/repositories.go -package=mock_storage
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
)

type ReturnRepository interface {
	NextNumberTx(ctx context.Context, tx db.Tx) (int64, error)
	CreateTx(ctx context.Context, tx db.Tx, ret *repository.ReturnRow) error
	CreateItemsTx(ctx context.Context, tx db.Tx, returnID int64, items []*repository.ReturnItemRow) error
	GetByID(ctx context.Context, id int64) (*repository.ReturnRow, error)
	GetByIDForUpdateTx(ctx context.Context, tx db.Tx, id int64) (*repository.ReturnRow, error)
	GetItems(ctx context.Context, returnID int64) ([]*repository.ReturnItemRow, error)
	GetItemsTx(ctx context.Context, tx db.Tx, returnID int64) ([]*repository.ReturnItemRow, error)
	GetPaginated(ctx context.Context, filter repository.ReturnFilter, page, limit int) ([]*repository.ReturnRow, error)
	Count(ctx context.Context, filter repository.ReturnFilter) (int, error)
	StatusesByOrderID(ctx context.Context, orderID string) ([]string, error)
	UpdateStateTx(ctx context.Context, tx db.Tx, ret *repository.ReturnRow, expectedStatus string) error
}

type HistoryRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, entry *repository.HistoryEntry) error
	GetByReturnID(ctx context.Context, returnID int64) ([]*repository.HistoryEntry, error)
	GetByReturnIDTx(ctx context.Context, tx db.Tx, returnID int64) ([]*repository.HistoryEntry, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *repository.MessageEntry) error
	GetByReturnID(ctx context.Context, returnID int64) ([]*repository.MessageEntry, error)
}

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*repository.Order, error)
	GetItems(ctx context.Context, orderID string) ([]*repository.OrderItem, error)
	UpdatePaymentStatus(ctx context.Context, id, paymentStatus, status string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, username, password, role string) error
	Authenticate(ctx context.Context, username, password string) (*repository.User, error)
}

type OutboxTaskRepository interface {
	CreateTx(ctx context.Context, tx db.Tx, task *repository.OutboxTask) error
	GetProcessableTasksTx(ctx context.Context, tx db.Tx, limit int) ([]*repository.OutboxTask, error)
	UpdateTaskStatusTx(ctx context.Context, tx db.Tx, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
	UpdateTaskStatus(ctx context.Context, db db.DB, id uuid.UUID, status repository.TaskStatus, attempts int, lastError *string, completedAt *time.Time) error
	RequeueStuck(ctx context.Context, db db.DB, stuckAfter time.Duration) (int64, error)
}
