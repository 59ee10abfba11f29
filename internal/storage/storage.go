package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"gitlab.ozon.dev/pupkingeorgij/returns/internal/db"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/domain"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
)

const returnNumberFormat = "RET-%06d"

// Storage persists return snapshots. Every write that touches a return's
// status runs in one transaction together with its history rows and the
// outbox events describing them.
type Storage struct {
	db          db.DB
	returnRepo  ReturnRepository
	historyRepo HistoryRepository
	messageRepo MessageRepository
	orderRepo   OrderRepository
	outboxRepo  OutboxTaskRepository
	topic       string
}

func NewStorage(
	database db.DB,
	returnRepo ReturnRepository,
	historyRepo HistoryRepository,
	messageRepo MessageRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxTaskRepository,
	topic string,
) *Storage {
	return &Storage{
		db:          database,
		returnRepo:  returnRepo,
		historyRepo: historyRepo,
		messageRepo: messageRepo,
		orderRepo:   orderRepo,
		outboxRepo:  outboxRepo,
		topic:       topic,
	}
}

// CreateReturn assigns the id and return number and stores the return with
// its items and initial history.
func (s *Storage) CreateReturn(ctx context.Context, r *domain.Return) error {
	return s.withTx(ctx, func(tx db.Tx) error {
		seq, err := s.returnRepo.NextNumberTx(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to allocate return number: %w", err)
		}
		r.ReturnNumber = fmt.Sprintf(returnNumberFormat, seq)

		row := toReturnRow(r)
		if err := s.returnRepo.CreateTx(ctx, tx, row); err != nil {
			if errors.Is(err, repository.ErrOpenReturnExists) {
				return domain.NotEligible([]string{domain.ReasonExistingReturn})
			}
			return fmt.Errorf("failed to add return: %w", err)
		}
		r.ID = row.ID

		if err := s.returnRepo.CreateItemsTx(ctx, tx, r.ID, toItemRows(r.Items)); err != nil {
			return fmt.Errorf("failed to add return items: %w", err)
		}
		return s.appendHistoryTx(ctx, tx, r, "", r.History)
	})
}

func (s *Storage) GetReturn(ctx context.Context, id int64) (*domain.Return, error) {
	row, err := s.returnRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.readError("return", id, err)
	}
	r := fromReturnRow(row)

	items, err := s.returnRepo.GetItems(ctx, id)
	if err != nil {
		return nil, domain.PersistenceFailure("failed to get return items", err)
	}
	r.Items = fromItemRows(items)

	history, err := s.historyRepo.GetByReturnID(ctx, id)
	if err != nil {
		return nil, domain.PersistenceFailure("failed to get return history", err)
	}
	r.History = fromHistory(history)

	msgs, err := s.messageRepo.GetByReturnID(ctx, id)
	if err != nil {
		return nil, domain.PersistenceFailure("failed to get return messages", err)
	}
	r.CustomerMessages = fromMessages(msgs)
	return r, nil
}

// ListReturns returns one page of returns with their items, newest first,
// and the total number of matching returns.
func (s *Storage) ListReturns(ctx context.Context, filter repository.ReturnFilter, page, limit int) ([]*domain.Return, int, error) {
	rows, err := s.returnRepo.GetPaginated(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, domain.PersistenceFailure("failed to get returns", err)
	}
	total, err := s.returnRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, domain.PersistenceFailure("failed to count returns", err)
	}

	returns := make([]*domain.Return, 0, len(rows))
	for _, row := range rows {
		r := fromReturnRow(row)
		items, err := s.returnRepo.GetItems(ctx, row.ID)
		if err != nil {
			return nil, 0, domain.PersistenceFailure("failed to get return items", err)
		}
		r.Items = fromItemRows(items)
		returns = append(returns, r)
	}
	return returns, total, nil
}

func (s *Storage) ReturnStatusesForOrder(ctx context.Context, orderID string) ([]domain.Status, error) {
	raw, err := s.returnRepo.StatusesByOrderID(ctx, orderID)
	if err != nil {
		return nil, domain.PersistenceFailure("failed to get order returns", err)
	}
	statuses := make([]domain.Status, 0, len(raw))
	for _, st := range raw {
		statuses = append(statuses, domain.Status(st))
	}
	return statuses, nil
}

// UpdateReturn locks the return row, hands the current snapshot to mutate and
// persists whatever mutate changed. An error from mutate is returned as is and
// nothing is written. Only history entries appended by mutate are inserted.
func (s *Storage) UpdateReturn(ctx context.Context, id int64, mutate func(*domain.Return) error) (*domain.Return, error) {
	var updated *domain.Return
	err := s.withTx(ctx, func(tx db.Tx) error {
		row, err := s.returnRepo.GetByIDForUpdateTx(ctx, tx, id)
		if err != nil {
			return s.readError("return", id, err)
		}
		r := fromReturnRow(row)

		items, err := s.returnRepo.GetItemsTx(ctx, tx, id)
		if err != nil {
			return domain.PersistenceFailure("failed to get return items", err)
		}
		r.Items = fromItemRows(items)

		history, err := s.historyRepo.GetByReturnIDTx(ctx, tx, id)
		if err != nil {
			return domain.PersistenceFailure("failed to get return history", err)
		}
		r.History = fromHistory(history)

		expected := r.Status
		known := len(r.History)
		if err := mutate(r); err != nil {
			return err
		}

		if err := s.returnRepo.UpdateStateTx(ctx, tx, toReturnRow(r), expected.String()); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return domain.PersistenceFailure("return was modified concurrently", err)
			}
			return domain.PersistenceFailure("failed to update return", err)
		}
		if len(r.History) > known {
			if err := s.appendHistoryTx(ctx, tx, r, expected, r.History[known:]); err != nil {
				return err
			}
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Storage) AddMessage(ctx context.Context, returnID int64, msg domain.Message) error {
	err := s.messageRepo.Create(ctx, &repository.MessageEntry{
		ReturnID:       returnID,
		Message:        msg.Message,
		SentBy:         msg.SentBy,
		IsFromCustomer: msg.IsFromCustomer,
		SentAt:         msg.SentAt,
	})
	if err != nil {
		return domain.PersistenceFailure("failed to add message", err)
	}
	return nil
}

func (s *Storage) GetOrder(ctx context.Context, orderID string) (*domain.OrderSnapshot, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, s.readError("order", orderID, err)
	}
	items, err := s.orderRepo.GetItems(ctx, orderID)
	if err != nil {
		return nil, domain.PersistenceFailure("failed to get order items", err)
	}
	return toOrderSnapshot(order, items), nil
}

func (s *Storage) UpdateOrderPayment(ctx context.Context, orderID, paymentStatus, status string) error {
	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, paymentStatus, status); err != nil {
		return s.readError("order", orderID, err)
	}
	return nil
}

// appendHistoryTx inserts the entries and queues one outbox event per entry.
func (s *Storage) appendHistoryTx(ctx context.Context, tx db.Tx, r *domain.Return, previous domain.Status, entries []domain.StatusChange) error {
	for _, change := range entries {
		entry := &repository.HistoryEntry{
			ReturnID:  r.ID,
			Status:    change.Status.String(),
			ChangedBy: change.ChangedBy,
			Note:      change.Note,
			ChangedAt: change.ChangedAt,
		}
		if err := s.historyRepo.CreateTx(ctx, tx, entry); err != nil {
			return fmt.Errorf("failed to add return history entry: %w", err)
		}

		event := repository.ReturnEvent{
			EventID:        uuid.NewString(),
			ReturnID:       r.ID,
			ReturnNumber:   r.ReturnNumber,
			OrderID:        r.OrderID,
			UserID:         r.UserID,
			PreviousStatus: previous.String(),
			Status:         change.Status.String(),
			ChangedBy:      change.ChangedBy,
			Note:           change.Note,
			OccurredAt:     change.ChangedAt,
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("failed to marshal return event: %w", err)
		}
		task := &repository.OutboxTask{
			Payload: payload,
			Topic:   s.topic,
			Key:     strconv.FormatInt(r.ID, 10),
		}
		if err := s.outboxRepo.CreateTx(ctx, tx, task); err != nil {
			return fmt.Errorf("failed to add outbox task: %w", err)
		}
		previous = change.Status
	}
	return nil
}

// withTx commits when fn succeeds and rolls back otherwise. Errors that are
// not already domain errors come back as PersistenceFailure.
func (s *Storage) withTx(ctx context.Context, fn func(tx db.Tx) error) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return domain.PersistenceFailure("failed to begin transaction", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		var derr *domain.Error
		if errors.As(err, &derr) {
			return err
		}
		return domain.PersistenceFailure(err.Error(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.PersistenceFailure("failed to commit transaction", err)
	}
	return nil
}

func (s *Storage) readError(entity string, id any, err error) error {
	if errors.Is(err, repository.ErrObjectNotFound) {
		return domain.NotFound(entity, id)
	}
	return domain.PersistenceFailure(fmt.Sprintf("failed to get %s", entity), err)
}
