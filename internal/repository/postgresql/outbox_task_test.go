package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_database "gitlab.ozon.dev/pupkingeorgij/returns/internal/db/mocks"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
)

func TestOutboxTaskRepo_CreateTx(t *testing.T) {
	ctx := context.Background()

	t.Run("Assigns id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := NewOutboxTaskRepo(5)
		task := &repository.OutboxTask{Payload: json.RawMessage(`{"return_id":1}`), Topic: "return_events", Key: "RET-000001"}

		mockTx.EXPECT().
			Exec(gomock.Any(), gomock.Any(), gomock.Any(), repository.TaskStatusCreated, task.Payload, "return_events", "RET-000001", gomock.Any(), gomock.Any()).
			Return(pgconn.CommandTag("INSERT 0 1"), nil)

		require.NoError(t, repo.CreateTx(ctx, mockTx, task))
		assert.NotEqual(t, uuid.Nil, task.ID)
	})

	t.Run("Tx Error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTx := mock_database.NewMockTx(ctrl)
		repo := NewOutboxTaskRepo(5)
		txErr := errors.New("tx aborted")

		mockTx.EXPECT().
			Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, txErr)

		assert.ErrorIs(t, repo.CreateTx(ctx, mockTx, &repository.OutboxTask{}), txErr)
	})
}

func TestOutboxTaskRepo_GetProcessableTasksTx(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTx := mock_database.NewMockTx(ctrl)
	repo := NewOutboxTaskRepo(3)
	id := uuid.New()

	mockTx.EXPECT().
		Select(gomock.Any(), gomock.Any(), gomock.Any(), repository.TaskStatusCreated, repository.TaskStatusFailed, 3, 10).
		DoAndReturn(func(_ context.Context, dest interface{}, _ string, _ ...interface{}) error {
			*dest.(*[]*repository.OutboxTask) = []*repository.OutboxTask{{ID: id, Status: repository.TaskStatusCreated}}
			return nil
		})

	tasks, err := repo.GetProcessableTasksTx(context.Background(), mockTx, 10)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
}

func TestOutboxTaskRepo_UpdateTaskStatus(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := NewOutboxTaskRepo(5)
		done := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

		mockDB.EXPECT().
			Exec(gomock.Any(), gomock.Any(), id, repository.TaskStatusDone, 1, (*string)(nil), &done).
			Return(pgconn.CommandTag("UPDATE 1"), nil)

		assert.NoError(t, repo.UpdateTaskStatus(ctx, mockDB, id, repository.TaskStatusDone, 1, nil, &done))
	})

	t.Run("Not Found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := NewOutboxTaskRepo(5)

		mockDB.EXPECT().
			Exec(gomock.Any(), gomock.Any(), id, gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(pgconn.CommandTag("UPDATE 0"), nil)

		err := repo.UpdateTaskStatus(ctx, mockDB, id, repository.TaskStatusFailed, 2, nil, nil)
		assert.ErrorIs(t, err, repository.ErrObjectNotFound)
	})
}

func TestOutboxTaskRepo_RequeueStuck(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := NewOutboxTaskRepo(5)

		mockDB.EXPECT().
			Exec(gomock.Any(), gomock.Any(),
				repository.TaskStatusProcessing, repository.TaskStatusFailed, repository.TaskStatusCreated, float64(90)).
			Return(pgconn.CommandTag("UPDATE 2"), nil)

		n, err := repo.RequeueStuck(ctx, mockDB, 90*time.Second)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("DB Error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockDB := mock_database.NewMockDB(ctrl)
		repo := NewOutboxTaskRepo(5)
		dbErr := errors.New("connection reset")

		mockDB.EXPECT().
			Exec(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dbErr)

		_, err := repo.RequeueStuck(ctx, mockDB, time.Minute)
		assert.ErrorIs(t, err, dbErr)
	})
}
