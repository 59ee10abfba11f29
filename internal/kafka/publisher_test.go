package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	mock_database "gitlab.ozon.dev/pupkingeorgij/returns/internal/db/mocks"
	mock_kafka "gitlab.ozon.dev/pupkingeorgij/returns/internal/kafka/mocks"
	"gitlab.ozon.dev/pupkingeorgij/returns/internal/repository"
	mock_storage "gitlab.ozon.dev/pupkingeorgij/returns/internal/storage/mocks"
)

type publisherFixture struct {
	db       *mock_database.MockDB
	tx       *mock_database.MockTx
	repo     *mock_storage.MockOutboxTaskRepository
	producer *mock_kafka.MockProducer
	pub      *Publisher
}

func newPublisherFixture(t *testing.T) *publisherFixture {
	ctrl := gomock.NewController(t)
	f := &publisherFixture{
		db:       mock_database.NewMockDB(ctrl),
		tx:       mock_database.NewMockTx(ctrl),
		repo:     mock_storage.NewMockOutboxTaskRepository(ctrl),
		producer: mock_kafka.NewMockProducer(ctrl),
	}
	f.pub = NewPublisher(f.db, f.repo, f.producer, PublisherConfig{
		PollInterval: time.Millisecond,
		BatchSize:    10,
		MaxAttempts:  3,
	}, zap.NewNop())
	return f
}

func TestPublisher_ProcessBatch(t *testing.T) {
	ctx := context.Background()
	doneAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("no tasks", func(t *testing.T) {
		f := newPublisherFixture(t)
		f.db.EXPECT().BeginTx(ctx).Return(f.tx, nil)
		f.repo.EXPECT().GetProcessableTasksTx(ctx, f.tx, 10).Return(nil, nil)
		f.tx.EXPECT().Commit(ctx).Return(nil)
		f.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

		require.NoError(t, f.pub.processBatch(ctx))
	})

	t.Run("sends keyed by return and marks done", func(t *testing.T) {
		f := newPublisherFixture(t)
		f.pub.now = func() time.Time { return doneAt }
		task := &repository.OutboxTask{
			ID:      uuid.New(),
			Topic:   "return_events",
			Key:     "42",
			Payload: []byte(`{"return_id":42}`),
		}

		f.db.EXPECT().BeginTx(ctx).Return(f.tx, nil)
		f.repo.EXPECT().GetProcessableTasksTx(ctx, f.tx, 10).Return([]*repository.OutboxTask{task}, nil)
		f.repo.EXPECT().UpdateTaskStatusTx(ctx, f.tx, task.ID, repository.TaskStatusProcessing, 0, nil, nil).Return(nil)
		f.tx.EXPECT().Commit(ctx).Return(nil)
		f.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
		f.producer.EXPECT().SendMessage(ctx, "return_events", []byte("42"), []byte(`{"return_id":42}`)).Return(nil)
		f.repo.EXPECT().UpdateTaskStatus(ctx, f.db, task.ID, repository.TaskStatusDone, 0, nil, &doneAt).Return(nil)

		require.NoError(t, f.pub.processBatch(ctx))
	})

	t.Run("send failure counts an attempt", func(t *testing.T) {
		f := newPublisherFixture(t)
		task := &repository.OutboxTask{ID: uuid.New(), Topic: "return_events", Key: "7", Attempts: 1}

		f.db.EXPECT().BeginTx(ctx).Return(f.tx, nil)
		f.repo.EXPECT().GetProcessableTasksTx(ctx, f.tx, 10).Return([]*repository.OutboxTask{task}, nil)
		f.repo.EXPECT().UpdateTaskStatusTx(ctx, f.tx, task.ID, repository.TaskStatusProcessing, 1, nil, nil).Return(nil)
		f.tx.EXPECT().Commit(ctx).Return(nil)
		f.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
		f.producer.EXPECT().SendMessage(ctx, "return_events", []byte("7"), gomock.Any()).Return(errors.New("broker down"))
		f.repo.EXPECT().UpdateTaskStatus(ctx, f.db, task.ID, repository.TaskStatusFailed, 2, gomock.Any(), nil).
			DoAndReturn(func(_ context.Context, _ any, _ uuid.UUID, _ repository.TaskStatus, _ int, lastError *string, _ *time.Time) error {
				require.NotNil(t, lastError)
				assert.Equal(t, "broker down", *lastError)
				return nil
			})

		require.NoError(t, f.pub.processBatch(ctx))
	})

	t.Run("claim failure rolls back", func(t *testing.T) {
		f := newPublisherFixture(t)
		task := &repository.OutboxTask{ID: uuid.New()}

		f.db.EXPECT().BeginTx(ctx).Return(f.tx, nil)
		f.repo.EXPECT().GetProcessableTasksTx(ctx, f.tx, 10).Return([]*repository.OutboxTask{task}, nil)
		f.repo.EXPECT().UpdateTaskStatusTx(ctx, f.tx, task.ID, repository.TaskStatusProcessing, 0, nil, nil).
			Return(errors.New("conn reset"))
		f.tx.EXPECT().Rollback(gomock.Any()).Return(nil)

		err := f.pub.processBatch(ctx)

		assert.ErrorContains(t, err, "PROCESSING")
	})

	t.Run("begin failure", func(t *testing.T) {
		f := newPublisherFixture(t)
		f.db.EXPECT().BeginTx(ctx).Return(nil, errors.New("pool closed"))

		assert.Error(t, f.pub.processBatch(ctx))
	})
}

func TestPublisher_TaskWithoutKeyUsesTaskID(t *testing.T) {
	ctx := context.Background()
	f := newPublisherFixture(t)
	task := &repository.OutboxTask{ID: uuid.New(), Topic: "return_events"}

	f.producer.EXPECT().SendMessage(ctx, "return_events", []byte(task.ID.String()), gomock.Any()).Return(nil)
	f.repo.EXPECT().UpdateTaskStatus(ctx, f.db, task.ID, repository.TaskStatusDone, 0, nil, gomock.Any()).Return(nil)

	require.NoError(t, f.pub.processSingleTask(ctx, task))
}

func TestPublisher_RequeueStuck(t *testing.T) {
	ctx := context.Background()

	t.Run("requeued", func(t *testing.T) {
		f := newPublisherFixture(t)
		f.repo.EXPECT().RequeueStuck(ctx, f.db, time.Minute).Return(int64(3), nil)
		f.pub.requeueStuck(ctx)
	})

	t.Run("error is logged", func(t *testing.T) {
		f := newPublisherFixture(t)
		f.repo.EXPECT().RequeueStuck(ctx, f.db, time.Minute).Return(int64(0), errors.New("db down"))
		f.pub.requeueStuck(ctx)
	})

	t.Run("custom threshold", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock_storage.NewMockOutboxTaskRepository(ctrl)
		database := mock_database.NewMockDB(ctrl)
		pub := NewPublisher(database, repo, mock_kafka.NewMockProducer(ctrl), PublisherConfig{StuckAfter: 5 * time.Second}, zap.NewNop())
		repo.EXPECT().RequeueStuck(ctx, database, 5*time.Second).Return(int64(0), nil)
		pub.requeueStuck(ctx)
	})
}

func TestPublisher_Shutdown(t *testing.T) {
	f := newPublisherFixture(t)
	f.db.EXPECT().BeginTx(gomock.Any()).Return(f.tx, nil).AnyTimes()
	f.repo.EXPECT().GetProcessableTasksTx(gomock.Any(), f.tx, 10).Return(nil, nil).AnyTimes()
	f.tx.EXPECT().Commit(gomock.Any()).Return(nil).AnyTimes()
	f.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
	f.repo.EXPECT().RequeueStuck(gomock.Any(), f.db, time.Minute).Return(int64(0), nil).MinTimes(1)
	f.producer.EXPECT().Close().Return(nil).Times(1)

	done := make(chan struct{})
	go func() {
		f.pub.Run(context.Background())
		close(done)
	}()
	time.Sleep(10 * time.Millisecond)

	f.pub.Shutdown()
	f.pub.Shutdown()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher did not stop")
	}
}
