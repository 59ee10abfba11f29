package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocker(t *testing.T, ttl time.Duration) (*RedisLocker, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, ttl), mr
}

func TestRedisLocker_Acquire(t *testing.T) {
	ctx := context.Background()
	key := ReturnKey(42)

	t.Run("second holder is refused until release", func(t *testing.T) {
		locker, _ := newLocker(t, time.Minute)

		release, err := locker.Acquire(ctx, key)
		require.NoError(t, err)

		_, err = locker.Acquire(ctx, key)
		assert.ErrorIs(t, err, ErrLocked)

		release(ctx)

		again, err := locker.Acquire(ctx, key)
		require.NoError(t, err)
		again(ctx)
	})

	t.Run("stale release keeps the new holder", func(t *testing.T) {
		locker, mr := newLocker(t, time.Second)

		stale, err := locker.Acquire(ctx, key)
		require.NoError(t, err)

		mr.FastForward(2 * time.Second)

		_, err = locker.Acquire(ctx, key)
		require.NoError(t, err)

		stale(ctx)
		assert.True(t, mr.Exists(key))
	})
}

func TestLocalLocker_Acquire(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	release, err := locker.Acquire(ctx, ReturnKey(1))
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, ReturnKey(1))
	assert.ErrorIs(t, err, ErrLocked)

	other, err := locker.Acquire(ctx, ReturnKey(2))
	require.NoError(t, err)
	other(ctx)

	release(ctx)
	release(ctx)

	again, err := locker.Acquire(ctx, ReturnKey(1))
	require.NoError(t, err)
	again(ctx)
}

func TestLocalLocker_ConcurrentHolders(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	var (
		wg       sync.WaitGroup
		acquired atomic.Int32
	)
	start := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := locker.Acquire(ctx, ReturnKey(7)); err == nil {
				acquired.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), acquired.Load())
}
