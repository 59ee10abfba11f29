package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLocked = errors.New("lock: already held")

// releaseIfOwner deletes the key only while it still carries our token, so an
// expired lock taken over by another holder is left alone.
const releaseIfOwner = `
if redis.call('GET', KEYS[1]) == ARGV[1] then
  return redis.call('DEL', KEYS[1])
end
return 0
`

func ReturnKey(returnID int64) string {
	return fmt.Sprintf("returns:lock:%d", returnID)
}

// RedisLocker is a single-instance Redis lease: SET NX PX to take it and a
// compare-and-delete script to give it back.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

// Acquire takes the lease for key or fails with ErrLocked. The returned
// release func is safe to call once the lease has expired.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(context.Context), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock: acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func(ctx context.Context) {
		_ = l.client.Eval(ctx, releaseIfOwner, []string{key}, token).Err()
	}, nil
}

// LocalLocker holds leases in process memory. It is the fallback when Redis is
// not configured and only serializes callers of the same process.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

func (l *LocalLocker) Acquire(_ context.Context, key string) (func(context.Context), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrLocked
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func(context.Context) {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
