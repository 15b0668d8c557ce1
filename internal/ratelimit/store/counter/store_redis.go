package counter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "streamgate/pkg/errors"
)

// RedisCounterStore implements CounterStore on Redis with INCR plus PEXPIRE.
// The window boundary is set by the key's TTL, so counters shared across
// instances observe the same fixed window. Semantics match the in-memory
// store: the first increment of a window starts the TTL, later increments
// leave it untouched.
type RedisCounterStore struct {
	client redis.Cmdable
}

// NewRedis creates a counter store backed by the given Redis client.
func NewRedis(client redis.Cmdable) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Increment records one request and returns the in-window count and reset time.
func (s *RedisCounterStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, pkgerrors.Wrap(err, pkgerrors.CodeUnavailable, "increment counter")
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, pkgerrors.Wrap(err, pkgerrors.CodeUnavailable, "start counter window")
		}
		return int(count), time.Now().Add(window), nil
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		// A key without expiry means the PEXPIRE above was lost (e.g. a crash
		// between INCR and PEXPIRE). Re-arm the window rather than letting the
		// counter live forever.
		if expErr := s.client.PExpire(ctx, key, window).Err(); expErr != nil {
			return 0, time.Time{}, pkgerrors.Wrap(expErr, pkgerrors.CodeUnavailable, "repair counter window")
		}
		ttl = window
	}
	return int(count), time.Now().Add(ttl), nil
}

// Reset clears the counter for a key.
func (s *RedisCounterStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return pkgerrors.Wrap(err, pkgerrors.CodeUnavailable, "reset counter")
	}
	return nil
}

// Count returns the current in-window count without consuming quota.
func (s *RedisCounterStore) Count(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, pkgerrors.Wrap(err, pkgerrors.CodeUnavailable, "read counter")
	}
	return count, nil
}
