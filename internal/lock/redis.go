package lock

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// RedisLocker takes locks in Redis through bsm/redislock, retrying every
// retryEvery until ctx is done.
type RedisLocker struct {
	client     *redislock.Client
	retryEvery time.Duration
}

// NewRedisLocker wraps an existing go-redis client.
func NewRedisLocker(rdb redis.UniversalClient) *RedisLocker {
	return &RedisLocker{client: redislock.New(rdb), retryEvery: 100 * time.Millisecond}
}

func (r *RedisLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error) {
	l, err := r.client.Obtain(ctx, key, ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(r.retryEvery),
	})
	if err != nil {
		return nil, obtainErr(err)
	}
	return &redisLock{l: l}, nil
}

// obtainErr reports a lock still held when ctx ran out as ErrNotObtained.
// Connection and script errors pass through.
func obtainErr(err error) error {
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrNotObtained
	}
	return err
}

type redisLock struct {
	l *redislock.Lock
}

func (r *redisLock) Release(ctx context.Context) error {
	return releaseErr(r.l.Release(ctx))
}

func releaseErr(err error) error {
	if errors.Is(err, redislock.ErrLockNotHeld) {
		// Expired before release; nothing left to free.
		return nil
	}
	return err
}
