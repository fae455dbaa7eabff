// Package lock serializes writers of the same payment schedule. LocalLocker
// covers a single process; RedisLocker covers several instances sharing Redis.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotObtained is returned when the lock could not be taken before the
// caller's wait budget ran out.
var ErrNotObtained = errors.New("lock not obtained")

// Lock is a held lock.
type Lock interface {
	Release(ctx context.Context) error
}

// Locker hands out locks by key. ttl bounds how long a crashed holder can
// block others; implementations that cannot expire locks ignore it.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Lock, error)
}

// DocumentKey is the lock key of one document's schedule.
func DocumentKey(kind string, id uint) string {
	return fmt.Sprintf("lock:schedule:%s:%d", kind, id)
}
