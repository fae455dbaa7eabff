package lock

import (
	"context"
	"sync"
	"time"
)

// LocalLocker is an in-process Locker built on one buffered channel per key.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch      chan struct{}
	waiters int
}

// NewLocalLocker returns an empty LocalLocker.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot)}
}

// Obtain blocks until key is free or ctx is done.
func (l *LocalLocker) Obtain(ctx context.Context, key string, _ time.Duration) (Lock, error) {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.waiters++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return &localLock{owner: l, key: key, slot: s}, nil
	case <-ctx.Done():
		l.leave(key, s)
		return nil, ErrNotObtained
	}
}

// leave drops the slot once nobody holds or waits for it.
func (l *LocalLocker) leave(key string, s *slot) {
	l.mu.Lock()
	s.waiters--
	if s.waiters == 0 {
		delete(l.slots, key)
	}
	l.mu.Unlock()
}

type localLock struct {
	owner *LocalLocker
	key   string
	slot  *slot
	once  sync.Once
}

func (l *localLock) Release(context.Context) error {
	l.once.Do(func() {
		<-l.slot.ch
		l.owner.leave(l.key, l.slot)
	})
	return nil
}
