package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDocumentKey(t *testing.T) {
	if got := DocumentKey("invoice", 12); got != "lock:schedule:invoice:12" {
		t.Fatalf("DocumentKey() = %q", got)
	}
}

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := NewLocalLocker()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lk, err := l.Obtain(context.Background(), "k", time.Second)
			if err != nil {
				t.Errorf("Obtain: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			_ = lk.Release(context.Background())
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxInside)
	}
	if len(l.slots) != 0 {
		t.Fatalf("expected slots to be cleaned up, got %d", len(l.slots))
	}
}

func TestLocalLocker_TimesOut(t *testing.T) {
	l := NewLocalLocker()
	held, err := l.Obtain(context.Background(), "k", time.Second)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Obtain(ctx, "k", time.Second); !errors.Is(err, ErrNotObtained) {
		t.Fatalf("expected ErrNotObtained, got %v", err)
	}

	other, err := l.Obtain(context.Background(), "other", time.Second)
	if err != nil {
		t.Fatalf("independent key should not block: %v", err)
	}
	_ = other.Release(context.Background())
	_ = held.Release(context.Background())
	_ = held.Release(context.Background())

	again, err := l.Obtain(context.Background(), "k", time.Second)
	if err != nil {
		t.Fatalf("expected lock to be free after release: %v", err)
	}
	_ = again.Release(context.Background())
}
