package gate

import (
	"context"
	"sync"
	"time"
)

// Resolver looks up the value attached to a key, typically the subject a
// user id maps to.
type Resolver[K comparable, V any] interface {
	Resolve(ctx context.Context, key K) (V, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Resolve calls f.
func (f ResolverFunc[K, V]) Resolve(ctx context.Context, key K) (V, error) { return f(ctx, key) }

// CachedResolver wraps a Resolver with TTL-based caching so lookups do not
// hit the database on every request. Errors are never cached.
type CachedResolver[K comparable, V any] struct {
	inner Resolver[K, V]
	cache map[K]cacheEntry[V]
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewCachedResolver wraps inner; entries live for ttl.
func NewCachedResolver[K comparable, V any](inner Resolver[K, V], ttl time.Duration) *CachedResolver[K, V] {
	return &CachedResolver[K, V]{
		inner: inner,
		cache: make(map[K]cacheEntry[V]),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Resolve returns the cached value for key or fetches it from the inner resolver.
func (r *CachedResolver[K, V]) Resolve(ctx context.Context, key K) (V, error) {
	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	v, err := r.inner.Resolve(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	r.mu.Lock()
	r.cache[key] = cacheEntry[V]{value: v, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return v, nil
}

// Invalidate drops key from the cache.
func (r *CachedResolver[K, V]) Invalidate(key K) {
	r.mu.Lock()
	delete(r.cache, key)
	r.mu.Unlock()
}

// InvalidateAll clears the cache.
func (r *CachedResolver[K, V]) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[K]cacheEntry[V])
	r.mu.Unlock()
}
