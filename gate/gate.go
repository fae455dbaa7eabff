// Package gate is a small Gate/Policy authorization registry.
// A Gate maps resource type names to policies and answers whether a subject
// may act on a resource. It has no dependency on domain models.
//
// The subject type is generic:
//   - Gate[uint] for user id based checks
//   - Gate[Tenant] for tenant scoped checks
package gate

import (
	"context"
	"sync"
)

// Gate is the central authorization checkpoint.
// U must be comparable so the zero value can be rejected.
type Gate[U comparable] struct {
	mu       sync.RWMutex
	policies map[string]Policy[U]
}

// NewGate creates an empty Gate ready to register policies.
func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register adds a policy for a resource type, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.mu.Lock()
	g.policies[resourceType] = p
	g.mu.Unlock()
}

// Authorize returns ErrUnauthorized for a zero-value subject or a denied
// action, and ErrNoPolicyDefined when resourceType has no policy.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	g.mu.RLock()
	p, ok := g.policies[resourceType]
	g.mu.RUnlock()
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, user, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is Authorize returning a bool.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
