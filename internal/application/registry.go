package application

import (
	"context"
	"sync"

	"github.com/tourbook/service-earnings/internal/common/auth"
	"github.com/tourbook/service-earnings/internal/domain/identity"
)

type sessionEntry struct {
	session    *Session
	aggregator *Aggregator
	unobserve  func()
}

// Registry keeps one session and aggregator per signed-in user.
type Registry struct {
	newAggregator func(userID string) *Aggregator
	metrics       *Metrics

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

// NewRegistry creates a registry that builds aggregators with factory.
func NewRegistry(factory func(userID string) *Aggregator, metrics *Metrics) *Registry {
	return &Registry{
		newAggregator: factory,
		metrics:       metrics,
		entries:       make(map[string]*sessionEntry),
	}
}

// Attach returns the user's aggregator, creating the session on first use,
// and applies the identity. An identity change triggers the automatic fetch
// before Attach returns; changed reports whether that happened.
func (r *Registry) Attach(ctx context.Context, userID string, role auth.Role) (agg *Aggregator, changed bool) {
	r.mu.Lock()
	entry, ok := r.entries[userID]
	if !ok {
		session := NewSession()
		aggregator := r.newAggregator(userID)
		entry = &sessionEntry{
			session:    session,
			aggregator: aggregator,
			unobserve:  aggregator.Observe(session),
		}
		r.entries[userID] = entry
		r.metrics.activeSessions.Set(float64(len(r.entries)))
	}
	r.mu.Unlock()

	changed = entry.session.Set(ctx, identity.Identity{UserID: userID, Role: role})
	return entry.aggregator, changed
}

// Lookup returns the aggregator of an active session.
func (r *Registry) Lookup(userID string) (*Aggregator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[userID]
	if !ok {
		return nil, false
	}
	return entry.aggregator, true
}

// Detach discards the user's session and its aggregate.
func (r *Registry) Detach(userID string) bool {
	r.mu.Lock()
	entry, ok := r.entries[userID]
	if ok {
		delete(r.entries, userID)
		r.metrics.activeSessions.Set(float64(len(r.entries)))
	}
	r.mu.Unlock()

	if ok {
		entry.unobserve()
	}
	return ok
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
