package application

import (
	"context"
	"sync"

	"github.com/tourbook/service-earnings/internal/domain/identity"
)

// IdentityWatcher is called synchronously when a session's identity changes.
type IdentityWatcher func(ctx context.Context, prev, next identity.Identity)

// Session is the observable identity of one signed-in viewer.
type Session struct {
	mu       sync.Mutex
	current  identity.Identity
	watchers map[int]IdentityWatcher
	nextID   int
}

// NewSession creates an anonymous session.
func NewSession() *Session {
	return &Session{watchers: make(map[int]IdentityWatcher)}
}

// Current returns the identity last set.
func (s *Session) Current() identity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Watch registers w and returns a function that unregisters it.
func (s *Session) Watch(w IdentityWatcher) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = w
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
	}
}

// Set replaces the identity and, if it differs from the current one, notifies
// every watcher before returning. It reports whether the identity changed.
func (s *Session) Set(ctx context.Context, next identity.Identity) bool {
	s.mu.Lock()
	prev := s.current
	if prev == next {
		s.mu.Unlock()
		return false
	}
	s.current = next
	watchers := make([]IdentityWatcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()

	for _, w := range watchers {
		w(ctx, prev, next)
	}
	return true
}
