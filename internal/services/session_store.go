package services

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore holds live checkout sessions in memory. Sessions are
// scoped to a single process; losing the process loses the carts, which
// matches the ephemeral nature of an unsubmitted checkout.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*CheckoutSession
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[uuid.UUID]*CheckoutSession),
	}
}

// Put registers a session under its id
func (s *SessionStore) Put(session *CheckoutSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

// Get returns the session with the given id, if present
func (s *SessionStore) Get(id uuid.UUID) (*CheckoutSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Delete removes a session from the store
func (s *SessionStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Count returns the number of live sessions
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle past the TTL or already in a terminal
// state, returning how many were removed. Swept sessions have their
// payment countdowns cancelled.
func (s *SessionStore) Sweep(ttl time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if session.Expirable(ttl, now) {
			session.Release()
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
