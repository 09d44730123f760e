// Package memory holds the in-process session store. Checkout sessions are
// ephemeral by design, so no persistence layer backs them.
package memory

import (
	"sync"
	"time"

	"storefront/domain/checkout"
)

type sessionEntry struct {
	mu      sync.Mutex
	session *checkout.Checkout
	expiry  *time.Timer
}

// CheckoutStore is a concurrency-safe in-memory session store. The outer
// map lock only guards membership; each session carries its own mutex so
// operations on different checkouts never contend.
type CheckoutStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewCheckoutStore builds an empty store.
func NewCheckoutStore() *CheckoutStore {
	return &CheckoutStore{sessions: make(map[string]*sessionEntry)}
}

var _ checkout.SessionStore = (*CheckoutStore)(nil)

// Add registers a new session under its ID.
func (s *CheckoutStore) Add(c *checkout.Checkout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[c.ID()]; exists {
		return checkout.ErrConflictingSession
	}
	s.sessions[c.ID()] = &sessionEntry{session: c}
	return nil
}

func (s *CheckoutStore) entry(id string) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, checkout.NewCheckoutNotFoundError(id)
	}
	return entry, nil
}

// View runs fn with the session held. Reads take the same per-session lock
// as writes so fn always observes a consistent aggregate.
func (s *CheckoutStore) View(id string, fn func(*checkout.Checkout) error) error {
	return s.Update(id, fn)
}

// Update runs fn with the session exclusively held.
func (s *CheckoutStore) Update(id string, fn func(*checkout.Checkout) error) error {
	entry, err := s.entry(id)
	if err != nil {
		return err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return fn(entry.session)
}

// Remove discards the session and cancels any pending expiry timer.
func (s *CheckoutStore) Remove(id string) bool {
	s.mu.Lock()
	entry, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	entry.mu.Lock()
	if entry.expiry != nil {
		entry.expiry.Stop()
		entry.expiry = nil
	}
	entry.mu.Unlock()
	return true
}

// ScheduleExpiry removes the session after ttl unless Remove runs first.
// Rescheduling replaces the previous timer.
func (s *CheckoutStore) ScheduleExpiry(id string, ttl time.Duration) bool {
	entry, err := s.entry(id)
	if err != nil {
		return false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	if entry.expiry != nil {
		entry.expiry.Stop()
	}
	entry.expiry = time.AfterFunc(ttl, func() {
		s.Remove(id)
	})
	return true
}

// Len reports the number of live sessions.
func (s *CheckoutStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
