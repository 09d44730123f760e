package checkout

import "time"

// SessionStore keeps live checkout sessions. Each session is an isolated
// instance; no state crosses sessions. Implementations must serialize
// mutating access per session: the closure passed to Update runs with the
// session exclusively held, which is how the flow guarantees that no two
// mutating operations are ever in flight concurrently against one checkout.
type SessionStore interface {
	// Add registers a new session.
	Add(c *Checkout) error

	// View runs fn with read access to the session. Returns an error
	// satisfying errors.Is(err, ErrCheckoutNotFound) for unknown IDs.
	View(id string, fn func(*Checkout) error) error

	// Update runs fn with the session exclusively held.
	Update(id string, fn func(*Checkout) error) error

	// Remove discards the session and cancels any scheduled expiry.
	// Discarding has no cleanup obligations beyond that: no partial
	// writes exist to roll back.
	Remove(id string) bool

	// ScheduleExpiry arranges for the session to be removed after ttl,
	// unless Remove is called first. Used for the post-confirmation
	// auto-teardown.
	ScheduleExpiry(id string, ttl time.Duration) bool
}
