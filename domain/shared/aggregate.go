package shared

// AggregateRoot is the entry point of an aggregate. It owns a global
// identity, maintains the aggregate's invariants, and records the domain
// events produced by its state changes.
type AggregateRoot interface {
	// ID returns the aggregate's global identifier.
	ID() string

	// PullEvents returns and clears the events recorded since the last
	// pull, so each event is published exactly once.
	PullEvents() []DomainEvent
}
