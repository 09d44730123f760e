package shared

import (
	"context"
	"errors"
	"time"
)

// DomainEvent is a fact recorded by an aggregate when its state changes.
// Aggregates collect events internally; the application layer pulls and
// publishes them after the operation succeeds.
type DomainEvent interface {
	EventName() string
	OccurredOn() time.Time
	AggregateID() string
}

// EventPublisher delivers domain events to interested parties. Publishing is
// best-effort from the caller's point of view: a failed publish must never
// roll back the business operation that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, event DomainEvent) error
}

// ValidateEvent rejects events that would be useless downstream.
func ValidateEvent(event DomainEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	if event.EventName() == "" {
		return errors.New("event name cannot be empty")
	}
	if event.AggregateID() == "" {
		return errors.New("aggregate ID cannot be empty")
	}
	if event.OccurredOn().IsZero() {
		return errors.New("occurred on time cannot be zero")
	}
	return nil
}
