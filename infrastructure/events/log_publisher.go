// Package events provides domain event publishers. The log publisher is the
// default; the Kafka publisher activates when brokers are configured.
package events

import (
	"context"

	"go.uber.org/zap"

	"storefront/domain/shared"
	"storefront/pkg/logger"
)

// LogPublisher writes domain events to the structured log. It is the
// fallback publisher for environments without a broker.
type LogPublisher struct{}

// NewLogPublisher builds a log-backed publisher.
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

var _ shared.EventPublisher = (*LogPublisher)(nil)

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event shared.DomainEvent) error {
	if err := shared.ValidateEvent(event); err != nil {
		return err
	}
	logger.Info("domain event",
		zap.String("event", event.EventName()),
		zap.String("aggregate_id", event.AggregateID()),
		zap.Time("occurred_on", event.OccurredOn()),
	)
	return nil
}

// Close is a no-op; the log publisher holds no resources.
func (p *LogPublisher) Close() error {
	return nil
}
