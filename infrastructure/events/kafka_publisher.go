package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"storefront/domain/shared"
)

// eventEnvelope is the wire form of a domain event on the bus.
type eventEnvelope struct {
	Name        string    `json:"name"`
	AggregateID string    `json:"aggregate_id"`
	OccurredOn  time.Time `json:"occurred_on"`
}

// KafkaPublisher publishes domain events to a Kafka topic, keyed by
// aggregate ID so events for one checkout stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher builds a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)

// Publish writes the event to the topic.
func (p *KafkaPublisher) Publish(ctx context.Context, event shared.DomainEvent) error {
	if err := shared.ValidateEvent(event); err != nil {
		return err
	}
	payload, err := json.Marshal(eventEnvelope{
		Name:        event.EventName(),
		AggregateID: event.AggregateID(),
		OccurredOn:  event.OccurredOn(),
	})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AggregateID()),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
