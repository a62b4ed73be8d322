package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/pkg/events"
	pkgkafka "github.com/bibbank/underwriting/pkg/kafka"
)

// MessageProducer is the slice of *pkgkafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// KafkaEventPublisher implements port.EventPublisher by writing outbox entries to Kafka.
type KafkaEventPublisher struct {
	producer MessageProducer
	topic    string
	logger   *slog.Logger
}

// NewKafkaEventPublisher creates a publisher targeting the given Kafka producer and topic.
func NewKafkaEventPublisher(producer MessageProducer, topic string, logger *slog.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

var _ port.EventPublisher = (*KafkaEventPublisher)(nil)

// Publish sends outbox entries to Kafka keyed by aggregate id, so every event
// of one submission lands on the same partition in order.
func (p *KafkaEventPublisher) Publish(ctx context.Context, entries ...events.OutboxEntry) error {
	if len(entries) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, 0, len(entries))
	for _, e := range entries {
		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", e.EventType,
			"aggregate_id", e.AggregateID,
			"tenant_id", e.TenantID,
			"topic", p.topic,
			"payload_size", len(e.Payload),
		)

		messages = append(messages, pkgkafka.Message{
			Key:   []byte(e.AggregateID),
			Value: e.Payload,
			Time:  e.CreatedAt,
			Headers: map[string]string{
				"event_type":     e.EventType,
				"event_id":       e.ID,
				"tenant_id":      e.TenantID,
				"aggregate_type": e.AggregateType,
			},
		})
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}
