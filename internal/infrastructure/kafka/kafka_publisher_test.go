package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/underwriting/pkg/events"
	pkgkafka "github.com/bibbank/underwriting/pkg/kafka"
)

type recordingProducer struct {
	topic    string
	messages []pkgkafka.Message
	err      error
}

func (p *recordingProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	p.topic = topic
	p.messages = append(p.messages, messages...)
	return p.err
}

func newPublisher(p MessageProducer) *KafkaEventPublisher {
	return NewKafkaEventPublisher(p, "underwriting.events", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestKafkaEventPublisher_Publish(t *testing.T) {
	at := time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC)
	entry := events.OutboxEntry{
		ID:            "evt-1",
		AggregateID:   "sub-1",
		AggregateType: "Submission",
		TenantID:      "tenant-1",
		EventType:     "underwriting.submission.created",
		Payload:       []byte(`{"submission_id":"sub-1"}`),
		CreatedAt:     at,
	}

	t.Run("maps entries to keyed messages with headers", func(t *testing.T) {
		producer := &recordingProducer{}

		err := newPublisher(producer).Publish(context.Background(), entry)

		require.NoError(t, err)
		assert.Equal(t, "underwriting.events", producer.topic)
		require.Len(t, producer.messages, 1)
		msg := producer.messages[0]
		assert.Equal(t, []byte("sub-1"), msg.Key)
		assert.JSONEq(t, `{"submission_id":"sub-1"}`, string(msg.Value))
		assert.Equal(t, at, msg.Time)
		assert.Equal(t, map[string]string{
			"event_type":     "underwriting.submission.created",
			"event_id":       "evt-1",
			"tenant_id":      "tenant-1",
			"aggregate_type": "Submission",
		}, msg.Headers)
	})

	t.Run("no entries is a no-op", func(t *testing.T) {
		producer := &recordingProducer{}
		require.NoError(t, newPublisher(producer).Publish(context.Background()))
		assert.Empty(t, producer.topic)
	})

	t.Run("wraps producer errors", func(t *testing.T) {
		boom := errors.New("broker unavailable")
		producer := &recordingProducer{err: boom}

		err := newPublisher(producer).Publish(context.Background(), entry)

		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "underwriting.events")
	})
}
