package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is the envelope published to the moderation topic for downstream
// consumers (digest mailers, analytics, dashboards).
type Event struct {
	Kind       string    `json:"kind"` // content_flagged, content_approved, content_deleted, content_rejected
	TargetType string    `json:"target_type"`
	TargetID   uint      `json:"target_id"`
	ActorID    uint      `json:"actor_id,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Event kinds
const (
	KindContentFlagged  = "content_flagged"
	KindContentApproved = "content_approved"
	KindContentDeleted  = "content_deleted"
	KindContentRejected = "content_rejected"
)

// Publisher writes moderation events to Kafka. Publication is best-effort:
// failures are logged and swallowed so a broker outage never blocks a
// moderation action.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher for the given brokers and topic. A nil
// Publisher is valid and publishes nothing, which keeps Kafka optional in
// development.
func NewPublisher(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		// Async writes report delivery failures through the error logger;
		// without it they would vanish.
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			log.Printf("events: "+msg, args...)
		}),
	}
	return &Publisher{writer: w}
}

// Close flushes and closes the underlying writer
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// Publish sends one event, keyed by target so events for the same content
// item stay ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil || p.writer == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("events: failed to marshal %s event: %v", event.Kind, err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("%s:%d", event.TargetType, event.TargetID)),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		log.Printf("events: failed to publish %s event: %v", event.Kind, err)
	}
}
