package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	skafka "github.com/segmentio/kafka-go"

	"teamaccess/internal/domain"
)

// Writer is the subset of kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

type message struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher exports domain events to a Kafka topic, keyed by event type.
type Publisher struct {
	writer Writer
	now    func() time.Time
}

func NewPublisher(brokers []string, topic string) *Publisher {
	w := &skafka.Writer{
		Addr:         skafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &skafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return NewPublisherWithWriter(w)
}

func NewPublisherWithWriter(w Writer) *Publisher {
	return &Publisher{writer: w, now: time.Now}
}

func (p *Publisher) Export(ctx context.Context, e domain.Event) error {
	b, err := json.Marshal(message{
		ID:         uuid.NewString(),
		Type:       e.Type,
		Payload:    e.Payload,
		OccurredAt: p.now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, skafka.Message{Key: []byte(e.Type), Value: b})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
