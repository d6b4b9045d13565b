package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"productverification/internal/product/models"
)

// Publisher writes one keyed message to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// Envelope is the wire form of a domain event.
type Envelope struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// KafkaListener forwards events to a topic keyed by product id so one
// product's events stay ordered within a partition.
type KafkaListener struct {
	publisher Publisher
	topic     string
}

func NewKafkaListener(publisher Publisher, topic string) *KafkaListener {
	return &KafkaListener{publisher: publisher, topic: topic}
}

func (l *KafkaListener) Handle(ctx context.Context, e models.DomainEvent) error {
	value, err := Encode(e)
	if err != nil {
		return err
	}
	if err := l.publisher.Publish(ctx, l.topic, []byte(e.AggregateID()), value); err != nil {
		return fmt.Errorf("publish %s: %w", e.EventName(), err)
	}
	return nil
}

// Encode wraps e in an Envelope and marshals it.
func Encode(e models.DomainEvent) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}
	out, err := json.Marshal(Envelope{
		EventID:    e.EventID(),
		EventType:  e.EventName(),
		OccurredAt: e.OccurredAt(),
		Payload:    payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event envelope: %w", err)
	}
	return out, nil
}
