package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// TypeStatusChanged is emitted after a reconciliation updated a link.
const TypeStatusChanged = "link.status_changed"

// StatusChanged describes a reconciled status update.
type StatusChanged struct {
	Type      string    `json:"type"`
	LinkID    string    `json:"link_id"`
	Status    string    `json:"status"`
	PaymentID string    `json:"payment_id,omitempty"`
	Mode      string    `json:"mode"`
	At        time.Time `json:"at"`
}

// Publisher delivers link events downstream.
type Publisher interface {
	PublishStatusChanged(ctx context.Context, event StatusChanged) error
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by link id.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher for topic on brokers.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		},
	}
}

// PublishStatusChanged implements Publisher.
func (k *KafkaPublisher) PublishStatusChanged(ctx context.Context, event StatusChanged) error {
	if event.Type == "" {
		event.Type = TypeStatusChanged
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event.Type, err)
	}

	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.LinkID),
		Value: value,
		Time:  event.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	})
}

// Close flushes pending writes.
func (k *KafkaPublisher) Close() error {
	return k.writer.Close()
}

// Nop discards every event.
type Nop struct{}

func (Nop) PublishStatusChanged(context.Context, StatusChanged) error { return nil }
func (Nop) Close() error                                              { return nil }
