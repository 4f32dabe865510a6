package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaRelay implements Sink using segmentio/kafka-go, producing every
// change to one topic. Messages are keyed by org and hash-partitioned on
// that key, so a consumer group sees each org's changes in order.
type KafkaRelay struct {
	writer *kafka.Writer
}

// NewKafkaRelay creates a relay writing changes to the given topic.
// Returns nil when brokers or topic are unset; a nil relay is a no-op sink.
func NewKafkaRelay(brokers []string, topic string) *KafkaRelay {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &KafkaRelay{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

// Emit serializes the change as JSON and writes it to the topic. A short
// timeout keeps slow Kafka from blocking the listener loop.
func (r *KafkaRelay) Emit(ctx context.Context, c Change) error {
	if r == nil || r.writer == nil {
		return nil
	}
	payload, err := json.Marshal(c)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(c.OrgID),
		Value: payload,
	})
}

// Close closes the Kafka writer. Safe to call on a nil relay.
func (r *KafkaRelay) Close() error {
	if r == nil || r.writer == nil {
		return nil
	}
	return r.writer.Close()
}
