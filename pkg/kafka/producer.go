// Package kafka publishes run events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/adri-41/Recherche-Information/pkg/config"
	"github.com/adri-41/Recherche-Information/pkg/resilience"
)

// Event is the unit of data published to Kafka. Key is used for partition
// hashing and Value is JSON-serialised.
type Event struct {
	Key   string
	Value any
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON-encoded events to the configured topic.
type Producer struct {
	writer    messageWriter
	logger    *slog.Logger
	batchSize int
	retry     resilience.Policy
}

// NewProducer creates a Producer for cfg.Topic on cfg.Brokers.
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    500,
		BatchTimeout: 10 * time.Millisecond,
		MaxAttempts:  1,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}
	return newProducer(w, cfg.Topic)
}

func newProducer(w messageWriter, topic string) *Producer {
	return &Producer{
		writer:    w,
		logger:    slog.Default().With("component", "kafka-producer", "topic", topic),
		batchSize: 5000,
		retry:     resilience.DefaultPolicy(),
	}
}

// PublishBatch writes events in chunks so a full run does not become one
// oversized request.
func (p *Producer) PublishBatch(ctx context.Context, events []Event) error {
	messages := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		msg, err := toMessage(event)
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}
	for start := 0; start < len(messages); start += p.batchSize {
		end := min(start+p.batchSize, len(messages))
		if err := p.write(ctx, messages[start:end]...); err != nil {
			p.logger.Error("failed to publish batch",
				"count", end-start,
				"offset", start,
				"error", err,
			)
			return fmt.Errorf("publishing batch to kafka: %w", err)
		}
	}
	p.logger.Debug("batch published", "count", len(messages))
	return nil
}

// write retries transient broker failures with backoff.
func (p *Producer) write(ctx context.Context, msgs ...kafka.Message) error {
	return resilience.Retry(ctx, "kafka.publish_batch", p.retry, func(ctx context.Context) error {
		return p.writer.WriteMessages(ctx, msgs...)
	})
}

// Close flushes pending writes and closes the underlying Kafka writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

func toMessage(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event.Value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshaling event value: %w", err)
	}
	return kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
	}, nil
}
