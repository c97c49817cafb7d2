// Package events publishes account lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vishwas132/university-admin-panel/internal/metrics"

	"github.com/IBM/sarama"
)

type Type string

const (
	AdminRegistered        Type = "admin.registered"
	StudentCreated         Type = "student.created"
	StudentUpdated         Type = "student.updated"
	StudentDeleted         Type = "student.deleted"
	PasswordResetRequested Type = "password.reset_requested"
	PasswordResetCompleted Type = "password.reset_completed"
)

type Event struct {
	Type        Type      `json:"type"`
	AccountID   string    `json:"accountId"`
	AccountKind string    `json:"accountKind"`
	Email       string    `json:"email,omitempty"`
	OccurredAt  time.Time `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Emit publishes event and logs, rather than returns, any failure.
func Emit(ctx context.Context, p Publisher, logger *slog.Logger, event Event) {
	if p == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := p.Publish(ctx, event); err != nil {
		logger.WarnContext(ctx, "failed to publish account event",
			"type", event.Type, "account_id", event.AccountID, "error", err)
	}
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
	metrics  *metrics.MessagingMetrics
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	logger.Info("kafka producer initialized", "brokers", brokers, "topic", topic)

	return NewKafkaPublisherWithProducer(producer, topic, logger), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// WithMetrics records publish counts and latency into m.
func (p *KafkaPublisher) WithMetrics(m *metrics.MessagingMetrics) *KafkaPublisher {
	p.metrics = m
	return p
}

// Publish sends event keyed by account id so events of one account stay
// ordered within a partition.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.AccountID),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}

	start := time.Now()
	partition, offset, err := p.producer.SendMessage(msg)
	p.metrics.RecordPublish(ctx, "kafka", p.topic, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to send event to kafka: %w", err)
	}

	p.logger.DebugContext(ctx, "event sent to kafka", "topic", p.topic, "type", event.Type, "partition", partition, "offset", offset)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
