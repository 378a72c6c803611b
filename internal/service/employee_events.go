package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/noah-isme/employee-admin/internal/models"
	"github.com/noah-isme/employee-admin/pkg/jobs"
)

// EventPublisher emits employee lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event models.EmployeeEvent) error
}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, models.EmployeeEvent) error { return nil }

// NoopEventPublisher drops every event.
func NoopEventPublisher() EventPublisher { return noopEventPublisher{} }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaEventPublisher writes events to Kafka keyed by employee ID, so every
// event of one employee lands on the same partition.
type KafkaEventPublisher struct {
	writer messageWriter
}

// NewKafkaEventPublisher wraps a kafka writer.
func NewKafkaEventPublisher(writer messageWriter) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

// Publish implements EventPublisher.
func (p *KafkaEventPublisher) Publish(ctx context.Context, event models.EmployeeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal employee event: %w", err)
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.EmployeeID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
}

// QueuedEventPublisher hands events to a background queue so write requests
// never wait on the broker.
type QueuedEventPublisher struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewQueuedEventPublisher builds a queue whose workers deliver events through next.
func NewQueuedEventPublisher(next EventPublisher, cfg jobs.QueueConfig) *QueuedEventPublisher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	queue := jobs.NewQueue("employee-events", func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(models.EmployeeEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T", job.Payload)
		}
		return next.Publish(ctx, event)
	}, cfg)
	return &QueuedEventPublisher{queue: queue, logger: logger}
}

// Start launches the delivery workers.
func (p *QueuedEventPublisher) Start(ctx context.Context) { p.queue.Start(ctx) }

// Stop flushes pending events and stops the workers.
func (p *QueuedEventPublisher) Stop() { p.queue.Stop() }

// Publish implements EventPublisher.
func (p *QueuedEventPublisher) Publish(_ context.Context, event models.EmployeeEvent) error {
	return p.queue.Enqueue(jobs.Job{
		ID:      event.EmployeeID,
		Type:    string(event.EventType),
		Payload: event,
	})
}
