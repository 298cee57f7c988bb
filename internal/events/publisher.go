// Package events publishes booking lifecycle events once the change that
// produced them has committed.
package events

import (
	"context"
	"time"

	"rentals/pkg/kafka"
	"rentals/pkg/logger"
	"rentals/pkg/middleware"
	"rentals/pkg/model"

	"github.com/google/uuid"
)

const (
	Source        = "rentals-api"
	SchemaVersion = "1"
)

type Publisher interface {
	Publish(ctx context.Context, event *model.BookingEvent) error
	Close() error
}

// messageProducer is satisfied by *kafka.Producer.
type messageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer messageProducer
	log      *logger.Logger
}

func NewKafkaPublisher(producer messageProducer, log *logger.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		log:      log,
	}
}

// Publish sends event keyed by its property so every event of one property
// lands on the same partition in order.
func (p *KafkaPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	msg, err := kafka.NewMessage().
		WithKey(event.PropertyID).
		WithValue(event).
		WithEventID(event.EventID).
		WithEventType(string(event.Type)).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return err
	}

	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher drops events. It is used when Kafka is disabled.
type NopPublisher struct {
	log *logger.Logger
}

func NewNopPublisher(log *logger.Logger) *NopPublisher {
	return &NopPublisher{log: log}
}

func (p *NopPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	p.log.Debug("Lifecycle event dropped, Kafka disabled",
		"event_type", event.Type,
		"booking_id", event.BookingID,
		"property_id", event.PropertyID,
	)
	return nil
}

func (p *NopPublisher) Close() error {
	return nil
}
