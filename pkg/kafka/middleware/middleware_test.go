package kafka_middleware

import (
	"context"
	"errors"
	"testing"

	"rentals/pkg/kafka"
	"rentals/pkg/logger"
)

func TestMetrics_CountsOutcomes(t *testing.T) {
	m := NewMetrics()
	consume := m.ConsumerMiddleware()
	publish := m.ProducerMiddleware()

	ok := func(ctx context.Context, msg kafka.Message) error { return nil }
	fail := func(ctx context.Context, msg kafka.Message) error { return errors.New("boom") }

	_ = consume(context.Background(), kafka.Message{}, ok)
	_ = consume(context.Background(), kafka.Message{}, fail)
	_ = publish(context.Background(), kafka.Message{}, ok)

	s := m.Snapshot()
	if s.Consumed != 1 || s.ConsumeFailed != 1 {
		t.Errorf("unexpected consume counters %+v", s)
	}
	if s.Published != 1 || s.PublishFailed != 0 {
		t.Errorf("unexpected publish counters %+v", s)
	}
}

func TestLoggingConsumerMiddleware_PassesErrorThrough(t *testing.T) {
	want := errors.New("handler failed")
	mw := LoggingConsumerMiddleware(logger.Discard())

	got := mw(context.Background(), kafka.Message{Headers: map[string]string{}}, func(ctx context.Context, msg kafka.Message) error {
		return want
	})

	if !errors.Is(got, want) {
		t.Errorf("expected handler error to propagate, got %v", got)
	}
}
