package audit

import (
	"context"
	"fmt"

	"rentals/pkg/clock"
	"rentals/pkg/kafka"
	"rentals/pkg/logger"
	"rentals/pkg/model"
)

// NewEventHandler returns the lifecycle topic handler. Malformed payloads are
// permanent failures and go to the DLQ; storage failures are retried.
func NewEventHandler(repo EventRepository, clk clock.Clock, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}

		if event.EventID == "" {
			event.EventID = msg.GetEventID()
		}
		if event.EventID == "" {
			return kafka.NewPermanentError("event has no id", kafka.ErrInvalidMessage)
		}
		if event.Type == "" {
			event.Type = model.BookingEventType(msg.GetEventType())
		}
		if event.PropertyID == "" {
			event.PropertyID = msg.Key
		}
		event.RecordedAt = clk.Now()

		inserted, err := repo.Append(ctx, &event)
		if err != nil {
			return kafka.NewTransientError(fmt.Sprintf("store event %s", event.EventID), err)
		}

		if !inserted {
			log.Debug("Duplicate lifecycle event ignored", "event_id", event.EventID)
			return nil
		}
		log.Info("Lifecycle event recorded",
			"event_id", event.EventID,
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"property_id", event.PropertyID,
		)
		return nil
	}
}
