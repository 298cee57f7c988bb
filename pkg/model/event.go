package model

import "time"

type BookingEventType string

const (
	EventBookingCreated      BookingEventType = "booking.created"
	EventBookingStatusSet    BookingEventType = "booking.status_changed"
	EventBookingAccepted     BookingEventType = "booking.accepted"
	EventBookingCancelled    BookingEventType = "booking.cancelled"
	EventPropertyReset       BookingEventType = "property.availability_reset"
	EventBookingAutoRejected BookingEventType = "booking.auto_rejected"
)

// BookingEvent is emitted after a lifecycle change commits and stored by the audit consumer.
type BookingEvent struct {
	EventID     string           `json:"event_id" bson:"_id"`
	Type        BookingEventType `json:"type" bson:"type"`
	BookingID   string           `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	PropertyID  string           `json:"property_id" bson:"property_id"`
	ActorID     string           `json:"actor_id" bson:"actor_id"`
	FromStatus  BookingStatus    `json:"from_status,omitempty" bson:"from_status,omitempty"`
	ToStatus    BookingStatus    `json:"to_status,omitempty" bson:"to_status,omitempty"`
	RejectedIDs []string         `json:"rejected_ids,omitempty" bson:"rejected_ids,omitempty"`
	OccurredAt  time.Time        `json:"occurred_at" bson:"occurred_at"`
	RecordedAt  time.Time        `json:"recorded_at,omitempty" bson:"recorded_at,omitempty"`
}
