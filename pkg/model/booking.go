package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingAccepted  BookingStatus = "accepted"
	BookingRejected  BookingStatus = "rejected"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

var BookingStatuses = []BookingStatus{
	BookingPending,
	BookingAccepted,
	BookingRejected,
	BookingCompleted,
	BookingCancelled,
}

func (s BookingStatus) IsValid() bool {
	for _, status := range BookingStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsSettled reports whether the booking needs no completion when its property is reset.
func (s BookingStatus) IsSettled() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingRejected
}

type Booking struct {
	ID        string        `json:"id,omitempty" bson:"_id,omitempty"`
	User      string        `json:"user" bson:"user"`
	Property  string        `json:"property" bson:"property"`
	StartDate time.Time     `json:"start_date" bson:"start_date"`
	EndDate   time.Time     `json:"end_date" bson:"end_date"`
	Status    BookingStatus `json:"status" bson:"status"`
	Message   string        `json:"message,omitempty" bson:"message,omitempty"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// BookingCreate is the renter's request body. The renter comes from the actor.
type BookingCreate struct {
	Property  string    `json:"property" validate:"required,mongodb"`
	StartDate time.Time `json:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	Message   string    `json:"message,omitempty" validate:"omitempty,max=1000"`
}

// DateLayout is the date-only form accepted for booking dates. It is read as
// midnight UTC.
const DateLayout = "2006-01-02"

// DateFormatError reports a booking date that is neither RFC3339 nor DateLayout.
type DateFormatError struct {
	Field string
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("%s must be an RFC3339 timestamp or a %s date, got %s", e.Field, DateLayout, e.Value)
}

func (b *BookingCreate) UnmarshalJSON(data []byte) error {
	type plain BookingCreate
	aux := struct {
		*plain
		StartDate json.RawMessage `json:"start_date"`
		EndDate   json.RawMessage `json:"end_date"`
	}{plain: (*plain)(b)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if b.StartDate, err = parseBookingDate("start_date", aux.StartDate); err != nil {
		return err
	}
	if b.EndDate, err = parseBookingDate("end_date", aux.EndDate); err != nil {
		return err
	}
	return nil
}

// parseBookingDate leaves absent and null values zero for the required check.
func parseBookingDate(field string, raw json.RawMessage) (time.Time, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, &DateFormatError{Field: field, Value: string(raw)}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	return time.Time{}, &DateFormatError{Field: field, Value: fmt.Sprintf("%q", s)}
}

type BookingStatusUpdate struct {
	Status BookingStatus `json:"status" validate:"required,booking_status"`
}

// BookingSummary is the slice of the active booking embedded in property reads.
type BookingSummary struct {
	ID        string        `json:"id"`
	User      string        `json:"user"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    BookingStatus `json:"status"`
}

func (b *Booking) Summary() *BookingSummary {
	if b == nil {
		return nil
	}
	return &BookingSummary{
		ID:        b.ID,
		User:      b.User,
		StartDate: b.StartDate,
		EndDate:   b.EndDate,
		Status:    b.Status,
	}
}
