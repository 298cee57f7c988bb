package model

import (
	"time"
)

type Property struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty"`
	Owner         string    `json:"owner" bson:"owner"`
	Title         string    `json:"title" bson:"title"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty"`
	City          string    `json:"city" bson:"city"`
	Address       string    `json:"address" bson:"address"`
	PricePerNight float64   `json:"price_per_night" bson:"price_per_night"`
	Bedrooms      int       `json:"bedrooms" bson:"bedrooms"`
	ContactPhone  string    `json:"contact_phone,omitempty" bson:"contact_phone,omitempty"`
	IsAvailable   bool      `json:"is_available" bson:"is_available"`
	BookedBy      *string   `json:"booked_by" bson:"booked_by"`
	ActiveBooking *string   `json:"active_booking" bson:"active_booking"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// ActiveBookingID returns the active booking reference, or "" when free.
func (p *Property) ActiveBookingID() string {
	if p.ActiveBooking == nil {
		return ""
	}
	return *p.ActiveBooking
}

func (p *Property) BookedByID() string {
	if p.BookedBy == nil {
		return ""
	}
	return *p.BookedBy
}

// PropertyCreate carries only descriptive fields. Availability is engine owned.
type PropertyCreate struct {
	Title         string  `json:"title" validate:"required,min=3,max=120"`
	Description   string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	City          string  `json:"city" validate:"required,min=2,max=80"`
	Address       string  `json:"address" validate:"required,min=3,max=200"`
	PricePerNight float64 `json:"price_per_night" validate:"required,gt=0,lte=1000000"`
	Bedrooms      int     `json:"bedrooms" validate:"gte=0,lte=100"`
	ContactPhone  string  `json:"contact_phone,omitempty" validate:"omitempty,e164"`
}

type PropertyUpdate struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,min=3,max=120"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	City          *string  `json:"city,omitempty" validate:"omitempty,min=2,max=80"`
	Address       *string  `json:"address,omitempty" validate:"omitempty,min=3,max=200"`
	PricePerNight *float64 `json:"price_per_night,omitempty" validate:"omitempty,gt=0,lte=1000000"`
	Bedrooms      *int     `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=100"`
	ContactPhone  *string  `json:"contact_phone,omitempty" validate:"omitempty,e164"`
}

func (u *PropertyUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.City == nil && u.Address == nil &&
		u.PricePerNight == nil && u.Bedrooms == nil && u.ContactPhone == nil
}

type AvailabilityStatus string

const (
	StatusAvailable     AvailabilityStatus = "available"
	StatusBooked        AvailabilityStatus = "booked"
	StatusAwaitingReset AvailabilityStatus = "awaiting_reset"
	StatusUnavailable   AvailabilityStatus = "unavailable"
)

// PropertyView is a property as a given viewer sees it at read time.
type PropertyView struct {
	*Property
	Status               AvailabilityStatus `json:"status"`
	ActiveBookingSummary *BookingSummary    `json:"active_booking_summary,omitempty"`
}
