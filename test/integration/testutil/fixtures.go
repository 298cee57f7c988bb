package testutil

import (
	"time"

	"rentals/pkg/client"
	"rentals/pkg/model"
)

var (
	Owner        = client.Identity{UserID: "owner-1", Role: string(model.RoleOwner)}
	AnotherOwner = client.Identity{UserID: "owner-2", Role: string(model.RoleOwner)}
	Alice        = client.Identity{UserID: "renter-alice", Role: string(model.RoleRenter)}
	Bob          = client.Identity{UserID: "renter-bob", Role: string(model.RoleRenter)}
)

type PropertyBuilder struct {
	p model.PropertyCreate
}

func NewPropertyBuilder() *PropertyBuilder {
	return &PropertyBuilder{
		p: model.PropertyCreate{
			Title:         "Sea view apartment",
			Description:   "Two rooms next to the beach",
			City:          "Haifa",
			Address:       "12 Hagana Street",
			PricePerNight: 420,
			Bedrooms:      2,
			ContactPhone:  "+972501234567",
		},
	}
}

func (b *PropertyBuilder) WithTitle(title string) *PropertyBuilder {
	b.p.Title = title
	return b
}

func (b *PropertyBuilder) WithPrice(price float64) *PropertyBuilder {
	b.p.PricePerNight = price
	return b
}

func (b *PropertyBuilder) Build() model.PropertyCreate {
	return b.p
}

// BookingRequest returns a request for a stay starting in `in` and lasting `nights`.
func BookingRequest(propertyID string, in time.Duration, nights int) model.BookingCreate {
	start := time.Now().UTC().Add(in).Truncate(time.Second)
	return model.BookingCreate{
		Property:  propertyID,
		StartDate: start,
		EndDate:   start.Add(time.Duration(nights) * 24 * time.Hour),
		Message:   "Arriving in the evening",
	}
}
