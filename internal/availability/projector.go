// Package availability derives the user-facing availability of a property from
// stored state and the current time. Nothing here is persisted.
package availability

import (
	"fmt"
	"time"

	"rentals/pkg/model"
)

// HasEnded is the single end-of-stay comparison shared by reset and projection:
// a booking has ended once now reaches its end date.
func HasEnded(b *model.Booking, now time.Time) bool {
	return !now.Before(b.EndDate)
}

// Project returns the status viewer should see for p. active is the booking
// p.ActiveBooking points to, or nil when the reference is absent or dangling.
func Project(p *model.Property, active *model.Booking, viewer model.Actor, now time.Time) model.AvailabilityStatus {
	if viewer.Owns(p) {
		return projectForOwner(p, active, now)
	}
	return projectForRenter(p, viewer)
}

func projectForOwner(p *model.Property, active *model.Booking, now time.Time) model.AvailabilityStatus {
	if p.IsAvailable {
		return model.StatusAvailable
	}
	// A missing booking can only be cleared by a reset, so it reads as awaiting one.
	if active == nil || HasEnded(active, now) {
		return model.StatusAwaitingReset
	}
	return model.StatusBooked
}

func projectForRenter(p *model.Property, viewer model.Actor) model.AvailabilityStatus {
	if p.IsAvailable {
		return model.StatusAvailable
	}
	if viewer.ID != "" && viewer.ID == p.BookedByID() {
		return model.StatusBooked
	}
	return model.StatusUnavailable
}

// View wraps a copy of p with its projected status. The booking pointers and
// the active booking summary are only kept for the owner of record and the
// renter holding the booking; everyone else sees a bare unavailable property.
func View(p *model.Property, active *model.Booking, viewer model.Actor, now time.Time) *model.PropertyView {
	shown := *p
	if !mayKnowBooker(p, viewer) {
		shown.BookedBy = nil
		shown.ActiveBooking = nil
	}

	view := &model.PropertyView{
		Property: &shown,
		Status:   Project(p, active, viewer, now),
	}
	if active != nil && (viewer.Owns(p) || (viewer.ID != "" && viewer.ID == active.User)) {
		view.ActiveBookingSummary = active.Summary()
	}
	return view
}

func mayKnowBooker(p *model.Property, viewer model.Actor) bool {
	return viewer.Owns(p) || (viewer.ID != "" && viewer.ID == p.BookedByID())
}

type Drift struct {
	PropertyID string
	Reason     string
}

func (d Drift) Error() string {
	return fmt.Sprintf("property %s availability drift: %s", d.PropertyID, d.Reason)
}

// CheckConsistency compares the denormalized booking pointer on p with the
// booking it references and returns every violated rule. An accepted booking
// past its end date is not drift: it is waiting for an owner reset.
func CheckConsistency(p *model.Property, active *model.Booking) []Drift {
	var drifts []Drift
	add := func(format string, args ...any) {
		drifts = append(drifts, Drift{PropertyID: p.ID, Reason: fmt.Sprintf(format, args...)})
	}

	hasActive := p.ActiveBooking != nil
	hasBookedBy := p.BookedBy != nil

	if hasActive != hasBookedBy {
		add("booked_by set=%t but active_booking set=%t", hasBookedBy, hasActive)
	}

	if p.IsAvailable {
		if hasActive {
			add("available but points at booking %s", p.ActiveBookingID())
		}
		return drifts
	}

	if !hasActive {
		add("unavailable without an active booking")
		return drifts
	}

	if active == nil {
		add("active booking %s does not exist", p.ActiveBookingID())
		return drifts
	}

	if active.ID != p.ActiveBookingID() {
		add("active booking %s does not match loaded booking %s", p.ActiveBookingID(), active.ID)
	}
	if active.Property != p.ID {
		add("active booking %s belongs to property %s", active.ID, active.Property)
	}
	if active.Status != model.BookingAccepted {
		add("active booking %s is %s, not accepted", active.ID, active.Status)
	}
	if hasBookedBy && p.BookedByID() != active.User {
		add("booked_by %s differs from booking user %s", p.BookedByID(), active.User)
	}

	return drifts
}
