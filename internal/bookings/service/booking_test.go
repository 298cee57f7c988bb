package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rentals/internal/availability"
	"rentals/internal/bookings/validator"
	"rentals/internal/storetest"
	"rentals/pkg/config"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/logger"
	"rentals/pkg/model"
)

var (
	owner    = model.Actor{ID: "owner-1", Role: model.RoleOwner}
	stranger = model.Actor{ID: "owner-2", Role: model.RoleOwner}
	renterA  = model.Actor{ID: "renter-a", Role: model.RoleRenter}
	renterB  = model.Actor{ID: "renter-b", Role: model.RoleRenter}
)

var (
	start = time.Date(2026, 8, 1, 14, 0, 0, 0, time.UTC)
	end   = time.Date(2026, 8, 5, 10, 0, 0, 0, time.UTC)
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []model.BookingEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.BookingEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store     *storetest.Store
	clock     *testClock
	publisher *recordingPublisher
	svc       BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	f := &fixture{
		store:     storetest.New(),
		clock:     &testClock{now: start.Add(-7 * 24 * time.Hour)},
		publisher: &recordingPublisher{},
	}
	f.svc = NewBookingService(
		f.store.Bookings(),
		f.store.Properties(),
		validator.NewBookingValidator(log),
		f.publisher,
		&config.Config{Log: log},
		WithClock(f.clock),
	)
	return f
}

func (f *fixture) property() *model.Property {
	return f.store.PutProperty(&model.Property{
		Owner:         owner.ID,
		Title:         "Cabin",
		City:          "Eilat",
		Address:       "3 Coral Beach",
		PricePerNight: 80,
		IsAvailable:   true,
	})
}

func (f *fixture) request(t *testing.T, renter model.Actor, propertyID string) *model.Booking {
	t.Helper()
	b, err := f.svc.Create(context.Background(), renter, &model.BookingCreate{
		Property:  propertyID,
		StartDate: start,
		EndDate:   end,
		Message:   "  arriving late  ",
	})
	if err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return b
}

func (f *fixture) accept(bookingID string) (*model.Booking, error) {
	return f.svc.UpdateStatus(context.Background(), owner, bookingID, &model.BookingStatusUpdate{Status: model.BookingAccepted})
}

// assertInvariants checks every property pointer against the booking it references
// and that no property has two accepted bookings.
func assertInvariants(t *testing.T, store *storetest.Store) {
	t.Helper()
	accepted := map[string]int{}
	for _, b := range store.AllBookings() {
		if b.Status == model.BookingAccepted {
			accepted[b.Property]++
		}
	}
	for _, p := range store.AllProperties() {
		if accepted[p.ID] > 1 {
			t.Errorf("property %s has %d accepted bookings", p.ID, accepted[p.ID])
		}
		active := store.Booking(p.ActiveBookingID())
		for _, d := range availability.CheckConsistency(p, active) {
			t.Errorf("invariant violated: %v", d)
		}
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	p := f.property()

	b := f.request(t, renterA, p.ID)

	if b.Status != model.BookingPending || b.User != renterA.ID || b.Property != p.ID {
		t.Errorf("unexpected booking %+v", b)
	}
	if b.Message != "arriving late" {
		t.Errorf("message = %q, want trimmed", b.Message)
	}
	if stored := f.store.Property(p.ID); !stored.IsAvailable || stored.ActiveBooking != nil {
		t.Error("creating a request must not touch the property")
	}
	if got := f.publisher.types(); len(got) != 1 || got[0] != model.EventBookingCreated {
		t.Errorf("events = %v", got)
	}
}

func TestCreate_Rejections(t *testing.T) {
	f := newFixture(t)
	free := f.property()
	taken := f.store.PutProperty(&model.Property{Owner: owner.ID, Title: "Taken"})

	tests := []struct {
		name     string
		actor    model.Actor
		input    model.BookingCreate
		wantCode string
	}{
		{
			name:     "owner cannot request",
			actor:    owner,
			input:    model.BookingCreate{Property: free.ID, StartDate: start, EndDate: end},
			wantCode: apperrors.CodeForbidden,
		},
		{
			name:     "end before start",
			actor:    renterA,
			input:    model.BookingCreate{Property: free.ID, StartDate: end, EndDate: start},
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "missing property",
			actor:    renterA,
			input:    model.BookingCreate{Property: "65f1a2b3c4d5e6f708192a3b", StartDate: start, EndDate: end},
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "property unavailable",
			actor:    renterA,
			input:    model.BookingCreate{Property: taken.ID, StartDate: start, EndDate: end},
			wantCode: apperrors.CodePropertyUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.actor, &tt.input)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}

	if n := len(f.store.AllBookings()); n != 0 {
		t.Errorf("expected no bookings, got %d", n)
	}
}

func TestCreate_OverlappingRequestsAllowed(t *testing.T) {
	f := newFixture(t)
	p := f.property()

	f.request(t, renterA, p.ID)
	f.request(t, renterB, p.ID)
	f.request(t, renterA, p.ID)

	if n := len(f.store.AllBookings()); n != 3 {
		t.Errorf("expected 3 pending requests, got %d", n)
	}
}

func TestAccept_RejectsCompetingRequests(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	other := f.property()

	b1 := f.request(t, renterA, p.ID)
	b2 := f.request(t, renterB, p.ID)
	elsewhere := f.request(t, renterB, other.ID)

	accepted, err := f.accept(b1.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != model.BookingAccepted {
		t.Errorf("status = %q", accepted.Status)
	}

	stored := f.store.Property(p.ID)
	if stored.IsAvailable {
		t.Error("property should be unavailable")
	}
	if stored.ActiveBookingID() != b1.ID || stored.BookedByID() != renterA.ID {
		t.Errorf("property points at %q/%q", stored.ActiveBookingID(), stored.BookedByID())
	}
	if got := f.store.Booking(b2.ID).Status; got != model.BookingRejected {
		t.Errorf("competing booking status = %q, want rejected", got)
	}
	if got := f.store.Booking(elsewhere.ID).Status; got != model.BookingPending {
		t.Errorf("booking on another property = %q, want pending", got)
	}
	assertInvariants(t, f.store)

	want := []model.BookingEventType{
		model.EventBookingCreated,
		model.EventBookingCreated,
		model.EventBookingCreated,
		model.EventBookingAccepted,
		model.EventBookingAutoRejected,
	}
	got := f.publisher.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, got[i], want[i])
		}
	}
	if ids := f.publisher.events[3].RejectedIDs; len(ids) != 1 || ids[0] != b2.ID {
		t.Errorf("rejected ids = %v", ids)
	}
}

func TestAccept_SecondAcceptLoses(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b1 := f.request(t, renterA, p.ID)
	b2 := f.request(t, renterB, p.ID)

	if _, err := f.accept(b1.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := f.accept(b2.ID); !apperrors.HasCode(err, apperrors.CodePropertyUnavailable) {
		t.Fatalf("expected property unavailable, got %v", err)
	}
	if got := f.store.Booking(b2.ID).Status; got != model.BookingRejected {
		t.Errorf("losing booking = %q, want rejected", got)
	}

	if _, err := f.accept(b1.ID); err != nil {
		t.Errorf("re-accepting the active booking should succeed, got %v", err)
	}
	assertInvariants(t, f.store)
}

func TestAccept_ConcurrentRace(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newFixture(t)
		p := f.property()

		const contenders = 8
		ids := make([]string, contenders)
		for i := range ids {
			ids[i] = f.request(t, renterA, p.ID).ID
		}

		var wg sync.WaitGroup
		errs := make([]error, contenders)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.accept(ids[i])
			}(i)
		}
		wg.Wait()

		winners := 0
		for i, err := range errs {
			switch {
			case err == nil:
				winners++
			case apperrors.HasCode(err, apperrors.CodePropertyUnavailable):
			default:
				t.Fatalf("round %d contender %d: unexpected error %v", round, i, err)
			}
		}
		if winners != 1 {
			t.Fatalf("round %d: %d winners, want exactly 1", round, winners)
		}
		assertInvariants(t, f.store)
	}
}

func TestAccept_RollsBackOnFailure(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b1 := f.request(t, renterA, p.ID)
	b2 := f.request(t, renterB, p.ID)

	f.store.FailOn("Booking.RejectPendingExcept", errors.New("write concern timeout"))
	_, err := f.accept(b1.ID)
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected storage failure, got %v", err)
	}

	stored := f.store.Property(p.ID)
	if !stored.IsAvailable || stored.ActiveBooking != nil || stored.BookedBy != nil {
		t.Errorf("property change was not rolled back: %+v", stored)
	}
	if got := f.store.Booking(b1.ID).Status; got != model.BookingPending {
		t.Errorf("accepted booking = %q, want pending after rollback", got)
	}
	if got := f.store.Booking(b2.ID).Status; got != model.BookingPending {
		t.Errorf("competing booking = %q, want pending after rollback", got)
	}

	f.store.FailOn("Booking.RejectPendingExcept", nil)
	if _, err := f.accept(b1.ID); err != nil {
		t.Fatalf("accept after recovery: %v", err)
	}
	assertInvariants(t, f.store)
}

func TestUpdateStatus_Authorization(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b := f.request(t, renterA, p.ID)

	tests := []struct {
		name     string
		actor    model.Actor
		id       string
		status   model.BookingStatus
		wantCode string
	}{
		{"renter", renterA, b.ID, model.BookingAccepted, apperrors.CodeForbidden},
		{"owner role spoofed by renter id", model.Actor{ID: renterA.ID, Role: model.RoleOwner}, b.ID, model.BookingAccepted, apperrors.CodeForbidden},
		{"other owner", stranger, b.ID, model.BookingRejected, apperrors.CodeForbidden},
		{"owner id acting as renter", model.Actor{ID: owner.ID, Role: model.RoleRenter}, b.ID, model.BookingAccepted, apperrors.CodeForbidden},
		{"missing booking", owner, "65f1a2b3c4d5e6f708192a3b", model.BookingAccepted, apperrors.CodeNotFound},
		{"malformed id", owner, "nope", model.BookingAccepted, apperrors.CodeInvalidInput},
		{"unknown status", owner, b.ID, "confirmed", apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpdateStatus(context.Background(), tt.actor, tt.id, &model.BookingStatusUpdate{Status: tt.status})
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}

	if got := f.store.Booking(b.ID).Status; got != model.BookingPending {
		t.Errorf("status changed to %q by a rejected call", got)
	}
}

func TestUpdateStatus_DeletedPropertyIsNotFound(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b := f.request(t, renterA, p.ID)

	if err := f.store.Properties().Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := f.accept(b.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpdateStatus_AnyTransitionAllowed(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b := f.request(t, renterA, p.ID)

	sequence := []model.BookingStatus{
		model.BookingRejected,
		model.BookingAccepted,
		model.BookingCompleted,
		model.BookingPending,
	}
	for _, status := range sequence {
		got, err := f.svc.UpdateStatus(context.Background(), owner, b.ID, &model.BookingStatusUpdate{Status: status})
		if err != nil {
			t.Fatalf("%s: %v", status, err)
		}
		if got.Status != status {
			t.Errorf("status = %q, want %q", got.Status, status)
		}
	}

	// completed and pending leave the property booked until a reset.
	if f.store.Property(p.ID).ActiveBookingID() != b.ID {
		t.Error("non-cancel transitions must not release the property")
	}
}

func TestCancelledTransition_ReleasesOnlyActiveBooking(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b1 := f.request(t, renterA, p.ID)
	b2 := f.request(t, renterB, p.ID)

	if _, err := f.accept(b1.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := f.svc.UpdateStatus(context.Background(), owner, b2.ID, &model.BookingStatusUpdate{Status: model.BookingCancelled}); err != nil {
		t.Fatalf("cancel other: %v", err)
	}
	if f.store.Property(p.ID).ActiveBookingID() != b1.ID {
		t.Fatal("cancelling a non-active booking must not release the property")
	}

	if _, err := f.svc.UpdateStatus(context.Background(), owner, b1.ID, &model.BookingStatusUpdate{Status: model.BookingCancelled}); err != nil {
		t.Fatalf("cancel active: %v", err)
	}
	stored := f.store.Property(p.ID)
	if !stored.IsAvailable || stored.ActiveBooking != nil || stored.BookedBy != nil {
		t.Errorf("property not released: %+v", stored)
	}
	assertInvariants(t, f.store)
}

func TestCancel_ByRenter(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b := f.request(t, renterA, p.ID)
	if _, err := f.accept(b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	if _, err := f.svc.Cancel(context.Background(), renterB, b.ID); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden for another renter, got %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), owner, b.ID); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Fatalf("expected forbidden for the owner, got %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), renterA, b.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.BookingCancelled {
		t.Errorf("status = %q", cancelled.Status)
	}
	if stored := f.store.Property(p.ID); !stored.IsAvailable || stored.ActiveBooking != nil {
		t.Error("cancelling the active booking should free the property")
	}
	assertInvariants(t, f.store)
}

func TestReset_Scenarios(t *testing.T) {
	tests := []struct {
		name          string
		now           time.Time
		wantCode      string
		wantAvailable bool
		wantStatus    model.BookingStatus
	}{
		{"before end date", end.Add(-time.Second), apperrors.CodeTooEarly, false, model.BookingAccepted},
		{"exactly at end date", end, "", true, model.BookingCompleted},
		{"after end date", end.Add(48 * time.Hour), "", true, model.BookingCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.property()
			b := f.request(t, renterA, p.ID)
			if _, err := f.accept(b.ID); err != nil {
				t.Fatalf("accept: %v", err)
			}

			f.clock.Set(tt.now)
			view, err := f.svc.ResetAvailability(context.Background(), owner, p.ID)

			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("expected %s, got %v", tt.wantCode, err)
				}
			} else {
				if err != nil {
					t.Fatalf("reset: %v", err)
				}
				if view.Status != model.StatusAvailable || view.ActiveBooking != nil {
					t.Errorf("unexpected view %+v", view)
				}
			}

			stored := f.store.Property(p.ID)
			if stored.IsAvailable != tt.wantAvailable {
				t.Errorf("is_available = %v, want %v", stored.IsAvailable, tt.wantAvailable)
			}
			if got := f.store.Booking(b.ID).Status; got != tt.wantStatus {
				t.Errorf("booking status = %q, want %q", got, tt.wantStatus)
			}
			assertInvariants(t, f.store)
		})
	}
}

func TestReset_Idempotent(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b := f.request(t, renterA, p.ID)
	if _, err := f.accept(b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	f.clock.Set(end.Add(time.Hour))

	if _, err := f.svc.ResetAvailability(context.Background(), owner, p.ID); err != nil {
		t.Fatalf("first reset: %v", err)
	}
	first := f.store.Property(p.ID)
	events := len(f.publisher.types())

	f.clock.Set(end.Add(2 * time.Hour))
	view, err := f.svc.ResetAvailability(context.Background(), owner, p.ID)
	if err != nil {
		t.Fatalf("second reset: %v", err)
	}
	if view.Status != model.StatusAvailable {
		t.Errorf("status = %q", view.Status)
	}

	second := f.store.Property(p.ID)
	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Error("second reset should not write the property")
	}
	if got := len(f.publisher.types()); got != events {
		t.Errorf("second reset published %d events", got-events)
	}
	if got := f.store.Booking(b.ID).Status; got != model.BookingCompleted {
		t.Errorf("booking status = %q", got)
	}
}

func TestReset_KeepsSettledStatus(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b := f.request(t, renterA, p.ID)
	if _, err := f.accept(b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := f.svc.UpdateStatus(context.Background(), owner, b.ID, &model.BookingStatusUpdate{Status: model.BookingRejected}); err != nil {
		t.Fatalf("reject: %v", err)
	}

	f.clock.Set(end)
	if _, err := f.svc.ResetAvailability(context.Background(), owner, p.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := f.store.Booking(b.ID).Status; got != model.BookingRejected {
		t.Errorf("settled booking rewritten to %q", got)
	}
	if !f.store.Property(p.ID).IsAvailable {
		t.Error("property should be free")
	}
}

func TestReset_DanglingBookingFreesProperty(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b := f.request(t, renterA, p.ID)
	if _, err := f.accept(b.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	f.store.DeleteBooking(b.ID)

	if _, err := f.svc.ResetAvailability(context.Background(), owner, p.ID); err != nil {
		t.Fatalf("reset: %v", err)
	}
	stored := f.store.Property(p.ID)
	if !stored.IsAvailable || stored.ActiveBooking != nil || stored.BookedBy != nil {
		t.Errorf("property not freed: %+v", stored)
	}
}

func TestReset_NotOwner(t *testing.T) {
	f := newFixture(t)
	p := f.property()

	for _, actor := range []model.Actor{stranger, renterA, {ID: owner.ID, Role: model.RoleRenter}} {
		if _, err := f.svc.ResetAvailability(context.Background(), actor, p.ID); !apperrors.HasCode(err, apperrors.CodeNotFound) {
			t.Errorf("%+v: expected not found, got %v", actor, err)
		}
	}
	if _, err := f.svc.ResetAvailability(context.Background(), owner, "65f1a2b3c4d5e6f708192a3b"); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("expected not found for missing property, got %v", err)
	}
}

func TestGetByID_Visibility(t *testing.T) {
	f := newFixture(t)
	p := f.property()
	b := f.request(t, renterA, p.ID)

	tests := []struct {
		name    string
		actor   model.Actor
		wantErr string
	}{
		{"renter", renterA, ""},
		{"owner", owner, ""},
		{"other renter", renterB, apperrors.CodeForbidden},
		{"other owner", stranger, apperrors.CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.GetByID(context.Background(), tt.actor, b.ID)
			if tt.wantErr == "" {
				if err != nil || got.ID != b.ID {
					t.Fatalf("got %v, %v", got, err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.wantErr) {
				t.Errorf("expected %s, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	mine := f.property()
	theirs := f.store.PutProperty(&model.Property{Owner: stranger.ID, Title: "Other", IsAvailable: true})

	f.request(t, renterA, mine.ID)
	f.request(t, renterB, mine.ID)
	f.request(t, renterA, theirs.ID)

	bookings, total, err := f.svc.GetMine(context.Background(), renterA, 10, 0)
	if err != nil {
		t.Fatalf("mine: %v", err)
	}
	if total != 2 || len(bookings) != 2 {
		t.Errorf("renter A: got %d of %d, want 2 of 2", len(bookings), total)
	}

	incoming, total, err := f.svc.GetIncoming(context.Background(), owner, 1, 0)
	if err != nil {
		t.Fatalf("incoming: %v", err)
	}
	if total != 2 || len(incoming) != 1 {
		t.Errorf("incoming: got %d of %d, want 1 of 2", len(incoming), total)
	}
	for _, b := range incoming {
		if b.Property != mine.ID {
			t.Errorf("incoming booking %s belongs to %s", b.ID, b.Property)
		}
	}

	if _, _, err := f.svc.GetIncoming(context.Background(), renterA, 10, 0); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("expected forbidden for renter, got %v", err)
	}

	none, total, err := f.svc.GetIncoming(context.Background(), model.Actor{ID: "owner-9", Role: model.RoleOwner}, 10, 0)
	if err != nil || total != 0 || len(none) != 0 {
		t.Errorf("owner without properties: %v %d %v", none, total, err)
	}
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("broker down")
	p := f.property()

	b := f.request(t, renterA, p.ID)
	if _, err := f.accept(b.ID); err != nil {
		t.Fatalf("accept should commit even when publishing fails: %v", err)
	}
	if f.store.Property(p.ID).IsAvailable {
		t.Error("property should be booked")
	}
}
