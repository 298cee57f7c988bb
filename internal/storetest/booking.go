package storetest

import (
	"context"
	"time"

	bookingserrors "rentals/internal/bookings/errors"
	mongotx "rentals/pkg/db/mongo"
	"rentals/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookingRepo struct {
	store *Store
}

func (r *bookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	return r.store.write(ctx, "Booking.Create", func() error {
		booking.ID = primitive.NewObjectID().Hex()
		booking.CreatedAt = r.store.nextCreatedAt(booking.CreatedAt)
		r.store.bookings[booking.ID] = copyBooking(booking)
		return nil
	})
}

func (r *bookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if err := checkBookingID(id); err != nil {
		return nil, err
	}
	var out *model.Booking
	err := r.store.read("Booking.FindByID", func() error {
		b, ok := r.store.bookings[id]
		if !ok {
			return bookingserrors.ErrNotFound
		}
		out = copyBooking(b)
		return nil
	})
	return out, err
}

func (r *bookingRepo) filter(operation string, match func(*model.Booking) bool) ([]*model.Booking, error) {
	var out []*model.Booking
	err := r.store.read(operation, func() error {
		out = []*model.Booking{}
		for _, b := range r.store.bookings {
			if match(b) {
				out = append(out, copyBooking(b))
			}
		}
		sortBookings(out)
		return nil
	})
	return out, err
}

func (r *bookingRepo) FindByIDs(ctx context.Context, ids []string) ([]*model.Booking, error) {
	wanted := toSet(ids)
	return r.filter("Booking.FindByIDs", func(b *model.Booking) bool { return wanted[b.ID] })
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus, now time.Time) (*model.Booking, error) {
	if err := checkBookingID(id); err != nil {
		return nil, err
	}
	var out *model.Booking
	err := r.store.write(ctx, "Booking.UpdateStatus", func() error {
		b, ok := r.store.bookings[id]
		if !ok {
			return bookingserrors.ErrNotFound
		}
		b.Status = status
		b.UpdatedAt = now
		out = copyBooking(b)
		return nil
	})
	return out, err
}

func (r *bookingRepo) RejectPendingExcept(ctx context.Context, propertyID string, keepID string, now time.Time) ([]string, error) {
	var rejected []string
	err := r.store.write(ctx, "Booking.RejectPendingExcept", func() error {
		rejected = []string{}
		for _, b := range r.store.bookings {
			if b.Property != propertyID || b.ID == keepID || b.Status != model.BookingPending {
				continue
			}
			b.Status = model.BookingRejected
			b.UpdatedAt = now
			rejected = append(rejected, b.ID)
		}
		return nil
	})
	return rejected, err
}

func (r *bookingRepo) FindByUser(ctx context.Context, user string, limit int, offset int64) ([]*model.Booking, error) {
	mine, err := r.filter("Booking.FindByUser", func(b *model.Booking) bool { return b.User == user })
	if err != nil {
		return nil, err
	}
	return paginate(mine, limit, offset), nil
}

func (r *bookingRepo) CountByUser(ctx context.Context, user string) (int64, error) {
	mine, err := r.filter("Booking.CountByUser", func(b *model.Booking) bool { return b.User == user })
	return int64(len(mine)), err
}

func (r *bookingRepo) FindByProperties(ctx context.Context, propertyIDs []string, limit int, offset int64) ([]*model.Booking, error) {
	wanted := toSet(propertyIDs)
	incoming, err := r.filter("Booking.FindByProperties", func(b *model.Booking) bool { return wanted[b.Property] })
	if err != nil {
		return nil, err
	}
	return paginate(incoming, limit, offset), nil
}

func (r *bookingRepo) CountByProperties(ctx context.Context, propertyIDs []string) (int64, error) {
	wanted := toSet(propertyIDs)
	incoming, err := r.filter("Booking.CountByProperties", func(b *model.Booking) bool { return wanted[b.Property] })
	return int64(len(incoming)), err
}

func (r *bookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.store.executeTransaction(ctx, fn)
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
