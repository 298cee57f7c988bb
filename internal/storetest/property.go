package storetest

import (
	"context"
	"fmt"
	"time"

	propertieserrors "rentals/internal/properties/errors"
	mongotx "rentals/pkg/db/mongo"
	"rentals/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type propertyRepo struct {
	store *Store
}

func (r *propertyRepo) Create(ctx context.Context, property *model.Property) error {
	return r.store.write(ctx, "Property.Create", func() error {
		property.ID = primitive.NewObjectID().Hex()
		property.CreatedAt = r.store.nextCreatedAt(property.CreatedAt)
		r.store.properties[property.ID] = copyProperty(property)
		return nil
	})
}

func (r *propertyRepo) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if err := checkPropertyID(id); err != nil {
		return nil, err
	}
	var out *model.Property
	err := r.store.read("Property.FindByID", func() error {
		p, ok := r.store.properties[id]
		if !ok {
			return propertieserrors.ErrNotFound
		}
		out = copyProperty(p)
		return nil
	})
	return out, err
}

func (r *propertyRepo) filter(operation string, match func(*model.Property) bool) ([]*model.Property, error) {
	var out []*model.Property
	err := r.store.read(operation, func() error {
		out = []*model.Property{}
		for _, p := range r.store.properties {
			if match(p) {
				out = append(out, copyProperty(p))
			}
		}
		sortProperties(out)
		return nil
	})
	return out, err
}

func (r *propertyRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Property, error) {
	all, err := r.filter("Property.FindAll", func(*model.Property) bool { return true })
	if err != nil {
		return nil, err
	}
	return paginate(all, limit, offset), nil
}

func (r *propertyRepo) Count(ctx context.Context) (int64, error) {
	all, err := r.filter("Property.Count", func(*model.Property) bool { return true })
	return int64(len(all)), err
}

func (r *propertyRepo) FindByOwner(ctx context.Context, owner string, limit int, offset int64) ([]*model.Property, error) {
	mine, err := r.filter("Property.FindByOwner", func(p *model.Property) bool { return p.Owner == owner })
	if err != nil {
		return nil, err
	}
	return paginate(mine, limit, offset), nil
}

func (r *propertyRepo) CountByOwner(ctx context.Context, owner string) (int64, error) {
	mine, err := r.filter("Property.CountByOwner", func(p *model.Property) bool { return p.Owner == owner })
	return int64(len(mine)), err
}

func (r *propertyRepo) ListIDsByOwner(ctx context.Context, owner string) ([]string, error) {
	mine, err := r.filter("Property.ListIDsByOwner", func(p *model.Property) bool { return p.Owner == owner })
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(mine))
	for _, p := range mine {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

func (r *propertyRepo) UpdateDetails(ctx context.Context, id string, update *model.PropertyUpdate, now time.Time) (*model.Property, error) {
	if err := checkPropertyID(id); err != nil {
		return nil, err
	}
	var out *model.Property
	err := r.store.write(ctx, "Property.UpdateDetails", func() error {
		p, ok := r.store.properties[id]
		if !ok {
			return propertieserrors.ErrNotFound
		}
		if update.Title != nil {
			p.Title = *update.Title
		}
		if update.Description != nil {
			p.Description = *update.Description
		}
		if update.City != nil {
			p.City = *update.City
		}
		if update.Address != nil {
			p.Address = *update.Address
		}
		if update.PricePerNight != nil {
			p.PricePerNight = *update.PricePerNight
		}
		if update.Bedrooms != nil {
			p.Bedrooms = *update.Bedrooms
		}
		if update.ContactPhone != nil {
			p.ContactPhone = *update.ContactPhone
		}
		p.UpdatedAt = now
		out = copyProperty(p)
		return nil
	})
	return out, err
}

func (r *propertyRepo) Delete(ctx context.Context, id string) error {
	if err := checkPropertyID(id); err != nil {
		return err
	}
	return r.store.write(ctx, "Property.Delete", func() error {
		if _, ok := r.store.properties[id]; !ok {
			return propertieserrors.ErrNotFound
		}
		delete(r.store.properties, id)
		return nil
	})
}

func (r *propertyRepo) MarkBooked(ctx context.Context, id string, bookingID string, userID string, now time.Time) (*model.Property, error) {
	if err := checkPropertyID(id); err != nil {
		return nil, err
	}
	var out *model.Property
	err := r.store.write(ctx, "Property.MarkBooked", func() error {
		p, ok := r.store.properties[id]
		if !ok {
			return fmt.Errorf("%w: %s", propertieserrors.ErrNotAvailable, id)
		}
		free := p.ActiveBooking == nil && p.IsAvailable
		if !free && p.ActiveBookingID() != bookingID {
			return fmt.Errorf("%w: %s", propertieserrors.ErrNotAvailable, id)
		}
		booking, user := bookingID, userID
		p.IsAvailable = false
		p.ActiveBooking = &booking
		p.BookedBy = &user
		p.UpdatedAt = now
		out = copyProperty(p)
		return nil
	})
	return out, err
}

func (r *propertyRepo) ReleaseIfActive(ctx context.Context, id string, bookingID string, now time.Time) (bool, error) {
	if err := checkPropertyID(id); err != nil {
		return false, err
	}
	released := false
	err := r.store.write(ctx, "Property.ReleaseIfActive", func() error {
		p, ok := r.store.properties[id]
		if !ok || p.ActiveBookingID() != bookingID {
			return nil
		}
		release(p, now)
		released = true
		return nil
	})
	return released, err
}

func (r *propertyRepo) Release(ctx context.Context, id string, now time.Time) error {
	if err := checkPropertyID(id); err != nil {
		return err
	}
	return r.store.write(ctx, "Property.Release", func() error {
		p, ok := r.store.properties[id]
		if !ok {
			return propertieserrors.ErrNotFound
		}
		release(p, now)
		return nil
	})
}

func release(p *model.Property, now time.Time) {
	p.IsAvailable = true
	p.ActiveBooking = nil
	p.BookedBy = nil
	p.UpdatedAt = now
}

func (r *propertyRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.store.executeTransaction(ctx, fn)
}
