// Package storetest provides in-memory property and booking repositories that
// share one transactional store. Transactions are serialised and roll back
// every change made by a failing callback.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	bookingserrors "rentals/internal/bookings/errors"
	bookingsrepo "rentals/internal/bookings/repository"
	propertieserrors "rentals/internal/properties/errors"
	propertiesrepo "rentals/internal/properties/repository"
	mongotx "rentals/pkg/db/mongo"
	"rentals/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type txKey struct{}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	properties map[string]*model.Property
	bookings   map[string]*model.Booking
	failures   map[string]error
	seq        int64

	transactions int
}

func New() *Store {
	return &Store{
		properties: map[string]*model.Property{},
		bookings:   map[string]*model.Booking{},
		failures:   map[string]error{},
	}
}

func (s *Store) Properties() propertiesrepo.PropertyRepository {
	return &propertyRepo{store: s}
}

func (s *Store) Bookings() bookingsrepo.BookingRepository {
	return &bookingRepo{store: s}
}

// FailOn makes the named repository operation return err until cleared with a nil err.
func (s *Store) FailOn(operation string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, operation)
		return
	}
	s.failures[operation] = err
}

// Transactions returns how many transactions committed.
func (s *Store) Transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions
}

// Property returns a copy of the stored property, or nil.
func (s *Store) Property(id string) *model.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyProperty(s.properties[id])
}

// Booking returns a copy of the stored booking, or nil.
func (s *Store) Booking(id string) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyBooking(s.bookings[id])
}

// PutProperty stores p as-is, assigning an id when it has none.
func (s *Store) PutProperty(p *model.Property) *model.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = primitive.NewObjectID().Hex()
	}
	s.properties[p.ID] = copyProperty(p)
	return p
}

// PutBooking stores b as-is, assigning an id when it has none.
func (s *Store) PutBooking(b *model.Booking) *model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = primitive.NewObjectID().Hex()
	}
	s.bookings[b.ID] = copyBooking(b)
	return b
}

func (s *Store) DeleteBooking(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bookings, id)
}

func (s *Store) AllBookings() []*model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, copyBooking(b))
	}
	sortBookings(out)
	return out
}

func (s *Store) AllProperties() []*model.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Property, 0, len(s.properties))
	for _, p := range s.properties {
		out = append(out, copyProperty(p))
	}
	sortProperties(out)
	return out
}

func (s *Store) executeTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	if inTransaction(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	properties, bookings := s.snapshot()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.properties, s.bookings = properties, bookings
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.transactions++
	s.mu.Unlock()
	return nil
}

func inTransaction(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// write runs fn under the store lock. Writes outside a transaction wait for
// any running transaction so a rollback never discards them.
func (s *Store) write(ctx context.Context, operation string, fn func() error) error {
	if !inTransaction(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	return s.read(operation, fn)
}

func (s *Store) read(operation string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failures[operation]; err != nil {
		return err
	}
	return fn()
}

func (s *Store) snapshot() (map[string]*model.Property, map[string]*model.Booking) {
	properties := make(map[string]*model.Property, len(s.properties))
	for id, p := range s.properties {
		properties[id] = copyProperty(p)
	}
	bookings := make(map[string]*model.Booking, len(s.bookings))
	for id, b := range s.bookings {
		bookings[id] = copyBooking(b)
	}
	return properties, bookings
}

func (s *Store) nextCreatedAt(t time.Time) time.Time {
	s.seq++
	if t.IsZero() {
		return time.Unix(0, 0).UTC().Add(time.Duration(s.seq) * time.Millisecond)
	}
	return t
}

func copyProperty(p *model.Property) *model.Property {
	if p == nil {
		return nil
	}
	c := *p
	if p.BookedBy != nil {
		v := *p.BookedBy
		c.BookedBy = &v
	}
	if p.ActiveBooking != nil {
		v := *p.ActiveBooking
		c.ActiveBooking = &v
	}
	return &c
}

func copyBooking(b *model.Booking) *model.Booking {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func sortProperties(ps []*model.Property) {
	sort.Slice(ps, func(i, j int) bool {
		if !ps[i].CreatedAt.Equal(ps[j].CreatedAt) {
			return ps[i].CreatedAt.After(ps[j].CreatedAt)
		}
		return ps[i].ID > ps[j].ID
	})
}

func sortBookings(bs []*model.Booking) {
	sort.Slice(bs, func(i, j int) bool {
		if !bs[i].CreatedAt.Equal(bs[j].CreatedAt) {
			return bs[i].CreatedAt.After(bs[j].CreatedAt)
		}
		return bs[i].ID > bs[j].ID
	})
}

func paginate[T any](items []T, limit int, offset int64) []T {
	if offset >= int64(len(items)) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func checkPropertyID(id string) error {
	if !primitive.IsValidObjectID(id) {
		return fmt.Errorf("%w: %s", propertieserrors.ErrInvalidID, id)
	}
	return nil
}

func checkBookingID(id string) error {
	if !primitive.IsValidObjectID(id) {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return nil
}
