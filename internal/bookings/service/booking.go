package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentals/internal/availability"
	bookingserrors "rentals/internal/bookings/errors"
	"rentals/internal/bookings/repository"
	"rentals/internal/bookings/validator"
	"rentals/internal/events"
	propertieserrors "rentals/internal/properties/errors"
	propertiesrepo "rentals/internal/properties/repository"
	"rentals/pkg/clock"
	"rentals/pkg/config"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/model"
	"rentals/pkg/sanitizer"
	"rentals/pkg/validation"
)

type BookingService interface {
	Create(ctx context.Context, actor model.Actor, input *model.BookingCreate) (*model.Booking, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	GetMine(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error)
	GetIncoming(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error)

	// UpdateStatus applies any target status. Accepting books the property and
	// rejects every other pending request on it in the same transaction.
	UpdateStatus(ctx context.Context, actor model.Actor, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
	// Cancel lets the renter who made a booking cancel it.
	Cancel(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	// ResetAvailability frees a property whose active booking has ended.
	ResetAvailability(ctx context.Context, actor model.Actor, propertyID string) (*model.PropertyView, error)
}

type Option func(*bookingService)

func WithClock(c clock.Clock) Option {
	return func(s *bookingService) {
		s.clock = c
	}
}

type bookingService struct {
	repo       repository.BookingRepository
	properties propertiesrepo.PropertyRepository
	validator  *validator.BookingValidator
	publisher  events.Publisher
	cfg        *config.Config
	clock      clock.Clock
}

func NewBookingService(
	repo repository.BookingRepository,
	properties propertiesrepo.PropertyRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
	opts ...Option,
) BookingService {
	s := &bookingService{
		repo:       repo,
		properties: properties,
		validator:  validator,
		publisher:  publisher,
		cfg:        cfg,
		clock:      clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *bookingService) Create(ctx context.Context, actor model.Actor, input *model.BookingCreate) (*model.Booking, error) {
	if actor.Role != model.RoleRenter {
		return nil, apperrors.Forbidden("Only renters can request bookings")
	}

	input.Message = sanitizer.TrimMultiline(input.Message)
	if err := s.validator.Validate(input); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "user", actor.ID, "error", err)
		return nil, validationError("Booking validation failed", err)
	}

	property, err := s.findProperty(ctx, input.Property)
	if err != nil {
		return nil, err
	}
	if !property.IsAvailable {
		return nil, apperrors.PropertyUnavailable("Property is not available for booking")
	}

	now := s.clock.Now()
	booking := &model.Booking{
		User:      actor.ID,
		Property:  property.ID,
		StartDate: input.StartDate.UTC(),
		EndDate:   input.EndDate.UTC(),
		Status:    model.BookingPending,
		Message:   input.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to create booking", "property", property.ID, "user", actor.ID, "error", err)
		return nil, apperrors.Storage("create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"property", booking.Property,
		"user", booking.User,
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
	)
	s.publish(ctx, &model.BookingEvent{
		Type:       model.EventBookingCreated,
		BookingID:  booking.ID,
		PropertyID: booking.Property,
		ActorID:    actor.ID,
		ToStatus:   booking.Status,
		OccurredAt: now,
	})
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	booking, err := s.findBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID == booking.User {
		return booking, nil
	}

	property, err := s.properties.FindByID(ctx, booking.Property)
	if err != nil && !isMissingProperty(err) {
		s.cfg.Log.Error("Failed to load booking property", "id", id, "property", booking.Property, "error", err)
		return nil, apperrors.Storage("find property", err)
	}
	if err != nil || !actor.Owns(property) {
		return nil, apperrors.Forbidden("Booking is visible only to its renter and the property owner")
	}
	return booking, nil
}

func (s *bookingService) GetMine(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
	count := func(ctx context.Context) (int64, error) {
		return s.repo.CountByUser(ctx, actor.ID)
	}
	find := func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
		return s.repo.FindByUser(ctx, actor.ID, limit, offset)
	}
	return s.list(ctx, limit, offset, count, find)
}

func (s *bookingService) GetIncoming(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
	if actor.Role != model.RoleOwner {
		return nil, 0, apperrors.Forbidden("Only owners receive booking requests")
	}

	propertyIDs, err := s.properties.ListIDsByOwner(ctx, actor.ID)
	if err != nil {
		s.cfg.Log.Error("Failed to list owner properties", "owner", actor.ID, "error", err)
		return nil, 0, apperrors.Storage("list owner properties", err)
	}
	if len(propertyIDs) == 0 {
		return []*model.Booking{}, 0, nil
	}

	count := func(ctx context.Context) (int64, error) {
		return s.repo.CountByProperties(ctx, propertyIDs)
	}
	find := func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
		return s.repo.FindByProperties(ctx, propertyIDs, limit, offset)
	}
	return s.list(ctx, limit, offset, count, find)
}

func (s *bookingService) list(
	ctx context.Context,
	limit int,
	offset int64,
	count func(ctx context.Context) (int64, error),
	find func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error),
) ([]*model.Booking, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var total int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Storage("count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = find(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings",
				"limit", limit,
				"offset", offset,
				"error", errFind,
			)
			errFind = apperrors.Storage("list bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, total, nil
}

func (s *bookingService) UpdateStatus(ctx context.Context, actor model.Actor, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	if err := s.validator.ValidateStatus(update); err != nil {
		s.cfg.Log.Warn("Booking status validation failed", "id", id, "error", err)
		return nil, validationError("Invalid booking status", err)
	}

	var before, after *model.Booking
	var rejected []string
	var now time.Time

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		// The driver may rerun this callback on a transient conflict.
		before, after, rejected = nil, nil, nil
		now = s.clock.Now()

		booking, err := s.findBooking(txCtx, id)
		if err != nil {
			return err
		}
		property, err := s.findProperty(txCtx, booking.Property)
		if err != nil {
			return err
		}
		if !actor.Owns(property) {
			return apperrors.Forbidden("Only the property owner can change a booking's status")
		}

		if update.Status == model.BookingAccepted {
			if _, err := s.properties.MarkBooked(txCtx, property.ID, booking.ID, booking.User, now); err != nil {
				if errors.Is(err, propertieserrors.ErrNotAvailable) {
					return apperrors.PropertyUnavailable("Property already has an active booking")
				}
				return apperrors.Storage("mark property booked", err)
			}
		}

		after, err = s.repo.UpdateStatus(txCtx, booking.ID, update.Status, now)
		if err != nil {
			return s.bookingError(booking.ID, "update booking status", err)
		}

		switch update.Status {
		case model.BookingAccepted:
			rejected, err = s.repo.RejectPendingExcept(txCtx, property.ID, booking.ID, now)
			if err != nil {
				return apperrors.Storage("reject competing bookings", err)
			}
		case model.BookingCancelled:
			if _, err := s.properties.ReleaseIfActive(txCtx, property.ID, booking.ID, now); err != nil {
				return apperrors.Storage("release property", err)
			}
		}

		before = booking
		return nil
	})
	if err != nil {
		err = transactionError(err)
		s.logFailure("Failed to update booking status", err, "id", id, "status", update.Status, "actor", actor.ID)
		return nil, err
	}

	s.cfg.Log.Info("Booking status updated successfully",
		"id", after.ID,
		"property", after.Property,
		"from", before.Status,
		"to", after.Status,
		"auto_rejected", len(rejected),
	)

	event := &model.BookingEvent{
		Type:       model.EventBookingStatusSet,
		BookingID:  after.ID,
		PropertyID: after.Property,
		ActorID:    actor.ID,
		FromStatus: before.Status,
		ToStatus:   after.Status,
		OccurredAt: now,
	}
	switch after.Status {
	case model.BookingAccepted:
		event.Type = model.EventBookingAccepted
		event.RejectedIDs = rejected
	case model.BookingCancelled:
		event.Type = model.EventBookingCancelled
	}
	s.publish(ctx, event)
	for _, rejectedID := range rejected {
		s.publish(ctx, &model.BookingEvent{
			Type:       model.EventBookingAutoRejected,
			BookingID:  rejectedID,
			PropertyID: after.Property,
			ActorID:    actor.ID,
			FromStatus: model.BookingPending,
			ToStatus:   model.BookingRejected,
			OccurredAt: now,
		})
	}

	return after, nil
}

func (s *bookingService) Cancel(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	var before, after *model.Booking
	var released bool
	var now time.Time

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		before, after, released = nil, nil, false
		now = s.clock.Now()

		booking, err := s.findBooking(txCtx, id)
		if err != nil {
			return err
		}
		if booking.User != actor.ID {
			return apperrors.Forbidden("Only the renter who made the booking can cancel it")
		}

		after, err = s.repo.UpdateStatus(txCtx, booking.ID, model.BookingCancelled, now)
		if err != nil {
			return s.bookingError(booking.ID, "cancel booking", err)
		}

		released, err = s.properties.ReleaseIfActive(txCtx, booking.Property, booking.ID, now)
		if err != nil && !errors.Is(err, propertieserrors.ErrInvalidID) {
			return apperrors.Storage("release property", err)
		}

		before = booking
		return nil
	})
	if err != nil {
		err = transactionError(err)
		s.logFailure("Failed to cancel booking", err, "id", id, "actor", actor.ID)
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled by renter",
		"id", after.ID,
		"property", after.Property,
		"from", before.Status,
		"property_released", released,
	)
	s.publish(ctx, &model.BookingEvent{
		Type:       model.EventBookingCancelled,
		BookingID:  after.ID,
		PropertyID: after.Property,
		ActorID:    actor.ID,
		FromStatus: before.Status,
		ToStatus:   after.Status,
		OccurredAt: now,
	})
	return after, nil
}

func (s *bookingService) ResetAvailability(ctx context.Context, actor model.Actor, propertyID string) (*model.PropertyView, error) {
	var freed *model.Property
	var event *model.BookingEvent
	var now time.Time

	err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
		freed, event = nil, nil
		now = s.clock.Now()

		property, err := s.findProperty(txCtx, propertyID)
		if err != nil {
			return err
		}
		// Other owners get the same answer as for a missing property.
		if !actor.Owns(property) {
			return apperrors.NotFoundWithID("Property", propertyID)
		}

		activeID := property.ActiveBookingID()
		if activeID == "" && property.IsAvailable && property.BookedBy == nil {
			freed = property
			return nil
		}

		event = &model.BookingEvent{
			Type:       model.EventPropertyReset,
			BookingID:  activeID,
			PropertyID: property.ID,
			ActorID:    actor.ID,
			OccurredAt: now,
		}

		if activeID != "" {
			booking, err := s.repo.FindByID(txCtx, activeID)
			switch {
			case err == nil:
				if !availability.HasEnded(booking, now) {
					return apperrors.TooEarly(fmt.Sprintf(
						"Booking %s ends at %s",
						booking.ID,
						booking.EndDate.Format(time.RFC3339),
					))
				}
				event.FromStatus, event.ToStatus = booking.Status, booking.Status
				if !booking.Status.IsSettled() {
					if _, err := s.repo.UpdateStatus(txCtx, booking.ID, model.BookingCompleted, now); err != nil {
						return s.bookingError(booking.ID, "complete booking", err)
					}
					event.ToStatus = model.BookingCompleted
				}
			case errors.Is(err, bookingserrors.ErrNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
				s.cfg.Log.Warn("Active booking missing, freeing property",
					"property", property.ID,
					"booking", activeID,
				)
			default:
				return apperrors.Storage("find active booking", err)
			}
		}

		if err := s.properties.Release(txCtx, property.ID, now); err != nil {
			if errors.Is(err, propertieserrors.ErrNotFound) {
				return apperrors.NotFoundWithID("Property", propertyID)
			}
			return apperrors.Storage("release property", err)
		}

		freed, err = s.findProperty(txCtx, property.ID)
		return err
	})
	if err != nil {
		err = transactionError(err)
		s.logFailure("Failed to reset property availability", err, "property", propertyID, "actor", actor.ID)
		return nil, err
	}

	if event == nil {
		s.cfg.Log.Debug("Property already available, reset skipped", "property", propertyID)
	} else {
		s.cfg.Log.Info("Property availability reset",
			"property", propertyID,
			"booking", event.BookingID,
			"booking_status", event.ToStatus,
		)
		s.publish(ctx, event)
	}

	return availability.View(freed, nil, actor, now), nil
}

func (s *bookingService) findBooking(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.bookingError(id, "find booking", err)
	}
	return booking, nil
}

func (s *bookingService) bookingError(id string, operation string, err error) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	return apperrors.Storage(operation, err)
}

func (s *bookingService) findProperty(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	property, err := s.properties.FindByID(ctx, id)
	if err != nil {
		if isMissingProperty(err) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		return nil, apperrors.Storage("find property", err)
	}
	return property, nil
}

// isMissingProperty treats malformed references like deleted ones.
func isMissingProperty(err error) bool {
	return errors.Is(err, propertieserrors.ErrNotFound) || errors.Is(err, propertieserrors.ErrInvalidID)
}

func (s *bookingService) publish(ctx context.Context, event *model.BookingEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to publish lifecycle event",
			"event_type", event.Type,
			"booking_id", event.BookingID,
			"property_id", event.PropertyID,
			"error", err,
		)
	}
}

func (s *bookingService) logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if appErr := apperrors.AsAppError(err); appErr.HTTPStatus >= 500 {
		s.cfg.Log.Error(msg, args...)
		return
	}
	s.cfg.Log.Warn(msg, args...)
}

// transactionError keeps AppErrors from the callback and reports anything
// else, such as a failed commit, as a storage failure.
func transactionError(err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Storage("commit transaction", err)
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.AppError(message)
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
