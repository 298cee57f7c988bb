package service

import (
	"context"
	"errors"
	"sync"

	"rentals/internal/availability"
	propertieserrors "rentals/internal/properties/errors"
	"rentals/internal/properties/repository"
	"rentals/internal/properties/validator"
	"rentals/pkg/clock"
	"rentals/pkg/config"
	apperrors "rentals/pkg/errors"
	"rentals/pkg/model"
	"rentals/pkg/sanitizer"
	"rentals/pkg/validation"
)

type PropertyService interface {
	Create(ctx context.Context, actor model.Actor, input *model.PropertyCreate) (*model.PropertyView, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.PropertyView, error)
	GetAll(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.PropertyView, int64, error)
	GetMine(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.PropertyView, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, updates *model.PropertyUpdate) (*model.PropertyView, error)
	Delete(ctx context.Context, actor model.Actor, id string) error
}

// BookingLookup resolves the active bookings that property reads project from.
type BookingLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]*model.Booking, error)
}

type Option func(*propertyService)

func WithClock(c clock.Clock) Option {
	return func(s *propertyService) {
		s.clock = c
	}
}

type propertyService struct {
	repo      repository.PropertyRepository
	bookings  BookingLookup
	validator *validator.PropertyValidator
	cfg       *config.Config
	clock     clock.Clock
}

func NewPropertyService(
	repo repository.PropertyRepository,
	bookings BookingLookup,
	validator *validator.PropertyValidator,
	cfg *config.Config,
	opts ...Option,
) PropertyService {
	s := &propertyService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
		clock:     clock.NewSystem(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *propertyService) Create(ctx context.Context, actor model.Actor, input *model.PropertyCreate) (*model.PropertyView, error) {
	if actor.Role != model.RoleOwner {
		return nil, apperrors.Forbidden("Only owners can list properties")
	}

	s.sanitize(input)
	if err := s.validator.Validate(input); err != nil {
		s.cfg.Log.Warn("Property validation failed", "owner", actor.ID, "error", err)
		return nil, validationError("Property validation failed", err)
	}

	now := s.clock.Now()
	property := &model.Property{
		Owner:         actor.ID,
		Title:         input.Title,
		Description:   input.Description,
		City:          input.City,
		Address:       input.Address,
		PricePerNight: input.PricePerNight,
		Bedrooms:      input.Bedrooms,
		ContactPhone:  input.ContactPhone,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.cfg.Log.Error("Failed to create property", "owner", actor.ID, "error", err)
		return nil, apperrors.Storage("create property", err)
	}

	s.cfg.Log.Info("Property created successfully",
		"id", property.ID,
		"owner", property.Owner,
		"city", property.City,
	)
	return availability.View(property, nil, actor, now), nil
}

func (s *propertyService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.PropertyView, error) {
	property, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	views, err := s.views(ctx, actor, []*model.Property{property})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *propertyService) GetAll(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.PropertyView, int64, error) {
	return s.list(ctx, actor, limit, offset, s.repo.Count, s.repo.FindAll)
}

func (s *propertyService) GetMine(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.PropertyView, int64, error) {
	if actor.Role != model.RoleOwner {
		return nil, 0, apperrors.Forbidden("Only owners have properties")
	}

	count := func(ctx context.Context) (int64, error) {
		return s.repo.CountByOwner(ctx, actor.ID)
	}
	find := func(ctx context.Context, limit int, offset int64) ([]*model.Property, error) {
		return s.repo.FindByOwner(ctx, actor.ID, limit, offset)
	}
	return s.list(ctx, actor, limit, offset, count, find)
}

func (s *propertyService) list(
	ctx context.Context,
	actor model.Actor,
	limit int,
	offset int64,
	count func(ctx context.Context) (int64, error),
	find func(ctx context.Context, limit int, offset int64) ([]*model.Property, error),
) ([]*model.PropertyView, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var total int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count properties", "error", errCount)
			errCount = apperrors.Storage("count properties", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		properties, errFind = find(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list properties",
				"limit", limit,
				"offset", offset,
				"error", errFind,
			)
			errFind = apperrors.Storage("list properties", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	views, err := s.views(ctx, actor, properties)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *propertyService) Update(ctx context.Context, actor model.Actor, id string, updates *model.PropertyUpdate) (*model.PropertyView, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Owns(existing) {
		return nil, apperrors.Forbidden("Only the owner can update this property")
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Property update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	updated, err := s.repo.UpdateDetails(ctx, id, updates, s.clock.Now())
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		s.cfg.Log.Error("Failed to update property", "id", id, "error", err)
		return nil, apperrors.Storage("update property", err)
	}

	s.cfg.Log.Info("Property updated successfully", "id", id)
	views, err := s.views(ctx, actor, []*model.Property{updated})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Delete removes the property whatever its booking state. Its bookings stay
// and read as pointing at a missing property.
func (s *propertyService) Delete(ctx context.Context, actor model.Actor, id string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(existing) {
		return apperrors.Forbidden("Only the owner can delete this property")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Property", id)
		}
		s.cfg.Log.Error("Failed to delete property", "id", id, "error", err)
		return apperrors.Storage("delete property", err)
	}

	s.cfg.Log.Info("Property deleted successfully",
		"id", id,
		"had_active_booking", existing.ActiveBooking != nil,
	)
	return nil
}

func (s *propertyService) find(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}

	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		if errors.Is(err, propertieserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid property ID format")
		}
		s.cfg.Log.Error("Failed to get property by ID", "id", id, "error", err)
		return nil, apperrors.Storage("find property", err)
	}
	return property, nil
}

// views projects every property for actor, loading all active bookings in one query.
func (s *propertyService) views(ctx context.Context, actor model.Actor, properties []*model.Property) ([]*model.PropertyView, error) {
	var ids []string
	for _, p := range properties {
		if id := p.ActiveBookingID(); id != "" {
			ids = append(ids, id)
		}
	}

	active := map[string]*model.Booking{}
	if len(ids) > 0 {
		bookings, err := s.bookings.FindByIDs(ctx, ids)
		if err != nil {
			s.cfg.Log.Error("Failed to load active bookings", "count", len(ids), "error", err)
			return nil, apperrors.Storage("load active bookings", err)
		}
		for _, b := range bookings {
			active[b.ID] = b
		}
	}

	now := s.clock.Now()
	views := make([]*model.PropertyView, 0, len(properties))
	for _, p := range properties {
		booking := active[p.ActiveBookingID()]
		for _, drift := range availability.CheckConsistency(p, booking) {
			s.cfg.Log.Warn("Property availability drift detected",
				"property_id", drift.PropertyID,
				"reason", drift.Reason,
			)
		}
		views = append(views, availability.View(p, booking, actor, now))
	}
	return views, nil
}

func (s *propertyService) sanitize(p *model.PropertyCreate) {
	p.Title = sanitizer.TrimAndNormalize(p.Title)
	p.Description = sanitizer.TrimMultiline(p.Description)
	p.City = sanitizer.NormalizeCity(p.City)
	p.Address = sanitizer.TrimAndNormalize(p.Address)
	p.ContactPhone = sanitizer.NormalizePhone(p.ContactPhone)
}

func (s *propertyService) sanitizeUpdate(u *model.PropertyUpdate) {
	apply := func(field *string, fn func(string) string) {
		if field != nil {
			*field = fn(*field)
		}
	}
	apply(u.Title, sanitizer.TrimAndNormalize)
	apply(u.Description, sanitizer.TrimMultiline)
	apply(u.City, sanitizer.NormalizeCity)
	apply(u.Address, sanitizer.TrimAndNormalize)
	apply(u.ContactPhone, sanitizer.NormalizePhone)
}

func validationError(message string, err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.AppError(message)
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
