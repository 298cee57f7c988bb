package validator

import (
	"rentals/pkg/logger"
	"rentals/pkg/model"
	"rentals/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validation.New(log)

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks a booking request. A one-day stay (end == start) is allowed.
func (v *BookingValidator) Validate(booking *model.BookingCreate) error {
	return validation.Struct(v.validate, booking)
}

func (v *BookingValidator) ValidateStatus(update *model.BookingStatusUpdate) error {
	return validation.Struct(v.validate, update)
}
