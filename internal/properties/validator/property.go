package validator

import (
	"rentals/pkg/logger"
	"rentals/pkg/model"
	"rentals/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type PropertyValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewPropertyValidator(log *logger.Logger) *PropertyValidator {
	return &PropertyValidator{
		validate: validation.New(log),
		logger:   log,
	}
}

func (v *PropertyValidator) Validate(property *model.PropertyCreate) error {
	return validation.Struct(v.validate, property)
}

func (v *PropertyValidator) ValidateUpdate(update *model.PropertyUpdate) error {
	if err := validation.Struct(v.validate, update); err != nil {
		return err
	}

	if update.IsEmpty() {
		return validation.ValidationErrors{
			validation.ValidationError{
				Field:   "body",
				Message: "at least one field must be provided",
			},
		}
	}

	return nil
}
