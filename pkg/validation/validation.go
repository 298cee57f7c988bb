package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	apperrors "rentals/pkg/errors"
	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// AppError converts v to a 422 whose details list every field problem.
func (v ValidationErrors) AppError(message string) *apperrors.AppError {
	fields := make([]map[string]string, 0, len(v))
	for _, e := range v {
		fields = append(fields, map[string]string{"field": e.Field, "message": e.Message})
	}
	return apperrors.Validation(message, map[string]any{"fields": fields})
}

// New returns a validator that reports JSON field names and knows the
// booking_status tag.
func New(log *logger.Logger) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	if err := v.RegisterValidation("booking_status", validateBookingStatus); err != nil {
		log.Fatal("Failed to register 'booking_status' validator", "error", err)
	}

	return v
}

func validateBookingStatus(fl validator.FieldLevel) bool {
	status, ok := fl.Field().Interface().(model.BookingStatus)
	if !ok {
		return model.BookingStatus(fl.Field().String()).IsValid()
	}
	return status.IsValid()
}

// Struct validates s and returns ValidationErrors for field failures.
func Struct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return Translate(validationErrs)
	}
	return err
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "lte":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gtefield":
			message = fmt.Sprintf("%s must not be before %s", err.Field(), jsonName(err.Param()))
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +14155552671)", err.Field())
		case "booking_status":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), statusList())
		}

		out = append(out, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return out
}

func jsonName(goField string) string {
	switch goField {
	case "StartDate":
		return "start_date"
	case "EndDate":
		return "end_date"
	default:
		return goField
	}
}

func statusList() string {
	names := make([]string, 0, len(model.BookingStatuses))
	for _, s := range model.BookingStatuses {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
