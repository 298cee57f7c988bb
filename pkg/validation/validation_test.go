package validation

import (
	"errors"
	"testing"
	"time"

	apperrors "rentals/pkg/errors"
	"rentals/pkg/logger"
	"rentals/pkg/model"
)

func TestStruct_BookingCreate(t *testing.T) {
	v := New(logger.Discard())
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		input     model.BookingCreate
		wantField string
	}{
		{
			name:  "valid",
			input: model.BookingCreate{Property: "65f1c2a9e4b0a1b2c3d4e5f6", StartDate: start, EndDate: start.Add(48 * time.Hour)},
		},
		{
			name:  "single day stay",
			input: model.BookingCreate{Property: "65f1c2a9e4b0a1b2c3d4e5f6", StartDate: start, EndDate: start},
		},
		{
			name:      "end before start",
			input:     model.BookingCreate{Property: "65f1c2a9e4b0a1b2c3d4e5f6", StartDate: start, EndDate: start.Add(-time.Hour)},
			wantField: "end_date",
		},
		{
			name:      "malformed property id",
			input:     model.BookingCreate{Property: "not-an-id", StartDate: start, EndDate: start},
			wantField: "property",
		},
		{
			name:      "missing start",
			input:     model.BookingCreate{Property: "65f1c2a9e4b0a1b2c3d4e5f6", EndDate: start},
			wantField: "start_date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(v, &tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestStruct_BookingStatus(t *testing.T) {
	v := New(logger.Discard())

	if err := Struct(v, &model.BookingStatusUpdate{Status: model.BookingAccepted}); err != nil {
		t.Errorf("accepted should be valid: %v", err)
	}
	if err := Struct(v, &model.BookingStatusUpdate{Status: "confirmed"}); err == nil {
		t.Error("unknown status should be rejected")
	}
}

func TestValidationErrors_AppError(t *testing.T) {
	errs := ValidationErrors{{Field: "title", Message: "title is required"}}
	appErr := errs.AppError("Property validation failed")

	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("unexpected code %s", appErr.Code)
	}
	fields, ok := appErr.Details["fields"].([]map[string]string)
	if !ok || len(fields) != 1 || fields[0]["field"] != "title" {
		t.Errorf("unexpected details %v", appErr.Details)
	}
}
