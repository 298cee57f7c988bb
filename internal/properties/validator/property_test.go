package validator

import (
	"errors"
	"testing"

	"rentals/pkg/logger"
	"rentals/pkg/model"
	"rentals/pkg/validation"
)

func validCreate() *model.PropertyCreate {
	return &model.PropertyCreate{
		Title:         "Sea view loft",
		City:          "Haifa",
		Address:       "12 Port Street",
		PricePerNight: 120,
		Bedrooms:      2,
		ContactPhone:  "+972541234567",
	}
}

func TestValidate(t *testing.T) {
	v := NewPropertyValidator(logger.Discard())

	tests := []struct {
		name      string
		mutate    func(p *model.PropertyCreate)
		wantField string
	}{
		{"valid", func(p *model.PropertyCreate) {}, ""},
		{"missing title", func(p *model.PropertyCreate) { p.Title = "" }, "title"},
		{"zero price", func(p *model.PropertyCreate) { p.PricePerNight = 0 }, "price_per_night"},
		{"negative bedrooms", func(p *model.PropertyCreate) { p.Bedrooms = -1 }, "bedrooms"},
		{"bad phone", func(p *model.PropertyCreate) { p.ContactPhone = "054-1234567" }, "contact_phone"},
		{"no phone", func(p *model.PropertyCreate) { p.ContactPhone = "" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validCreate()
			tt.mutate(p)
			err := v.Validate(p)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs validation.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if verrs[0].Field != tt.wantField {
				t.Errorf("field = %q, want %q", verrs[0].Field, tt.wantField)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewPropertyValidator(logger.Discard())

	if err := v.ValidateUpdate(&model.PropertyUpdate{}); err == nil {
		t.Error("expected empty update to be rejected")
	}

	title := "ab"
	if err := v.ValidateUpdate(&model.PropertyUpdate{Title: &title}); err == nil {
		t.Error("expected short title to be rejected")
	}

	price := 95.5
	if err := v.ValidateUpdate(&model.PropertyUpdate{PricePerNight: &price}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
