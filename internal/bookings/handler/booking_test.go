package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "rentals/pkg/errors"
	httputil "rentals/pkg/http"
	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type mockBookingService struct {
	createFunc       func(ctx context.Context, actor model.Actor, input *model.BookingCreate) (*model.Booking, error)
	updateStatusFunc func(ctx context.Context, actor model.Actor, id string, update *model.BookingStatusUpdate) (*model.Booking, error)
	cancelFunc       func(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	resetFunc        func(ctx context.Context, actor model.Actor, propertyID string) (*model.PropertyView, error)
	listFunc         func(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error)
}

func (m *mockBookingService) Create(ctx context.Context, actor model.Actor, input *model.BookingCreate) (*model.Booking, error) {
	return m.createFunc(ctx, actor, input)
}

func (m *mockBookingService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	return nil, apperrors.Forbidden("Booking is visible only to its renter and the property owner")
}

func (m *mockBookingService) GetMine(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
	return m.listFunc(ctx, actor, limit, offset)
}

func (m *mockBookingService) GetIncoming(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
	return m.listFunc(ctx, actor, limit, offset)
}

func (m *mockBookingService) UpdateStatus(ctx context.Context, actor model.Actor, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
	return m.updateStatusFunc(ctx, actor, id, update)
}

func (m *mockBookingService) Cancel(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	return m.cancelFunc(ctx, actor, id)
}

func (m *mockBookingService) ResetAvailability(ctx context.Context, actor model.Actor, propertyID string) (*model.PropertyView, error) {
	return m.resetFunc(ctx, actor, propertyID)
}

func serve(svc *mockBookingService, req *http.Request) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewBookingHandler(svc, logger.Discard()).RegisterRoutes(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func withActor(req *http.Request, id string, role model.Role) *http.Request {
	req.Header.Set(httputil.HeaderUserID, id)
	req.Header.Set(httputil.HeaderUserRole, string(role))
	return req
}

func TestCreate(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, actor model.Actor, input *model.BookingCreate) (*model.Booking, error) {
			if actor.ID != "renter-a" {
				t.Errorf("actor = %+v", actor)
			}
			if input.EndDate.Sub(input.StartDate).Hours() != 96 {
				t.Errorf("dates not decoded: %v - %v", input.StartDate, input.EndDate)
			}
			return &model.Booking{ID: "b1", Property: input.Property, Status: model.BookingPending}, nil
		},
	}

	body := `{"property":"65f1a2b3c4d5e6f708192a3b","start_date":"2026-08-01T00:00:00Z","end_date":"2026-08-05T00:00:00Z"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)), "renter-a", model.RoleRenter)
	rec := serve(svc, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.ID != "b1" || resp.Data.Status != model.BookingPending {
		t.Errorf("unexpected booking %+v", resp.Data)
	}
}

func TestCreate_DateOnly(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, actor model.Actor, input *model.BookingCreate) (*model.Booking, error) {
			want := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
			if !input.StartDate.Equal(want) {
				t.Errorf("start = %v, want %v", input.StartDate, want)
			}
			return &model.Booking{ID: "b1", Status: model.BookingPending}, nil
		},
	}

	body := `{"property":"65f1a2b3c4d5e6f708192a3b","start_date":"2026-08-01","end_date":"2026-08-05"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)), "renter-a", model.RoleRenter)
	rec := serve(svc, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestCreate_BadDateIsFieldError(t *testing.T) {
	svc := &mockBookingService{
		createFunc: func(ctx context.Context, actor model.Actor, input *model.BookingCreate) (*model.Booking, error) {
			t.Error("service must not be called")
			return nil, nil
		},
	}

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantError string
		wantField string
	}{
		{
			name:      "unknown date format",
			body:      `{"property":"65f1a2b3c4d5e6f708192a3b","start_date":"01/08/2026","end_date":"2026-08-05"}`,
			wantCode:  http.StatusUnprocessableEntity,
			wantError: apperrors.CodeValidation,
			wantField: "start_date",
		},
		{
			name:      "malformed json",
			body:      `{"property":`,
			wantCode:  http.StatusBadRequest,
			wantError: apperrors.CodeInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(tt.body)), "renter-a", model.RoleRenter)
			rec := serve(svc, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			var resp httputil.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Code != tt.wantError {
				t.Errorf("code = %q, want %q", resp.Code, tt.wantError)
			}
			if tt.wantField != "" && !strings.Contains(rec.Body.String(), `"field":"`+tt.wantField+`"`) {
				t.Errorf("body does not name %s: %s", tt.wantField, rec.Body.String())
			}
		})
	}
}

func TestUpdateStatus_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"lost race", apperrors.PropertyUnavailable("Property already has an active booking"), http.StatusConflict, apperrors.CodePropertyUnavailable},
		{"not owner", apperrors.Forbidden("nope"), http.StatusForbidden, apperrors.CodeForbidden},
		{"missing", apperrors.NotFoundWithID("Booking", "b1"), http.StatusNotFound, apperrors.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockBookingService{
				updateStatusFunc: func(ctx context.Context, actor model.Actor, id string, update *model.BookingStatusUpdate) (*model.Booking, error) {
					if id != "b1" || update.Status != model.BookingAccepted {
						t.Errorf("id=%q status=%q", id, update.Status)
					}
					return nil, tt.err
				},
			}

			req := withActor(httptest.NewRequest(http.MethodPut, "/api/v1/bookings/id/b1/status", strings.NewReader(`{"status":"accepted"}`)), "owner-1", model.RoleOwner)
			rec := serve(svc, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body httputil.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestResetAvailability(t *testing.T) {
	t.Run("too early", func(t *testing.T) {
		svc := &mockBookingService{
			resetFunc: func(ctx context.Context, actor model.Actor, propertyID string) (*model.PropertyView, error) {
				return nil, apperrors.TooEarly("Booking b1 ends later")
			},
		}
		req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/properties/id/p1/reset-availability", nil), "owner-1", model.RoleOwner)
		if rec := serve(svc, req); rec.Code != http.StatusTooEarly {
			t.Errorf("status = %d, want 425", rec.Code)
		}
	})

	t.Run("freed", func(t *testing.T) {
		svc := &mockBookingService{
			resetFunc: func(ctx context.Context, actor model.Actor, propertyID string) (*model.PropertyView, error) {
				if propertyID != "p1" {
					t.Errorf("property = %q", propertyID)
				}
				return &model.PropertyView{
					Property: &model.Property{ID: "p1", IsAvailable: true},
					Status:   model.StatusAvailable,
				}, nil
			},
		}
		req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/properties/id/p1/reset-availability", nil), "owner-1", model.RoleOwner)
		if rec := serve(svc, req); rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestCancel_RequiresActor(t *testing.T) {
	svc := &mockBookingService{
		cancelFunc: func(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
			t.Fatal("service must not be called without an actor")
			return nil, nil
		},
	}

	rec := serve(svc, httptest.NewRequest(http.MethodPost, "/api/v1/bookings/id/b1/cancel", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestListRoutes(t *testing.T) {
	calls := 0
	svc := &mockBookingService{
		listFunc: func(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error) {
			calls++
			return []*model.Booking{{ID: "b1"}}, 1, nil
		},
	}

	for _, path := range []string{"/api/v1/bookings/mine", "/api/v1/bookings/incoming?limit=20"} {
		req := withActor(httptest.NewRequest(http.MethodGet, path, nil), "owner-1", model.RoleOwner)
		if rec := serve(svc, req); rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}
