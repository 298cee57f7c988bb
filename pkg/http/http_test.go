package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "rentals/pkg/errors"
	"rentals/pkg/model"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "too early",
			err:         apperrors.TooEarly("booking has not ended yet"),
			wantStatus:  http.StatusTooEarly,
			wantCode:    apperrors.CodeTooEarly,
			wantMessage: "booking has not ended yet",
		},
		{
			name:        "property unavailable",
			err:         apperrors.PropertyUnavailable("property is not available"),
			wantStatus:  http.StatusConflict,
			wantCode:    apperrors.CodePropertyUnavailable,
			wantMessage: "property is not available",
		},
		{
			name:        "plain error hides details",
			err:         errors.New("connection reset by peer"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    apperrors.CodeInternal,
			wantMessage: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if err := WriteError(rec, tt.err); err != nil {
				t.Fatalf("WriteError returned %v", err)
			}

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to decode body: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Code, tt.wantCode)
			}
			if body.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMessage)
			}
		})
	}
}

func TestWritePaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := WritePaginated(rec, []string{"a", "b"}, 7, 2, 4); err != nil {
		t.Fatalf("WritePaginated returned %v", err)
	}

	var body PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.TotalCount != 7 || body.Limit != 2 || body.Offset != 4 {
		t.Errorf("unexpected pagination %+v", body)
	}
}

func TestActorFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		userID  string
		role    string
		want    model.Actor
		wantErr bool
	}{
		{name: "owner", userID: "u1", role: "owner", want: model.Actor{ID: "u1", Role: model.RoleOwner}},
		{name: "role is case insensitive", userID: "u2", role: "Renter", want: model.Actor{ID: "u2", Role: model.RoleRenter}},
		{name: "missing id", role: "owner", wantErr: true},
		{name: "unknown role", userID: "u3", role: "admin", wantErr: true},
		{name: "missing role", userID: "u4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(HeaderUserRole, tt.role)
			}

			got, err := ActorFromRequest(req)
			if tt.wantErr {
				if !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
					t.Fatalf("expected unauthorized error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtractLimitOffset(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties?limit=abc", nil)
	if _, _, err := ExtractLimitOffset(req); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input for non-numeric limit, got %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/properties?limit=5&offset=10", nil)
	limit, offset, err := ExtractLimitOffset(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if limit != 5 || offset != 10 {
		t.Errorf("got limit=%d offset=%d", limit, offset)
	}
}

func TestExtractLimitOffset_Normalizes(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int64
	}{
		{"", 10, 0},
		{"?limit=0", 10, 0},
		{"?limit=1000", 100, 0},
		{"?offset=-4", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/properties"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got limit=%d offset=%d, want %d/%d", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
