package audit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"rentals/pkg/clock"
	apperrors "rentals/pkg/errors"
	httputil "rentals/pkg/http"
	"rentals/pkg/kafka"
	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type memoryEventRepository struct {
	mu     sync.Mutex
	events map[string]*model.BookingEvent
	err    error
}

func newMemoryEventRepository() *memoryEventRepository {
	return &memoryEventRepository{events: map[string]*model.BookingEvent{}}
}

func (m *memoryEventRepository) Append(ctx context.Context, event *model.BookingEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if _, ok := m.events[event.EventID]; ok {
		return false, nil
	}
	stored := *event
	m.events[event.EventID] = &stored
	return true, nil
}

func (m *memoryEventRepository) byBooking(bookingID string) []*model.BookingEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.BookingEvent
	for _, e := range m.events {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out
}

func (m *memoryEventRepository) FindByBooking(ctx context.Context, bookingID string, limit int, offset int64) ([]*model.BookingEvent, error) {
	if m.err != nil {
		return nil, m.err
	}
	events := m.byBooking(bookingID)
	if offset >= int64(len(events)) {
		return []*model.BookingEvent{}, nil
	}
	events = events[offset:]
	if limit < len(events) {
		events = events[:limit]
	}
	return events, nil
}

func (m *memoryEventRepository) CountByBooking(ctx context.Context, bookingID string) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	return int64(len(m.byBooking(bookingID))), nil
}

var recordedAt = time.Date(2026, 8, 5, 10, 0, 1, 0, time.UTC)

func lifecycleMessage(t *testing.T, event *model.BookingEvent) kafka.Message {
	t.Helper()
	msg, err := kafka.NewMessage().
		WithKey(event.PropertyID).
		WithValue(event).
		WithEventID(event.EventID).
		WithEventType(string(event.Type)).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return msg
}

func TestEventHandler_StoresOnce(t *testing.T) {
	repo := newMemoryEventRepository()
	handle := NewEventHandler(repo, clock.NewFixed(recordedAt), logger.Discard())

	msg := lifecycleMessage(t, &model.BookingEvent{
		EventID:    "evt-1",
		Type:       model.EventBookingAccepted,
		BookingID:  "b1",
		PropertyID: "p1",
		ToStatus:   model.BookingAccepted,
	})

	for i := 0; i < 2; i++ {
		if err := handle(context.Background(), msg); err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
	}

	events := repo.byBooking("b1")
	if len(events) != 1 {
		t.Fatalf("expected 1 stored event, got %d", len(events))
	}
	if !events[0].RecordedAt.Equal(recordedAt) {
		t.Errorf("recorded_at = %v", events[0].RecordedAt)
	}
}

func TestEventHandler_FillsFromHeaders(t *testing.T) {
	repo := newMemoryEventRepository()
	handle := NewEventHandler(repo, clock.NewFixed(recordedAt), logger.Discard())

	msg := kafka.Message{
		Key:   "p9",
		Value: []byte(`{"booking_id":"b9"}`),
		Headers: map[string]string{
			kafka.HeaderEventID:   "evt-9",
			kafka.HeaderEventType: string(model.EventBookingCreated),
		},
	}
	if err := handle(context.Background(), msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := repo.byBooking("b9")
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.EventID != "evt-9" || e.Type != model.EventBookingCreated || e.PropertyID != "p9" {
		t.Errorf("unexpected event %+v", e)
	}
}

func TestEventHandler_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		msg           kafka.Message
		repoErr       error
		wantTransient bool
	}{
		{
			name: "malformed payload",
			msg:  kafka.Message{Value: []byte(`{"type":`), Headers: map[string]string{kafka.HeaderEventID: "e"}},
		},
		{
			name: "missing event id",
			msg:  kafka.Message{Value: []byte(`{"type":"booking.created"}`), Headers: map[string]string{}},
		},
		{
			name:          "storage failure",
			msg:           kafka.Message{Value: []byte(`{"event_id":"e1"}`), Headers: map[string]string{}},
			repoErr:       errors.New("server selection error"),
			wantTransient: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryEventRepository()
			repo.err = tt.repoErr
			handle := NewEventHandler(repo, clock.NewFixed(recordedAt), logger.Discard())

			err := handle(context.Background(), tt.msg)
			var kerr *kafka.KafkaError
			if !errors.As(err, &kerr) {
				t.Fatalf("expected KafkaError, got %v", err)
			}
			if kerr.IsTransient() != tt.wantTransient {
				t.Errorf("transient = %v, want %v", kerr.IsTransient(), tt.wantTransient)
			}
		})
	}
}

type fakeBookingGetter struct {
	err error
}

func (f fakeBookingGetter) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Booking{ID: id, User: actor.ID}, nil
}

func TestHandler_ListEvents(t *testing.T) {
	repo := newMemoryEventRepository()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i, typ := range []model.BookingEventType{model.EventBookingCreated, model.EventBookingAccepted, model.EventPropertyReset} {
		if _, err := repo.Append(context.Background(), &model.BookingEvent{
			EventID:    string(typ),
			Type:       typ,
			BookingID:  "b1",
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	tests := []struct {
		name       string
		getterErr  error
		repoErr    error
		wantStatus int
		wantCount  int
	}{
		{"visible", nil, nil, http.StatusOK, 3},
		{"not visible", apperrors.Forbidden("nope"), nil, http.StatusForbidden, 0},
		{"storage failure", nil, errors.New("boom"), http.StatusInternalServerError, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo.err = tt.repoErr
			router := httprouter.New()
			NewHandler(repo, fakeBookingGetter{err: tt.getterErr}, logger.Discard()).RegisterRoutes(router)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/id/b1/events", nil)
			req.Header.Set(httputil.HeaderUserID, "renter-a")
			req.Header.Set(httputil.HeaderUserRole, "renter")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var page struct {
				Data       []model.BookingEvent `json:"data"`
				TotalCount int64                `json:"total_count"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(page.Data) != tt.wantCount || page.TotalCount != int64(tt.wantCount) {
				t.Errorf("got %d events of %d", len(page.Data), page.TotalCount)
			}
			if page.Data[0].Type != model.EventBookingCreated {
				t.Errorf("events not in occurrence order: first is %q", page.Data[0].Type)
			}
		})
	}
}
