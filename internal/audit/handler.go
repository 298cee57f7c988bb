package audit

import (
	"context"
	"net/http"
	"sync"

	apperrors "rentals/pkg/errors"
	httputil "rentals/pkg/http"
	"rentals/pkg/logger"
	"rentals/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// BookingGetter enforces who may see a booking. The booking service satisfies it.
type BookingGetter interface {
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
}

type Handler struct {
	repo     EventRepository
	bookings BookingGetter
	log      *logger.Logger
}

func NewHandler(repo EventRepository, bookings BookingGetter, log *logger.Logger) *Handler {
	return &Handler{
		repo:     repo,
		bookings: bookings,
		log:      log,
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "ListEvents", "operation", "WriteError", "error", writeErr)
	}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	booking, err := h.bookings.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var total int64
	var events []*model.BookingEvent
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		total, errCount = h.repo.CountByBooking(r.Context(), booking.ID)
	}()

	go func() {
		defer wg.Done()
		events, errFind = h.repo.FindByBooking(r.Context(), booking.ID, limit, offset)
	}()

	wg.Wait()
	if err := firstError(errCount, errFind); err != nil {
		h.log.Error("Failed to load booking events", "booking_id", booking.ID, "error", err)
		h.writeError(w, apperrors.Storage("load booking events", err))
		return
	}

	if err := httputil.WritePaginated(w, events, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListEvents", "operation", "WritePaginated", "error", err)
	}
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings/id/:id/events", h.ListEvents)
}
