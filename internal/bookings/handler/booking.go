package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"rentals/internal/bookings/service"
	apperrors "rentals/pkg/errors"
	httputil "rentals/pkg/http"
	"rentals/pkg/logger"
	"rentals/pkg/model"
	"rentals/pkg/validation"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

// decodeError turns a malformed booking date into a field-level 422.
func decodeError(err error) error {
	var dateErr *model.DateFormatError
	if errors.As(err, &dateErr) {
		return validation.ValidationErrors{{Field: dateErr.Field, Message: dateErr.Error()}}.AppError("Booking validation failed")
	}
	return apperrors.InvalidInput("Invalid request body")
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) writeSuccess(w http.ResponseWriter, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var input model.BookingCreate
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, "Create", decodeError(err))
		return
	}

	booking, err := h.service.Create(r.Context(), actor, &input)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	booking, err := h.service.GetByID(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	h.writeSuccess(w, "GetByID", booking)
}

func (h *BookingHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "GetMine", h.service.GetMine)
}

func (h *BookingHandler) GetIncoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.list(w, r, "GetIncoming", h.service.GetIncoming)
}

type listFunc func(ctx context.Context, actor model.Actor, limit int, offset int64) ([]*model.Booking, int64, error)

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request, handler string, fn listFunc) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	bookings, total, err := fn(r.Context(), actor, limit, offset)
	if err != nil {
		h.writeError(w, handler, err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", handler, "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	var update model.BookingStatusUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.writeError(w, "UpdateStatus", apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.UpdateStatus(r.Context(), actor, ps.ByName("id"), &update)
	if err != nil {
		h.writeError(w, "UpdateStatus", err)
		return
	}

	h.writeSuccess(w, "UpdateStatus", booking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	booking, err := h.service.Cancel(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	h.writeSuccess(w, "Cancel", booking)
}

func (h *BookingHandler) ResetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorFromRequest(r)
	if err != nil {
		h.writeError(w, "ResetAvailability", err)
		return
	}

	view, err := h.service.ResetAvailability(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ResetAvailability", err)
		return
	}

	h.writeSuccess(w, "ResetAvailability", view)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/mine", h.GetMine)
	router.GET("/api/v1/bookings/incoming", h.GetIncoming)
	router.GET("/api/v1/bookings/id/:id", h.GetByID)
	router.PUT("/api/v1/bookings/id/:id/status", h.UpdateStatus)
	router.POST("/api/v1/bookings/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/properties/id/:id/reset-availability", h.ResetAvailability)
}
