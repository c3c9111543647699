package handler

import (
	"net/http"

	"turfbook/internal/bookings/service"
	apperrors "turfbook/pkg/errors"
	httputil "turfbook/pkg/http"
	"turfbook/pkg/logger"
	"turfbook/pkg/middleware"
	"turfbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	users   middleware.Authenticator
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, users middleware.Authenticator, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		users:   users,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Unauthorized request"))
		return
	}

	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.RequestBooking(r.Context(), identity.Principal.ID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusCreated, booking, "Booking confirmed"); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Cancel", apperrors.Unauthorized("Unauthorized request"))
		return
	}

	booking, err := h.service.CancelBooking(r.Context(), identity.Principal.ID, ps.ByName("booking_id"))
	if err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, booking, "Booking canceled"); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "operation", "WriteMessage", "error", err)
	}
}

func (h *BookingHandler) ListByTurf(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeList(w, "ListByTurf")(h.service.ListByTurf(r.Context(), ps.ByName("turf_id")))
}

func (h *BookingHandler) ListByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeList(w, "ListByUser")(h.service.ListByUser(r.Context(), ps.ByName("user_id")))
}

func (h *BookingHandler) ListByOwner(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.writeList(w, "ListByOwner")(h.service.ListByOwner(r.Context(), ps.ByName("owner_id")))
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	auth := middleware.RequireAuth(h.users, h.log)

	router.POST("/api/v1/bookings/turfs", auth(h.Create))
	router.GET("/api/v1/bookings/turf/:turf_id", h.ListByTurf)
	router.GET("/api/v1/bookings/user/:user_id", h.ListByUser)
	router.GET("/api/v1/bookings/owner/:owner_id", h.ListByOwner)
	router.PATCH("/api/v1/bookings/cancel/:booking_id", auth(h.Cancel))
}

func (h *BookingHandler) writeList(w http.ResponseWriter, handler string) func([]*model.Booking, error) {
	return func(bookings []*model.Booking, err error) {
		if err != nil {
			h.writeError(w, handler, err)
			return
		}
		if err := httputil.WriteSuccess(w, bookings); err != nil {
			h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
		}
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
