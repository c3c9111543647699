package handler

import (
	"net/http"

	"turfbook/internal/turfs/service"
	apperrors "turfbook/pkg/errors"
	httputil "turfbook/pkg/http"
	"turfbook/pkg/logger"
	"turfbook/pkg/middleware"
	"turfbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type TurfHandler struct {
	service service.TurfService
	owners  middleware.Authenticator
	log     *logger.Logger
}

// NewTurfHandler needs the owner authenticator: registering and deleting a
// turf are owner-only.
func NewTurfHandler(service service.TurfService, owners middleware.Authenticator, log *logger.Logger) *TurfHandler {
	return &TurfHandler{
		service: service,
		owners:  owners,
		log:     log,
	}
}

func (h *TurfHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Register", apperrors.Unauthorized("Unauthorized request"))
		return
	}

	var req model.RegisterTurfRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	turf, err := h.service.Register(r.Context(), identity.Principal.ID, &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusCreated, turf, "Turf registered successfully"); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteMessage", "error", err)
	}
}

func (h *TurfHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	turfs, err := h.service.List(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WriteSuccess(w, turfs); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TurfHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	turf, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, turf); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *TurfHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Delete", apperrors.Unauthorized("Unauthorized request"))
		return
	}

	turf, err := h.service.Delete(r.Context(), identity.Principal.ID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, turf, "Turf deleted"); err != nil {
		h.log.Error("failed to write success response", "handler", "Delete", "operation", "WriteMessage", "error", err)
	}
}

func (h *TurfHandler) RegisterRoutes(router *httprouter.Router) {
	auth := middleware.RequireAuth(h.owners, h.log)

	router.POST("/api/v1/owners/register-turf", auth(h.Register))
	router.GET("/api/v1/turfs/get-all-turfs", h.GetAll)
	router.GET("/api/v1/turfs/get-turf/:id", h.GetByID)
	router.DELETE("/api/v1/turfs/delete-turf/:id", auth(h.Delete))
}

func (h *TurfHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
