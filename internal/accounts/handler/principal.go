package handler

import (
	"net/http"

	"turfbook/internal/accounts/service"
	apperrors "turfbook/pkg/errors"
	httputil "turfbook/pkg/http"
	"turfbook/pkg/logger"
	"turfbook/pkg/middleware"
	"turfbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// PrincipalHandler serves the account routes of one principal kind. It is
// mounted once for owners and once for users.
type PrincipalHandler struct {
	service service.PrincipalService
	cookies httputil.CookieOptions
	log     *logger.Logger
}

func NewPrincipalHandler(service service.PrincipalService, cookies httputil.CookieOptions, log *logger.Logger) *PrincipalHandler {
	return &PrincipalHandler{
		service: service,
		cookies: cookies,
		log:     log.With("kind", service.Kind()),
	}
}

func (h *PrincipalHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	principal, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusCreated, principal, h.service.Kind().Title()+" registered successfully"); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteMessage", "error", err)
	}
}

func (h *PrincipalHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	session, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	h.writeSession(w, "Login", session, "Logged in successfully")
}

func (h *PrincipalHandler) RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RefreshRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "RefreshToken", err)
		return
	}

	session, err := h.service.RotateRefresh(r.Context(), httputil.RefreshToken(r, req.RefreshToken))
	if err != nil {
		h.writeError(w, "RefreshToken", err)
		return
	}

	h.writeSession(w, "RefreshToken", session, "Access token refreshed")
}

func (h *PrincipalHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Logout", apperrors.Unauthorized("Unauthorized request"))
		return
	}

	if err := h.service.Logout(r.Context(), identity); err != nil {
		h.writeError(w, "Logout", err)
		return
	}

	httputil.ClearAuthCookies(w, h.cookies)
	if err := httputil.WriteMessage(w, http.StatusOK, nil, h.service.Kind().Title()+" logged out"); err != nil {
		h.log.Error("failed to write success response", "handler", "Logout", "operation", "WriteMessage", "error", err)
	}
}

func (h *PrincipalHandler) Current(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Current", apperrors.Unauthorized("Unauthorized request"))
		return
	}

	if err := httputil.WriteSuccess(w, identity.Principal); err != nil {
		h.log.Error("failed to write success response", "handler", "Current", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PrincipalHandler) Edit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		h.writeError(w, "Edit", apperrors.Unauthorized("Unauthorized request"))
		return
	}

	var patch model.PrincipalPatch
	if err := httputil.DecodeJSON(r, &patch); err != nil {
		h.writeError(w, "Edit", err)
		return
	}

	principal, err := h.service.Edit(r.Context(), identity.Principal.ID, &patch)
	if err != nil {
		h.writeError(w, "Edit", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, principal, "Account updated"); err != nil {
		h.log.Error("failed to write success response", "handler", "Edit", "operation", "WriteMessage", "error", err)
	}
}

func (h *PrincipalHandler) RegisterRoutes(router *httprouter.Router) {
	kind := h.service.Kind()
	base := "/api/v1/" + kind.Plural()
	auth := middleware.RequireAuth(h.service, h.log)

	router.POST(base+"/register", h.Register)
	router.POST(base+"/login", h.Login)
	router.POST(base+"/refresh-token", h.RefreshToken)
	router.POST(base+"/logout", auth(h.Logout))
	router.GET(base+"/get-current-"+string(kind), auth(h.Current))
	router.PATCH(base+"/edit", auth(h.Edit))
}

func (h *PrincipalHandler) writeSession(w http.ResponseWriter, handler string, session *service.Session, message string) {
	pair := session.Tokens
	httputil.SetAuthCookies(w, h.cookies, pair.AccessToken, pair.AccessExpiresAt, pair.RefreshToken, pair.RefreshExpiresAt)

	body := map[string]any{
		string(h.service.Kind()): session.Principal,
		"accessToken":            pair.AccessToken,
		"refreshToken":           pair.RefreshToken,
	}
	if err := httputil.WriteMessage(w, http.StatusOK, body, message); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteMessage", "error", err)
	}
}

func (h *PrincipalHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
