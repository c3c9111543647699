package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"turfbook/internal/bookings/repository"
	"turfbook/internal/bookings/service"
	"turfbook/internal/bookings/validator"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	"turfbook/pkg/logger"
	"turfbook/pkg/middleware"
	"turfbook/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	userA   = "3f9a6c1e-6d2b-4f8a-9c11-2b7e5d4a8f01"
	userB   = "8c2d4e6f-1a3b-4c5d-8e7f-9a0b1c2d3e4f"
	ownerID = "0b5c0a8e-8c1f-4c39-9d7b-3c2f6f3b1a11"
	turfID  = "5e1f2a3b-4c5d-4e6f-8a9b-0c1d2e3f4a5b"
)

type stubUsers struct{}

func (stubUsers) Kind() model.Kind { return model.KindUser }

func (stubUsers) VerifyAccess(_ context.Context, accessToken string) (*middleware.Identity, error) {
	if accessToken != userA && accessToken != userB {
		return nil, errors.New("unknown token")
	}
	return &middleware.Identity{Principal: &model.Principal{ID: accessToken, Kind: model.KindUser}}, nil
}

type stubTurfs struct{}

func (stubTurfs) Get(_ context.Context, id string) (*model.Turf, error) {
	if id != turfID {
		return nil, apperrors.NotFoundWithID("Turf", id)
	}
	return &model.Turf{ID: turfID, OwnerID: ownerID, IsAvailable: true}, nil
}

func (stubTurfs) FindByOwner(_ context.Context, owner string) ([]*model.Turf, error) {
	if owner != ownerID {
		return nil, nil
	}
	return []*model.Turf{{ID: turfID, OwnerID: ownerID}}, nil
}

func newRouter() *httprouter.Router {
	cfg := &config.Config{Log: logger.Nop()}
	repo := repository.NewMemoryBookingRepository(stubTurfs{})
	svc := service.NewBookingService(repo, stubTurfs{}, validator.NewBookingValidator(cfg.Log), nil, cfg)

	router := httprouter.New()
	NewBookingHandler(svc, stubUsers{}, cfg.Log).RegisterRoutes(router)
	return router
}

func call(router http.Handler, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func bookingBody(user string) string {
	return `{"user_id":"` + user + `","turf_id":"` + turfID + `","booking_date":"2025-03-14","time_slot":"18:00-19:00"}`
}

func decodeBookings(t *testing.T, rec *httptest.ResponseRecorder) []model.Booking {
	t.Helper()
	var env struct {
		Data []model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func TestBookingRoutes(t *testing.T) {
	router := newRouter()

	rec := call(router, http.MethodPost, "/api/v1/bookings/turfs", "", bookingBody(userA))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(router, http.MethodPost, "/api/v1/bookings/turfs", userA, bookingBody(userA))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		Data model.Booking `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, model.StatusConfirmed, created.Data.Status)

	rec = call(router, http.MethodPost, "/api/v1/bookings/turfs", userB, bookingBody(userB))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "Turf is not available for the selected date and time")

	for _, path := range []string{
		"/api/v1/bookings/turf/" + turfID,
		"/api/v1/bookings/user/" + userA,
		"/api/v1/bookings/owner/" + ownerID,
	} {
		rec = call(router, http.MethodGet, path, "", "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		listed := decodeBookings(t, rec)
		require.Len(t, listed, 1, path)
		assert.Equal(t, created.Data.ID, listed[0].ID)
	}

	rec = call(router, http.MethodGet, "/api/v1/bookings/user/"+userB, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBookings(t, rec))
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	rec = call(router, http.MethodPatch, "/api/v1/bookings/cancel/"+created.Data.ID, userB, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = call(router, http.MethodPatch, "/api/v1/bookings/cancel/"+created.Data.ID, userA, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"canceled"`)

	rec = call(router, http.MethodPatch, "/api/v1/bookings/cancel/"+created.Data.ID, userA, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = call(router, http.MethodPatch, "/api/v1/bookings/cancel/unknown", userA, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(router, http.MethodPost, "/api/v1/bookings/turfs", userB, bookingBody(userB))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateBooking_BadRequests(t *testing.T) {
	router := newRouter()

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"empty body", "", http.StatusBadRequest},
		{"malformed json", `{"turf_id":`, http.StatusBadRequest},
		{"missing slot", `{"user_id":"` + userA + `","turf_id":"` + turfID + `","booking_date":"2025-03-14"}`, http.StatusBadRequest},
		{"someone else", bookingBody(userB), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := call(router, http.MethodPost, "/api/v1/bookings/turfs", userA, tt.body)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
