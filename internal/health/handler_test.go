package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"turfbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func serve(check Check, path string) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewHealthHandler("postgres", check, logger.Nop()).RegisterRoutes(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(func(context.Context) error { return errors.New("down") }, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		check  Check
		status int
		body   string
	}{
		{"datastore up", func(context.Context) error { return nil }, http.StatusOK, `{"status":"ready","database":"postgres: ok"}`},
		{"datastore down", func(context.Context) error { return errors.New("connection refused") }, http.StatusServiceUnavailable, `{"status":"unavailable","database":"postgres: error"}`},
		{"no check", nil, http.StatusOK, `{"status":"ready","database":"postgres: ok"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.check, "/ready")
			assert.Equal(t, tt.status, rec.Code)
			assert.JSONEq(t, tt.body, rec.Body.String())
		})
	}
}
