package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "turfbook/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		code    string
	}{
		{"conflict", apperrors.Conflict("slot taken"), http.StatusConflict, "slot taken", apperrors.CodeConflict},
		{"wrapped not found", errors.Join(apperrors.NotFound("Turf")), http.StatusNotFound, "Turf not found", apperrors.CodeNotFound},
		{"plain error is opaque", errors.New("pq: connection refused"), http.StatusInternalServerError, "Internal server error", apperrors.CodeInternal},
		{"internal hides message", apperrors.Internal("Failed to insert booking", errors.New("boom")), http.StatusInternalServerError, "Internal server error", apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			require.NoError(t, WriteError(rec, tt.err))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.message, body.Error)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestWriteCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteCreated(rec, map[string]string{"id": "b1"}))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"id":"b1"}}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "a@b.co", p.Email)
	})

	t.Run("empty body is zero value", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Empty(t, p.Email)
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
		var p payload
		err := DecodeJSON(r, &p)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidInput))
	})
}

func TestAccessToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, AccessToken(r))

	r.Header.Set("Authorization", "Bearer header-token")
	assert.Equal(t, "header-token", AccessToken(r))

	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", AccessToken(r))

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Empty(t, AccessToken(r))
}

func TestRefreshToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", nil)
	assert.Equal(t, "body-token", RefreshToken(r, " body-token "))

	r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "cookie-token"})
	assert.Equal(t, "cookie-token", RefreshToken(r, "body-token"))
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.7:5123"
	assert.Equal(t, "10.0.0.7", ClientIP(r))

	r.RemoteAddr = "[::1]:5123"
	assert.Equal(t, "::1", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}

func TestAuthCookies(t *testing.T) {
	rec := httptest.NewRecorder()
	exp := time.Now().Add(time.Hour)
	SetAuthCookies(rec, CookieOptions{Secure: true}, "a", exp, "r", exp)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.True(t, c.HttpOnly)
		assert.True(t, c.Secure)
	}
	assert.Equal(t, AccessTokenCookie, cookies[0].Name)
	assert.Equal(t, "a", cookies[0].Value)
	assert.Equal(t, RefreshTokenCookie, cookies[1].Name)

	rec = httptest.NewRecorder()
	ClearAuthCookies(rec, CookieOptions{})
	cleared := rec.Result().Cookies()
	require.Len(t, cleared, 2)
	for _, c := range cleared {
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	}
}
