package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"turfbook/internal/accounts/repository"
	"turfbook/internal/accounts/service"
	"turfbook/internal/accounts/validator"
	"turfbook/pkg/config"
	httputil "turfbook/pkg/http"
	"turfbook/pkg/logger"
	"turfbook/pkg/model"
	"turfbook/pkg/token"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func newRouter(t *testing.T, kind model.Kind) *httprouter.Router {
	t.Helper()

	cfg := &config.Config{Log: logger.Nop(), PhoneDefaultRegion: "IN"}
	tokens, err := token.NewManager(token.Config{
		AccessSecret:  []byte("access-secret-access-secret-0123456789"),
		RefreshSecret: []byte("refresh-secret-refresh-secret-0123456789"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    24 * time.Hour,
	})
	require.NoError(t, err)
	revocations := token.NewMemoryRevocationStore(time.Minute)
	t.Cleanup(revocations.Stop)

	svc := service.NewPrincipalService(kind, repository.NewMemoryPrincipalRepository(kind),
		validator.NewPrincipalValidator(cfg.Log), tokens, revocations, cfg, service.WithHashCost(bcrypt.MinCost))

	router := httprouter.New()
	NewPrincipalHandler(svc, httputil.CookieOptions{Secure: true}, cfg.Log).RegisterRoutes(router)
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func cookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

const registerBody = `{"full_name":"Asha Rao","username":"asha","email":"asha@example.com","phone_no":"+919876543210","password":"correct-horse"}`
const loginBody = `{"email":"asha@example.com","password":"correct-horse"}`

func TestRegisterAndLogin(t *testing.T) {
	router := newRouter(t, model.KindOwner)

	rec, env := do(t, router, http.MethodPost, "/api/v1/owners/register", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, string(env.Data), "password")
	assert.NotContains(t, string(env.Data), "refresh")

	rec, _ = do(t, router, http.MethodPost, "/api/v1/owners/register", registerBody)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = do(t, router, http.MethodPost, "/api/v1/owners/login", loginBody)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Owner        model.Principal `json:"owner"`
		AccessToken  string          `json:"accessToken"`
		RefreshToken string          `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "asha", body.Owner.Username)
	assert.NotEmpty(t, body.AccessToken)

	access := cookie(rec, httputil.AccessTokenCookie)
	require.NotNil(t, access)
	assert.Equal(t, body.AccessToken, access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	require.NotNil(t, cookie(rec, httputil.RefreshTokenCookie))
}

func TestLogin_Errors(t *testing.T) {
	router := newRouter(t, model.KindUser)
	rec, _ := do(t, router, http.MethodPost, "/api/v1/users/register", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/users/login", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := do(t, router, http.MethodPost, "/api/v1/users/login", `{"email":"asha@example.com","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", env.Error)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/users/login", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestKindsAreSeparate(t *testing.T) {
	router := newRouter(t, model.KindUser)
	rec, _ := do(t, router, http.MethodPost, "/api/v1/users/register", registerBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/owners/login", loginBody)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCurrentEditLogout(t *testing.T) {
	router := newRouter(t, model.KindUser)
	do(t, router, http.MethodPost, "/api/v1/users/register", registerBody)
	login, _ := do(t, router, http.MethodPost, "/api/v1/users/login", loginBody)
	access := cookie(login, httputil.AccessTokenCookie)
	refresh := cookie(login, httputil.RefreshTokenCookie)

	rec, _ := do(t, router, http.MethodGet, "/api/v1/users/get-current-user", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := do(t, router, http.MethodGet, "/api/v1/users/get-current-user", "", access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"username":"asha"`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/get-current-user", nil)
	req.Header.Set("Authorization", "Bearer "+access.Value)
	bearer := httptest.NewRecorder()
	router.ServeHTTP(bearer, req)
	assert.Equal(t, http.StatusOK, bearer.Code)

	rec, env = do(t, router, http.MethodPatch, "/api/v1/users/edit", `{"full_name":"Asha R"}`, access)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"full_name":"Asha R"`)

	rec, _ = do(t, router, http.MethodPatch, "/api/v1/users/edit", `{}`, access)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/users/logout", "", access)
	require.Equal(t, http.StatusOK, rec.Code)
	cleared := cookie(rec, httputil.AccessTokenCookie)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	rec, _ = do(t, router, http.MethodGet, "/api/v1/users/get-current-user", "", access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/users/refresh-token", "", refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshToken(t *testing.T) {
	router := newRouter(t, model.KindOwner)
	do(t, router, http.MethodPost, "/api/v1/owners/register", registerBody)
	login, _ := do(t, router, http.MethodPost, "/api/v1/owners/login", loginBody)
	original := cookie(login, httputil.RefreshTokenCookie)

	rec, _ := do(t, router, http.MethodPost, "/api/v1/owners/refresh-token", "", original)
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := cookie(rec, httputil.RefreshTokenCookie)
	require.NotNil(t, rotated)
	assert.NotEqual(t, original.Value, rotated.Value)

	rec, env := do(t, router, http.MethodPost, "/api/v1/owners/refresh-token", "", original)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized request", env.Error)

	body := `{"refreshToken":"` + rotated.Value + `"}`
	rec, _ = do(t, router, http.MethodPost, "/api/v1/owners/refresh-token", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, router, http.MethodPost, "/api/v1/owners/refresh-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, strings.Contains(rec.Body.String(), "expired"))
}
