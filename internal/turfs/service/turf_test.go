package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"turfbook/internal/turfs/repository"
	"turfbook/internal/turfs/validator"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	"turfbook/pkg/logger"
	"turfbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerID = "0b5c0a8e-8c1f-4c39-9d7b-3c2f6f3b1a11"
	otherID = "6f1d8a3e-2b7c-4e09-8a55-0c1e9d2f7b22"
)

type countFunc func(ctx context.Context, turfID string) (int64, error)

func (f countFunc) CountByTurf(ctx context.Context, turfID string) (int64, error) {
	return f(ctx, turfID)
}

func noBookings(context.Context, string) (int64, error) { return 0, nil }

func newService(t *testing.T, counter BookingCounter) (TurfService, repository.TurfRepository) {
	t.Helper()
	cfg := &config.Config{Log: logger.Nop()}
	repo := repository.NewMemoryTurfRepository()
	return NewTurfService(repo, counter, validator.NewTurfValidator(cfg.Log), cfg), repo
}

func turfRequest() *model.RegisterTurfRequest {
	return &model.RegisterTurfRequest{
		Name:      "  Green   Arena ",
		Location:  "Koramangala, Bengaluru",
		Price:     1200,
		ImageURLs: []string{" https://cdn.example.com/a.jpg ", "https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"},
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	return appErr.HTTPStatus
}

func TestRegister(t *testing.T) {
	svc, _ := newService(t, countFunc(noBookings))

	turf, err := svc.Register(context.Background(), ownerID, turfRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, turf.ID)
	assert.Equal(t, "Green Arena", turf.Name)
	assert.Equal(t, ownerID, turf.OwnerID)
	assert.True(t, turf.IsAvailable)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, turf.ImageURLs)

	got, err := svc.Get(context.Background(), turf.ID)
	require.NoError(t, err)
	assert.Equal(t, turf.Name, got.Name)
}

func TestRegister_ExplicitlyUnavailable(t *testing.T) {
	svc, _ := newService(t, countFunc(noBookings))

	req := turfRequest()
	closed := false
	req.IsAvailable = &closed

	turf, err := svc.Register(context.Background(), ownerID, req)
	require.NoError(t, err)
	assert.False(t, turf.IsAvailable)
}

func TestRegister_KeepsImageURLScheme(t *testing.T) {
	svc, _ := newService(t, countFunc(noBookings))

	req := turfRequest()
	req.ImageURLs = []string{"HTTP://CDN.example.com/a.png", "http://cdn.example.com/b.png/"}
	turf, err := svc.Register(context.Background(), ownerID, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"http://cdn.example.com/a.png", "http://cdn.example.com/b.png"}, turf.ImageURLs)
}

func TestRegister_Invalid(t *testing.T) {
	svc, _ := newService(t, countFunc(noBookings))

	tests := []struct {
		name   string
		mutate func(*model.RegisterTurfRequest)
	}{
		{"missing name", func(r *model.RegisterTurfRequest) { r.Name = "" }},
		{"missing location", func(r *model.RegisterTurfRequest) { r.Location = "  " }},
		{"zero price", func(r *model.RegisterTurfRequest) { r.Price = 0 }},
		{"negative price", func(r *model.RegisterTurfRequest) { r.Price = -10 }},
		{"too many images", func(r *model.RegisterTurfRequest) {
			r.ImageURLs = []string{"https://x.io/1", "https://x.io/2", "https://x.io/3", "https://x.io/4"}
		}},
		{"bad image url", func(r *model.RegisterTurfRequest) { r.ImageURLs = []string{"not a url"} }},
		{"ftp image url", func(r *model.RegisterTurfRequest) { r.ImageURLs = []string{"ftp://files.example.com/a.png"} }},
		{"schemeless image url", func(r *model.RegisterTurfRequest) { r.ImageURLs = []string{"cdn.example.com/a.png"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := turfRequest()
			tt.mutate(req)
			_, err := svc.Register(context.Background(), ownerID, req)
			assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
		})
	}
}

func TestList(t *testing.T) {
	svc, _ := newService(t, countFunc(noBookings))

	_, err := svc.Register(context.Background(), ownerID, turfRequest())
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), otherID, turfRequest())
	require.NoError(t, err)

	turfs, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, turfs, 2)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newService(t, countFunc(noBookings))

	_, err := svc.Get(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))

	_, err = svc.Get(context.Background(), "")
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestDelete(t *testing.T) {
	svc, repo := newService(t, countFunc(noBookings))

	turf, err := svc.Register(context.Background(), ownerID, turfRequest())
	require.NoError(t, err)

	deleted, err := svc.Delete(context.Background(), ownerID, turf.ID)
	require.NoError(t, err)
	assert.Equal(t, turf.ID, deleted.ID)

	_, err = repo.FindByID(context.Background(), turf.ID)
	assert.Error(t, err)
}

func TestDelete_Rejections(t *testing.T) {
	booked := countFunc(func(context.Context, string) (int64, error) { return 2, nil })
	broken := countFunc(func(context.Context, string) (int64, error) { return 0, errors.New("connection reset") })

	tests := []struct {
		name    string
		counter BookingCounter
		caller  string
		id      func(turfID string) string
		status  int
	}{
		{"unknown turf", countFunc(noBookings), ownerID, func(string) string { return "missing" }, http.StatusNotFound},
		{"another owner", countFunc(noBookings), otherID, func(id string) string { return id }, http.StatusForbidden},
		{"has bookings", booked, ownerID, func(id string) string { return id }, http.StatusConflict},
		{"count fails", broken, ownerID, func(id string) string { return id }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newService(t, tt.counter)
			turf, err := svc.Register(context.Background(), ownerID, turfRequest())
			require.NoError(t, err)

			_, err = svc.Delete(context.Background(), tt.caller, tt.id(turf.ID))
			assert.Equal(t, tt.status, statusOf(t, err))

			_, err = repo.FindByID(context.Background(), turf.ID)
			assert.NoError(t, err)
		})
	}
}
