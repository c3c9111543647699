package service

import (
	"context"
	"errors"
	"strings"
	"time"

	turfserrors "turfbook/internal/turfs/errors"
	"turfbook/internal/turfs/repository"
	"turfbook/internal/turfs/validator"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	"turfbook/pkg/model"
	"turfbook/pkg/sanitizer"
	"turfbook/pkg/validation"

	"github.com/google/uuid"
)

// BookingCounter is the slice of the booking store the turf service needs to
// refuse deleting a turf that bookings still point at.
type BookingCounter interface {
	CountByTurf(ctx context.Context, turfID string) (int64, error)
}

type TurfService interface {
	Register(ctx context.Context, ownerID string, req *model.RegisterTurfRequest) (*model.Turf, error)
	List(ctx context.Context) ([]*model.Turf, error)
	Get(ctx context.Context, id string) (*model.Turf, error)
	Delete(ctx context.Context, ownerID, id string) (*model.Turf, error)
}

type turfService struct {
	repo      repository.TurfRepository
	bookings  BookingCounter
	validator *validator.TurfValidator
	cfg       *config.Config
}

func NewTurfService(
	repo repository.TurfRepository,
	bookings BookingCounter,
	validator *validator.TurfValidator,
	cfg *config.Config,
) TurfService {
	return &turfService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *turfService) Register(ctx context.Context, ownerID string, req *model.RegisterTurfRequest) (*model.Turf, error) {
	s.sanitize(req)
	if err := s.validator.Validate(req); err != nil {
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.Validation("Invalid turf", verrs.Details())
		}
		return nil, apperrors.InvalidInput(err.Error())
	}

	turf := &model.Turf{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Location:    req.Location,
		OwnerID:     ownerID,
		Price:       req.Price,
		IsAvailable: true,
		ImageURLs:   sanitizer.NormalizeImageURLs(req.ImageURLs),
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	if req.IsAvailable != nil {
		turf.IsAvailable = *req.IsAvailable
	}

	if err := s.repo.Create(ctx, turf); err != nil {
		if errors.Is(err, turfserrors.ErrOwnerNotFound) {
			return nil, apperrors.NotFoundWithID("Owner", ownerID)
		}
		s.cfg.Log.Error("Failed to create turf", "owner_id", ownerID, "error", err)
		return nil, apperrors.Internal("Failed to register turf", err)
	}

	s.cfg.Log.Info("Turf registered",
		"id", turf.ID,
		"owner_id", ownerID,
		"name", turf.Name,
		"images", len(turf.ImageURLs),
	)
	return turf, nil
}

func (s *turfService) List(ctx context.Context) ([]*model.Turf, error) {
	turfs, err := s.repo.FindAll(ctx, config.DefaultListLimit)
	if err != nil {
		s.cfg.Log.Error("Failed to list turfs", "error", err)
		return nil, apperrors.Internal("Failed to retrieve turfs", err)
	}
	return turfs, nil
}

func (s *turfService) Get(ctx context.Context, id string) (*model.Turf, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Turf ID cannot be empty")
	}

	turf, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, turfserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Turf", id)
		}
		s.cfg.Log.Error("Failed to retrieve turf", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve turf", err)
	}
	return turf, nil
}

// Delete removes a turf the caller owns. Bookings are history and are never
// removed, so a turf with any bookings stays.
func (s *turfService) Delete(ctx context.Context, ownerID, id string) (*model.Turf, error) {
	turf, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if turf.OwnerID != ownerID {
		s.cfg.Log.Warn("Turf delete by non-owner", "id", id, "owner_id", turf.OwnerID, "caller_id", ownerID)
		return nil, apperrors.Forbidden("You can only delete your own turfs")
	}

	count, err := s.bookings.CountByTurf(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to count turf bookings", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to delete turf", err)
	}
	if count > 0 {
		return nil, apperrors.Conflict("Turf has bookings and cannot be deleted")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, turfserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Turf", id)
		case errors.Is(err, turfserrors.ErrHasBookings):
			return nil, apperrors.Conflict("Turf has bookings and cannot be deleted")
		}
		s.cfg.Log.Error("Failed to delete turf", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to delete turf", err)
	}

	s.cfg.Log.Info("Turf deleted", "id", id, "owner_id", ownerID)
	return deleted, nil
}

func (s *turfService) sanitize(req *model.RegisterTurfRequest) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Location = sanitizer.NormalizeName(req.Location)
	// URLs are only trimmed here; they are validated as given and normalized afterwards.
	req.ImageURLs = sanitizer.NormalizeStringSlice(req.ImageURLs, strings.TrimSpace)
}
