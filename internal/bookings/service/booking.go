package service

import (
	"context"
	"errors"
	"time"

	bookingserrors "turfbook/internal/bookings/errors"
	"turfbook/internal/bookings/repository"
	"turfbook/internal/bookings/validator"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	"turfbook/pkg/model"
	"turfbook/pkg/validation"

	"github.com/google/uuid"
)

const msgSlotTaken = "Turf is not available for the selected date and time"

// TurfReader resolves the turf a booking targets. Errors are expected to be
// AppErrors already (404 for an unknown turf).
type TurfReader interface {
	Get(ctx context.Context, id string) (*model.Turf, error)
}

type BookingService interface {
	RequestBooking(ctx context.Context, callerID string, req *model.CreateBookingRequest) (*model.Booking, error)
	CancelBooking(ctx context.Context, callerID, id string) (*model.Booking, error)
	ListByTurf(ctx context.Context, turfID string) ([]*model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	turfs     TurfReader
	validator *validator.BookingValidator
	events    EventPublisher
	cfg       *config.Config
}

// NewBookingService builds the admission controller. events may be nil, in
// which case no lifecycle events are published.
func NewBookingService(
	repo repository.BookingRepository,
	turfs TurfReader,
	validator *validator.BookingValidator,
	events EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		turfs:     turfs,
		validator: validator,
		events:    events,
		cfg:       cfg,
	}
}

// RequestBooking admits a booking for a slot. The store's uniqueness over
// confirmed (turf, date, slot) is the only availability check; losing that
// race is reported as a conflict.
func (s *bookingService) RequestBooking(ctx context.Context, callerID string, req *model.CreateBookingRequest) (*model.Booking, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if req.UserID != callerID {
		s.cfg.Log.Warn("Booking requested for another user", "user_id", req.UserID, "caller_id", callerID)
		return nil, apperrors.Forbidden("You can only book for yourself")
	}

	turf, err := s.turfs.Get(ctx, req.TurfID)
	if err != nil {
		return nil, err
	}
	if !turf.IsAvailable {
		return nil, apperrors.Conflict("Turf is not accepting bookings")
	}

	booking := &model.Booking{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		TurfID:      req.TurfID,
		BookingDate: req.BookingDate,
		TimeSlot:    req.TimeSlot,
		Status:      model.StatusConfirmed,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrSlotTaken):
			s.cfg.Log.Info("Booking rejected, slot taken",
				"turf_id", booking.TurfID,
				"booking_date", booking.BookingDate,
				"time_slot", booking.TimeSlot,
			)
			return nil, apperrors.Conflict(msgSlotTaken)
		case errors.Is(err, bookingserrors.ErrUnknownReference):
			return nil, apperrors.NotFound("Turf or user")
		}
		s.cfg.Log.Error("Failed to create booking", "turf_id", booking.TurfID, "user_id", booking.UserID, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking confirmed",
		"id", booking.ID,
		"user_id", booking.UserID,
		"turf_id", booking.TurfID,
		"booking_date", booking.BookingDate,
		"time_slot", booking.TimeSlot,
	)
	s.publish(ctx, EventBookingCreated, booking)
	return booking, nil
}

// CancelBooking moves the caller's booking from confirmed to canceled, which
// frees the slot. A second cancel is a conflict rather than a silent success.
func (s *bookingService) CancelBooking(ctx context.Context, callerID, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapCancelError(id, err)
	}
	if booking.UserID != callerID {
		s.cfg.Log.Warn("Booking cancel by non-owner", "id", id, "user_id", booking.UserID, "caller_id", callerID)
		return nil, apperrors.Forbidden("You can only cancel your own bookings")
	}

	canceled, err := s.repo.Cancel(ctx, id)
	if err != nil {
		return nil, s.mapCancelError(id, err)
	}

	s.cfg.Log.Info("Booking canceled", "id", id, "turf_id", canceled.TurfID, "user_id", canceled.UserID)
	s.publish(ctx, EventBookingCanceled, canceled)
	return canceled, nil
}

func (s *bookingService) ListByTurf(ctx context.Context, turfID string) ([]*model.Booking, error) {
	if turfID == "" {
		return nil, apperrors.InvalidInput("Turf ID cannot be empty")
	}
	return s.list(ctx, "turf_id", turfID, s.repo.FindByTurf)
}

func (s *bookingService) ListByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("User ID cannot be empty")
	}
	return s.list(ctx, "user_id", userID, s.repo.FindByUser)
}

func (s *bookingService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	if ownerID == "" {
		return nil, apperrors.InvalidInput("Owner ID cannot be empty")
	}
	return s.list(ctx, "owner_id", ownerID, s.repo.FindByOwner)
}

func (s *bookingService) list(
	ctx context.Context,
	key, id string,
	find func(context.Context, string) ([]*model.Booking, error),
) ([]*model.Booking, error) {
	bookings, err := find(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", key, id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

// validate also rewrites the slot into its canonical form, which is the
// value the uniqueness constraint compares.
func (s *bookingService) validate(req *model.CreateBookingRequest) error {
	if err := s.validator.Validate(req); err != nil {
		var verrs validation.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.Validation("Invalid booking request", verrs.Details())
		}
		return apperrors.InvalidInput(err.Error())
	}

	slot, err := validation.NormalizeTimeSlot(req.TimeSlot)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	req.TimeSlot = slot
	return nil
}

func (s *bookingService) mapCancelError(id string, err error) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrAlreadyCanceled):
		return apperrors.Conflict("Booking is already canceled")
	}
	s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
	return apperrors.Internal("Failed to cancel booking", err)
}
