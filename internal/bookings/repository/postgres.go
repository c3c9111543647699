package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	bookingserrors "turfbook/internal/bookings/errors"
	migrations "turfbook/internal/migrations/postgres"
	"turfbook/pkg/config"
	"turfbook/pkg/db"
	"turfbook/pkg/db/postgres"
	"turfbook/pkg/model"

	"github.com/jmoiron/sqlx"
)

// booking_date is a date column; it is read back as text so the API keeps
// the YYYY-MM-DD form it was booked with.
const (
	bookingColumns       = "id, user_id, turf_id, booking_date::text AS booking_date, time_slot, status, created_at"
	joinedBookingColumns = "b.id, b.user_id, b.turf_id, b.booking_date::text AS booking_date, b.time_slot, b.status, b.created_at"
	bookingOrder         = "booking_date, time_slot, created_at"
)

type postgresBookingRepository struct {
	cfg *config.Config
	db  *sqlx.DB
}

func NewPostgresBookingRepository(cfg *config.Config, conn *sqlx.DB) BookingRepository {
	return &postgresBookingRepository{cfg: cfg, db: conn}
}

func (r *postgresBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO bookings (id, user_id, turf_id, booking_date, time_slot, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		booking.ID, booking.UserID, booking.TurfID, booking.BookingDate, booking.TimeSlot, booking.Status, booking.CreatedAt,
	)
	if err != nil {
		switch {
		case postgres.IsUniqueViolation(err) && postgres.ConstraintName(err) == migrations.ConfirmedSlotIndex:
			return bookingserrors.ErrSlotTaken
		case postgres.IsForeignKeyViolation(err), postgres.IsInvalidText(err):
			return bookingserrors.ErrUnknownReference
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *postgresBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var booking model.Booking
	if err := r.db.GetContext(ctx, &booking, "SELECT "+bookingColumns+" FROM bookings WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) || postgres.IsInvalidText(err) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *postgresBookingRepository) FindByTurf(ctx context.Context, turfID string) ([]*model.Booking, error) {
	return r.selectMany(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE turf_id = $1 ORDER BY "+bookingOrder, turfID)
}

func (r *postgresBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return r.selectMany(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE user_id = $1 ORDER BY "+bookingOrder, userID)
}

func (r *postgresBookingRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	return r.selectMany(ctx, `SELECT `+joinedBookingColumns+`
FROM bookings b
JOIN turfs t ON b.turf_id = t.id
WHERE t.owner_id = $1
ORDER BY b.booking_date, b.time_slot, b.created_at`, ownerID)
}

// selectMany treats a malformed id as matching nothing.
func (r *postgresBookingRepository) selectMany(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	bookings := []*model.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		if postgres.IsInvalidText(err) {
			return []*model.Booking{}, nil
		}
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *postgresBookingRepository) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var booking model.Booking
	err := r.db.GetContext(ctx, &booking,
		"UPDATE bookings SET status = $2 WHERE id = $1 AND status = $3 RETURNING "+bookingColumns,
		id, model.StatusCanceled, model.StatusConfirmed,
	)
	if err == nil {
		return &booking, nil
	}
	if postgres.IsInvalidText(err) {
		return nil, bookingserrors.ErrNotFound
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, bookingserrors.ErrAlreadyCanceled
}

func (r *postgresBookingRepository) CountByTurf(ctx context.Context, turfID string) (int64, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var count int64
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM bookings WHERE turf_id = $1", turfID); err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}
