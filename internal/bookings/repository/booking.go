package repository

import (
	"context"

	"turfbook/pkg/model"
)

// BookingRepository persists bookings. Create is the admission decision: it
// fails with ErrSlotTaken when a confirmed booking already holds the slot, and
// implementations must make that check and the insert one atomic step.
type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByTurf(ctx context.Context, turfID string) ([]*model.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error)
	// Cancel moves a confirmed booking to canceled. Rows are never deleted.
	Cancel(ctx context.Context, id string) (*model.Booking, error)
	CountByTurf(ctx context.Context, turfID string) (int64, error)
}
