package repository

import (
	"context"

	"turfbook/pkg/model"
)

type TurfRepository interface {
	Create(ctx context.Context, turf *model.Turf) error
	FindByID(ctx context.Context, id string) (*model.Turf, error)
	FindAll(ctx context.Context, limit int) ([]*model.Turf, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Turf, error)
	// Delete removes the turf and returns it. A turf that bookings still
	// reference is never removed.
	Delete(ctx context.Context, id string) (*model.Turf, error)
}
