package repository

import (
	"context"
	"sort"
	"sync"

	bookingserrors "turfbook/internal/bookings/errors"
	"turfbook/pkg/model"
)

// TurfLookup resolves turf ownership for FindByOwner.
type TurfLookup interface {
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Turf, error)
}

// memoryBookingRepository holds a slot index under the same lock as the
// insert, mirroring the partial unique index of the database drivers.
type memoryBookingRepository struct {
	mu        sync.RWMutex
	turfs     TurfLookup
	bookings  map[string]*model.Booking
	confirmed map[string]string
}

func NewMemoryBookingRepository(turfs TurfLookup) BookingRepository {
	return &memoryBookingRepository{
		turfs:     turfs,
		bookings:  make(map[string]*model.Booking),
		confirmed: make(map[string]string),
	}
}

func (r *memoryBookingRepository) Create(_ context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := booking.Slot().Key()
	if booking.Status == model.StatusConfirmed {
		if _, taken := r.confirmed[key]; taken {
			return bookingserrors.ErrSlotTaken
		}
		r.confirmed[key] = booking.ID
	}
	c := *booking
	r.bookings[booking.ID] = &c
	return nil
}

func (r *memoryBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (r *memoryBookingRepository) FindByTurf(_ context.Context, turfID string) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.TurfID == turfID }), nil
}

func (r *memoryBookingRepository) FindByUser(_ context.Context, userID string) ([]*model.Booking, error) {
	return r.filter(func(b *model.Booking) bool { return b.UserID == userID }), nil
}

func (r *memoryBookingRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Booking, error) {
	turfs, err := r.turfs.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	owned := make(map[string]bool, len(turfs))
	for _, t := range turfs {
		owned[t.ID] = true
	}
	return r.filter(func(b *model.Booking) bool { return owned[b.TurfID] }), nil
}

func (r *memoryBookingRepository) Cancel(_ context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if b.Status != model.StatusConfirmed {
		return nil, bookingserrors.ErrAlreadyCanceled
	}

	b.Status = model.StatusCanceled
	delete(r.confirmed, b.Slot().Key())
	c := *b
	return &c, nil
}

func (r *memoryBookingRepository) CountByTurf(_ context.Context, turfID string) (int64, error) {
	return int64(len(r.filter(func(b *model.Booking) bool { return b.TurfID == turfID }))), nil
}

func (r *memoryBookingRepository) filter(keep func(*model.Booking) bool) []*model.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bookings := []*model.Booking{}
	for _, b := range r.bookings {
		if keep(b) {
			c := *b
			bookings = append(bookings, &c)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if a.BookingDate != b.BookingDate {
			return a.BookingDate < b.BookingDate
		}
		if a.TimeSlot != b.TimeSlot {
			return a.TimeSlot < b.TimeSlot
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return bookings
}
