package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	bookingserrors "turfbook/internal/bookings/errors"
	"turfbook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTurfs map[string][]*model.Turf

func (s stubTurfs) FindByOwner(_ context.Context, ownerID string) ([]*model.Turf, error) {
	return s[ownerID], nil
}

func slotBooking(id string) *model.Booking {
	return &model.Booking{
		ID:          id,
		UserID:      "u-" + id,
		TurfID:      "t1",
		BookingDate: "2025-03-14",
		TimeSlot:    "18:00-19:00",
		Status:      model.StatusConfirmed,
		CreatedAt:   time.Now(),
	}
}

func TestMemoryCreate_ConcurrentSameSlot(t *testing.T) {
	repo := NewMemoryBookingRepository(stubTurfs{})
	const n = 50

	var admitted, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(context.Background(), slotBooking(fmt.Sprintf("b%d", i)))
			switch {
			case err == nil:
				admitted.Add(1)
			case assert.ErrorIs(t, err, bookingserrors.ErrSlotTaken):
				rejected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load())
	assert.Equal(t, int32(n-1), rejected.Load())
}

func TestMemoryCancel_FreesSlot(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository(stubTurfs{})

	require.NoError(t, repo.Create(ctx, slotBooking("b1")))
	assert.ErrorIs(t, repo.Create(ctx, slotBooking("b2")), bookingserrors.ErrSlotTaken)

	canceled, err := repo.Cancel(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, canceled.Status)

	_, err = repo.Cancel(ctx, "b1")
	assert.ErrorIs(t, err, bookingserrors.ErrAlreadyCanceled)
	_, err = repo.Cancel(ctx, "missing")
	assert.ErrorIs(t, err, bookingserrors.ErrNotFound)

	require.NoError(t, repo.Create(ctx, slotBooking("b3")))

	bookings, err := repo.FindByTurf(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
}

func TestMemoryFindByOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookingRepository(stubTurfs{"o1": {{ID: "t1", OwnerID: "o1"}}})

	require.NoError(t, repo.Create(ctx, slotBooking("b1")))
	other := slotBooking("b2")
	other.TurfID = "t2"
	require.NoError(t, repo.Create(ctx, other))

	bookings, err := repo.FindByOwner(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "b1", bookings[0].ID)

	bookings, err = repo.FindByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, bookings)
}
