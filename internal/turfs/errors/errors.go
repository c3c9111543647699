package errors

import "errors"

var (
	ErrNotFound = errors.New("turf not found")

	ErrOwnerNotFound = errors.New("turf owner not found")

	// ErrHasBookings blocks deleting a turf that bookings still reference.
	ErrHasBookings = errors.New("turf has bookings")
)
