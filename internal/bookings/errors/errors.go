package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	// ErrSlotTaken is the admission decision: another confirmed booking
	// already holds the (turf, date, time slot).
	ErrSlotTaken = errors.New("slot already booked")

	ErrAlreadyCanceled = errors.New("booking already canceled")

	// ErrUnknownReference is returned when the user or turf a booking points
	// at does not exist.
	ErrUnknownReference = errors.New("booking references an unknown user or turf")
)
