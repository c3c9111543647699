package errors

import "errors"

var (
	ErrNotFound = errors.New("principal not found")

	// ErrDuplicate is returned when a username, email or phone number is
	// already registered for the same principal kind.
	ErrDuplicate = errors.New("principal already exists")

	// ErrTokenMismatch means the stored refresh token is no longer the one
	// the caller presented.
	ErrTokenMismatch = errors.New("refresh token does not match")
)
