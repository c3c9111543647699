package model

import "time"

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCanceled  BookingStatus = "canceled"
)

type Booking struct {
	ID          string        `json:"id" db:"id" bson:"_id"`
	UserID      string        `json:"user_id" db:"user_id" bson:"user_id"`
	TurfID      string        `json:"turf_id" db:"turf_id" bson:"turf_id"`
	BookingDate string        `json:"booking_date" db:"booking_date" bson:"booking_date"`
	TimeSlot    string        `json:"time_slot" db:"time_slot" bson:"time_slot"`
	Status      BookingStatus `json:"status" db:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at" bson:"created_at"`
}

// Slot identifies the (turf, date, time slot) a booking claims.
type Slot struct {
	TurfID      string
	BookingDate string
	TimeSlot    string
}

func (b *Booking) Slot() Slot {
	return Slot{TurfID: b.TurfID, BookingDate: b.BookingDate, TimeSlot: b.TimeSlot}
}

func (s Slot) Key() string {
	return s.TurfID + "|" + s.BookingDate + "|" + s.TimeSlot
}

type CreateBookingRequest struct {
	UserID      string `json:"user_id" validate:"required,uuid"`
	TurfID      string `json:"turf_id" validate:"required,uuid"`
	BookingDate string `json:"booking_date" validate:"required,booking_date"`
	TimeSlot    string `json:"time_slot" validate:"required,time_slot"`
}
