package service

import (
	"context"
	"time"

	"turfbook/pkg/kafka"
	"turfbook/pkg/middleware"
	"turfbook/pkg/model"
)

const (
	EventBookingCreated  = "booking.created"
	EventBookingCanceled = "booking.canceled"

	eventSource        = "turfbook"
	eventSchemaVersion = "1"
)

// EventPublisher is satisfied by *kafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type BookingEvent struct {
	BookingID   string              `json:"booking_id"`
	UserID      string              `json:"user_id"`
	TurfID      string              `json:"turf_id"`
	BookingDate string              `json:"booking_date"`
	TimeSlot    string              `json:"time_slot"`
	Status      model.BookingStatus `json:"status"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// publish is best effort: the booking row is already committed and stays the
// source of truth, so a broker failure is logged and swallowed.
func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.events == nil {
		return
	}

	msg, err := kafka.NewMessage().
		WithKey(booking.Slot().Key()).
		WithValue(BookingEvent{
			BookingID:   booking.ID,
			UserID:      booking.UserID,
			TurfID:      booking.TurfID,
			BookingDate: booking.BookingDate,
			TimeSlot:    booking.TimeSlot,
			Status:      booking.Status,
			OccurredAt:  time.Now().UTC(),
		}).
		WithEventType(eventType).
		WithCorrelationID(middleware.GetRequestID(ctx)).
		WithSource(eventSource).
		WithSchemaVersion(eventSchemaVersion).
		Build()
	if err == nil {
		err = s.events.Publish(ctx, msg)
	}
	if err != nil {
		s.cfg.Log.Warn("Failed to publish booking event",
			"event", eventType,
			"id", booking.ID,
			"error", err,
		)
	}
}
