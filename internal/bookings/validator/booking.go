package validator

import (
	"turfbook/pkg/logger"
	"turfbook/pkg/model"
	"turfbook/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := validation.New()
	if err != nil {
		log.Fatal("Failed to initialize booking validator", "error", err)
	}

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

// Validate checks presence and shape: uuid ids, YYYY-MM-DD date and an
// HH:MM-HH:MM slot whose start precedes its end.
func (v *BookingValidator) Validate(req *model.CreateBookingRequest) error {
	return validation.Struct(v.validate, req)
}
