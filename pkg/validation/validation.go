// Package validation wraps go-playground/validator with the custom tags the
// turfbook request types use and turns its errors into field messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var usernameRegex = regexp.MustCompile(`^[a-z0-9_.]{3,30}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors as field -> message for the error envelope.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// New returns a validator that reports json field names and knows the
// username, booking_date and time_slot tags.
func New() (*validator.Validate, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	custom := map[string]validator.Func{
		"username":     validateUsername,
		"booking_date": validateBookingDate,
		"time_slot":    validateTimeSlot,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %q validator: %w", tag, err)
		}
	}
	return v, nil
}

func validateUsername(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

func validateBookingDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	_, _, err := ParseTimeSlot(fl.Field().String())
	return err == nil
}

// ParseTimeSlot splits "HH:MM-HH:MM" into its bounds. The start must be
// strictly before the end; slots do not wrap past midnight.
func ParseTimeSlot(slot string) (time.Time, time.Time, error) {
	from, to, ok := strings.Cut(slot, "-")
	if !ok {
		return time.Time{}, time.Time{}, errors.New("time slot must look like HH:MM-HH:MM")
	}
	start, err := time.Parse(ClockLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid slot start: %w", err)
	}
	end, err := time.Parse(ClockLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid slot end: %w", err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, errors.New("slot start must be before slot end")
	}
	return start, end, nil
}

// NormalizeTimeSlot rewrites a valid slot into zero-padded HH:MM-HH:MM so
// that "9:00-10:00" and "09:00-10:00" share one storage key.
func NormalizeTimeSlot(slot string) (string, error) {
	start, end, err := ParseTimeSlot(slot)
	if err != nil {
		return "", err
	}
	return start.Format(ClockLayout) + "-" + end.Format(ClockLayout), nil
}

// Struct validates s and returns ValidationErrors for field failures.
func Struct(v *validator.Validate, s any) error {
	if err := v.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return Translate(validationErrs)
		}
		return err
	}
	return nil
}

func Translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +919876543210)", err.Field())
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", err.Field())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "http_url":
			message = fmt.Sprintf("%s must be an http(s) URL", err.Field())
		case "username":
			message = fmt.Sprintf("%s must be 3-30 characters of a-z, 0-9, '_' or '.'", err.Field())
		case "booking_date":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "time_slot":
			message = fmt.Sprintf("%s must look like HH:MM-HH:MM with start before end", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
