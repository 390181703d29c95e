package scheduling

import (
	"errors"
	"fmt"
	"strings"

	"ms-seating/internal/models"
)

// ErrValidation matches every *ValidationError through errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrConflict matches every *ConflictError through errors.Is.
var ErrConflict = errors.New("booking conflict")

// ValidationError is raised before any state is touched. The caller is
// expected to correct the input and retry.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Invalid builds a ValidationError for callers outside this package.
func Invalid(field, format string, args ...interface{}) error {
	return invalid(field, format, args...)
}

// ConflictError lists the existing bookings that share at least one
// seat/day/minute with the rejected candidate.
type ConflictError struct {
	Seat      int
	Conflicts []models.Booking
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, b := range e.Conflicts {
		ids = append(ids, b.ID)
	}
	return fmt.Sprintf("seat %d is already booked by %s", e.Seat, strings.Join(ids, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// Anomaly records several bookings occupying one seat at the same instant.
// It only comes from data that bypassed the conflict gate (imports, legacy rows).
type Anomaly struct {
	Seat     int              `json:"seat"`
	Date     string           `json:"date"`
	Time     string           `json:"time"`
	Bookings []models.Booking `json:"bookings"`
}

func (a Anomaly) String() string {
	ids := make([]string, 0, len(a.Bookings))
	for _, b := range a.Bookings {
		ids = append(ids, b.ID)
	}
	return fmt.Sprintf("%d bookings active on %s at %s: %s", len(a.Bookings), a.Date, a.Time, strings.Join(ids, ", "))
}
