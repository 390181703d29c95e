package scheduling

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"ms-seating/internal/models"
)

var validate = validator.New()

// ValidateRequest runs the struct tags of a request payload and reports the
// first failing field as a *ValidationError.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: lowerFirst(fe.Field()), Message: describeTag(fe)}
	}
	return &ValidationError{Message: err.Error()}
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "datetime":
		return fmt.Sprintf("must match layout %s", fe.Param())
	case "email", "email|eq=N/A":
		return "must be an email address"
	}
	return fmt.Sprintf("failed %s check", fe.Tag())
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// Rules are the facility settings a booking is checked against.
type Rules struct {
	TotalSeats int
	// Today is the facility date; when set and AllowPastDates is false,
	// new bookings may not start before it.
	Today          string
	AllowPastDates bool
}

// ValidateBooking checks the invariants of a booking about to be written:
// member selected, seat within capacity, well-formed range and window, a
// non-empty weekday set that holds the start date's weekday, and a
// positive amount.
func ValidateBooking(b models.Booking, rules Rules) error {
	if strings.TrimSpace(b.MemberID) == "" {
		return invalid("memberId", "select a member")
	}
	if err := ValidateSchedule(b, rules); err != nil {
		return err
	}
	if b.Amount <= 0 {
		return invalid("amount", "total amount must be greater than zero")
	}
	if b.PaidAmount < 0 {
		return invalid("paidAmount", "must not be negative")
	}
	return nil
}

// ValidateSchedule checks only where and when a booking applies: seat,
// date range, daily window and weekday set. Imported records go through
// this without the pricing checks.
func ValidateSchedule(b models.Booking, rules Rules) error {
	if b.SeatNumber < 1 {
		return invalid("seatNumber", "must be a positive seat number")
	}
	if rules.TotalSeats > 0 && b.SeatNumber > rules.TotalSeats {
		return invalid("seatNumber", "seat %d exceeds capacity of %d", b.SeatNumber, rules.TotalSeats)
	}

	anchor, err := Weekday(b.StartDate)
	if err != nil {
		return invalid("startDate", "%v", err)
	}
	if _, err := ParseDate(b.EndDate); err != nil {
		return invalid("endDate", "%v", err)
	}
	if b.EndDate < b.StartDate {
		return invalid("endDate", "%s is before start date %s", b.EndDate, b.StartDate)
	}
	if rules.Today != "" && !rules.AllowPastDates && b.StartDate < rules.Today {
		return invalid("startDate", "%s is in the past", b.StartDate)
	}

	if _, err := HoursPerSession(b.StartTime, b.EndTime); err != nil {
		return err
	}

	if len(b.DaysOfWeek) == 0 {
		return invalid("daysOfWeek", "select at least one weekday")
	}
	for _, d := range b.DaysOfWeek {
		if d < 0 || d > 6 {
			return invalid("daysOfWeek", "weekday %d is outside 0..6", d)
		}
	}
	if !ContainsDay(b.DaysOfWeek, anchor) {
		return invalid("daysOfWeek", "must include the weekday of the start date (%d)", anchor)
	}
	return nil
}
