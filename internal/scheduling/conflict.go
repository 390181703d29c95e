package scheduling

import (
	"ms-seating/internal/models"
)

// Conflicts reports whether a and b would ever occupy the same seat at the
// same minute. Besides same seat, intersecting date ranges, intersecting
// weekday sets and intersecting [start, end) windows, the shared weekday
// must actually fall inside the shared date range: two bookings on a
// two-day overlap with Mon and Thu respectively never meet.
func Conflicts(a, b models.Booking) bool {
	if a.SeatNumber != b.SeatNumber {
		return false
	}
	if !(a.StartTime < b.EndTime && b.StartTime < a.EndTime) {
		return false
	}

	lo, hi := a.StartDate, a.EndDate
	if b.StartDate > lo {
		lo = b.StartDate
	}
	if b.EndDate < hi {
		hi = b.EndDate
	}
	if lo > hi {
		return false
	}

	shared := newWeekdaySet(a.DaysOfWeek).intersect(newWeekdaySet(b.DaysOfWeek))
	if shared.empty() {
		return false
	}

	from, err := ParseDate(lo)
	if err != nil {
		return true
	}
	to, err := ParseDate(hi)
	if err != nil {
		return true
	}
	if daysBetween(from, to) >= 6 {
		return true
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if shared[d.Weekday()] {
			return true
		}
	}
	return false
}

// FindConflicts returns every booking in existing that conflicts with
// candidate. The booking whose ID equals excludeID is skipped so an edit
// does not collide with its own stored version.
func FindConflicts(candidate models.Booking, existing []models.Booking, excludeID string) []models.Booking {
	var out []models.Booking
	for _, b := range existing {
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if Conflicts(candidate, b) {
			out = append(out, b)
		}
	}
	return out
}

// CheckConflicts wraps FindConflicts into a *ConflictError.
func CheckConflicts(candidate models.Booking, existing []models.Booking, excludeID string) error {
	found := FindConflicts(candidate, existing, excludeID)
	if len(found) == 0 {
		return nil
	}
	return &ConflictError{Seat: candidate.SeatNumber, Conflicts: found}
}
