// Package scheduling is the occupancy and scheduling engine: recurrence
// matching, occupancy indexes, duration and price resolution, conflict
// detection and dashboard aggregates. Every function is pure; callers pass
// the booking snapshot and the current time in.
//
// Daily windows are half-open: a booking from 09:00 to 18:00 occupies
// 09:00 and 17:59 but not 18:00.
package scheduling

import (
	"time"

	"ms-seating/internal/models"
)

// IsActive reports whether b occupies its seat on date at clock.
// A malformed date never matches.
func IsActive(b models.Booking, date, clock string) bool {
	wd, err := Weekday(date)
	if err != nil {
		return false
	}
	return Instant{Date: date, Time: clock, Weekday: wd}.Matches(b)
}

// IsActiveAt is IsActive for a wall-clock time.
func IsActiveAt(b models.Booking, t time.Time) bool {
	return NewInstant(t).Matches(b)
}

// Matches applies the three recurrence conditions: date inside the
// inclusive range, weekday selected, time inside [startTime, endTime).
func (i Instant) Matches(b models.Booking) bool {
	return coversDate(b, i.Date, i.Weekday) && inWindow(b, i.Time)
}

func coversDate(b models.Booking, date string, weekday int) bool {
	return b.StartDate <= date && date <= b.EndDate && ContainsDay(b.DaysOfWeek, weekday)
}

func inWindow(b models.Booking, clock string) bool {
	return b.StartTime <= clock && clock < b.EndTime
}

func ContainsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

type weekdaySet [7]bool

func newWeekdaySet(days []int) weekdaySet {
	var s weekdaySet
	for _, d := range days {
		if d >= 0 && d < 7 {
			s[d] = true
		}
	}
	return s
}

func (s weekdaySet) intersect(o weekdaySet) weekdaySet {
	var out weekdaySet
	for i := range s {
		out[i] = s[i] && o[i]
	}
	return out
}

func (s weekdaySet) empty() bool {
	for _, v := range s {
		if v {
			return false
		}
	}
	return true
}
