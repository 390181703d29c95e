package scheduling

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ParseDate parses a zero-padded YYYY-MM-DD date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD", s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Weekday returns 0 (Sunday) through 6 (Saturday) for a YYYY-MM-DD date.
func Weekday(date string) (int, error) {
	t, err := ParseDate(date)
	if err != nil {
		return 0, err
	}
	return int(t.Weekday()), nil
}

// ParseClock returns minutes since midnight for a zero-padded HH:MM string.
func ParseClock(s string) (int, error) {
	if len(s) != len(ClockLayout) {
		return 0, fmt.Errorf("time %q is not HH:MM", s)
	}
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("time %q is not HH:MM: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Instant is one (date, time-of-day) point with its weekday precomputed,
// so evaluating many bookings against it parses the date once.
type Instant struct {
	Date    string
	Time    string
	Weekday int
}

// NewInstant reads the wall clock of t in its own location.
func NewInstant(t time.Time) Instant {
	return Instant{
		Date:    t.Format(DateLayout),
		Time:    t.Format(ClockLayout),
		Weekday: int(t.Weekday()),
	}
}

func ParseInstant(date, clock string) (Instant, error) {
	wd, err := Weekday(date)
	if err != nil {
		return Instant{}, err
	}
	if _, err := ParseClock(clock); err != nil {
		return Instant{}, err
	}
	return Instant{Date: date, Time: clock, Weekday: wd}, nil
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
