package scheduling

import (
	"time"

	"ms-seating/internal/models"
)

// ComputeEndDate resolves the inclusive last day of a span of value units
// starting on start.
//
// DAY and WEEK add value or value*7 days and step back one. MONTH and YEAR
// land on the same day-of-month in the target month and step back one; when
// that day does not exist in the target month the span ends on the target
// month's last day, so 2024-01-31 + 1 MONTH ends on 2024-02-29.
func ComputeEndDate(start string, value int, unit models.DurationUnit) (string, error) {
	if value < 1 {
		return "", invalid("durationValue", "must be at least 1, got %d", value)
	}
	t, err := ParseDate(start)
	if err != nil {
		return "", invalid("startDate", "%v", err)
	}

	var end time.Time
	switch unit {
	case models.UnitDay:
		end = t.AddDate(0, 0, value-1)
	case models.UnitWeek:
		end = t.AddDate(0, 0, value*7-1)
	case models.UnitMonth:
		end = monthSpanEnd(t, value)
	case models.UnitYear:
		end = monthSpanEnd(t, value*12)
	default:
		return "", invalid("durationUnit", "unknown unit %q", unit)
	}
	return FormatDate(end), nil
}

func monthSpanEnd(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		return time.Date(first.Year(), first.Month(), last, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// CountActiveDays counts the dates in [start, end] whose weekday is in days.
func CountActiveDays(start, end string, days []int) (int, error) {
	from, err := ParseDate(start)
	if err != nil {
		return 0, invalid("startDate", "%v", err)
	}
	to, err := ParseDate(end)
	if err != nil {
		return 0, invalid("endDate", "%v", err)
	}
	if to.Before(from) {
		return 0, invalid("endDate", "%s is before start date %s", end, start)
	}

	set := newWeekdaySet(days)
	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if set[d.Weekday()] {
			count++
		}
	}
	return count, nil
}
