package scheduling

import (
	"math"

	"ms-seating/internal/models"
)

// DefaultHourlyRate applies to HOURLY pricing when no rate is configured.
const DefaultHourlyRate = 30

// PriceInput holds everything a pricing model may need. FLAT reads
// DurationValue and UnitPrice; HOURLY reads ActiveDays, HoursPerSession
// and HourlyRate.
type PriceInput struct {
	Model           models.PricingModel
	DurationValue   int
	UnitPrice       float64
	ActiveDays      int
	HoursPerSession float64
	HourlyRate      float64
}

// ComputePrice returns the total price of a booking. HOURLY totals are
// rounded to the nearest whole currency unit, FLAT totals are not.
func ComputePrice(in PriceInput) (float64, error) {
	switch in.Model {
	case models.PricingFlat:
		if in.DurationValue < 1 {
			return 0, invalid("durationValue", "must be at least 1, got %d", in.DurationValue)
		}
		if in.UnitPrice < 0 {
			return 0, invalid("unitPrice", "must not be negative")
		}
		return float64(in.DurationValue) * in.UnitPrice, nil
	case models.PricingHourly:
		if in.HoursPerSession <= 0 {
			return 0, invalid("endTime", "session must end after it starts")
		}
		if in.HourlyRate < 0 {
			return 0, invalid("hourlyRate", "must not be negative")
		}
		return math.Round(float64(in.ActiveDays) * in.HoursPerSession * in.HourlyRate), nil
	default:
		return 0, invalid("pricingModel", "unknown pricing model %q", in.Model)
	}
}

// HoursPerSession is the fractional length of the daily window.
func HoursPerSession(startTime, endTime string) (float64, error) {
	from, err := ParseClock(startTime)
	if err != nil {
		return 0, invalid("startTime", "%v", err)
	}
	to, err := ParseClock(endTime)
	if err != nil {
		return 0, invalid("endTime", "%v", err)
	}
	if to <= from {
		return 0, invalid("endTime", "%s is not after %s", endTime, startTime)
	}
	return float64(to-from) / 60, nil
}

// DeriveFeeStatus is Paid once a positive amount is covered, Partial while
// some but not all of it is paid, and Due otherwise. A zero amount is
// never Paid.
func DeriveFeeStatus(amount, paid float64) models.FeeStatus {
	switch {
	case amount > 0 && paid >= amount:
		return models.FeePaid
	case paid > 0 && paid < amount:
		return models.FeePartial
	default:
		return models.FeeDue
	}
}

// Outstanding is the unpaid part of amount, never negative.
func Outstanding(amount, paid float64) float64 {
	return math.Max(0, amount-paid)
}
