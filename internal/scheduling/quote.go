package scheduling

import (
	"sort"

	"ms-seating/internal/models"
)

// AllDays is the weekday set used by DAILY activation.
var AllDays = []int{0, 1, 2, 3, 4, 5, 6}

// QuoteDefaults fills prices the request leaves out.
type QuoteDefaults struct {
	UnitPrice  float64
	HourlyRate float64
}

// NormalizeDays returns the weekday set for an activation mode, sorted and
// deduplicated. CUSTOM always keeps the weekday of startDate.
func NormalizeDays(activation models.Activation, startDate string, days []int) ([]int, error) {
	if activation == models.ActivationDaily {
		return append([]int(nil), AllDays...), nil
	}
	anchor, err := Weekday(startDate)
	if err != nil {
		return nil, invalid("startDate", "%v", err)
	}
	set := newWeekdaySet(days)
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, invalid("daysOfWeek", "weekday %d is outside 0..6", d)
		}
	}
	set[anchor] = true
	return set.days(), nil
}

func (s weekdaySet) days() []int {
	out := make([]int, 0, 7)
	for d, on := range s {
		if on {
			out = append(out, d)
		}
	}
	return out
}

// SortDays returns a sorted copy of days without duplicates.
func SortDays(days []int) []int {
	out := append([]int(nil), days...)
	sort.Ints(out)
	j := 0
	for i, d := range out {
		if i > 0 && d == out[j-1] {
			continue
		}
		out[j] = d
		j++
	}
	return out[:j]
}

// BuildQuote runs the booking form's live preview: end date, session count,
// price and fee status for one configuration.
func BuildQuote(req models.QuoteRequest, defaults QuoteDefaults) (models.Quote, error) {
	unit := req.DurationUnit
	if unit == "" {
		unit = models.UnitMonth
	}
	model := req.PricingModel
	if model == "" {
		model = models.PricingFlat
	}
	activation := req.Activation
	if activation == "" {
		activation = models.ActivationDaily
		if len(req.DaysOfWeek) > 0 {
			activation = models.ActivationCustom
		}
	}

	end, err := ComputeEndDate(req.StartDate, req.DurationValue, unit)
	if err != nil {
		return models.Quote{}, err
	}
	days, err := NormalizeDays(activation, req.StartDate, req.DaysOfWeek)
	if err != nil {
		return models.Quote{}, err
	}
	active, err := CountActiveDays(req.StartDate, end, days)
	if err != nil {
		return models.Quote{}, err
	}
	hours, err := HoursPerSession(req.StartTime, req.EndTime)
	if err != nil {
		return models.Quote{}, err
	}

	in := PriceInput{
		Model:           model,
		DurationValue:   req.DurationValue,
		UnitPrice:       defaults.UnitPrice,
		ActiveDays:      active,
		HoursPerSession: hours,
		HourlyRate:      defaults.HourlyRate,
	}
	if req.UnitPrice != nil {
		in.UnitPrice = *req.UnitPrice
	}
	if req.HourlyRate != nil {
		in.HourlyRate = *req.HourlyRate
	}
	if in.HourlyRate == 0 && req.HourlyRate == nil {
		in.HourlyRate = DefaultHourlyRate
	}

	amount, err := ComputePrice(in)
	if err != nil {
		return models.Quote{}, err
	}

	return models.Quote{
		StartDate:       req.StartDate,
		EndDate:         end,
		DaysOfWeek:      days,
		ActiveDays:      active,
		HoursPerSession: hours,
		PricingModel:    model,
		Amount:          amount,
		PaidAmount:      req.PaidAmount,
		DueAmount:       Outstanding(amount, req.PaidAmount),
		FeeStatus:       DeriveFeeStatus(amount, req.PaidAmount),
	}, nil
}
