package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FeeStatus is derived from (amount, paidAmount), never set directly.
type FeeStatus string

const (
	FeePaid    FeeStatus = "Paid"
	FeePartial FeeStatus = "Partial"
	FeeDue     FeeStatus = "Due"
)

func (s FeeStatus) Valid() bool {
	switch s {
	case FeePaid, FeePartial, FeeDue:
		return true
	}
	return false
}

func (s *FeeStatus) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(s), func(v string) bool { return FeeStatus(v).Valid() }, "fee status")
}

type DurationUnit string

const (
	UnitDay   DurationUnit = "DAY"
	UnitWeek  DurationUnit = "WEEK"
	UnitMonth DurationUnit = "MONTH"
	UnitYear  DurationUnit = "YEAR"
)

func (u DurationUnit) Valid() bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth, UnitYear:
		return true
	}
	return false
}

func (u *DurationUnit) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(u), func(v string) bool { return DurationUnit(v).Valid() }, "duration unit")
}

type PricingModel string

const (
	PricingFlat   PricingModel = "FLAT"
	PricingHourly PricingModel = "HOURLY"
)

func (m PricingModel) Valid() bool {
	return m == PricingFlat || m == PricingHourly
}

func (m *PricingModel) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(m), func(v string) bool { return PricingModel(v).Valid() }, "pricing model")
}

// Activation selects how the weekday set of a booking is built.
// DAILY always means all seven days.
type Activation string

const (
	ActivationDaily  Activation = "DAILY"
	ActivationCustom Activation = "CUSTOM"
)

func (a Activation) Valid() bool {
	return a == ActivationDaily || a == ActivationCustom
}

func (a *Activation) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(a), func(v string) bool { return Activation(v).Valid() }, "activation")
}

func unmarshalEnum(data []byte, dst *string, valid func(string) bool, name string) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%s must be a string: %w", name, err)
	}
	if raw == "" {
		*dst = ""
		return nil
	}
	if !valid(raw) {
		upper := strings.ToUpper(raw)
		if !valid(upper) {
			return fmt.Errorf("unknown %s %q", name, raw)
		}
		raw = upper
	}
	*dst = raw
	return nil
}
