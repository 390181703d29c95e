package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Booking is a recurring reservation of one seat for one member.
// Dates are YYYY-MM-DD and times HH:MM, both zero-padded so they
// compare correctly as strings.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID         string    `bun:"id,pk" json:"id"`
	MemberID   string    `bun:"member_id,notnull" json:"memberId"`
	MemberName string    `bun:"member_name,notnull" json:"memberName"`
	SeatNumber int       `bun:"seat_number,notnull" json:"seatNumber"`
	StartDate  string    `bun:"start_date,notnull" json:"startDate"`
	EndDate    string    `bun:"end_date,notnull" json:"endDate"`
	StartTime  string    `bun:"start_time,notnull" json:"startTime"`
	EndTime    string    `bun:"end_time,notnull" json:"endTime"`
	DaysOfWeek []int     `bun:"days_of_week,notnull" json:"daysOfWeek"`
	Amount     float64   `bun:"amount,notnull" json:"amount"`
	PaidAmount float64   `bun:"paid_amount,notnull" json:"paidAmount"`
	FeeStatus  FeeStatus `bun:"fee_status,notnull" json:"feeStatus"`
	CreatedAt  time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// BookingRequest is the create/edit payload of the booking form.
type BookingRequest struct {
	MemberID   string  `json:"memberId" validate:"required"`
	SeatNumber int     `json:"seatNumber" validate:"required,min=1"`
	StartDate  string  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate    string  `json:"endDate" validate:"required,datetime=2006-01-02"`
	StartTime  string  `json:"startTime" validate:"required,datetime=15:04"`
	EndTime    string  `json:"endTime" validate:"required,datetime=15:04"`
	DaysOfWeek []int   `json:"daysOfWeek" validate:"required,min=1,dive,min=0,max=6"`
	Amount     float64 `json:"amount"`
	PaidAmount float64 `json:"paidAmount" validate:"min=0"`
}

// QuoteRequest carries the duration and pricing configuration the form
// uses to derive the end date and the total price.
type QuoteRequest struct {
	// MemberID, when set, prices FLAT bookings at the member's default price.
	MemberID      string       `json:"memberId,omitempty"`
	StartDate     string       `json:"startDate" validate:"required,datetime=2006-01-02"`
	DurationValue int          `json:"durationValue" validate:"required,min=1"`
	DurationUnit  DurationUnit `json:"durationUnit"`
	StartTime     string       `json:"startTime" validate:"required,datetime=15:04"`
	EndTime       string       `json:"endTime" validate:"required,datetime=15:04"`
	Activation    Activation   `json:"activation"`
	DaysOfWeek    []int        `json:"daysOfWeek" validate:"dive,min=0,max=6"`
	PricingModel  PricingModel `json:"pricingModel"`
	UnitPrice     *float64     `json:"unitPrice,omitempty" validate:"omitempty,min=0"`
	HourlyRate    *float64     `json:"hourlyRate,omitempty" validate:"omitempty,min=0"`
	PaidAmount    float64      `json:"paidAmount" validate:"min=0"`
}

// Quote is the preview shown while a booking is being configured.
type Quote struct {
	StartDate       string       `json:"startDate"`
	EndDate         string       `json:"endDate"`
	DaysOfWeek      []int        `json:"daysOfWeek"`
	ActiveDays      int          `json:"activeDays"`
	HoursPerSession float64      `json:"hoursPerSession"`
	PricingModel    PricingModel `json:"pricingModel"`
	Amount          float64      `json:"amount"`
	PaidAmount      float64      `json:"paidAmount"`
	DueAmount       float64      `json:"dueAmount"`
	FeeStatus       FeeStatus    `json:"feeStatus"`
}
