package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Member struct {
	bun.BaseModel `bun:"table:members"`

	ID           string    `bun:"id,pk" json:"id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Email        string    `bun:"email" json:"email"`
	Phone        string    `bun:"phone" json:"phone"`
	DefaultPrice *float64  `bun:"default_price" json:"defaultPrice,omitempty"`
	CreatedAt    time.Time `bun:"created_at,notnull" json:"createdAt"`
}

type MemberRequest struct {
	Name         string   `json:"name" validate:"required"`
	Email        string   `json:"email" validate:"omitempty,email|eq=N/A"`
	Phone        string   `json:"phone"`
	DefaultPrice *float64 `json:"defaultPrice,omitempty" validate:"omitempty,min=0"`
}

// MemberSummary is a member with the totals of all their bookings.
// TotalDues is not clamped and goes negative on overpayment.
type MemberSummary struct {
	Member
	TotalAmount  float64 `json:"totalAmount"`
	TotalPaid    float64 `json:"totalPaid"`
	TotalDues    float64 `json:"totalDues"`
	BookingCount int     `json:"bookingCount"`
}
