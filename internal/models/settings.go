package models

import (
	"time"

	"github.com/uptrace/bun"
)

const SettingsID = "global"

type Settings struct {
	bun.BaseModel `bun:"table:settings"`

	ID              string    `bun:"id,pk" json:"-"`
	TotalSeats      int       `bun:"total_seats,notnull" json:"totalSeats"`
	PricePerSession float64   `bun:"price_per_session,notnull" json:"pricePerSession"`
	AllowPastDates  bool      `bun:"allow_past_dates,notnull" json:"allowPastDates"`
	UpdatedAt       time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

func DefaultSettings() Settings {
	return Settings{
		ID:              SettingsID,
		TotalSeats:      40,
		PricePerSession: 150,
		AllowPastDates:  false,
	}
}

type SettingsRequest struct {
	TotalSeats      int     `json:"totalSeats" validate:"required,min=1"`
	PricePerSession float64 `json:"pricePerSession" validate:"min=0"`
	AllowPastDates  bool    `json:"allowPastDates"`
}

type DashboardStats struct {
	TotalSeats    int     `json:"totalSeats"`
	LiveOccupancy int     `json:"liveOccupancy"`
	OccupancyRate int     `json:"occupancyRate"`
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalDues     float64 `json:"totalDues"`
}
