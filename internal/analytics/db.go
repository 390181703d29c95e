package analytics

import (
	"context"

	"github.com/uptrace/bun"

	"ms-seating/internal/models"
)

// DB handles analytics database reads
type DB struct {
	bun *bun.DB
}

// NewDB creates a new analytics DB handler
func NewDB(db *bun.DB) *DB {
	return &DB{bun: db}
}

// ListBookings retrieves every booking, for the cumulative dashboard totals
func (db *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := db.bun.NewSelect().
		Model(&bookings).
		Order("created_at DESC").
		Scan(ctx)

	return bookings, err
}

// ListBookingsOn retrieves the bookings whose date range covers date.
// Weekday and time filtering is left to the recurrence rules.
func (db *DB) ListBookingsOn(ctx context.Context, date string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := db.bun.NewSelect().
		Model(&bookings).
		Where("start_date <= ?", date).
		Where("end_date >= ?", date).
		Order("seat_number ASC", "created_at ASC").
		Scan(ctx)

	return bookings, err
}
