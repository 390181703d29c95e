package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"ms-seating/internal/database"
	"ms-seating/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ListBookings → every booking, newest first
func (d *DB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := d.Bun.NewSelect().
		Model(&bookings).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListBookingsBySeats → bookings on any of the given seats
func (d *DB) ListBookingsBySeats(ctx context.Context, seats []int) ([]models.Booking, error) {
	bookings := []models.Booking{}
	if len(seats) == 0 {
		return bookings, nil
	}
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("seat_number IN (?)", bun.In(seats)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListBookingsByMember → bookings owned by one member
func (d *DB) ListBookingsByMember(ctx context.Context, memberID string) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetBooking → fetch one booking by its ID
func (d *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &booking, nil
}

// CreateBooking → insert new booking
func (d *DB) CreateBooking(ctx context.Context, booking models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&booking).Exec(ctx)
	return err
}

// UpdateBooking → overwrite every editable field; ID and created_at are kept
func (d *DB) UpdateBooking(ctx context.Context, booking models.Booking) error {
	res, err := d.Bun.NewUpdate().
		Model(&booking).
		Column("member_id", "member_name", "seat_number", "start_date", "end_date",
			"start_time", "end_time", "days_of_week", "amount", "paid_amount", "fee_status").
		Where("id = ?", booking.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectOne(res, booking.ID)
}

// DeleteBooking → delete a booking by ID
func (d *DB) DeleteBooking(ctx context.Context, id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Booking)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectOne(res, id)
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func expectOne(res rowsAffected, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("booking %s: %w", id, database.ErrNotFound)
	}
	return nil
}
