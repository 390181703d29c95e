// Package analytics serves the read-only views: live seat map, hourly
// timeline and dashboard totals. Each request recomputes its view from a
// fresh read of the bookings.
package analytics

import (
	"context"
	"fmt"
	"time"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/scheduling"
)

type BookingSource interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ListBookingsOn(ctx context.Context, date string) ([]models.Booking, error)
}

type SettingsProvider interface {
	GetSettings(ctx context.Context) (models.Settings, error)
}

// Service handles analytics operations
type Service struct {
	Bookings BookingSource
	Settings SettingsProvider
	Logger   *logger.Logger

	Now       func() time.Time
	Location  *time.Location
	FirstHour int
	LastHour  int
}

// NewService creates a new analytics service with the 07:00 to 21:00 timeline
func NewService(bookings BookingSource, settings SettingsProvider, log *logger.Logger) *Service {
	return &Service{
		Bookings:  bookings,
		Settings:  settings,
		Logger:    log,
		Now:       time.Now,
		Location:  time.Local,
		FirstHour: 7,
		LastHour:  21,
	}
}

// SeatStatus is one seat of the floor map. Booking is nil for a free seat.
type SeatStatus struct {
	Seat    int             `json:"seat"`
	Booking *models.Booking `json:"booking,omitempty"`
}

// OccupancyView is the floor map for one instant
type OccupancyView struct {
	Date       string               `json:"date"`
	Time       string               `json:"time"`
	TotalSeats int                  `json:"totalSeats"`
	Occupied   int                  `json:"occupied"`
	Seats      []SeatStatus         `json:"seats"`
	Anomalies  []scheduling.Anomaly `json:"anomalies,omitempty"`
}

func (s *Service) now() time.Time {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return now().In(loc)
}

// Dashboard returns capacity, live occupancy and cumulative revenue and dues
func (s *Service) Dashboard(ctx context.Context) (models.DashboardStats, error) {
	settings, err := s.Settings.GetSettings(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	bookings, err := s.Bookings.ListBookings(ctx)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("list bookings: %w", err)
	}
	return scheduling.ComputeDashboardStats(bookings, settings, s.now()), nil
}

// Occupancy resolves every seat at date and clock. Empty values mean the
// current facility date or time.
func (s *Service) Occupancy(ctx context.Context, date, clock string) (*OccupancyView, error) {
	current := scheduling.NewInstant(s.now())
	if date == "" {
		date = current.Date
	}
	if clock == "" {
		clock = current.Time
	}
	at, err := scheduling.ParseInstant(date, clock)
	if err != nil {
		return nil, scheduling.Invalid("instant", "%v", err)
	}

	settings, err := s.Settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListBookingsOn(ctx, at.Date)
	if err != nil {
		return nil, fmt.Errorf("list bookings on %s: %w", at.Date, err)
	}

	idx := scheduling.BuildIndexAt(bookings, at)
	s.reportAnomalies(idx.Anomalies)

	view := &OccupancyView{
		Date:       at.Date,
		Time:       at.Time,
		TotalSeats: settings.TotalSeats,
		Occupied:   idx.Occupied(),
		Seats:      make([]SeatStatus, 0, settings.TotalSeats),
		Anomalies:  idx.Anomalies,
	}
	for seat := 1; seat <= settings.TotalSeats; seat++ {
		status := SeatStatus{Seat: seat}
		if b, ok := idx.Occupant(seat); ok {
			b := b
			status.Booking = &b
		}
		view.Seats = append(view.Seats, status)
	}
	return view, nil
}

// Timeline builds the seat × hour grid for date, today when empty
func (s *Service) Timeline(ctx context.Context, date string) (*scheduling.Timeline, error) {
	if date == "" {
		date = s.now().Format(scheduling.DateLayout)
	}
	if _, err := scheduling.ParseDate(date); err != nil {
		return nil, scheduling.Invalid("date", "%v", err)
	}

	settings, err := s.Settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListBookingsOn(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings on %s: %w", date, err)
	}

	tl, err := scheduling.BuildTimeline(bookings, date, settings.TotalSeats, s.FirstHour, s.LastHour)
	if err != nil {
		return nil, err
	}
	s.reportAnomalies(tl.Anomalies)
	return &tl, nil
}

func (s *Service) reportAnomalies(anomalies []scheduling.Anomaly) {
	if s.Logger == nil {
		return
	}
	for _, a := range anomalies {
		s.Logger.LogAnomaly(a.Seat, a.String())
	}
}
