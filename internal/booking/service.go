package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-seating/internal/booking/lock"
	"ms-seating/internal/database"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/scheduling"
)

type DBLayer interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ListBookingsBySeats(ctx context.Context, seats []int) ([]models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking models.Booking) error
	UpdateBooking(ctx context.Context, booking models.Booking) error
	DeleteBooking(ctx context.Context, id string) error
}

type MemberLookup interface {
	GetMember(ctx context.Context, id string) (*models.Member, error)
}

type SettingsProvider interface {
	GetSettings(ctx context.Context) (models.Settings, error)
}

type Publisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}

type Notifier interface {
	Notify(event models.ChangeEvent)
}

type BookingService struct {
	DB          DBLayer
	Members     MemberLookup
	Settings    SettingsProvider
	Locker      lock.Locker
	LockOptions lock.Options
	Publisher   Publisher
	Notifier    Notifier
	Logger      *logger.Logger

	// Now and Location define "today" for the past-date rule.
	Now        func() time.Time
	Location   *time.Location
	HourlyRate float64
}

func NewBookingService(db DBLayer, members MemberLookup, settings SettingsProvider, locker lock.Locker, log *logger.Logger) *BookingService {
	return &BookingService{
		DB:         db,
		Members:    members,
		Settings:   settings,
		Locker:     locker,
		Logger:     log,
		Now:        time.Now,
		Location:   time.Local,
		HourlyRate: scheduling.DefaultHourlyRate,
	}
}

func (s *BookingService) now() time.Time {
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

// ---------------- READS ----------------

func (s *BookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.DB.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", id, err)
	}
	return b, nil
}

// ListBookings returns the booking ledger filtered by f, newest first.
func (s *BookingService) ListBookings(ctx context.Context, f scheduling.BookingFilter) ([]models.Booking, error) {
	all, err := s.DB.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	return scheduling.FilterBookings(all, f), nil
}

// Quote previews end date, session count and price for a configuration
// without writing anything. FLAT unit price defaults to the member's
// default price, then to the facility price per session.
func (s *BookingService) Quote(ctx context.Context, req models.QuoteRequest) (*models.Quote, error) {
	if err := scheduling.ValidateRequest(req); err != nil {
		return nil, err
	}
	settings, err := s.Settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	defaults := scheduling.QuoteDefaults{UnitPrice: settings.PricePerSession, HourlyRate: s.HourlyRate}
	if req.MemberID != "" {
		member, err := s.Members.GetMember(ctx, req.MemberID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		if member != nil && member.DefaultPrice != nil {
			defaults.UnitPrice = *member.DefaultPrice
		}
	}

	q, err := scheduling.BuildQuote(req, defaults)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// PreviewConflicts reports the bookings a request would collide with.
// excludeID skips the booking being edited.
func (s *BookingService) PreviewConflicts(ctx context.Context, req models.BookingRequest, excludeID string) ([]models.Booking, error) {
	if err := scheduling.ValidateRequest(req); err != nil {
		return nil, err
	}
	candidate := fromRequest(req)
	existing, err := s.DB.ListBookingsBySeats(ctx, []int{candidate.SeatNumber})
	if err != nil {
		return nil, err
	}
	found := scheduling.FindConflicts(candidate, existing, excludeID)
	if found == nil {
		found = []models.Booking{}
	}
	return found, nil
}

// ---------------- WRITES ----------------

// CreateBooking validates req, checks it against every booking on the same
// seat under the seat lock and stores it with a new ID.
func (s *BookingService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	b, err := s.prepare(ctx, req, nil)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b.ID = uuid.New().String()
	b.CreatedAt = now.UTC()

	err = s.withSeats(ctx, []int{b.SeatNumber}, b.ID, func() error {
		if err := s.checkConflicts(ctx, b, ""); err != nil {
			return err
		}
		return s.DB.CreateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.LogBooking("CREATE", b.ID, fmt.Sprintf("Seat %d for %s, %s..%s %s-%s", b.SeatNumber, b.MemberName, b.StartDate, b.EndDate, b.StartTime, b.EndTime))
	s.emit(ctx, models.BookingCreated, &b)
	return &b, nil
}

// UpdateBooking replaces every editable field of booking id. The ID and
// creation time are kept; the fee status is derived again.
func (s *BookingService) UpdateBooking(ctx context.Context, id string, req models.BookingRequest) (*models.Booking, error) {
	existing, err := s.DB.GetBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("booking %s: %w", id, err)
	}

	b, err := s.prepare(ctx, req, existing)
	if err != nil {
		return nil, err
	}
	b.ID = existing.ID
	b.CreatedAt = existing.CreatedAt

	err = s.withSeats(ctx, []int{existing.SeatNumber, b.SeatNumber}, b.ID, func() error {
		if err := s.checkConflicts(ctx, b, b.ID); err != nil {
			return err
		}
		return s.DB.UpdateBooking(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.LogBooking("UPDATE", b.ID, fmt.Sprintf("Seat %d, %s..%s, status %s", b.SeatNumber, b.StartDate, b.EndDate, b.FeeStatus))
	s.emit(ctx, models.BookingUpdated, &b)
	return &b, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	existing, err := s.DB.GetBooking(ctx, id)
	if err != nil {
		return fmt.Errorf("booking %s: %w", id, err)
	}
	if err := s.DB.DeleteBooking(ctx, id); err != nil {
		return fmt.Errorf("delete booking %s: %w", id, err)
	}

	s.Logger.LogBooking("DELETE", id, fmt.Sprintf("Seat %d released", existing.SeatNumber))
	s.emit(ctx, models.BookingDeleted, existing)
	return nil
}

// prepare turns a request into a validated booking. existing is the stored
// version for edits, nil for creates.
func (s *BookingService) prepare(ctx context.Context, req models.BookingRequest, existing *models.Booking) (models.Booking, error) {
	if err := scheduling.ValidateRequest(req); err != nil {
		return models.Booking{}, err
	}

	member, err := s.Members.GetMember(ctx, req.MemberID)
	if errors.Is(err, database.ErrNotFound) {
		return models.Booking{}, scheduling.Invalid("memberId", "member %s does not exist", req.MemberID)
	}
	if err != nil {
		return models.Booking{}, err
	}

	settings, err := s.Settings.GetSettings(ctx)
	if err != nil {
		return models.Booking{}, err
	}

	b := fromRequest(req)
	b.MemberName = member.Name

	rules := scheduling.Rules{TotalSeats: settings.TotalSeats, AllowPastDates: settings.AllowPastDates}
	// Edits that keep the start date may stay in the past.
	if existing == nil || existing.StartDate != b.StartDate {
		rules.Today = s.now().Format(scheduling.DateLayout)
	}
	if err := scheduling.ValidateBooking(b, rules); err != nil {
		return models.Booking{}, err
	}
	return b, nil
}

func fromRequest(req models.BookingRequest) models.Booking {
	return models.Booking{
		MemberID:   req.MemberID,
		SeatNumber: req.SeatNumber,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		DaysOfWeek: scheduling.SortDays(req.DaysOfWeek),
		Amount:     req.Amount,
		PaidAmount: req.PaidAmount,
		FeeStatus:  scheduling.DeriveFeeStatus(req.Amount, req.PaidAmount),
	}
}

func (s *BookingService) checkConflicts(ctx context.Context, b models.Booking, excludeID string) error {
	existing, err := s.DB.ListBookingsBySeats(ctx, []int{b.SeatNumber})
	if err != nil {
		return err
	}
	if err := scheduling.CheckConflicts(b, existing, excludeID); err != nil {
		s.Logger.Warn("BOOKING", fmt.Sprintf("Rejected booking on seat %d: %v", b.SeatNumber, err))
		return err
	}
	return nil
}

// withSeats runs fn while holding the locks of seats. Without a locker fn
// runs unguarded.
func (s *BookingService) withSeats(ctx context.Context, seats []int, owner string, fn func() error) error {
	if s.Locker == nil {
		return fn()
	}
	release, err := lock.Acquire(ctx, s.Locker, seats, owner, s.LockOptions)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

func (s *BookingService) emit(ctx context.Context, t models.ChangeType, b *models.Booking) {
	event := models.NewChangeEvent(t, b.ID)
	event.Booking = b
	if s.Publisher != nil {
		if err := s.Publisher.Publish(ctx, event); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s for %s: %v", t, b.ID, err))
		}
	}
	if s.Notifier != nil {
		s.Notifier.Notify(event)
	}
}
