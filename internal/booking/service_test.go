package booking_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-seating/internal/booking"
	"ms-seating/internal/booking/lock"
	"ms-seating/internal/database"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/scheduling"
)

// MockBookingDB is a mock implementation of the DBLayer interface
type MockBookingDB struct {
	mock.Mock
}

func (m *MockBookingDB) ListBookings(ctx context.Context) ([]models.Booking, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingDB) ListBookingsBySeats(ctx context.Context, seats []int) ([]models.Booking, error) {
	args := m.Called(ctx, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingDB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingDB) CreateBooking(ctx context.Context, b models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingDB) UpdateBooking(ctx context.Context, b models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *MockBookingDB) DeleteBooking(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockMembers struct {
	mock.Mock
}

func (m *MockMembers) GetMember(ctx context.Context, id string) (*models.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

type fixedSettings struct {
	settings models.Settings
}

func (f fixedSettings) GetSettings(context.Context) (models.Settings, error) {
	return f.settings, nil
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event models.ChangeEvent) error {
	return m.Called(ctx, event).Error(0)
}

type recordingNotifier struct {
	events []models.ChangeEvent
}

func (r *recordingNotifier) Notify(event models.ChangeEvent) {
	r.events = append(r.events, event)
}

type fixture struct {
	svc       *booking.BookingService
	db        *MockBookingDB
	members   *MockMembers
	publisher *MockPublisher
	notifier  *recordingNotifier
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		db:        new(MockBookingDB),
		members:   new(MockMembers),
		publisher: new(MockPublisher),
		notifier:  &recordingNotifier{},
	}
	svc := booking.NewBookingService(f.db, f.members, fixedSettings{models.DefaultSettings()}, lock.NewLocal(), logger.NewConsoleLogger(io.Discard))
	svc.Publisher = f.publisher
	svc.Notifier = f.notifier
	svc.Now = func() time.Time { return time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC) }
	svc.Location = time.UTC
	f.svc = svc
	return f
}

func request() models.BookingRequest {
	return models.BookingRequest{
		MemberID:   "m1",
		SeatNumber: 5,
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
		StartTime:  "09:00",
		EndTime:    "12:00",
		DaysOfWeek: []int{5, 1, 3},
		Amount:     450,
		PaidAmount: 100,
	}
}

var asha = &models.Member{ID: "m1", Name: "Asha"}

func TestCreateBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.members.On("GetMember", ctx, "m1").Return(asha, nil)
	f.db.On("ListBookingsBySeats", ctx, []int{5}).Return([]models.Booking{}, nil)
	f.db.On("CreateBooking", ctx, mock.MatchedBy(func(b models.Booking) bool {
		return b.ID != "" && b.MemberName == "Asha" && b.FeeStatus == models.FeePartial
	})).Return(nil)
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(ev models.ChangeEvent) bool {
		return ev.Type == models.BookingCreated
	})).Return(nil)

	b, err := f.svc.CreateBooking(ctx, request())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, b.DaysOfWeek)
	assert.Equal(t, "Asha", b.MemberName)
	assert.False(t, b.CreatedAt.IsZero())

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, b.ID, f.notifier.events[0].ID)
	f.db.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestCreateBookingConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	clash := models.Booking{
		ID: "existing", SeatNumber: 5,
		StartDate: "2024-01-15", EndDate: "2024-02-15",
		StartTime: "11:00", EndTime: "13:00",
		DaysOfWeek: []int{1},
	}
	f.members.On("GetMember", ctx, "m1").Return(asha, nil)
	f.db.On("ListBookingsBySeats", ctx, []int{5}).Return([]models.Booking{clash}, nil)

	_, err := f.svc.CreateBooking(ctx, request())
	require.Error(t, err)
	assert.True(t, errors.Is(err, scheduling.ErrConflict))

	var conflictErr *scheduling.ConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, "existing", conflictErr.Conflicts[0].ID)

	f.db.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
	assert.Empty(t, f.notifier.events)
}

func TestCreateBookingValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.members.On("GetMember", ctx, "m1").Return(asha, nil)
	f.members.On("GetMember", ctx, "ghost").Return(nil, database.ErrNotFound)

	cases := map[string]func(r *models.BookingRequest){
		"unknown member":   func(r *models.BookingRequest) { r.MemberID = "ghost" },
		"over capacity":    func(r *models.BookingRequest) { r.SeatNumber = 41 },
		"zero amount":      func(r *models.BookingRequest) { r.Amount = 0 },
		"anchor missing":   func(r *models.BookingRequest) { r.DaysOfWeek = []int{2, 3} },
		"reversed window":  func(r *models.BookingRequest) { r.StartTime, r.EndTime = "12:00", "09:00" },
		"starts in past":   func(r *models.BookingRequest) { r.StartDate = "2023-12-25"; r.DaysOfWeek = []int{1} },
		"malformed date":   func(r *models.BookingRequest) { r.EndDate = "31/01/2024" },
		"no weekdays":      func(r *models.BookingRequest) { r.DaysOfWeek = []int{} },
		"no member chosen": func(r *models.BookingRequest) { r.MemberID = "" },
	}
	for name, edit := range cases {
		t.Run(name, func(t *testing.T) {
			req := request()
			edit(&req)
			_, err := f.svc.CreateBooking(ctx, req)
			assert.True(t, errors.Is(err, scheduling.ErrValidation), "got %v", err)
		})
	}
	f.db.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestCreateBookingSeatBusy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	locker := lock.NewLocal()
	f.svc.Locker = locker
	f.members.On("GetMember", ctx, "m1").Return(asha, nil)

	ok, err := locker.LockSeat(ctx, 5, "someone-else")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = f.svc.CreateBooking(ctx, request())
	assert.True(t, errors.Is(err, lock.ErrSeatBusy))
}

func TestUpdateBookingKeepsIdentityAndExcludesSelf(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC)

	stored := &models.Booking{
		ID: "b1", MemberID: "m1", MemberName: "Asha", SeatNumber: 5,
		StartDate: "2023-12-04", EndDate: "2024-01-31", StartTime: "09:00", EndTime: "12:00",
		DaysOfWeek: []int{1}, Amount: 450, PaidAmount: 0, FeeStatus: models.FeeDue, CreatedAt: created,
	}
	req := request()
	req.StartDate = stored.StartDate // past start date kept on edit
	req.DaysOfWeek = []int{1}
	req.SeatNumber = 6
	req.PaidAmount = 450

	f.db.On("GetBooking", ctx, "b1").Return(stored, nil)
	f.members.On("GetMember", ctx, "m1").Return(asha, nil)
	f.db.On("ListBookingsBySeats", ctx, []int{6}).Return([]models.Booking{*stored}, nil)
	f.db.On("UpdateBooking", ctx, mock.MatchedBy(func(b models.Booking) bool {
		return b.ID == "b1" && b.CreatedAt.Equal(created) && b.SeatNumber == 6 && b.FeeStatus == models.FeePaid
	})).Return(nil)
	f.publisher.On("Publish", ctx, mock.Anything).Return(errors.New("broker down"))

	b, err := f.svc.UpdateBooking(ctx, "b1", req)
	require.NoError(t, err, "publish failures do not fail the write")
	assert.Equal(t, models.FeePaid, b.FeeStatus)
	f.db.AssertExpectations(t)
}

func TestUpdateBookingNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.db.On("GetBooking", ctx, "missing").Return(nil, database.ErrNotFound)

	_, err := f.svc.UpdateBooking(ctx, "missing", request())
	assert.True(t, errors.Is(err, database.ErrNotFound))
}

func TestDeleteBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stored := &models.Booking{ID: "b1", SeatNumber: 5}

	f.db.On("GetBooking", ctx, "b1").Return(stored, nil)
	f.db.On("DeleteBooking", ctx, "b1").Return(nil)
	f.publisher.On("Publish", ctx, mock.MatchedBy(func(ev models.ChangeEvent) bool {
		return ev.Type == models.BookingDeleted && ev.ID == "b1"
	})).Return(nil)

	require.NoError(t, f.svc.DeleteBooking(ctx, "b1"))
	f.publisher.AssertExpectations(t)
}

func TestListBookingsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f.db.On("ListBookings", ctx).Return([]models.Booking{
		{ID: "b1", MemberName: "Asha", SeatNumber: 1, FeeStatus: models.FeeDue, CreatedAt: base},
		{ID: "b2", MemberName: "Bilal", SeatNumber: 2, FeeStatus: models.FeePaid, CreatedAt: base.Add(time.Hour)},
	}, nil)

	due, err := f.svc.ListBookings(ctx, scheduling.BookingFilter{Status: models.FeeDue})
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "b1", due[0].ID)
}

func TestQuoteUsesMemberDefaultPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	price := 120.0
	f.members.On("GetMember", ctx, "m1").Return(&models.Member{ID: "m1", Name: "Asha", DefaultPrice: &price}, nil)

	q, err := f.svc.Quote(ctx, models.QuoteRequest{
		MemberID:      "m1",
		StartDate:     "2024-01-01",
		DurationValue: 2,
		StartTime:     "09:00",
		EndTime:       "18:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", q.EndDate)
	assert.Equal(t, 240.0, q.Amount)

	q, err = f.svc.Quote(ctx, models.QuoteRequest{
		StartDate:     "2024-01-01",
		DurationValue: 3,
		StartTime:     "09:00",
		EndTime:       "18:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 450.0, q.Amount, "facility price per session")
}

func TestPreviewConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clash := models.Booking{
		ID: "b9", SeatNumber: 5, StartDate: "2024-01-01", EndDate: "2024-01-31",
		StartTime: "10:00", EndTime: "11:00", DaysOfWeek: []int{3},
	}
	f.db.On("ListBookingsBySeats", ctx, []int{5}).Return([]models.Booking{clash}, nil)

	found, err := f.svc.PreviewConflicts(ctx, request(), "")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = f.svc.PreviewConflicts(ctx, request(), "b9")
	require.NoError(t, err)
	assert.Empty(t, found)
}
