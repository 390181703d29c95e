package booking_api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ms-seating/internal/booking/booking_api"
	"ms-seating/internal/booking/lock"
	"ms-seating/internal/database"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/pass"
	"ms-seating/internal/scheduling"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockService) ListBookings(ctx context.Context, f scheduling.BookingFilter) ([]models.Booking, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockService) Quote(ctx context.Context, req models.QuoteRequest) (*models.Quote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quote), args.Error(1)
}

func (m *MockService) PreviewConflicts(ctx context.Context, req models.BookingRequest, excludeID string) ([]models.Booking, error) {
	args := m.Called(ctx, req, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockService) CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockService) UpdateBooking(ctx context.Context, id string, req models.BookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockService) DeleteBooking(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Field   string          `json:"field"`
}

func setup(t *testing.T) (*MockService, *booking_api.Handler, http.Handler) {
	t.Helper()
	svc := new(MockService)
	h := booking_api.NewHandler(svc, pass.NewGenerator("handler-test"), logger.NewConsoleLogger(io.Discard))
	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return svc, h, r
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			buf.WriteString(v)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(v))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func bookingRequest() models.BookingRequest {
	return models.BookingRequest{
		MemberID:   "m1",
		SeatNumber: 5,
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
		StartTime:  "09:00",
		EndTime:    "12:00",
		DaysOfWeek: []int{1, 3, 5},
		Amount:     1500,
		PaidAmount: 500,
	}
}

func storedBooking() *models.Booking {
	return &models.Booking{
		ID:         "b1",
		MemberID:   "m1",
		MemberName: "Asha",
		SeatNumber: 5,
		StartDate:  "2024-01-01",
		EndDate:    "2024-01-31",
		StartTime:  "09:00",
		EndTime:    "12:00",
		DaysOfWeek: []int{1, 3, 5},
		Amount:     1500,
		PaidAmount: 500,
		FeeStatus:  models.FeePartial,
	}
}

func TestCreateBooking(t *testing.T) {
	svc, _, router := setup(t)
	svc.On("CreateBooking", mock.Anything, bookingRequest()).Return(storedBooking(), nil)

	rec := do(t, router, http.MethodPost, "/api/bookings", bookingRequest())

	assert.Equal(t, http.StatusCreated, rec.Code)
	env := decode(t, rec)
	assert.True(t, env.Success)

	var got models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "b1", got.ID)
	assert.Equal(t, models.FeePartial, got.FeeStatus)
	svc.AssertExpectations(t)
}

func TestCreateBookingConflict(t *testing.T) {
	svc, _, router := setup(t)
	clash := *storedBooking()
	clash.ID = "other"
	svc.On("CreateBooking", mock.Anything, bookingRequest()).
		Return(nil, &scheduling.ConflictError{Seat: 5, Conflicts: []models.Booking{clash}})

	rec := do(t, router, http.MethodPost, "/api/bookings", bookingRequest())

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decode(t, rec)
	assert.False(t, env.Success)

	var conflicts []models.Booking
	require.NoError(t, json.Unmarshal(env.Data, &conflicts))
	require.Len(t, conflicts, 1)
	assert.Equal(t, "other", conflicts[0].ID)
}

func TestCreateBookingErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"validation", scheduling.Invalid("daysOfWeek", "must include the start weekday"), http.StatusBadRequest, "daysOfWeek"},
		{"seat busy", fmt.Errorf("seat 5: %w", lock.ErrSeatBusy), http.StatusConflict, ""},
		{"internal", fmt.Errorf("disk on fire"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, router := setup(t)
			svc.On("CreateBooking", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := do(t, router, http.MethodPost, "/api/bookings", bookingRequest())

			assert.Equal(t, tt.status, rec.Code)
			env := decode(t, rec)
			assert.Equal(t, tt.field, env.Field)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal error", env.Error)
			}
		})
	}
}

func TestCreateBookingRejectsUnknownFields(t *testing.T) {
	svc, _, router := setup(t)

	rec := do(t, router, http.MethodPost, "/api/bookings", `{"memberId":"m1","color":"red"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "body", decode(t, rec).Field)
	svc.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestGetBooking(t *testing.T) {
	svc, _, router := setup(t)
	svc.On("GetBooking", mock.Anything, "b1").Return(storedBooking(), nil)
	svc.On("GetBooking", mock.Anything, "missing").Return(nil, fmt.Errorf("booking missing: %w", database.ErrNotFound))

	rec := do(t, router, http.MethodGet, "/api/bookings/b1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/bookings/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListBookingsPassesFilter(t *testing.T) {
	svc, _, router := setup(t)
	filter := scheduling.BookingFilter{Query: "asha", Status: "Partial"}
	svc.On("ListBookings", mock.Anything, filter).Return(nil, nil)

	rec := do(t, router, http.MethodGet, "/api/bookings?q=asha&status=Partial", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", string(decode(t, rec).Data))
	svc.AssertExpectations(t)
}

func TestListBookingsStatusAll(t *testing.T) {
	svc, _, router := setup(t)
	svc.On("ListBookings", mock.Anything, scheduling.BookingFilter{}).Return([]models.Booking{*storedBooking()}, nil)

	rec := do(t, router, http.MethodGet, "/api/bookings?status=All", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/bookings?status=Overdue", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "status", decode(t, rec).Field)
	svc.AssertNumberOfCalls(t, "ListBookings", 1)
}

func TestUpdateAndDeleteBooking(t *testing.T) {
	svc, _, router := setup(t)
	svc.On("UpdateBooking", mock.Anything, "b1", bookingRequest()).Return(storedBooking(), nil)
	svc.On("DeleteBooking", mock.Anything, "b1").Return(nil)

	rec := do(t, router, http.MethodPut, "/api/bookings/b1", bookingRequest())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodDelete, "/api/bookings/b1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestQuote(t *testing.T) {
	svc, _, router := setup(t)
	req := models.QuoteRequest{
		StartDate:     "2024-01-31",
		DurationValue: 1,
		DurationUnit:  models.UnitMonth,
		StartTime:     "09:00",
		EndTime:       "12:00",
		Activation:    models.ActivationDaily,
	}
	svc.On("Quote", mock.Anything, mock.MatchedBy(func(q models.QuoteRequest) bool {
		return q.StartDate == req.StartDate && q.DurationUnit == models.UnitMonth
	})).Return(&models.Quote{StartDate: "2024-01-31", EndDate: "2024-02-29", ActiveDays: 30}, nil)

	rec := do(t, router, http.MethodPost, "/api/bookings/quote", req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var q models.Quote
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &q))
	assert.Equal(t, "2024-02-29", q.EndDate)
}

func TestQuoteRejectsUnknownEnum(t *testing.T) {
	_, _, router := setup(t)

	rec := do(t, router, http.MethodPost, "/api/bookings/quote", `{"startDate":"2024-01-01","durationUnit":"FORTNIGHT"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckConflictsExcludesEditedBooking(t *testing.T) {
	svc, _, router := setup(t)
	svc.On("PreviewConflicts", mock.Anything, bookingRequest(), "b1").Return([]models.Booking{}, nil)

	rec := do(t, router, http.MethodPost, "/api/bookings/conflicts?excludeId=b1", bookingRequest())

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.Equal(t, "No conflicts", env.Message)
	svc.AssertExpectations(t)
}

func TestGetPass(t *testing.T) {
	svc, _, router := setup(t)
	svc.On("GetBooking", mock.Anything, "b1").Return(storedBooking(), nil)

	rec := do(t, router, http.MethodGet, "/api/bookings/b1/pass", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestVerifyPass(t *testing.T) {
	svc, h, router := setup(t)
	// Wednesday 10:00, inside the booking window
	h.Now = func() time.Time { return time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC) }

	token, err := h.Passes.Token(*storedBooking())
	require.NoError(t, err)

	t.Run("active", func(t *testing.T) {
		svc.On("GetBooking", mock.Anything, "b1").Return(storedBooking(), nil).Once()

		rec := do(t, router, http.MethodPost, "/api/passes/verify", map[string]string{"token": token})

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			ActiveNow bool `json:"activeNow"`
		}
		require.NoError(t, json.Unmarshal(decode(t, rec).Data, &resp))
		assert.True(t, resp.ActiveNow)
	})

	t.Run("revoked", func(t *testing.T) {
		svc.On("GetBooking", mock.Anything, "b1").Return(nil, database.ErrNotFound).Once()

		rec := do(t, router, http.MethodPost, "/api/passes/verify", map[string]string{"token": token})

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("forged", func(t *testing.T) {
		forged, err := pass.NewGenerator("someone-else").Token(*storedBooking())
		require.NoError(t, err)

		rec := do(t, router, http.MethodPost, "/api/passes/verify", map[string]string{"token": forged})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "token", decode(t, rec).Field)
	})
}
