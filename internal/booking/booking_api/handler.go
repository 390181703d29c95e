package booking_api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/pass"
	"ms-seating/internal/scheduling"
	"ms-seating/internal/utils"
)

type Service interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context, f scheduling.BookingFilter) ([]models.Booking, error)
	Quote(ctx context.Context, req models.QuoteRequest) (*models.Quote, error)
	PreviewConflicts(ctx context.Context, req models.BookingRequest, excludeID string) ([]models.Booking, error)
	CreateBooking(ctx context.Context, req models.BookingRequest) (*models.Booking, error)
	UpdateBooking(ctx context.Context, id string, req models.BookingRequest) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}

type Handler struct {
	Service Service
	Passes  *pass.Generator
	Logger  *logger.Logger
	Now     func() time.Time
}

func NewHandler(service Service, passes *pass.Generator, log *logger.Logger) *Handler {
	return &Handler{
		Service: service,
		Passes:  passes,
		Logger:  log,
		Now:     time.Now,
	}
}

// RegisterRoutes mounts the booking and pass routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", h.ListBookings)
		r.Post("/", h.CreateBooking)
		r.Post("/quote", h.Quote)
		r.Post("/conflicts", h.CheckConflicts)
		r.Get("/{bookingId}", h.GetBooking)
		r.Put("/{bookingId}", h.UpdateBooking)
		r.Delete("/{bookingId}", h.DeleteBooking)
		r.Get("/{bookingId}/pass", h.GetPass)
	})
	r.Post("/passes/verify", h.VerifyPass)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := scheduling.BookingFilter{Query: q.Get("q")}
	if status := q.Get("status"); status != "" && !strings.EqualFold(status, "All") {
		filter.Status = models.FeeStatus(status)
		if !filter.Status.Valid() {
			utils.WriteError(w, h.Logger, "Invalid filter", scheduling.Invalid("status", "unknown fee status %q", status))
			return
		}
	}

	bookings, err := h.Service.ListBookings(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not list bookings", err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%d bookings", len(bookings)), bookings)
}

func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingId")

	b, err := h.Service.GetBooking(r.Context(), id)
	if err != nil {
		utils.WriteError(w, h.Logger, "Booking not found", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Booking found", b)
}

func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Logger, "Invalid booking", err)
		return
	}

	b, err := h.Service.CreateBooking(r.Context(), req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("CreateBooking: seat %d rejected: %v", req.SeatNumber, err))
		utils.WriteError(w, h.Logger, "Booking rejected", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Booking created", b)
}

func (h *Handler) UpdateBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingId")

	var req models.BookingRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Logger, "Invalid booking", err)
		return
	}

	b, err := h.Service.UpdateBooking(r.Context(), id, req)
	if err != nil {
		h.Logger.Warn("API", fmt.Sprintf("UpdateBooking: %s rejected: %v", id, err))
		utils.WriteError(w, h.Logger, "Booking update rejected", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Booking updated", b)
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingId")

	if err := h.Service.DeleteBooking(r.Context(), id); err != nil {
		utils.WriteError(w, h.Logger, "Could not delete booking", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Logger, "Invalid quote request", err)
		return
	}

	q, err := h.Service.Quote(r.Context(), req)
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not compute quote", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Quote computed", q)
}

// CheckConflicts previews a save. ?excludeId= skips the booking being edited.
func (h *Handler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Logger, "Invalid booking", err)
		return
	}

	found, err := h.Service.PreviewConflicts(r.Context(), req, r.URL.Query().Get("excludeId"))
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not check conflicts", err)
		return
	}
	msg := "No conflicts"
	if len(found) > 0 {
		msg = fmt.Sprintf("%d conflicting bookings on seat %d", len(found), req.SeatNumber)
	}
	utils.WriteSuccess(w, http.StatusOK, msg, found)
}

// GetPass renders the QR seat pass of a booking as a PNG.
func (h *Handler) GetPass(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "bookingId")

	b, err := h.Service.GetBooking(r.Context(), id)
	if err != nil {
		utils.WriteError(w, h.Logger, "Booking not found", err)
		return
	}

	img, err := h.Passes.QR(*b)
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not render pass", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"pass-%s.png\"", b.ID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetPass: failed to write image: %v", err))
	}
}

type verifyRequest struct {
	Token string `json:"token"`
}

type verifyResponse struct {
	Pass      *pass.Pass      `json:"pass"`
	Booking   *models.Booking `json:"booking"`
	ActiveNow bool            `json:"activeNow"`
}

// VerifyPass decodes a scanned pass, confirms its booking still exists and
// reports whether the seat is booked right now.
func (h *Handler) VerifyPass(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Logger, "Invalid pass", err)
		return
	}
	if req.Token == "" {
		utils.WriteError(w, h.Logger, "Invalid pass", scheduling.Invalid("token", "token is required"))
		return
	}

	p, err := h.Passes.Decode(req.Token)
	if err != nil {
		h.Logger.LogSecurity("PASS_REJECTED", err.Error())
		utils.WriteError(w, h.Logger, "Invalid pass", scheduling.Invalid("token", "%v", err))
		return
	}

	// A deleted booking revokes its passes (404).
	b, err := h.Service.GetBooking(r.Context(), p.BookingID)
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not verify pass", err)
		return
	}

	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	active := b.SeatNumber == p.SeatNumber && scheduling.IsActiveAt(*b, now())
	h.Logger.LogBooking("PASS_SCAN", b.ID, fmt.Sprintf("Seat %d scanned, active=%t", b.SeatNumber, active))

	utils.WriteSuccess(w, http.StatusOK, "Pass verified", verifyResponse{Pass: p, Booking: b, ActiveNow: active})
}
