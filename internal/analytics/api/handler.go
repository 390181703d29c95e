package analytics_api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-seating/internal/analytics"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/scheduling"
	"ms-seating/internal/utils"
)

type Service interface {
	Dashboard(ctx context.Context) (models.DashboardStats, error)
	Occupancy(ctx context.Context, date, clock string) (*analytics.OccupancyView, error)
	Timeline(ctx context.Context, date string) (*scheduling.Timeline, error)
}

// Handler handles the seat map, timeline and dashboard endpoints
type Handler struct {
	Service Service
	Logger  *logger.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

// RegisterRoutes registers the analytics routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/occupancy", h.GetOccupancy)
	r.Get("/timeline", h.GetTimeline)
}

// GetDashboard returns the dashboard header numbers
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Dashboard(r.Context())
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not compute dashboard", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Dashboard computed", stats)
}

// GetOccupancy returns the floor map at ?date=YYYY-MM-DD&time=HH:MM,
// defaulting to now
func (h *Handler) GetOccupancy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	view, err := h.Service.Occupancy(r.Context(), q.Get("date"), q.Get("time"))
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not compute occupancy", err)
		return
	}

	msg := fmt.Sprintf("%d of %d seats occupied", view.Occupied, view.TotalSeats)
	if len(view.Anomalies) > 0 {
		msg = fmt.Sprintf("%s, %d seats double-booked", msg, len(view.Anomalies))
	}
	utils.WriteSuccess(w, http.StatusOK, msg, view)
}

// GetTimeline returns the seat × hour grid of ?date=YYYY-MM-DD, defaulting to today
func (h *Handler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	tl, err := h.Service.Timeline(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not build timeline", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("Timeline for %s", tl.Date), tl)
}
