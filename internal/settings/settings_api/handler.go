package settings_api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/utils"
)

type Service interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	UpdateSettings(ctx context.Context, req models.SettingsRequest) (*models.Settings, error)
}

type Handler struct {
	Service Service
	Logger  *logger.Logger
}

func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.GetSettings)
	r.Put("/settings", h.UpdateSettings)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Service.GetSettings(r.Context())
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not load settings", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Settings loaded", settings)
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.SettingsRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Logger, "Invalid settings", err)
		return
	}

	settings, err := h.Service.UpdateSettings(r.Context(), req)
	if err != nil {
		utils.WriteError(w, h.Logger, "Settings update rejected", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Settings updated", settings)
}
