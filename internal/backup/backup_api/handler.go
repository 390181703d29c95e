package backup_api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-seating/internal/backup"
	"ms-seating/internal/logger"
	"ms-seating/internal/utils"
)

type Service interface {
	Export(ctx context.Context) (*backup.Snapshot, error)
	Import(ctx context.Context, snap backup.Snapshot) (*backup.Result, error)
}

type Handler struct {
	Service Service
	Logger  *logger.Logger
	// MaxBytes caps the size of an uploaded snapshot.
	MaxBytes int64
}

func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log, MaxBytes: 32 << 20}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/backup", h.Export)
	r.Post("/backup", h.Import)
}

// Export downloads the full snapshot as a JSON file.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Service.Export(r.Context())
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not export snapshot", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"seating-backup-%s.json\"", snap.ExportedAt.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	if err := backup.Encode(w, snap); err != nil {
		h.Logger.Error("API", fmt.Sprintf("Export: failed to write snapshot: %v", err))
	}
}

// Import replaces the store with the uploaded snapshot.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	if h.MaxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxBytes)
	}
	snap, err := backup.Decode(r.Body)
	if err != nil {
		utils.WriteError(w, h.Logger, "Invalid snapshot", err)
		return
	}

	res, err := h.Service.Import(r.Context(), *snap)
	if err != nil {
		utils.WriteError(w, h.Logger, "Restore rejected", err)
		return
	}
	h.Logger.LogSecurity("RESTORE", fmt.Sprintf("Store replaced from upload: %d members, %d bookings", res.Members, res.Bookings))
	utils.WriteSuccess(w, http.StatusOK, "Snapshot restored", res)
}
