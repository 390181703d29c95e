package member_api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/scheduling"
	"ms-seating/internal/utils"
)

type Service interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
	GetMember(ctx context.Context, id string) (*models.Member, error)
	RegisterMember(ctx context.Context, req models.MemberRequest) (*models.Member, error)
	UpdateMember(ctx context.Context, id string, req models.MemberRequest) (*models.Member, error)
	DeleteMember(ctx context.Context, id string) error
	Summaries(ctx context.Context, f scheduling.SummaryFilter) ([]models.MemberSummary, error)
}

type Handler struct {
	Service Service
	Logger  *logger.Logger
}

func NewHandler(service Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/members", func(r chi.Router) {
		r.Get("/", h.ListMembers)
		r.Post("/", h.RegisterMember)
		r.Get("/summaries", h.Summaries)
		r.Get("/{memberId}", h.GetMember)
		r.Put("/{memberId}", h.UpdateMember)
		r.Delete("/{memberId}", h.DeleteMember)
	})
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Service.ListMembers(r.Context())
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not list members", err)
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%d members", len(members)), members)
}

func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.GetMember(r.Context(), chi.URLParam(r, "memberId"))
	if err != nil {
		utils.WriteError(w, h.Logger, "Member not found", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Member found", m)
}

func (h *Handler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var req models.MemberRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Logger, "Invalid member", err)
		return
	}

	m, err := h.Service.RegisterMember(r.Context(), req)
	if err != nil {
		utils.WriteError(w, h.Logger, "Registration rejected", err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, "Member registered", m)
}

func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "memberId")

	var req models.MemberRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, h.Logger, "Invalid member", err)
		return
	}

	m, err := h.Service.UpdateMember(r.Context(), id, req)
	if err != nil {
		utils.WriteError(w, h.Logger, "Member update rejected", err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, "Member updated", m)
}

// DeleteMember removes the member and every booking they own.
func (h *Handler) DeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteMember(r.Context(), chi.URLParam(r, "memberId")); err != nil {
		utils.WriteError(w, h.Logger, "Could not delete member", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summaries serves the member directory: ?q= search, ?onlyDues=true,
// ?sort=name|dues|paid.
func (h *Handler) Summaries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := scheduling.SummaryFilter{Query: q.Get("q"), SortBy: scheduling.SummarySort(q.Get("sort"))}

	switch filter.SortBy {
	case "", scheduling.SortByName, scheduling.SortByDues, scheduling.SortByPaid:
	default:
		utils.WriteError(w, h.Logger, "Invalid filter", scheduling.Invalid("sort", "unknown sort %q", filter.SortBy))
		return
	}
	if raw := q.Get("onlyDues"); raw != "" {
		only, err := strconv.ParseBool(raw)
		if err != nil {
			utils.WriteError(w, h.Logger, "Invalid filter", scheduling.Invalid("onlyDues", "must be true or false"))
			return
		}
		filter.OnlyDues = only
	}

	summaries, err := h.Service.Summaries(r.Context(), filter)
	if err != nil {
		utils.WriteError(w, h.Logger, "Could not build member summaries", err)
		return
	}
	if summaries == nil {
		summaries = []models.MemberSummary{}
	}
	utils.WriteSuccess(w, http.StatusOK, fmt.Sprintf("%d members", len(summaries)), summaries)
}
