package members

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/scheduling"
)

// NotProvided fills contact fields left empty at registration.
const NotProvided = "N/A"

type DBLayer interface {
	ListMembers(ctx context.Context) ([]models.Member, error)
	GetMember(ctx context.Context, id string) (*models.Member, error)
	CreateMember(ctx context.Context, member models.Member) error
	UpdateMember(ctx context.Context, member models.Member) error
	DeleteMember(ctx context.Context, id string) (int, error)
}

type BookingLister interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
}

type Publisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}

type Notifier interface {
	Notify(event models.ChangeEvent)
}

type MemberService struct {
	DB        DBLayer
	Bookings  BookingLister
	Publisher Publisher
	Notifier  Notifier
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewMemberService(db DBLayer, bookings BookingLister, log *logger.Logger) *MemberService {
	return &MemberService{
		DB:       db,
		Bookings: bookings,
		Logger:   log,
		Now:      time.Now,
	}
}

func (s *MemberService) ListMembers(ctx context.Context) ([]models.Member, error) {
	return s.DB.ListMembers(ctx)
}

func (s *MemberService) GetMember(ctx context.Context, id string) (*models.Member, error) {
	m, err := s.DB.GetMember(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", id, err)
	}
	return m, nil
}

// RegisterMember stores a new member. Empty email or phone are
// recorded as "N/A".
func (s *MemberService) RegisterMember(ctx context.Context, req models.MemberRequest) (*models.Member, error) {
	req = normalize(req)
	if err := scheduling.ValidateRequest(req); err != nil {
		return nil, err
	}

	m := models.Member{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		DefaultPrice: req.DefaultPrice,
		CreatedAt:    s.Now().UTC(),
	}
	if err := s.DB.CreateMember(ctx, m); err != nil {
		return nil, fmt.Errorf("create member: %w", err)
	}

	s.Logger.LogMember("REGISTER", m.ID, fmt.Sprintf("Registered %s", m.Name))
	s.emit(ctx, models.MemberSaved, m.ID, &m)
	return &m, nil
}

// UpdateMember replaces the contact details of member id. A rename is
// carried onto the member's bookings in the same transaction.
func (s *MemberService) UpdateMember(ctx context.Context, id string, req models.MemberRequest) (*models.Member, error) {
	req = normalize(req)
	if err := scheduling.ValidateRequest(req); err != nil {
		return nil, err
	}

	existing, err := s.DB.GetMember(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("member %s: %w", id, err)
	}

	m := *existing
	m.Name = req.Name
	m.Email = req.Email
	m.Phone = req.Phone
	m.DefaultPrice = req.DefaultPrice
	if err := s.DB.UpdateMember(ctx, m); err != nil {
		return nil, fmt.Errorf("update member %s: %w", id, err)
	}

	s.Logger.LogMember("UPDATE", m.ID, fmt.Sprintf("Updated %s", m.Name))
	s.emit(ctx, models.MemberSaved, m.ID, &m)
	return &m, nil
}

// DeleteMember removes a member together with every booking they own.
func (s *MemberService) DeleteMember(ctx context.Context, id string) error {
	existing, err := s.DB.GetMember(ctx, id)
	if err != nil {
		return fmt.Errorf("member %s: %w", id, err)
	}

	removed, err := s.DB.DeleteMember(ctx, id)
	if err != nil {
		return fmt.Errorf("delete member %s: %w", id, err)
	}

	s.Logger.LogMember("DELETE", id, fmt.Sprintf("Deleted %s with %d bookings", existing.Name, removed))
	s.emit(ctx, models.MemberDeleted, id, existing)
	return nil
}

// Summaries builds the member directory: per-member booking totals
// narrowed and sorted by f.
func (s *MemberService) Summaries(ctx context.Context, f scheduling.SummaryFilter) ([]models.MemberSummary, error) {
	members, err := s.DB.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListBookings(ctx)
	if err != nil {
		return nil, err
	}
	return scheduling.FilterMemberSummaries(scheduling.ComputeMemberSummaries(members, bookings), f), nil
}

func normalize(req models.MemberRequest) models.MemberRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Email == "" {
		req.Email = NotProvided
	}
	if req.Phone == "" {
		req.Phone = NotProvided
	}
	return req
}

func (s *MemberService) emit(ctx context.Context, t models.ChangeType, id string, m *models.Member) {
	event := models.NewChangeEvent(t, id)
	event.Member = m
	if s.Publisher != nil {
		if err := s.Publisher.Publish(ctx, event); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s for %s: %v", t, id, err))
		}
	}
	if s.Notifier != nil {
		s.Notifier.Notify(event)
	}
}
