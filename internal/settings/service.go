// Package settings owns the facility-wide settings record: seat capacity,
// the default price per session and whether bookings may start in the past.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-seating/internal/database"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/scheduling"
)

type DBLayer interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	InsertDefaults(ctx context.Context, settings models.Settings) error
	SaveSettings(ctx context.Context, settings models.Settings) error
}

type Publisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}

type Notifier interface {
	Notify(event models.ChangeEvent)
}

type SettingsService struct {
	DB        DBLayer
	Publisher Publisher
	Notifier  Notifier
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewSettingsService(db DBLayer, log *logger.Logger) *SettingsService {
	return &SettingsService{DB: db, Logger: log, Now: time.Now}
}

// GetSettings returns the stored settings, writing the defaults on first run.
func (s *SettingsService) GetSettings(ctx context.Context) (models.Settings, error) {
	stored, err := s.DB.GetSettings(ctx)
	if err == nil {
		return *stored, nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	defaults := models.DefaultSettings()
	defaults.UpdatedAt = s.Now().UTC()
	if err := s.DB.InsertDefaults(ctx, defaults); err != nil {
		return models.Settings{}, fmt.Errorf("create default settings: %w", err)
	}
	s.Logger.Info("SETTINGS", fmt.Sprintf("Created default settings: %d seats at %.2f per session", defaults.TotalSeats, defaults.PricePerSession))

	// Re-read in case a concurrent first run won the insert.
	stored, err = s.DB.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return *stored, nil
}

// UpdateSettings replaces the settings record. Shrinking capacity does not
// touch existing bookings on seats above the new limit.
func (s *SettingsService) UpdateSettings(ctx context.Context, req models.SettingsRequest) (*models.Settings, error) {
	if err := scheduling.ValidateRequest(req); err != nil {
		return nil, err
	}

	updated := models.Settings{
		ID:              models.SettingsID,
		TotalSeats:      req.TotalSeats,
		PricePerSession: req.PricePerSession,
		AllowPastDates:  req.AllowPastDates,
		UpdatedAt:       s.Now().UTC(),
	}
	if err := s.DB.SaveSettings(ctx, updated); err != nil {
		return nil, fmt.Errorf("save settings: %w", err)
	}

	s.Logger.Info("SETTINGS", fmt.Sprintf("Updated: %d seats, %.2f per session, past dates allowed=%t",
		updated.TotalSeats, updated.PricePerSession, updated.AllowPastDates))

	event := models.NewChangeEvent(models.SettingsUpdated, models.SettingsID)
	event.Settings = &updated
	if s.Publisher != nil {
		if err := s.Publisher.Publish(ctx, event); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s: %v", event.Type, err))
		}
	}
	if s.Notifier != nil {
		s.Notifier.Notify(event)
	}
	return &updated, nil
}
