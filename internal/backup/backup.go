// Package backup moves the whole store in and out as one JSON snapshot:
// settings, members and bookings. A restore replaces every row inside a
// single transaction.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/uptrace/bun"

	"ms-seating/internal/database"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/scheduling"
)

// Version is the snapshot format written by Export.
const Version = 1

type Snapshot struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Settings   models.Settings  `json:"settings"`
	Members    []models.Member  `json:"members"`
	Bookings   []models.Booking `json:"bookings"`
}

// Result counts what a restore wrote.
type Result struct {
	Members  int `json:"members"`
	Bookings int `json:"bookings"`
}

type Publisher interface {
	Publish(ctx context.Context, event models.ChangeEvent) error
}

type Notifier interface {
	Notify(event models.ChangeEvent)
}

type Service struct {
	DB        *bun.DB
	Publisher Publisher
	Notifier  Notifier
	Logger    *logger.Logger
	Now       func() time.Time
}

func NewService(db *bun.DB, log *logger.Logger) *Service {
	return &Service{DB: db, Logger: log, Now: time.Now}
}

// Export reads settings, members and bookings in one transaction so the
// snapshot is consistent.
func (s *Service) Export(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{
		Version:    Version,
		ExportedAt: s.Now().UTC(),
		Members:    []models.Member{},
		Bookings:   []models.Booking{},
	}

	err := s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().Model(&snap.Settings).Where("id = ?", models.SettingsID).Limit(1).Scan(ctx)
		if errors.Is(database.NotFound(err), database.ErrNotFound) {
			snap.Settings = models.DefaultSettings()
		} else if err != nil {
			return fmt.Errorf("read settings: %w", err)
		}

		if err := tx.NewSelect().Model(&snap.Members).Order("created_at ASC").Scan(ctx); err != nil {
			return fmt.Errorf("read members: %w", err)
		}
		if err := tx.NewSelect().Model(&snap.Bookings).Order("created_at DESC").Scan(ctx); err != nil {
			return fmt.Errorf("read bookings: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.LogDatabase("EXPORT", "snapshot", fmt.Sprintf("%d members, %d bookings", len(snap.Members), len(snap.Bookings)))
	return snap, nil
}

// Import validates snap and replaces the whole store with it. Overlapping
// bookings are accepted as they are; they show up later as occupancy
// anomalies.
func (s *Service) Import(ctx context.Context, snap Snapshot) (*Result, error) {
	if err := Prepare(&snap, s.Now().UTC()); err != nil {
		return nil, err
	}

	err := s.DB.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return replaceAll(ctx, tx, snap)
	})
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}

	res := &Result{Members: len(snap.Members), Bookings: len(snap.Bookings)}
	s.Logger.LogDatabase("IMPORT", "snapshot", fmt.Sprintf("%d members, %d bookings restored", res.Members, res.Bookings))
	s.emit(ctx, &snap.Settings)
	return res, nil
}

// Reset wipes members and bookings and restores the default settings.
func (s *Service) Reset(ctx context.Context) error {
	snap := Snapshot{Version: Version, Settings: models.DefaultSettings()}
	if _, err := s.Import(ctx, snap); err != nil {
		return err
	}
	s.Logger.Warn("DATABASE", "Store reset to factory defaults")
	return nil
}

func replaceAll(ctx context.Context, tx bun.Tx, snap Snapshot) error {
	wipe := []interface{}{(*models.Booking)(nil), (*models.Member)(nil), (*models.Settings)(nil)}
	for _, model := range wipe {
		if _, err := tx.NewDelete().Model(model).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}

	if _, err := tx.NewInsert().Model(&snap.Settings).Exec(ctx); err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}
	if len(snap.Members) > 0 {
		if _, err := tx.NewInsert().Model(&snap.Members).Exec(ctx); err != nil {
			return fmt.Errorf("insert members: %w", err)
		}
	}
	if len(snap.Bookings) > 0 {
		if _, err := tx.NewInsert().Model(&snap.Bookings).Exec(ctx); err != nil {
			return fmt.Errorf("insert bookings: %w", err)
		}
	}
	return nil
}

// Prepare checks a snapshot before it is written and normalises the derived
// fields: fee status from the amounts, member name from the owning member,
// and missing timestamps set to now.
func Prepare(snap *Snapshot, now time.Time) error {
	if snap.Version != Version {
		return scheduling.Invalid("version", "unsupported snapshot version %d", snap.Version)
	}
	if snap.Settings.TotalSeats < 1 {
		return scheduling.Invalid("settings.totalSeats", "must be at least 1")
	}
	snap.Settings.ID = models.SettingsID
	if snap.Settings.UpdatedAt.IsZero() {
		snap.Settings.UpdatedAt = now
	}

	names := make(map[string]string, len(snap.Members))
	for i := range snap.Members {
		m := &snap.Members[i]
		if m.ID == "" || m.Name == "" {
			return scheduling.Invalid(fmt.Sprintf("members[%d]", i), "id and name are required")
		}
		if _, dup := names[m.ID]; dup {
			return scheduling.Invalid(fmt.Sprintf("members[%d]", i), "duplicate member id %s", m.ID)
		}
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		names[m.ID] = m.Name
	}

	seen := make(map[string]bool, len(snap.Bookings))
	rules := scheduling.Rules{TotalSeats: snap.Settings.TotalSeats}
	for i := range snap.Bookings {
		b := &snap.Bookings[i]
		field := fmt.Sprintf("bookings[%d]", i)
		if b.ID == "" || seen[b.ID] {
			return scheduling.Invalid(field, "missing or duplicate booking id %q", b.ID)
		}
		seen[b.ID] = true

		name, ok := names[b.MemberID]
		if !ok {
			return scheduling.Invalid(field, "member %q is not in the snapshot", b.MemberID)
		}
		if err := scheduling.ValidateSchedule(*b, rules); err != nil {
			return scheduling.Invalid(field, "%v", err)
		}
		if b.Amount < 0 || b.PaidAmount < 0 {
			return scheduling.Invalid(field, "amounts must not be negative")
		}

		b.MemberName = name
		b.DaysOfWeek = scheduling.SortDays(b.DaysOfWeek)
		b.FeeStatus = scheduling.DeriveFeeStatus(b.Amount, b.PaidAmount)
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
	}
	return nil
}

// Encode writes snap as indented JSON.
func Encode(w io.Writer, snap *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// Decode reads a snapshot written by Encode.
func Decode(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, scheduling.Invalid("snapshot", "invalid JSON: %v", err)
	}
	return &snap, nil
}

func (s *Service) emit(ctx context.Context, settings *models.Settings) {
	event := models.NewChangeEvent(models.SnapshotRestore, models.SettingsID)
	event.Settings = settings
	if s.Publisher != nil {
		if err := s.Publisher.Publish(ctx, event); err != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("Failed to publish %s: %v", event.Type, err))
		}
	}
	if s.Notifier != nil {
		s.Notifier.Notify(event)
	}
}
