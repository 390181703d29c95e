package db

import (
	"context"

	"github.com/uptrace/bun"

	"ms-seating/internal/database"
	"ms-seating/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetSettings → the single settings row, ErrNotFound before first run
func (d *DB) GetSettings(ctx context.Context) (*models.Settings, error) {
	var settings models.Settings
	err := d.Bun.NewSelect().
		Model(&settings).
		Where("id = ?", models.SettingsID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, database.NotFound(err)
	}
	return &settings, nil
}

// InsertDefaults → create the settings row unless another writer already did
func (d *DB) InsertDefaults(ctx context.Context, settings models.Settings) error {
	settings.ID = models.SettingsID
	_, err := d.Bun.NewInsert().
		Model(&settings).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	return err
}

// SaveSettings → upsert the settings row
func (d *DB) SaveSettings(ctx context.Context, settings models.Settings) error {
	settings.ID = models.SettingsID
	_, err := d.Bun.NewInsert().
		Model(&settings).
		On("CONFLICT (id) DO UPDATE").
		Set("total_seats = EXCLUDED.total_seats").
		Set("price_per_session = EXCLUDED.price_per_session").
		Set("allow_past_dates = EXCLUDED.allow_past_dates").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
