package main

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"ms-seating/internal/config"
	"ms-seating/internal/database"
	"ms-seating/internal/database/migrations"
	"ms-seating/internal/logger"
)

// prepareSchema brings the schema up to date. PostgreSQL runs the versioned
// SQL files; SQLite creates the tables from the models.
func prepareSchema(ctx context.Context, bunDB *bun.DB, cfg config.DatabaseConfig, log *logger.Logger) error {
	if !cfg.AutoMigrate {
		log.Info("MIGRATE", "Auto-migration disabled, assuming schema is current")
		return nil
	}

	if cfg.Driver != database.DriverPostgres {
		if err := database.CreateSchema(ctx, bunDB); err != nil {
			return fmt.Errorf("create sqlite schema: %w", err)
		}
		log.Info("MIGRATE", "SQLite schema ready")
		return nil
	}

	runner := migrations.NewRunner(bunDB, migrations.MigrateOptions{
		MigrationsDir: cfg.MigrationsDir,
		AutoMigrate:   cfg.AutoMigrate,
	}, log)
	if err := runner.MigrateUp(); err != nil {
		return err
	}
	log.Info("MIGRATE", "✅ PostgreSQL migrations applied")
	return nil
}
