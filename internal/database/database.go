// Package database opens the bun handle for the configured driver and
// owns the table layout shared by every repository.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-seating/internal/config"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
)

// ErrNotFound is returned by repositories when no row matches.
var ErrNotFound = errors.New("record not found")

// NotFound maps sql.ErrNoRows onto ErrNotFound and passes other errors on.
func NotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open connects to the configured database, retrying the first ping.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *logger.Logger) (*bun.DB, error) {
	var (
		sqldb *sql.DB
		err   error
	)
	switch cfg.Driver {
	case DriverSQLite, "":
		sqldb, err = sql.Open(sqliteshim.ShimName, cfg.SQLitePath)
	case DriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, errors.New("POSTGRES_DSN not set")
		}
		sqldb, err = sql.Open("postgres", cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		sqldb.SetConnMaxLifetime(cfg.MaxLifetime)
	}

	const maxRetries = 5
	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Attempting to connect to %s (attempt %d/%d)", driverName(cfg.Driver), i+1, maxRetries))
		if err = sqldb.PingContext(ctx); err == nil {
			break
		}
		log.Error("DATABASE", fmt.Sprintf("Failed to connect: %v", err))
		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				sqldb.Close()
				return nil, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
	if err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("connect after %d attempts: %w", maxRetries, err)
	}

	if cfg.Driver == DriverPostgres {
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func driverName(driver string) string {
	if driver == DriverPostgres {
		return "PostgreSQL"
	}
	return "SQLite"
}

// CreateSchema creates the settings, members and bookings tables and their
// indexes when they do not exist yet.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	tables := []interface{}{
		(*models.Settings)(nil),
		(*models.Member)(nil),
		(*models.Booking)(nil),
	}
	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	indexes := []struct {
		name   string
		column string
	}{
		{"bookings_seat_number_idx", "seat_number"},
		{"bookings_member_id_idx", "member_id"},
	}
	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model((*models.Booking)(nil)).
			Index(idx.name).
			Column(idx.column).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}
	return nil
}
