package database_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-seating/internal/config"
	"ms-seating/internal/database"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
)

func TestOpenSQLiteAndCreateSchema(t *testing.T) {
	ctx := context.Background()
	cfg := config.DatabaseConfig{Driver: database.DriverSQLite, SQLitePath: "file::memory:?cache=shared"}

	db, err := database.Open(ctx, cfg, logger.NewConsoleLogger(io.Discard))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, database.CreateSchema(ctx, db))
	// Running twice is a no-op
	require.NoError(t, database.CreateSchema(ctx, db))

	settings := models.DefaultSettings()
	_, err = db.NewInsert().Model(&settings).Exec(ctx)
	require.NoError(t, err)

	var count int
	count, err = db.NewSelect().Model((*models.Settings)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := database.Open(context.Background(), config.DatabaseConfig{Driver: "oracle"}, logger.NewConsoleLogger(io.Discard))
	assert.Error(t, err)

	_, err = database.Open(context.Background(), config.DatabaseConfig{Driver: database.DriverPostgres}, logger.NewConsoleLogger(io.Discard))
	assert.Error(t, err, "postgres without DSN")
}

func TestNotFound(t *testing.T) {
	assert.Equal(t, database.ErrNotFound, database.NotFound(sql.ErrNoRows))
	assert.True(t, errors.Is(database.NotFound(fmt.Errorf("scan: %w", sql.ErrNoRows)), database.ErrNotFound))

	other := errors.New("disk full")
	assert.Equal(t, other, database.NotFound(other))
	assert.Nil(t, database.NotFound(nil))
}
