package backup_test

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"ms-seating/internal/backup"
	"ms-seating/internal/database"
	"ms-seating/internal/logger"
	"ms-seating/internal/models"
	"ms-seating/internal/scheduling"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())
	if err := database.CreateSchema(context.Background(), bunDB); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	t.Cleanup(func() { bunDB.Close() })
	return bunDB
}

type recordingNotifier struct {
	events []models.ChangeEvent
}

func (r *recordingNotifier) Notify(event models.ChangeEvent) {
	r.events = append(r.events, event)
}

func newService(t *testing.T) (*backup.Service, *recordingNotifier) {
	svc := backup.NewService(setupTestDB(t), logger.NewConsoleLogger(io.Discard))
	svc.Now = func() time.Time { return fixedNow }
	n := &recordingNotifier{}
	svc.Notifier = n
	return svc, n
}

func snapshot() backup.Snapshot {
	return backup.Snapshot{
		Version:  backup.Version,
		Settings: models.Settings{TotalSeats: 20, PricePerSession: 120},
		Members: []models.Member{
			{ID: "m1", Name: "Asha", Email: "N/A", Phone: "N/A"},
			{ID: "m2", Name: "Bilal", Email: "b@example.com", Phone: "555"},
		},
		Bookings: []models.Booking{
			{
				ID: "b1", MemberID: "m1", MemberName: "stale name", SeatNumber: 5,
				StartDate: "2024-01-01", EndDate: "2024-01-31", StartTime: "09:00", EndTime: "12:00",
				DaysOfWeek: []int{5, 1, 3}, Amount: 450, PaidAmount: 450, FeeStatus: models.FeeDue,
			},
			{
				ID: "b2", MemberID: "m2", SeatNumber: 5,
				StartDate: "2024-01-15", EndDate: "2024-02-15", StartTime: "11:00", EndTime: "13:00",
				DaysOfWeek: []int{1}, Amount: 300, PaidAmount: 100,
			},
		},
	}
}

func TestImportThenExportRoundTrip(t *testing.T) {
	svc, n := newService(t)
	ctx := context.Background()

	res, err := svc.Import(ctx, snapshot())
	require.NoError(t, err)
	assert.Equal(t, &backup.Result{Members: 2, Bookings: 2}, res)
	require.Len(t, n.events, 1)
	assert.Equal(t, models.SnapshotRestore, n.events[0].Type)

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, backup.Version, snap.Version)
	assert.Equal(t, 20, snap.Settings.TotalSeats)
	require.Len(t, snap.Members, 2)
	require.Len(t, snap.Bookings, 2)

	byID := map[string]models.Booking{}
	for _, b := range snap.Bookings {
		byID[b.ID] = b
	}
	// Derived fields are recomputed on import.
	assert.Equal(t, "Asha", byID["b1"].MemberName)
	assert.Equal(t, []int{1, 3, 5}, byID["b1"].DaysOfWeek)
	assert.Equal(t, models.FeePaid, byID["b1"].FeeStatus)
	assert.Equal(t, models.FeePartial, byID["b2"].FeeStatus)
	assert.True(t, byID["b2"].CreatedAt.Equal(fixedNow))
}

func TestImportKeepsOverlappingBookings(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	snap := snapshot()

	// b1 and b2 share seat 5 on Mondays 11:00-12:00 in the second half of January.
	require.NotEmpty(t, scheduling.FindConflicts(snap.Bookings[0], snap.Bookings[1:], ""))

	_, err := svc.Import(ctx, snap)
	require.NoError(t, err)
}

func TestImportReplacesExistingRows(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, snapshot())
	require.NoError(t, err)

	smaller := snapshot()
	smaller.Members = smaller.Members[:1]
	smaller.Bookings = smaller.Bookings[:1]
	_, err = svc.Import(ctx, smaller)
	require.NoError(t, err)

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Members, 1)
	assert.Len(t, snap.Bookings, 1)
}

func TestImportRejectsInvalidSnapshots(t *testing.T) {
	cases := []struct {
		name string
		edit func(s *backup.Snapshot)
	}{
		{"version", func(s *backup.Snapshot) { s.Version = 2 }},
		{"no seats", func(s *backup.Snapshot) { s.Settings.TotalSeats = 0 }},
		{"duplicate member", func(s *backup.Snapshot) { s.Members[1].ID = "m1" }},
		{"unknown member", func(s *backup.Snapshot) { s.Bookings[0].MemberID = "ghost" }},
		{"duplicate booking", func(s *backup.Snapshot) { s.Bookings[1].ID = "b1" }},
		{"anchor missing", func(s *backup.Snapshot) { s.Bookings[0].DaysOfWeek = []int{3} }},
		{"seat over capacity", func(s *backup.Snapshot) { s.Bookings[0].SeatNumber = 21 }},
		{"negative amount", func(s *backup.Snapshot) { s.Bookings[1].Amount = -5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, n := newService(t)
			ctx := context.Background()
			_, err := svc.Import(ctx, snapshot())
			require.NoError(t, err)

			bad := snapshot()
			tc.edit(&bad)
			_, err = svc.Import(ctx, bad)
			require.Error(t, err)
			assert.True(t, errors.Is(err, scheduling.ErrValidation))

			// Nothing was replaced.
			snap, err := svc.Export(ctx)
			require.NoError(t, err)
			assert.Len(t, snap.Bookings, 2)
			assert.Len(t, n.events, 1)
		})
	}
}

func TestExportEmptyStoreUsesDefaults(t *testing.T) {
	svc, _ := newService(t)

	snap, err := svc.Export(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, snap.Settings.TotalSeats)
	assert.Empty(t, snap.Members)
	assert.Empty(t, snap.Bookings)
}

func TestReset(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Import(ctx, snapshot())
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))

	snap, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings().TotalSeats, snap.Settings.TotalSeats)
	assert.Empty(t, snap.Members)
	assert.Empty(t, snap.Bookings)
}

func TestEncodeDecode(t *testing.T) {
	snap := snapshot()
	var buf bytes.Buffer
	require.NoError(t, backup.Encode(&buf, &snap))
	assert.Contains(t, buf.String(), `"daysOfWeek"`)

	decoded, err := backup.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, snap.Bookings[0].StartDate, decoded.Bookings[0].StartDate)

	_, err = backup.Decode(bytes.NewBufferString(`{"version":`))
	assert.True(t, errors.Is(err, scheduling.ErrValidation))

	_, err = backup.Decode(bytes.NewBufferString(`{"bookings":[{"feeStatus":"Overdue"}]}`))
	assert.Error(t, err)
}
