package scheduling_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-seating/internal/models"
	"ms-seating/internal/scheduling"
)

func ledger() []models.Booking {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	return []models.Booking{
		{ID: "b1", MemberID: "m1", MemberName: "Asha", SeatNumber: 1, StartDate: "2024-01-01", EndDate: "2024-01-31",
			StartTime: "09:00", EndTime: "12:00", DaysOfWeek: []int{1, 2, 3, 4, 5}, Amount: 450, PaidAmount: 450,
			FeeStatus: models.FeePaid, CreatedAt: base},
		{ID: "b2", MemberID: "m1", MemberName: "Asha", SeatNumber: 2, StartDate: "2023-06-01", EndDate: "2023-06-30",
			StartTime: "09:00", EndTime: "12:00", DaysOfWeek: scheduling.AllDays, Amount: 150, PaidAmount: 200,
			FeeStatus: models.FeePaid, CreatedAt: base.Add(time.Hour)},
		{ID: "b3", MemberID: "m2", MemberName: "Bilal", SeatNumber: 3, StartDate: "2024-01-01", EndDate: "2024-03-31",
			StartTime: "08:00", EndTime: "20:00", DaysOfWeek: scheduling.AllDays, Amount: 300, PaidAmount: 100,
			FeeStatus: models.FeePartial, CreatedAt: base.Add(2 * time.Hour)},
	}
}

func TestComputeDashboardStats(t *testing.T) {
	settings := models.DefaultSettings()
	now := time.Date(2024, 1, 3, 10, 0, 0, 0, time.UTC)

	stats := scheduling.ComputeDashboardStats(ledger(), settings, now)
	assert.Equal(t, 40, stats.TotalSeats)
	assert.Equal(t, 2, stats.LiveOccupancy)
	assert.Equal(t, 5, stats.OccupancyRate)
	assert.Equal(t, 750.0, stats.TotalRevenue)
	// Overpayment on b2 does not reduce dues
	assert.Equal(t, 200.0, stats.TotalDues)
}

func TestComputeDashboardStatsEmpty(t *testing.T) {
	stats := scheduling.ComputeDashboardStats(nil, models.Settings{}, time.Now())
	assert.Zero(t, stats.LiveOccupancy)
	assert.Zero(t, stats.OccupancyRate)
}

func TestComputeMemberSummaries(t *testing.T) {
	members := []models.Member{{ID: "m1", Name: "Asha"}, {ID: "m2", Name: "Bilal"}, {ID: "m3", Name: "Chen"}}

	summaries := scheduling.ComputeMemberSummaries(members, ledger())
	require.Len(t, summaries, 3)

	assert.Equal(t, 600.0, summaries[0].TotalAmount)
	assert.Equal(t, 650.0, summaries[0].TotalPaid)
	assert.Equal(t, -50.0, summaries[0].TotalDues)
	assert.Equal(t, 2, summaries[0].BookingCount)

	assert.Equal(t, 200.0, summaries[1].TotalDues)
	assert.Equal(t, 1, summaries[1].BookingCount)

	assert.Zero(t, summaries[2].BookingCount)
	assert.Zero(t, summaries[2].TotalDues)
}

func TestFilterMemberSummaries(t *testing.T) {
	members := []models.Member{{ID: "m2", Name: "bilal"}, {ID: "m1", Name: "Asha"}, {ID: "m3", Name: "Chen"}}
	summaries := scheduling.ComputeMemberSummaries(members, ledger())

	byName := scheduling.FilterMemberSummaries(summaries, scheduling.SummaryFilter{})
	require.Len(t, byName, 3)
	assert.Equal(t, []string{"Asha", "bilal", "Chen"}, []string{byName[0].Name, byName[1].Name, byName[2].Name})

	dues := scheduling.FilterMemberSummaries(summaries, scheduling.SummaryFilter{OnlyDues: true, SortBy: scheduling.SortByDues})
	require.Len(t, dues, 1)
	assert.Equal(t, "m2", dues[0].ID)

	paid := scheduling.FilterMemberSummaries(summaries, scheduling.SummaryFilter{SortBy: scheduling.SortByPaid})
	assert.Equal(t, "m1", paid[0].ID)

	search := scheduling.FilterMemberSummaries(summaries, scheduling.SummaryFilter{Query: "M3"})
	require.Len(t, search, 1)
	assert.Equal(t, "Chen", search[0].Name)
}

func TestFilterBookings(t *testing.T) {
	all := scheduling.FilterBookings(ledger(), scheduling.BookingFilter{})
	require.Len(t, all, 3)
	assert.Equal(t, "b3", all[0].ID, "newest first")

	bySeat := scheduling.FilterBookings(ledger(), scheduling.BookingFilter{Query: "2"})
	require.Len(t, bySeat, 1)
	assert.Equal(t, 2, bySeat[0].SeatNumber)

	bySeatExact := scheduling.FilterBookings(ledger(), scheduling.BookingFilter{Query: "1"})
	require.Len(t, bySeatExact, 1, "seat 1 and id b1 are the same booking")

	byName := scheduling.FilterBookings(ledger(), scheduling.BookingFilter{Query: "asha"})
	assert.Len(t, byName, 2)

	partial := scheduling.FilterBookings(ledger(), scheduling.BookingFilter{Status: models.FeePartial})
	require.Len(t, partial, 1)
	assert.Equal(t, "b3", partial[0].ID)
}
