package scheduling

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"ms-seating/internal/models"
)

// ComputeDashboardStats rolls every booking up into the dashboard header.
// Revenue and dues are cumulative over all bookings; live occupancy counts
// bookings active at now, read in now's own location.
func ComputeDashboardStats(bookings []models.Booking, settings models.Settings, now time.Time) models.DashboardStats {
	at := NewInstant(now)
	stats := models.DashboardStats{TotalSeats: settings.TotalSeats}
	for _, b := range bookings {
		if at.Matches(b) {
			stats.LiveOccupancy++
		}
		stats.TotalRevenue += b.PaidAmount
		stats.TotalDues += Outstanding(b.Amount, b.PaidAmount)
	}
	if stats.TotalSeats > 0 {
		stats.OccupancyRate = int(math.Round(float64(stats.LiveOccupancy) * 100 / float64(stats.TotalSeats)))
	}
	return stats
}

// ComputeMemberSummaries returns one summary per member in input order.
// TotalDues is amount minus paid and goes negative on overpayment.
func ComputeMemberSummaries(members []models.Member, bookings []models.Booking) []models.MemberSummary {
	byMember := make(map[string]*models.MemberSummary, len(members))
	out := make([]models.MemberSummary, len(members))
	for i, m := range members {
		out[i] = models.MemberSummary{Member: m}
		byMember[m.ID] = &out[i]
	}
	for _, b := range bookings {
		s, ok := byMember[b.MemberID]
		if !ok {
			continue
		}
		s.TotalAmount += b.Amount
		s.TotalPaid += b.PaidAmount
		s.BookingCount++
	}
	for i := range out {
		out[i].TotalDues = out[i].TotalAmount - out[i].TotalPaid
	}
	return out
}

type SummarySort string

const (
	SortByName SummarySort = "name"
	SortByDues SummarySort = "dues"
	SortByPaid SummarySort = "paid"
)

// SummaryFilter narrows the member directory. Query matches a
// case-insensitive substring of the name or ID.
type SummaryFilter struct {
	Query    string
	OnlyDues bool
	SortBy   SummarySort
}

func FilterMemberSummaries(summaries []models.MemberSummary, f SummaryFilter) []models.MemberSummary {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.MemberSummary, 0, len(summaries))
	for _, s := range summaries {
		if q != "" && !strings.Contains(strings.ToLower(s.Name), q) && !strings.Contains(strings.ToLower(s.ID), q) {
			continue
		}
		if f.OnlyDues && s.TotalDues <= 0 {
			continue
		}
		out = append(out, s)
	}

	switch f.SortBy {
	case SortByDues:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TotalDues > out[j].TotalDues })
	case SortByPaid:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TotalPaid > out[j].TotalPaid })
	case SortByName, "":
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}

// BookingFilter narrows the booking ledger. Query matches a case-insensitive
// substring of the member name or booking ID, or the exact seat number.
// An empty Status keeps every fee status.
type BookingFilter struct {
	Query  string
	Status models.FeeStatus
}

// FilterBookings applies f and sorts newest first.
func FilterBookings(bookings []models.Booking, f BookingFilter) []models.Booking {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Booking, 0, len(bookings))
	for _, b := range bookings {
		if q != "" &&
			!strings.Contains(strings.ToLower(b.MemberName), q) &&
			!strings.Contains(strings.ToLower(b.ID), q) &&
			strconv.Itoa(b.SeatNumber) != q {
			continue
		}
		if f.Status != "" && b.FeeStatus != f.Status {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}
