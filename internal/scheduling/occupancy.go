package scheduling

import (
	"fmt"
	"sort"

	"ms-seating/internal/models"
)

// Index maps each occupied seat to its active booking for one instant.
type Index struct {
	Date  string
	Time  string
	Seats map[int]models.Booking
	// Anomalies lists seats matched by more than one booking. The seat in
	// Seats keeps the first match in input order.
	Anomalies []Anomaly
}

// Occupant returns the booking holding seat, if any.
func (i Index) Occupant(seat int) (models.Booking, bool) {
	b, ok := i.Seats[seat]
	return b, ok
}

func (i Index) Occupied() int {
	return len(i.Seats)
}

// BuildIndex evaluates every booking at date/clock. A malformed date yields
// an empty index.
func BuildIndex(bookings []models.Booking, date, clock string) Index {
	idx := Index{Date: date, Time: clock, Seats: make(map[int]models.Booking)}
	wd, err := Weekday(date)
	if err != nil {
		return idx
	}
	at := Instant{Date: date, Time: clock, Weekday: wd}

	var clashes map[int][]models.Booking
	for _, b := range bookings {
		if !at.Matches(b) {
			continue
		}
		first, taken := idx.Seats[b.SeatNumber]
		if !taken {
			idx.Seats[b.SeatNumber] = b
			continue
		}
		if clashes == nil {
			clashes = make(map[int][]models.Booking)
		}
		if len(clashes[b.SeatNumber]) == 0 {
			clashes[b.SeatNumber] = []models.Booking{first}
		}
		clashes[b.SeatNumber] = append(clashes[b.SeatNumber], b)
	}
	idx.Anomalies = collectAnomalies(clashes, date, clock)
	return idx
}

// BuildIndexAt is BuildIndex for a wall-clock time.
func BuildIndexAt(bookings []models.Booking, at Instant) Index {
	return BuildIndex(bookings, at.Date, at.Time)
}

func collectAnomalies(clashes map[int][]models.Booking, date, clock string) []Anomaly {
	if len(clashes) == 0 {
		return nil
	}
	seats := make([]int, 0, len(clashes))
	for seat := range clashes {
		seats = append(seats, seat)
	}
	sort.Ints(seats)
	out := make([]Anomaly, 0, len(seats))
	for _, seat := range seats {
		out = append(out, Anomaly{Seat: seat, Date: date, Time: clock, Bookings: clashes[seat]})
	}
	return out
}

// TimelineCell is one (seat, hour) slot. BookingID is empty when free.
type TimelineCell struct {
	Hour       int              `json:"hour"`
	Time       string           `json:"time"`
	BookingID  string           `json:"bookingId,omitempty"`
	MemberName string           `json:"memberName,omitempty"`
	FeeStatus  models.FeeStatus `json:"feeStatus,omitempty"`
}

type TimelineRow struct {
	Seat  int            `json:"seat"`
	Cells []TimelineCell `json:"cells"`
}

// Timeline is the seat × hour grid for one date.
type Timeline struct {
	Date      string        `json:"date"`
	Hours     []int         `json:"hours"`
	Rows      []TimelineRow `json:"rows"`
	Anomalies []Anomaly     `json:"anomalies,omitempty"`
}

// BuildTimeline samples every seat from 1 to totalSeats at the top of each
// hour in [fromHour, toHour]. Bookings are filtered by date once, so each
// cell only looks at the bookings of its own seat.
func BuildTimeline(bookings []models.Booking, date string, totalSeats, fromHour, toHour int) (Timeline, error) {
	wd, err := Weekday(date)
	if err != nil {
		return Timeline{}, invalid("date", "%v", err)
	}
	if fromHour < 0 || toHour > 23 || fromHour > toHour {
		return Timeline{}, invalid("hours", "range %d..%d is not within 0..23", fromHour, toHour)
	}

	bySeat := make(map[int][]models.Booking)
	for _, b := range bookings {
		if coversDate(b, date, wd) {
			bySeat[b.SeatNumber] = append(bySeat[b.SeatNumber], b)
		}
	}

	tl := Timeline{Date: date, Rows: make([]TimelineRow, 0, totalSeats)}
	for h := fromHour; h <= toHour; h++ {
		tl.Hours = append(tl.Hours, h)
	}

	for seat := 1; seat <= totalSeats; seat++ {
		row := TimelineRow{Seat: seat, Cells: make([]TimelineCell, 0, len(tl.Hours))}
		candidates := bySeat[seat]
		for _, h := range tl.Hours {
			clock := fmt.Sprintf("%02d:00", h)
			cell := TimelineCell{Hour: h, Time: clock}
			var matched []models.Booking
			for _, b := range candidates {
				if inWindow(b, clock) {
					matched = append(matched, b)
				}
			}
			if len(matched) > 0 {
				cell.BookingID = matched[0].ID
				cell.MemberName = matched[0].MemberName
				cell.FeeStatus = matched[0].FeeStatus
			}
			if len(matched) > 1 {
				tl.Anomalies = append(tl.Anomalies, Anomaly{Seat: seat, Date: date, Time: clock, Bookings: matched})
			}
			row.Cells = append(row.Cells, cell)
		}
		tl.Rows = append(tl.Rows, row)
	}
	return tl, nil
}
