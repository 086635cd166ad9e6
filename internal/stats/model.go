package stats

import (
	"math"
	"sort"
	"time"

	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/event"
	"github.com/nekogravitycat/wellness-booking-backend/internal/reservation"
)

type TenantCount struct {
	Tenant string
	Count  int
}

// Statistics summarises reservations whose slot date falls in [From, To].
// Distributions count active reservations only.
type Statistics struct {
	From             *time.Time
	To               *time.Time
	TotalActive      int
	TotalCancelled   int
	CancellationRate float64 // percent, one decimal
	ByWeekday        [7]int  // indexed by time.Weekday
	ByHour           map[int]int
	ByTenant         map[string]int
	TopTenants       []TenantCount
	ByMonth          map[string]int // YYYY-MM
	AdminBookings    int
	SelfBookings     int
}

// Pivot is a tenant x month grid of active reservation counts.
type Pivot struct {
	Months       []string // YYYY-MM, ascending
	Tenants      []string
	Cells        map[string]map[string]int // tenant -> month -> count
	RowTotals    map[string]int
	ColumnTotals map[string]int
	GrandTotal   int
}

func cancellationRate(cancelled, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(cancelled)/float64(total)*1000) / 10
}

// Compute derives statistics from reservations ordered by date, hour and creation,
// plus the booking events of the same window. Top tenant ties keep scan order.
func Compute(reservations []*reservation.Reservation, events []*event.Event, bookableHours []int, topN int) *Statistics {
	s := &Statistics{
		ByHour:   make(map[int]int, len(bookableHours)),
		ByTenant: make(map[string]int),
		ByMonth:  make(map[string]int),
	}
	for _, h := range bookableHours {
		s.ByHour[h] = 0
	}

	var order []string
	for _, r := range reservations {
		if !r.IsActive() {
			s.TotalCancelled++
			continue
		}
		s.TotalActive++
		s.ByWeekday[calendar.Weekday(r.Date)]++
		s.ByHour[r.Hour]++
		if _, seen := s.ByTenant[r.TenantCode]; !seen {
			order = append(order, r.TenantCode)
		}
		s.ByTenant[r.TenantCode]++
		s.ByMonth[calendar.MonthOf(r.Date).Key()]++
	}
	s.CancellationRate = cancellationRate(s.TotalCancelled, s.TotalActive+s.TotalCancelled)

	top := make([]TenantCount, 0, len(order))
	for _, t := range order {
		top = append(top, TenantCount{Tenant: t, Count: s.ByTenant[t]})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
	if topN >= 0 && len(top) > topN {
		top = top[:topN]
	}
	s.TopTenants = top

	for _, e := range events {
		switch e.Type {
		case event.TypeAdminBooking:
			s.AdminBookings++
		case event.TypeReservation:
			s.SelfBookings++
		}
	}
	return s
}

// BuildPivot counts active reservations per tenant and month. Every configured tenant
// gets a row; reservations of other tenants are appended in scan order.
func BuildPivot(reservations []*reservation.Reservation, tenants []string, months []calendar.Month) *Pivot {
	p := &Pivot{
		Months:       make([]string, 0, len(months)),
		Tenants:      append([]string(nil), tenants...),
		Cells:        make(map[string]map[string]int),
		RowTotals:    make(map[string]int),
		ColumnTotals: make(map[string]int),
	}
	for _, m := range months {
		p.Months = append(p.Months, m.Key())
		p.ColumnTotals[m.Key()] = 0
	}

	row := func(tenant string) map[string]int {
		cells, ok := p.Cells[tenant]
		if !ok {
			cells = make(map[string]int, len(months))
			for _, m := range p.Months {
				cells[m] = 0
			}
			p.Cells[tenant] = cells
			p.RowTotals[tenant] = 0
		}
		return cells
	}
	for _, t := range tenants {
		row(t)
	}

	for _, r := range reservations {
		if !r.IsActive() {
			continue
		}
		for _, m := range months {
			if !m.Contains(r.Date) {
				continue
			}
			if _, known := p.Cells[r.TenantCode]; !known {
				p.Tenants = append(p.Tenants, r.TenantCode)
			}
			row(r.TenantCode)[m.Key()]++
			p.RowTotals[r.TenantCode]++
			p.ColumnTotals[m.Key()]++
			p.GrandTotal++
			break
		}
	}
	return p
}
