package http

import (
	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/wellness-booking-backend/internal/stats"
)

type StatsQuery struct {
	request.DateRangeParams
}

type PivotQuery struct {
	From string `form:"from" binding:"required,yearmonth"`
	To   string `form:"to" binding:"required,yearmonth"`
}

type TenantCountResponse struct {
	Tenant string `json:"tenant"`
	Count  int    `json:"count"`
}

type StatsResponse struct {
	From             *string               `json:"from"`
	To               *string               `json:"to"`
	TotalActive      int                   `json:"total_active"`
	TotalCancelled   int                   `json:"total_cancelled"`
	CancellationRate float64               `json:"cancellation_rate"`
	ByWeekday        map[string]int        `json:"by_weekday"`
	ByHour           map[int]int           `json:"by_hour"`
	ByTenant         map[string]int        `json:"by_tenant"`
	TopTenants       []TenantCountResponse `json:"top_tenants"`
	ByMonth          map[string]int        `json:"by_month"`
	AdminBookings    int                   `json:"admin_bookings"`
	SelfBookings     int                   `json:"self_bookings"`
}

func NewStatsResponse(s *stats.Statistics) StatsResponse {
	resp := StatsResponse{
		TotalActive:      s.TotalActive,
		TotalCancelled:   s.TotalCancelled,
		CancellationRate: s.CancellationRate,
		ByWeekday:        make(map[string]int, len(s.ByWeekday)),
		ByHour:           s.ByHour,
		ByTenant:         s.ByTenant,
		TopTenants:       make([]TenantCountResponse, len(s.TopTenants)),
		ByMonth:          s.ByMonth,
		AdminBookings:    s.AdminBookings,
		SelfBookings:     s.SelfBookings,
	}
	if s.From != nil {
		v := calendar.FormatDate(*s.From)
		resp.From = &v
	}
	if s.To != nil {
		v := calendar.FormatDate(*s.To)
		resp.To = &v
	}
	for day, n := range s.ByWeekday {
		resp.ByWeekday[weekdayKey(day)] = n
	}
	for i, tc := range s.TopTenants {
		resp.TopTenants[i] = TenantCountResponse{Tenant: tc.Tenant, Count: tc.Count}
	}
	return resp
}

var weekdayKeys = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

func weekdayKey(day int) string {
	return weekdayKeys[day]
}

type PivotResponse struct {
	Months       []string                  `json:"months"`
	Tenants      []string                  `json:"tenants"`
	Cells        map[string]map[string]int `json:"cells"`
	RowTotals    map[string]int            `json:"row_totals"`
	ColumnTotals map[string]int            `json:"column_totals"`
	GrandTotal   int                       `json:"grand_total"`
}

func NewPivotResponse(p *stats.Pivot) PivotResponse {
	return PivotResponse{
		Months:       p.Months,
		Tenants:      p.Tenants,
		Cells:        p.Cells,
		RowTotals:    p.RowTotals,
		ColumnTotals: p.ColumnTotals,
		GrandTotal:   p.GrandTotal,
	}
}
