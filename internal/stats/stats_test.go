package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/event"
	"github.com/nekogravitycat/wellness-booking-backend/internal/reservation"
)

const (
	apt1 = "APARTAMENT 1"
	apt2 = "APARTAMENT 2"
	apt3 = "APARTAMENT 3"
)

var hours = []int{14, 15, 16, 17, 18, 19}

func seed(t *testing.T, repo reservation.Repository, tenant string, date time.Time, hour int, status reservation.Status) {
	t.Helper()
	ctx := context.Background()
	r := &reservation.Reservation{TenantCode: tenant, Date: date, Hour: hour, Status: reservation.StatusActive}
	require.NoError(t, repo.Create(ctx, r))
	if status == reservation.StatusCancelled {
		require.NoError(t, repo.Cancel(ctx, r.ID, nil, time.Now()))
	}
}

func TestStatisticsExample(t *testing.T) {
	ctx := context.Background()
	reservations := reservation.NewMemoryRepository()
	events := event.NewMemoryRepository()

	seed(t, reservations, apt1, calendar.Date(2025, 1, 5), 14, reservation.StatusActive)
	seed(t, reservations, apt2, calendar.Date(2025, 1, 6), 15, reservation.StatusActive)
	seed(t, reservations, apt1, calendar.Date(2025, 1, 7), 16, reservation.StatusCancelled)

	svc := NewService(Config{BookableHours: hours, TopN: 5}, reservations, events)

	from, to := calendar.Date(2025, 1, 1), calendar.Date(2025, 1, 31)
	st, err := svc.Statistics(ctx, &from, &to)
	require.NoError(t, err)

	assert.Equal(t, 2, st.TotalActive)
	assert.Equal(t, 1, st.TotalCancelled)
	assert.Equal(t, 33.3, st.CancellationRate)

	assert.Equal(t, 1, st.ByWeekday[time.Sunday])
	assert.Equal(t, 1, st.ByWeekday[time.Monday])
	assert.Equal(t, 0, st.ByWeekday[time.Tuesday], "cancelled reservations are not distributed")

	assert.Equal(t, map[int]int{14: 1, 15: 1, 16: 0, 17: 0, 18: 0, 19: 0}, st.ByHour)
	assert.Equal(t, map[string]int{apt1: 1, apt2: 1}, st.ByTenant)
	assert.Equal(t, map[string]int{"2025-01": 2}, st.ByMonth)
}

func TestCancellationRate(t *testing.T) {
	tests := []struct {
		cancelled, total int
		want             float64
	}{
		{0, 0, 0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{1, 8, 12.5},
		{3, 3, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cancellationRate(tt.cancelled, tt.total), "%d/%d", tt.cancelled, tt.total)
	}
}

func TestComputeTopTenantsTieBreak(t *testing.T) {
	mk := func(tenant string, day int) *reservation.Reservation {
		return &reservation.Reservation{TenantCode: tenant, Date: calendar.Date(2025, 2, day), Hour: 14, Status: reservation.StatusActive}
	}
	// Scan order: apt3 first, then apt1, then apt2. apt2 leads; apt3 and apt1 tie.
	list := []*reservation.Reservation{
		mk(apt3, 1), mk(apt1, 2), mk(apt2, 3), mk(apt2, 4), mk(apt1, 5), mk(apt3, 6), mk(apt2, 7),
	}

	st := Compute(list, nil, hours, 2)
	assert.Equal(t, []TenantCount{{apt2, 3}, {apt3, 2}}, st.TopTenants)

	st = Compute(list, nil, hours, 5)
	assert.Equal(t, []TenantCount{{apt2, 3}, {apt3, 2}, {apt1, 2}}, st.TopTenants)
}

func TestComputeBookingOrigin(t *testing.T) {
	admin := "ADMIN"
	events := []*event.Event{
		{Type: event.TypeReservation},
		{Type: event.TypeAdminBooking, AdminCode: &admin},
		{Type: event.TypeReservation},
		{Type: event.TypeCancellation},
		{Type: event.TypeAdminCancel, AdminCode: &admin},
		{Type: event.TypeBlock},
	}

	st := Compute(nil, events, hours, 5)
	assert.Equal(t, 1, st.AdminBookings)
	assert.Equal(t, 2, st.SelfBookings)
	assert.Equal(t, 0.0, st.CancellationRate)
}

func TestMonthlyPivotExample(t *testing.T) {
	ctx := context.Background()
	reservations := reservation.NewMemoryRepository()

	for _, d := range []int{3, 10, 17} {
		seed(t, reservations, apt1, calendar.Date(2025, 1, d), 14, reservation.StatusActive)
	}
	seed(t, reservations, apt1, calendar.Date(2025, 2, 3), 14, reservation.StatusActive)
	seed(t, reservations, apt2, calendar.Date(2025, 2, 10), 15, reservation.StatusActive)
	seed(t, reservations, apt2, calendar.Date(2025, 2, 28), 15, reservation.StatusActive)
	// Outside the range or cancelled: never counted.
	seed(t, reservations, apt2, calendar.Date(2025, 3, 1), 15, reservation.StatusActive)
	seed(t, reservations, apt2, calendar.Date(2025, 1, 20), 15, reservation.StatusCancelled)

	svc := NewService(Config{Tenants: []string{apt1, apt2}, BookableHours: hours}, reservations, event.NewMemoryRepository())

	p, err := svc.MonthlyPivot(ctx, calendar.Month{Year: 2025, Month: time.January}, calendar.Month{Year: 2025, Month: time.February})
	require.NoError(t, err)

	assert.Equal(t, []string{"2025-01", "2025-02"}, p.Months)
	assert.Equal(t, []string{apt1, apt2}, p.Tenants)
	assert.Equal(t, map[string]int{"2025-01": 3, "2025-02": 1}, p.Cells[apt1])
	assert.Equal(t, map[string]int{"2025-01": 0, "2025-02": 2}, p.Cells[apt2])
	assert.Equal(t, map[string]int{apt1: 4, apt2: 2}, p.RowTotals)
	assert.Equal(t, map[string]int{"2025-01": 3, "2025-02": 3}, p.ColumnTotals)
	assert.Equal(t, 6, p.GrandTotal)
}

func TestBuildPivotKeepsEmptyTenantsAndAppendsUnknown(t *testing.T) {
	jan := calendar.Month{Year: 2025, Month: time.January}
	list := []*reservation.Reservation{
		{TenantCode: "APARTAMENT 9", Date: calendar.Date(2025, 1, 4), Hour: 14, Status: reservation.StatusActive},
	}

	p := BuildPivot(list, []string{apt1}, []calendar.Month{jan})
	assert.Equal(t, []string{apt1, "APARTAMENT 9"}, p.Tenants)
	assert.Equal(t, 0, p.RowTotals[apt1])
	assert.Equal(t, 1, p.RowTotals["APARTAMENT 9"])
	assert.Equal(t, 1, p.GrandTotal)
}

func TestInvalidRanges(t *testing.T) {
	ctx := context.Background()
	svc := NewService(Config{}, reservation.NewMemoryRepository(), event.NewMemoryRepository())

	from, to := calendar.Date(2025, 2, 1), calendar.Date(2025, 1, 1)
	_, err := svc.Statistics(ctx, &from, &to)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = svc.MonthlyPivot(ctx, calendar.Month{Year: 2025, Month: time.March}, calendar.Month{Year: 2025, Month: time.January})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestStatisticsOpenEndedRange(t *testing.T) {
	reservations := reservation.NewMemoryRepository()
	seed(t, reservations, apt1, calendar.Date(2024, 12, 30), 14, reservation.StatusActive)
	seed(t, reservations, apt1, calendar.Date(2025, 1, 5), 14, reservation.StatusActive)

	svc := NewService(Config{BookableHours: hours, TopN: 5}, reservations, event.NewMemoryRepository())

	st, err := svc.Statistics(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalActive)
	assert.Equal(t, map[string]int{"2024-12": 1, "2025-01": 1}, st.ByMonth)

	from := calendar.Date(2025, 1, 1)
	st, err = svc.Statistics(context.Background(), &from, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalActive)
}

func TestStatisticsCached(t *testing.T) {
	ctx := context.Background()
	reservations := reservation.NewMemoryRepository()
	seed(t, reservations, apt1, calendar.Date(2025, 1, 5), 14, reservation.StatusActive)

	svc := NewService(Config{BookableHours: hours, TopN: 5, CacheTTL: time.Minute}, reservations, event.NewMemoryRepository())

	from, to := calendar.Date(2025, 1, 1), calendar.Date(2025, 1, 31)
	first, err := svc.Statistics(ctx, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalActive)

	seed(t, reservations, apt2, calendar.Date(2025, 1, 6), 15, reservation.StatusActive)

	cached, err := svc.Statistics(ctx, &from, &to)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.TotalActive, "served from cache within the TTL")

	other := calendar.Date(2025, 1, 2)
	fresh, err := svc.Statistics(ctx, &other, &to)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.TotalActive)
}
