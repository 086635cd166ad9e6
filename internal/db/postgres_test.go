package db_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/wellness-booking-backend/internal/blockedslot"
	"github.com/nekogravitycat/wellness-booking-backend/internal/booking"
	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/clienterror"
	"github.com/nekogravitycat/wellness-booking-backend/internal/db"
	"github.com/nekogravitycat/wellness-booking-backend/internal/event"
	"github.com/nekogravitycat/wellness-booking-backend/internal/reservation"
	"github.com/nekogravitycat/wellness-booking-backend/internal/slotgrid"
)

var day = calendar.Date(2025, 1, 5)

// testPool connects to TEST_DB_DSN, applies the schema and empties every table.
// The test is skipped when no database is configured.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("No .env file found or failed to load: %v", err)
	}
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, "TRUNCATE TABLE public.reservations, public.blocked_slots, public.events, public.app_errors")
	require.NoError(t, err)
	return pool
}

func TestReservationLedgerPostgres(t *testing.T) {
	pool := testPool(t)
	repo := reservation.NewPgxRepository(pool)
	ctx := context.Background()

	first := &reservation.Reservation{TenantCode: "APARTAMENT 1", Date: day, Hour: 14, Status: reservation.StatusActive}
	require.NoError(t, repo.Create(ctx, first))
	assert.NotEmpty(t, first.ID)

	t.Run("Unique Active Slot", func(t *testing.T) {
		dup := &reservation.Reservation{TenantCode: "APARTAMENT 2", Date: day, Hour: 14, Status: reservation.StatusActive}
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, reservation.ErrSlotTaken)
		assert.ErrorIs(t, err, booking.ErrSlotOccupied)
	})

	t.Run("Lookups", func(t *testing.T) {
		got, err := repo.ActiveAt(ctx, day, 14)
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)
		assert.True(t, day.Equal(got.Date))

		later := &reservation.Reservation{TenantCode: "APARTAMENT 1", Date: calendar.AddDays(day, 3), Hour: 15, Status: reservation.StatusActive}
		require.NoError(t, repo.Create(ctx, later))

		latest, err := repo.LatestActiveByTenant(ctx, "APARTAMENT 1")
		require.NoError(t, err)
		assert.Equal(t, later.ID, latest.ID)

		_, err = repo.LatestActiveByTenant(ctx, "APARTAMENT 9")
		assert.ErrorIs(t, err, reservation.ErrNotFound)

		_, err = repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, reservation.ErrNotFound)

		mine, err := repo.List(ctx, reservation.Filter{TenantCode: "APARTAMENT 1", Status: reservation.StatusActive})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, first.ID, mine[0].ID)

		to := day
		upTo, err := repo.List(ctx, reservation.Filter{To: &to})
		require.NoError(t, err)
		assert.Len(t, upTo, 1)
	})

	t.Run("Note And Reminder", func(t *testing.T) {
		note := "towels"
		require.NoError(t, repo.UpdateNote(ctx, first.ID, &note))
		require.NoError(t, repo.MarkReminderSent(ctx, first.ID, time.Date(2025, 1, 5, 13, 31, 0, 0, time.UTC)))

		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Note)
		assert.Equal(t, note, *got.Note)
		require.NotNil(t, got.ReminderSentAt)

		pending, err := repo.List(ctx, reservation.Filter{ReminderPending: true})
		require.NoError(t, err)
		for _, r := range pending {
			assert.NotEqual(t, first.ID, r.ID)
		}

		assert.ErrorIs(t, repo.MarkReminderSent(ctx, uuid.NewString(), time.Now()), reservation.ErrNotFound)
	})

	t.Run("Cancel", func(t *testing.T) {
		by := "AGNIESZKA"
		require.NoError(t, repo.Cancel(ctx, first.ID, &by, time.Now()))
		assert.ErrorIs(t, repo.Cancel(ctx, first.ID, &by, time.Now()), reservation.ErrNotActive)
		assert.ErrorIs(t, repo.Cancel(ctx, uuid.NewString(), nil, time.Now()), reservation.ErrNotFound)

		// The slot is free for a new active reservation once the old one is cancelled.
		again := &reservation.Reservation{TenantCode: "APARTAMENT 2", Date: day, Hour: 14, Status: reservation.StatusActive}
		assert.NoError(t, repo.Create(ctx, again))
	})
}

func TestBlockedSlotRegistryPostgres(t *testing.T) {
	pool := testPool(t)
	repo := blockedslot.NewPgxRepository(pool)
	ctx := context.Background()

	b := &blockedslot.BlockedSlot{Date: day, Hour: 16, Reason: "maintenance", CreatedBy: "AGNIESZKA"}
	require.NoError(t, repo.Create(ctx, b))
	assert.ErrorIs(t, repo.Create(ctx, &blockedslot.BlockedSlot{Date: day, Hour: 16, CreatedBy: "AGNIESZKA"}), blockedslot.ErrAlreadyBlocked)

	got, err := repo.At(ctx, day, 16)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, "maintenance", got.Reason)

	list, err := repo.List(ctx, blockedslot.Filter{From: &day, To: &day})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, b.ID))
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), blockedslot.ErrNotFound)
	_, err = repo.At(ctx, day, 16)
	assert.ErrorIs(t, err, blockedslot.ErrNotFound)
}

func TestEventLogPostgres(t *testing.T) {
	pool := testPool(t)
	repo := event.NewPgxRepository(pool)
	ctx := context.Background()

	tenant, admin := "APARTAMENT 1", "AGNIESZKA"
	for i, typ := range []event.Type{event.TypeReservation, event.TypeBlock, event.TypeAdminCancel} {
		e := &event.Event{Type: typ, Date: calendar.AddDays(day, i), Hour: 14}
		if typ != event.TypeBlock {
			e.TenantCode = &tenant
		}
		if typ != event.TypeReservation {
			e.AdminCode = &admin
		}
		require.NoError(t, repo.Append(ctx, e))
	}

	page, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, event.TypeAdminCancel, page[0].Type)
	assert.Nil(t, page[1].TenantCode)

	from, to := day, calendar.AddDays(day, 1)
	ranged, err := repo.ListByDateRange(ctx, event.RangeFilter{From: &from, To: &to})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)
}

func TestClientErrorLogPostgres(t *testing.T) {
	pool := testPool(t)
	repo := clienterror.NewPgxRepository(pool)
	ctx := context.Background()

	code := "APARTAMENT 3"
	require.NoError(t, repo.Append(ctx, &clienterror.ClientError{Type: "Error", Message: "first"}))
	require.NoError(t, repo.Append(ctx, &clienterror.ClientError{
		Type:     "TypeError",
		Message:  "second",
		UserCode: &code,
		Extra:    map[string]any{"source": "app.js"},
	}))

	list, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Message)
	assert.Equal(t, "app.js", list[0].Extra["source"])
	require.NotNil(t, list[0].UserCode)
	assert.Equal(t, code, *list[0].UserCode)
}

func TestTxManagerNestedLocksShareTransaction(t *testing.T) {
	pool := testPool(t)
	tx := db.NewTxManager(pool)
	repo := reservation.NewPgxRepository(pool)
	ctx := context.Background()

	rollback := errors.New("rollback")
	err := tx.WithTenantLock(ctx, "APARTAMENT 1", func(ctx context.Context) error {
		return tx.WithSlotLock(ctx, day, 17, func(ctx context.Context) error {
			r := &reservation.Reservation{TenantCode: "APARTAMENT 1", Date: day, Hour: 17, Status: reservation.StatusActive}
			if err := repo.Create(ctx, r); err != nil {
				return err
			}
			return rollback
		})
	})
	assert.ErrorIs(t, err, rollback)

	// The insert ran in the outer transaction and was rolled back with it.
	_, err = repo.ActiveAt(ctx, day, 17)
	assert.ErrorIs(t, err, reservation.ErrNotFound)
}

func TestBookingSpacingPostgres(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	grid, err := slotgrid.FromHours([]int{14, 15, 16, 17, 18, 19}, nil, "")
	require.NoError(t, err)
	reservations := reservation.NewPgxRepository(pool)
	svc := booking.NewService(booking.Config{
		Location:       time.UTC,
		Tenants:        []string{"APARTAMENT 1", "APARTAMENT 2"},
		HorizonDays:    3,
		MinSpacingDays: 2,
		CancelLeadTime: time.Hour,
	}, booking.Deps{
		Grid:         grid,
		Clock:        calendar.NewFixedClock(time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)),
		Locker:       db.NewTxManager(pool),
		Reservations: reservations,
		Blocks:       blockedslot.NewPgxRepository(pool),
		Events:       event.NewPgxRepository(pool),
	})

	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(ctx, "APARTAMENT 1", calendar.AddDays(day, i%2), 14+i)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, booking.ErrRateLimited, fmt.Sprint(err))
	}
	assert.Equal(t, 1, succeeded)

	active, err := reservations.List(ctx, reservation.Filter{TenantCode: "APARTAMENT 1", Status: reservation.StatusActive})
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
