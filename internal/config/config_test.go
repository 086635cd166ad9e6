package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.IsProduction)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.DBDSN)
	assert.Equal(t, 12*time.Hour, cfg.JWTAccessTokenTTL)
	assert.Equal(t, "Europe/Warsaw", cfg.Location.String())
	assert.Len(t, cfg.Tenants, 18)
	assert.Equal(t, "APARTAMENT 18", cfg.Tenants[17])
	assert.Equal(t, []string{"AGNIESZKA-111", "ADMIN-111"}, cfg.AdminCodes)
	assert.Equal(t, []int{14, 15, 16, 17, 18, 19}, cfg.Grid.BookableHours())
	assert.Len(t, cfg.Grid.All(), 8)
	assert.Equal(t, 3, cfg.BookingHorizonDays)
	assert.Equal(t, 2, cfg.MinSpacingDays)
	assert.Equal(t, time.Hour, cfg.CancelLeadTime)
	assert.Equal(t, 25*time.Minute, cfg.ReminderWindowFrom)
	assert.Equal(t, 35*time.Minute, cfg.ReminderWindowTo)
	assert.Equal(t, 30*time.Second, cfg.StatsCacheTTL)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("TENANT_COUNT", "4")
	t.Setenv("BOOKABLE_HOURS", "9,10")
	t.Setenv("INFO_HOURS", "22")
	t.Setenv("CANCEL_LEAD_TIME", "2h")
	t.Setenv("FACILITY_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction)
	assert.Equal(t, []string{"APARTAMENT 1", "APARTAMENT 2", "APARTAMENT 3", "APARTAMENT 4"}, cfg.Tenants)
	assert.Equal(t, []int{9, 10}, cfg.Grid.BookableHours())
	assert.Len(t, cfg.Grid.All(), 3)
	assert.Equal(t, 2*time.Hour, cfg.CancelLeadTime)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestFromEnvRejects(t *testing.T) {
	base := func() Env {
		return Env{
			JWTSecret:          "s",
			FacilityTimezone:   "UTC",
			TenantCount:        2,
			BookableHours:      []int{14},
			ReminderWindowFrom: 25 * time.Minute,
			ReminderWindowTo:   35 * time.Minute,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Env)
	}{
		{"empty secret", func(e *Env) { e.JWTSecret = "" }},
		{"unknown timezone", func(e *Env) { e.FacilityTimezone = "Mars/Olympus" }},
		{"no tenants", func(e *Env) { e.TenantCount = 0 }},
		{"no bookable hours", func(e *Env) { e.BookableHours = nil }},
		{"hour out of range", func(e *Env) { e.BookableHours = []int{24} }},
		{"bookable and info overlap", func(e *Env) { e.InfoHours = []int{14} }},
		{"negative horizon", func(e *Env) { e.BookingHorizonDays = -1 }},
		{"inverted reminder window", func(e *Env) { e.ReminderWindowFrom = time.Hour }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := base()
			tt.mutate(&env)
			_, err := FromEnv(env)
			assert.Error(t, err)
		})
	}

	_, err := FromEnv(base())
	assert.NoError(t, err)
}
