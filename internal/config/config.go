package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/nekogravitycat/wellness-booking-backend/internal/slotgrid"
)

const PROD_STRING = "prod"

// Env is the raw environment, decoded by envconfig.
type Env struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	ProdOrigins string `envconfig:"PROD_ORIGINS"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`

	// Empty DSN runs on in-memory stores.
	DBDSN string `envconfig:"DB_DSN"`

	JWTSecret         string        `envconfig:"JWT_SECRET" required:"true"`
	JWTAccessTokenTTL time.Duration `envconfig:"JWT_ACCESS_TOKEN_TTL" default:"12h"`
	BcryptCost        int           `envconfig:"BCRYPT_COST" default:"10"`

	FacilityTimezone string   `envconfig:"FACILITY_TIMEZONE" default:"Europe/Warsaw"`
	TenantCount      int      `envconfig:"TENANT_COUNT" default:"18"`
	AdminCodes       []string `envconfig:"ADMIN_CODES" default:"AGNIESZKA-111,ADMIN-111"`

	BookableHours []int  `envconfig:"BOOKABLE_HOURS" default:"14,15,16,17,18,19"`
	InfoHours     []int  `envconfig:"INFO_HOURS" default:"20,21"`
	InfoText      string `envconfig:"INFO_TEXT" default:"open to all residents"`

	BookingHorizonDays int           `envconfig:"BOOKING_HORIZON_DAYS" default:"3"`
	MinSpacingDays     int           `envconfig:"MIN_SPACING_DAYS" default:"2"`
	CancelLeadTime     time.Duration `envconfig:"CANCEL_LEAD_TIME" default:"60m"`
	ReminderWindowFrom time.Duration `envconfig:"REMINDER_WINDOW_FROM" default:"25m"`
	ReminderWindowTo   time.Duration `envconfig:"REMINDER_WINDOW_TO" default:"35m"`

	StatsTopN     int           `envconfig:"STATS_TOP_N" default:"5"`
	StatsCacheTTL time.Duration `envconfig:"STATS_CACHE_TTL" default:"30s"`

	// Empty URL logs notifications instead of publishing them.
	AMQPURL      string `envconfig:"AMQP_URL"`
	AMQPExchange string `envconfig:"AMQP_EXCHANGE" default:"wellness.notifications"`
	AMQPQueue    string `envconfig:"AMQP_QUEUE" default:"wellness.notifications.console"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Config holds all application configuration loaded from environment.
type Config struct {
	Env

	IsProduction bool
	Location     *time.Location
	Tenants      []string
	Grid         *slotgrid.Grid
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	var env Env
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	return FromEnv(env)
}

// FromEnv validates the decoded environment and derives the facility settings.
func FromEnv(env Env) (*Config, error) {
	cfg := &Config{
		Env:          env,
		IsProduction: env.AppEnv == PROD_STRING,
	}

	if env.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	loc, err := time.LoadLocation(env.FacilityTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid FACILITY_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	if env.TenantCount < 1 {
		return nil, errors.New("TENANT_COUNT must be positive")
	}
	cfg.Tenants = TenantCodes(env.TenantCount)

	cfg.Grid, err = slotgrid.FromHours(env.BookableHours, env.InfoHours, env.InfoText)
	if err != nil {
		return nil, fmt.Errorf("invalid slot grid: %w", err)
	}

	if env.BookingHorizonDays < 0 || env.MinSpacingDays < 0 {
		return nil, errors.New("BOOKING_HORIZON_DAYS and MIN_SPACING_DAYS must not be negative")
	}
	if env.ReminderWindowFrom > env.ReminderWindowTo {
		return nil, fmt.Errorf("reminder window %s..%s is inverted", env.ReminderWindowFrom, env.ReminderWindowTo)
	}

	for i, code := range env.AdminCodes {
		env.AdminCodes[i] = strings.TrimSpace(code)
	}
	return cfg, nil
}

// TenantCodes returns "APARTAMENT 1" .. "APARTAMENT n".
func TenantCodes(n int) []string {
	codes := make([]string, n)
	for i := range codes {
		codes[i] = fmt.Sprintf("APARTAMENT %d", i+1)
	}
	return codes
}
