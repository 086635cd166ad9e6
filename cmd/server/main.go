package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nekogravitycat/wellness-booking-backend/internal/app"
	"github.com/nekogravitycat/wellness-booking-backend/internal/booking"
	"github.com/nekogravitycat/wellness-booking-backend/internal/config"
	"github.com/nekogravitycat/wellness-booking-backend/internal/db"
	"github.com/nekogravitycat/wellness-booking-backend/internal/notify"
	"github.com/nekogravitycat/wellness-booking-backend/internal/obs"
	"github.com/nekogravitycat/wellness-booking-backend/internal/stats"
)

const serviceName = "wellness-booking"

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Tracing
	shutdownTracer, err := obs.InitTracer(ctx, serviceName, cfg.OTLPEndpoint, cfg.AppEnv)
	if err != nil {
		log.Fatalf("failed to init tracer: %v", err)
	}

	// Connect DB; without a DSN everything lives in memory
	var pool *pgxpool.Pool
	if cfg.DBDSN != "" {
		pool, err = db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			log.Fatalf("failed to connect to db: %v", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			log.Fatalf("failed to migrate db: %v", err)
		}
	} else {
		log.Println("DB_DSN not set, using in-memory storage")
	}

	// Notification dispatch
	var dispatcher notify.Dispatcher = notify.NewLogDispatcher()
	if cfg.AMQPURL != "" {
		amqpDispatcher, err := notify.NewAMQPDispatcher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatalf("failed to connect to amqp: %v", err)
		}
		defer amqpDispatcher.Close()
		dispatcher = amqpDispatcher
	}

	container, err := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		AdminCodes:   cfg.AdminCodes,
		Grid:         cfg.Grid,
		Booking: booking.Config{
			Location:       cfg.Location,
			Tenants:        cfg.Tenants,
			HorizonDays:    cfg.BookingHorizonDays,
			MinSpacingDays: cfg.MinSpacingDays,
			CancelLeadTime: cfg.CancelLeadTime,
			ReminderFrom:   cfg.ReminderWindowFrom,
			ReminderTo:     cfg.ReminderWindowTo,
		},
		Stats: stats.Config{
			Tenants:       cfg.Tenants,
			BookableHours: cfg.Grid.BookableHours(),
			TopN:          cfg.StatsTopN,
			CacheTTL:      cfg.StatsCacheTTL,
		},
		Dispatcher: dispatcher,
	})
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}

	// Use http.Server for graceful shutdown
	server := app.NewServer(cfg.HTTPAddr, otelhttp.NewHandler(container.Router, serviceName))

	// Run server in separate goroutine
	go func() {
		log.Printf("server running on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Println("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	container.Broker.Wait()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("tracer shutdown: %v", err)
	}

	log.Println("server exited gracefully")
}
