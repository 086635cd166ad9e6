package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/wellness-booking-backend/internal/api"
	"github.com/nekogravitycat/wellness-booking-backend/internal/auth"
	"github.com/nekogravitycat/wellness-booking-backend/internal/blockedslot"
	"github.com/nekogravitycat/wellness-booking-backend/internal/booking"
	"github.com/nekogravitycat/wellness-booking-backend/internal/calendar"
	"github.com/nekogravitycat/wellness-booking-backend/internal/clienterror"
	"github.com/nekogravitycat/wellness-booking-backend/internal/db"
	"github.com/nekogravitycat/wellness-booking-backend/internal/event"
	"github.com/nekogravitycat/wellness-booking-backend/internal/identity"
	"github.com/nekogravitycat/wellness-booking-backend/internal/notify"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/slotlock"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pubsub"
	"github.com/nekogravitycat/wellness-booking-backend/internal/reservation"
	"github.com/nekogravitycat/wellness-booking-backend/internal/slotgrid"
	"github.com/nekogravitycat/wellness-booking-backend/internal/stats"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool // nil runs on in-memory stores
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int
	AdminCodes   []string

	Grid    *slotgrid.Grid
	Booking booking.Config
	Stats   stats.Config

	Clock      calendar.Clock    // defaults to the wall clock
	Dispatcher notify.Dispatcher // defaults to logging
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
	Booking    booking.Service
	Broker     *pubsub.Broker
}

type stores struct {
	locker       booking.SlotLocker
	reservations reservation.Repository
	blocks       blockedslot.Repository
	events       event.Repository
	clientErrors clienterror.Repository
}

func newStores(pool *pgxpool.Pool) stores {
	if pool == nil {
		return stores{
			locker:       slotlock.New(),
			reservations: reservation.NewMemoryRepository(),
			blocks:       blockedslot.NewMemoryRepository(),
			events:       event.NewMemoryRepository(),
			clientErrors: clienterror.NewMemoryRepository(),
		}
	}
	return stores{
		locker:       db.NewTxManager(pool),
		reservations: reservation.NewPgxRepository(pool),
		blocks:       blockedslot.NewPgxRepository(pool),
		events:       event.NewPgxRepository(pool),
		clientErrors: clienterror.NewPgxRepository(pool),
	}
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	pinHasher := auth.NewBcryptHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	validator, err := identity.NewValidator(cfg.Booking.Tenants, cfg.AdminCodes, pinHasher)
	if err != nil {
		return nil, fmt.Errorf("identity: %w", err)
	}

	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = notify.NewLogDispatcher()
	}
	broker := pubsub.NewBroker()
	st := newStores(cfg.DBPool)

	// Booking Module
	bookingService := booking.NewService(cfg.Booking, booking.Deps{
		Grid:         cfg.Grid,
		Clock:        cfg.Clock,
		Locker:       st.locker,
		Reservations: st.reservations,
		Blocks:       st.blocks,
		Events:       st.events,
		Dispatcher:   dispatcher,
		Publisher:    broker,
	})

	// Stats Module
	statsService := stats.NewService(cfg.Stats, st.reservations, st.events)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		Validator:      validator,
		JWTManager:     jwtManager,
		BookingService: bookingService,
		StatsService:   statsService,
		EventRepo:      st.events,
		ClientErrors:   st.clientErrors,
		Broker:         broker,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		Booking:    bookingService,
		Broker:     broker,
	}, nil
}
