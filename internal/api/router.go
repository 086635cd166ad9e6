package api

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/wellness-booking-backend/internal/auth"
	"github.com/nekogravitycat/wellness-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/wellness-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/wellness-booking-backend/internal/clienterror"
	clientErrorHttp "github.com/nekogravitycat/wellness-booking-backend/internal/clienterror/http"
	"github.com/nekogravitycat/wellness-booking-backend/internal/event"
	eventHttp "github.com/nekogravitycat/wellness-booking-backend/internal/event/http"
	"github.com/nekogravitycat/wellness-booking-backend/internal/identity"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/wellness-booking-backend/internal/pubsub"
	"github.com/nekogravitycat/wellness-booking-backend/internal/stats"
	statsHttp "github.com/nekogravitycat/wellness-booking-backend/internal/stats/http"
)

// Config holds the services the HTTP layer is assembled from.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	Validator      *identity.Validator
	JWTManager     *auth.JWTManager
	BookingService booking.Service
	StatsService   stats.Service
	EventRepo      event.Repository
	ClientErrors   clienterror.Repository
	Broker         *pubsub.Broker
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if err := request.RegisterValidators(); err != nil {
		log.Fatalf("failed to register validators: %v", err)
	}

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	config := cors.DefaultConfig()
	if cfg.IsProduction {
		config.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		config.AllowOrigins = []string{
			"http://localhost:5173", // frontend dev server
			"http://localhost:8081", // Swagger
		}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(config))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks that the token was issued to an administrator.
	adminMiddleware := auth.RequireAdmin()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	authHandler := NewAuthHandler(cfg.Validator, cfg.JWTManager)
	changesHandler := NewChangesHandler(cfg.Broker)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	eventHandler := eventHttp.NewHandler(cfg.EventRepo)
	statsHandler := statsHttp.NewHandler(cfg.StatsService)
	clientErrorHandler := clientErrorHttp.NewHandler(cfg.ClientErrors)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/me", authMiddleware, authHandler.Me)
		v1.GET("/changes", authMiddleware, changesHandler.Stream)

		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, adminMiddleware)
		eventHttp.RegisterRoutes(v1, eventHandler, authMiddleware, adminMiddleware)
		statsHttp.RegisterRoutes(v1, statsHandler, authMiddleware, adminMiddleware)
		clientErrorHttp.RegisterRoutes(v1, clientErrorHandler, authMiddleware, adminMiddleware)
	}

	return r
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
