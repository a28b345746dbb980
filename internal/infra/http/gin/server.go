package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentops/internal/infra/config"
	"rentops/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	ConvertHold(c *gin.Context)
	CancelHold(c *gin.Context)
	ExtendHold(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
	BulkCancel(c *gin.Context)
	BulkComplete(c *gin.Context)
}

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
	Reconcile(c *gin.Context)
}

type Handlers struct {
	Booking        BookingHTTP
	Availability   AvailabilityHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.AuthMiddleware != nil {
		api.Use(h.AuthMiddleware)
	}
	if h.Booking != nil {
		bookings := api.Group("/bookings")
		bookings.POST("", h.Booking.Create)
		bookings.GET("", h.Booking.List)
		bookings.POST("/bulk/cancel", h.Booking.BulkCancel)
		bookings.POST("/bulk/complete", h.Booking.BulkComplete)
		bookings.GET("/:id", h.Booking.Get)
		bookings.PATCH("/:id", h.Booking.Update)
		bookings.POST("/:id/convert-hold", h.Booking.ConvertHold)
		bookings.POST("/:id/cancel-hold", h.Booking.CancelHold)
		bookings.POST("/:id/extend-hold", h.Booking.ExtendHold)
		bookings.POST("/:id/cancel", h.Booking.Cancel)
		bookings.POST("/:id/complete", h.Booking.Complete)
	}
	if h.Availability != nil {
		api.GET("/properties/:id/calendar", h.Availability.Calendar)
		api.POST("/properties/:id/calendar/reconcile", h.Availability.Reconcile)
	}
	return router
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
