package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/booking"
	"laundry-booking-backend/internal/mw"
	"laundry-booking-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(engine *booking.Engine, s store.Store, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	limit := rate.Limit(cfg.Server.RateLimitPerSec)
	if limit <= 0 {
		limit = rate.Limit(10)
	}
	burst := cfg.Server.RateLimitBurst
	if burst <= 0 {
		burst = 5
	}
	rateLimiter := mw.RateLimiter(limit, burst, cfg.Server.RequestIPHeader)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	handler := NewHandler(engine, s, cfg, cacheStore)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/bookings", handler.PostBooking)
		api.POST("/bookings/validate", handler.ValidateBooking)
		api.GET("/bookings", handler.GetBookings)
		api.DELETE("/bookings/:id", handler.DeleteBooking)

		api.GET("/machines", caching, handler.GetMachines)
		api.POST("/machines", handler.PostMachine)
		api.DELETE("/machines/:id", handler.DeleteMachine)

		api.GET("/windows", caching, handler.GetWindows)
	}

	return r
}
