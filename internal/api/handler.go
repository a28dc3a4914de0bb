package api

import (
	"net/http"

	"github.com/patrickmn/go-cache"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/booking"
	"laundry-booking-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine *booking.Engine
	store  store.Store
	cfg    *config.Config
	cache  *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(engine *booking.Engine, s store.Store, cfg *config.Config, respCache *cache.Cache) *Handler {
	return &Handler{
		engine: engine,
		store:  s,
		cfg:    cfg,
		cache:  respCache,
	}
}

// flushCache drops all cached GET responses after a mutation.
func (h *Handler) flushCache() {
	if h.cache != nil {
		h.cache.Flush()
	}
}

// statusForCategory maps a rejection category to the outward-facing HTTP
// status. The engine never chooses statuses itself.
func statusForCategory(cat booking.Category) int {
	switch cat {
	case booking.CategoryValidation:
		return http.StatusBadRequest
	case booking.CategoryNotFound:
		return http.StatusNotFound
	case booking.CategoryConflict:
		return http.StatusConflict
	case booking.CategoryBusinessRule:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
