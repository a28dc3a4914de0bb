package internal

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/api"
	"laundry-booking-backend/internal/booking"
	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

// TestBookingLifecycle walks the full reservation flow over the real HTTP
// surface: Alice fills her Monday washer quota, gets refused a third washer,
// books a dryer, Bob loses the collision on her slot, and a cancellation
// frees it again.
func TestBookingLifecycle(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, testDB.AutoMigrate(&model.Machine{}, &model.Booking{}))

	machines := []model.Machine{
		{ID: 1, DisplayName: "Washer 1", Type: model.MachineTypeWasher},
		{ID: 2, DisplayName: "Washer 2", Type: model.MachineTypeWasher},
		{ID: 3, DisplayName: "Washer 3", Type: model.MachineTypeWasher},
		{ID: 4, DisplayName: "Dryer 4", Type: model.MachineTypeDryer},
	}
	require.NoError(t, testDB.Create(&machines).Error)

	cfg := &config.Config{
		Server: config.ServerConfig{
			RateLimitPerSec: 1000,
			RateLimitBurst:  1000,
			CacheTTLSeconds: 1,
		},
		Booking: config.BookingConfig{
			Windows:             []string{"morning", "afternoon", "evening"},
			Blackout:            time.Sunday,
			WasherDailyQuota:    2,
			AdvanceBookingLimit: 1,
			AdvanceLimitScope:   config.AdvanceScopeAll,
			Location:            time.UTC,
		},
	}

	appStore := store.NewGormStore(testDB)
	engine := booking.NewEngine(appStore, &cfg.Booking).WithClock(func() time.Time {
		// Monday 2025-03-10, mid-morning.
		return time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	})
	router := api.NewRouter(engine, appStore, cfg)

	const date = "2025-03-10"

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}
	bookingBody := func(machineID int, window, user string) string {
		return fmt.Sprintf(`{"machine_id": %d, "date": %q, "window": %q, "user": %q}`, machineID, date, window, user)
	}

	// Alice books washer #1 in the morning.
	w := post(bookingBody(1, "morning", "Alice"))
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	var first map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	firstID := int64(first["id"].(float64))
	assert.Equal(t, "Washer 1", first["machineName"])

	// Washer #2 in the afternoon brings her to the daily quota.
	w = post(bookingBody(2, "afternoon", "Alice"))
	require.Equal(t, http.StatusCreated, w.Code)

	// A third washer is over quota.
	w = post(bookingBody(3, "evening", "Alice"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var rej map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rej))
	assert.Equal(t, "business-rule", rej["category"])
	assert.Contains(t, rej["error"], "daily washer limit")

	// The dryer is allowed: the quota does not apply and the morning
	// washer satisfies the prerequisite and ordering.
	w = post(bookingBody(4, "evening", "Alice"))
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	// Bob collides with Alice's exact slot.
	w = post(bookingBody(1, "morning", "Bob"))
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rej))
	assert.Equal(t, "conflict", rej["category"])

	// Alice cancels her morning washer; Bob takes the freed slot.
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/bookings/%d", firstID), strings.NewReader(`{"user": "Alice"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = post(bookingBody(1, "morning", "Bob"))
	assert.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	// Final state: four live bookings on the date.
	reqList := httptest.NewRequest(http.MethodGet, "/api/bookings?date="+date, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, reqList)
	require.Equal(t, http.StatusOK, w.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 4)
}
