package janitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.Machine{}, &model.Booking{}))

	machine := model.Machine{ID: 1, DisplayName: "Washer 1", Type: model.MachineTypeWasher}
	require.NoError(t, db.Create(&machine).Error)
	return store.NewGormStore(db)
}

func TestSweepPurgesOnlyExpiredBookings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, date := range []string{"2025-02-01", "2025-03-07", "2025-03-10"} {
		b := &model.Booking{MachineID: 1, Date: date, Window: "morning", UserName: "alice"}
		require.NoError(t, s.CreateBooking(ctx, b))
	}

	svc := NewService(&config.JanitorConfig{
		Enabled:       true,
		Interval:      time.Hour,
		RetentionDays: 7,
	}, time.UTC, s)
	svc.now = func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	}

	svc.sweep(ctx)

	// Cutoff is 2025-03-03: only the February booking goes.
	remaining, err := s.ListFutureBookingsForUser(ctx, "alice", "2025-01-01")
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	s := newTestStore(t)

	svc := NewService(&config.JanitorConfig{
		Enabled:       true,
		Interval:      10 * time.Millisecond,
		RetentionDays: 7,
	}, time.UTC, s)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after context cancellation")
	}
}

func TestRunDisabledReturnsImmediately(t *testing.T) {
	s := newTestStore(t)
	svc := NewService(&config.JanitorConfig{Enabled: false, Interval: time.Hour}, time.UTC, s)

	done := make(chan struct{})
	go func() {
		svc.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled janitor should return without running")
	}
}
