package janitor

import (
	"context"
	"log"
	"time"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

// Service periodically deletes bookings whose date fell out of the
// configured retention window. It only touches past dates, so it can never
// race a live commit for a bookable slot.
type Service struct {
	cfg   *config.JanitorConfig
	loc   *time.Location
	store store.Store
	now   func() time.Time
}

// NewService creates a retention janitor.
func NewService(cfg *config.JanitorConfig, loc *time.Location, s store.Store) *Service {
	return &Service{
		cfg:   cfg,
		loc:   loc,
		store: s,
		now:   time.Now,
	}
}

// Run sweeps once immediately and then on every interval tick until the
// context is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Enabled {
		log.Println("janitor disabled; old bookings will not be purged")
		return
	}
	log.Printf("janitor started (interval %s, retention %d days)", s.cfg.Interval, s.cfg.RetentionDays)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-ctx.Done():
			log.Println("janitor shutting down")
			return
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	cutoff := s.now().In(s.loc).AddDate(0, 0, -s.cfg.RetentionDays).Format(model.DateLayout)
	purged, err := s.store.PurgeBookingsBefore(ctx, cutoff)
	if err != nil {
		log.Printf("janitor sweep failed: %v", err)
		return
	}
	if purged > 0 {
		log.Printf("janitor purged %d bookings dated before %s", purged, cutoff)
	}
}
