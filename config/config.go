package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Booking  BookingConfig  `yaml:"booking"`
	Janitor  JanitorConfig  `yaml:"janitor"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // "sqlite" or "postgres"
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AdvanceScope selects which machine types count against the
// advance-booking limit.
type AdvanceScope string

const (
	AdvanceScopeAll    AdvanceScope = "all"
	AdvanceScopeWasher AdvanceScope = "washer"
)

// BookingConfig holds the business-rule parameters of the booking engine.
// The values are fixed for the lifetime of the process; the engine never
// re-reads them.
type BookingConfig struct {
	// Windows is the ordered, closed set of same-day booking windows.
	// Position in the slice is the chronological order used by the
	// dryer-after-washer rule.
	Windows []string `yaml:"windows"`

	// BlackoutWeekday names the weekday on which washers cannot be booked
	// ("Sunday", "Monday", ...).
	BlackoutWeekday string       `yaml:"blackout_weekday"`
	Blackout        time.Weekday `yaml:"-"` // Parsed from BlackoutWeekday

	WasherDailyQuota    int          `yaml:"washer_daily_quota"`
	AdvanceBookingLimit int          `yaml:"advance_booking_limit"`
	AdvanceLimitScope   AdvanceScope `yaml:"advance_limit_scope"`

	// Timezone resolves "today" when comparing booking dates against the
	// wall clock.
	Timezone string         `yaml:"timezone"`
	Location *time.Location `yaml:"-"` // Loaded from Timezone
}

// JanitorConfig controls the background retention sweep of old bookings.
type JanitorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	RetentionDays   int           `yaml:"retention_days"`
}

// WindowIndex returns the chronological position of a window label, or -1
// if the label is not part of the configured set.
func (b *BookingConfig) WindowIndex(label string) int {
	for i, w := range b.Windows {
		if w == label {
			return i
		}
	}
	return -1
}

func parseWeekday(name string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), name) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}

	if len(cfg.Booking.Windows) == 0 {
		cfg.Booking.Windows = []string{"morning", "afternoon", "evening"}
	}
	seen := make(map[string]bool, len(cfg.Booking.Windows))
	for _, w := range cfg.Booking.Windows {
		if w == "" || seen[w] {
			return nil, fmt.Errorf("booking.windows contains empty or duplicate label %q", w)
		}
		seen[w] = true
	}

	if cfg.Booking.BlackoutWeekday == "" {
		cfg.Booking.BlackoutWeekday = "Sunday"
	}
	cfg.Booking.Blackout, err = parseWeekday(cfg.Booking.BlackoutWeekday)
	if err != nil {
		return nil, fmt.Errorf("booking.blackout_weekday: %w", err)
	}

	if cfg.Booking.WasherDailyQuota <= 0 {
		cfg.Booking.WasherDailyQuota = 2
	}
	if cfg.Booking.AdvanceBookingLimit <= 0 {
		cfg.Booking.AdvanceBookingLimit = 1
	}
	switch cfg.Booking.AdvanceLimitScope {
	case "":
		cfg.Booking.AdvanceLimitScope = AdvanceScopeAll
	case AdvanceScopeAll, AdvanceScopeWasher:
	default:
		return nil, fmt.Errorf("booking.advance_limit_scope must be %q or %q, got %q",
			AdvanceScopeAll, AdvanceScopeWasher, cfg.Booking.AdvanceLimitScope)
	}

	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "Local"
	}
	cfg.Booking.Location, err = time.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("booking.timezone: %w", err)
	}

	if cfg.Janitor.IntervalSeconds <= 0 {
		cfg.Janitor.IntervalSeconds = 3600
	}
	cfg.Janitor.Interval = time.Duration(cfg.Janitor.IntervalSeconds) * time.Second
	if cfg.Janitor.RetentionDays <= 0 {
		log.Printf("janitor.retention_days is not set or invalid; defaulting to 30")
		cfg.Janitor.RetentionDays = 30
	}

	return &cfg, nil
}
