package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"laundry-booking-backend/internal/model"
)

// Sentinel errors returned by the store. Callers branch on these instead of
// inspecting driver error strings.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateBooking is returned by CreateBooking when the slot
	// unique index rejects the insert. It means the candidate lost a race,
	// not that it was invalid.
	ErrDuplicateBooking = errors.New("booking slot already taken")
)

// Snapshot is the read-only view of existing state that one rule-evaluation
// pass runs against. All fields are loaded inside a single transaction so no
// evaluator can observe a half-applied concurrent write.
type Snapshot struct {
	// Machine is the candidate's machine, nil if the id does not resolve.
	Machine *model.Machine

	// Exact is the live booking occupying the candidate's exact
	// (machine, date, window) slot, nil if the slot is free.
	Exact *model.Booking

	// UserSameDay holds the candidate user's live bookings on the
	// candidate date, any machine, with Machine preloaded.
	UserSameDay []model.Booking

	// UserFuture holds the candidate user's live bookings dated strictly
	// after today, with Machine preloaded.
	UserFuture []model.Booking
}

// Store defines the interface for all database operations.
type Store interface {
	// Calendar reads used by rule evaluation.
	Snapshot(ctx context.Context, machineID int64, user, date, window, today string) (*Snapshot, error)
	ListBookingsForDate(ctx context.Context, date string) ([]model.Booking, error)
	ListBookingsForUserOnDate(ctx context.Context, user, date string) ([]model.Booking, error)
	ListFutureBookingsForUser(ctx context.Context, user, after string) ([]model.Booking, error)
	FindExactMatch(ctx context.Context, machineID int64, date, window string) (*model.Booking, error)

	// Booking writes.
	CreateBooking(ctx context.Context, b *model.Booking) error
	GetBooking(ctx context.Context, id int64) (*model.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	PurgeBookingsBefore(ctx context.Context, date string) (int64, error)

	// Machine registry (administrative collaborator surface).
	GetMachine(ctx context.Context, id int64) (*model.Machine, error)
	ListMachines(ctx context.Context) ([]model.Machine, error)
	CreateMachine(ctx context.Context, m *model.Machine) error
	DeleteMachine(ctx context.Context, id int64) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Snapshot gathers everything one evaluation pass needs inside a single
// transaction, so the evaluators see a consistent point-in-time view.
func (s *gormStore) Snapshot(ctx context.Context, machineID int64, user, date, window, today string) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		machine, err := getMachine(tx, machineID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		snap.Machine = machine // nil when not found

		snap.Exact, err = findExactMatch(tx, machineID, date, window)
		if err != nil {
			return err
		}

		if err := tx.Preload("Machine").
			Where("user_name = ? AND date = ?", user, date).
			Order("id").
			Find(&snap.UserSameDay).Error; err != nil {
			return fmt.Errorf("failed to load same-day bookings for %q: %w", user, err)
		}

		if err := tx.Preload("Machine").
			Where("user_name = ? AND date > ?", user, today).
			Order("date").
			Find(&snap.UserFuture).Error; err != nil {
			return fmt.Errorf("failed to load future bookings for %q: %w", user, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListBookingsForDate returns all live bookings on the given date, any
// machine, with Machine preloaded.
func (s *gormStore) ListBookingsForDate(ctx context.Context, date string) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).Preload("Machine").
		Where("date = ?", date).
		Order("id").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings for %s: %w", date, err)
	}
	return bookings, nil
}

// ListBookingsForUserOnDate returns the user's live bookings on the given date.
func (s *gormStore) ListBookingsForUserOnDate(ctx context.Context, user, date string) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).Preload("Machine").
		Where("user_name = ? AND date = ?", user, date).
		Order("id").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings for %q on %s: %w", user, date, err)
	}
	return bookings, nil
}

// ListFutureBookingsForUser returns the user's live bookings dated strictly
// after the reference date. Date strings sort chronologically.
func (s *gormStore) ListFutureBookingsForUser(ctx context.Context, user, after string) ([]model.Booking, error) {
	var bookings []model.Booking
	if err := s.db.WithContext(ctx).Preload("Machine").
		Where("user_name = ? AND date > ?", user, after).
		Order("date").
		Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to list future bookings for %q: %w", user, err)
	}
	return bookings, nil
}

// FindExactMatch returns the live booking for (machine, date, window), or
// nil if the slot is free.
func (s *gormStore) FindExactMatch(ctx context.Context, machineID int64, date, window string) (*model.Booking, error) {
	return findExactMatch(s.db.WithContext(ctx), machineID, date, window)
}

func findExactMatch(tx *gorm.DB, machineID int64, date, window string) (*model.Booking, error) {
	var booking model.Booking
	err := tx.Where("machine_id = ? AND date = ? AND time_window = ?", machineID, date, window).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up slot (%d, %s, %s): %w", machineID, date, window, err)
	}
	return &booking, nil
}

// CreateBooking inserts the booking. The slot unique index is the
// authoritative exclusivity check; a violation comes back as
// ErrDuplicateBooking so the caller can report a lost race instead of a
// storage failure.
func (s *gormStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateBooking
		}
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-index violation. GORM
// translates these to ErrDuplicatedKey where the driver supports it; the
// string checks cover the sqlite and postgres drivers that don't.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "SQLSTATE 23505") || // postgres
		strings.Contains(msg, "duplicate key value")
}

// GetBooking fetches a booking by id with Machine preloaded.
func (s *gormStore) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	var booking model.Booking
	err := s.db.WithContext(ctx).Preload("Machine").First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %d: %w", id, err)
	}
	return &booking, nil
}

// DeleteBooking removes a booking by id. Deleting an already-gone booking
// returns ErrNotFound so cancellation can report it.
func (s *gormStore) DeleteBooking(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Booking{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete booking %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeBookingsBefore deletes all bookings dated strictly before the given
// date and reports how many were removed. Used by the retention janitor.
func (s *gormStore) PurgeBookingsBefore(ctx context.Context, date string) (int64, error) {
	res := s.db.WithContext(ctx).Where("date < ?", date).Delete(&model.Booking{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to purge bookings before %s: %w", date, res.Error)
	}
	return res.RowsAffected, nil
}

// GetMachine fetches a machine by id.
func (s *gormStore) GetMachine(ctx context.Context, id int64) (*model.Machine, error) {
	return getMachine(s.db.WithContext(ctx), id)
}

func getMachine(tx *gorm.DB, id int64) (*model.Machine, error) {
	var machine model.Machine
	err := tx.First(&machine, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load machine %d: %w", id, err)
	}
	return &machine, nil
}

// ListMachines returns all machines ordered by id.
func (s *gormStore) ListMachines(ctx context.Context) ([]model.Machine, error) {
	var machines []model.Machine
	if err := s.db.WithContext(ctx).Order("id").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	return machines, nil
}

// CreateMachine registers a new machine.
func (s *gormStore) CreateMachine(ctx context.Context, m *model.Machine) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to create machine: %w", err)
	}
	return nil
}

// DeleteMachine removes a machine and, via the foreign-key cascade, its
// bookings.
func (s *gormStore) DeleteMachine(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&model.Machine{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete machine %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
