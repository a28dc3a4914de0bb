package model

import "time"

// DateLayout is the canonical wire and storage format for booking dates.
// Dates are date-only; lexicographic order on this layout matches
// chronological order, which the store relies on for range queries.
const DateLayout = "2006-01-02"

// Booking represents one committed reservation of a machine for a window
// on a date. Rows are created by the booking engine on a successful commit
// and deleted on cancellation; they are never updated.
//
// The composite unique index on (machine_id, date, window) is the
// authoritative exclusivity guarantee: two concurrent commits for the same
// slot cannot both succeed, regardless of what the rule evaluation saw.
type Booking struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	MachineID int64  `gorm:"not null;uniqueIndex:idx_bookings_slot" json:"machineId"`
	Date      string `gorm:"size:10;not null;uniqueIndex:idx_bookings_slot;index:idx_bookings_user_date,priority:2" json:"date"`
	// Stored as time_window: WINDOW is a reserved word in postgres.
	Window    string `gorm:"column:time_window;size:32;not null;uniqueIndex:idx_bookings_slot" json:"window"`
	UserName  string `gorm:"size:128;not null;index:idx_bookings_user_date,priority:1" json:"user"`
	CreatedAt time.Time `json:"createdAt"`

	// Associations
	Machine Machine `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
