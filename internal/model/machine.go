package model

import "time"

// MachineType is the closed set of machine kinds the booking rules know about.
type MachineType string

const (
	MachineTypeWasher  MachineType = "washer"
	MachineTypeDryer   MachineType = "dryer"
	MachineTypeTumbler MachineType = "tumbler"
)

// Valid reports whether t is one of the recognized machine types.
func (t MachineType) Valid() bool {
	switch t {
	case MachineTypeWasher, MachineTypeDryer, MachineTypeTumbler:
		return true
	}
	return false
}

// Machine represents a bookable laundry-room machine.
type Machine struct {
	ID          int64       `gorm:"primaryKey" json:"id"`
	DisplayName string      `gorm:"size:256;not null" json:"displayName"`
	Type        MachineType `gorm:"size:16;not null" json:"type"`
	CreatedAt   time.Time   `json:"-"`
	UpdatedAt   time.Time   `json:"-"`
}
