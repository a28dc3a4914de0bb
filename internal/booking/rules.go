package booking

import (
	"fmt"
	"strings"
	"time"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/model"
)

// checkShape validates the candidate's form: well-formed date that is not in
// the past, a configured window label, a non-empty user and a positive
// machine id. It runs before any storage read, so validation failures never
// touch the database.
func checkShape(c Candidate, today string, rules *config.BookingConfig) *Rejection {
	reject := func(reason string) *Rejection {
		return &Rejection{Rule: "shape", Reason: reason, Category: CategoryValidation}
	}

	if c.MachineID <= 0 {
		return reject("machine id must be a positive integer")
	}
	if strings.TrimSpace(c.User) == "" {
		return reject("user must not be empty")
	}
	parsed, err := time.Parse(model.DateLayout, c.Date)
	if err != nil || parsed.Format(model.DateLayout) != c.Date {
		return reject("date must be a valid calendar date in YYYY-MM-DD format")
	}
	if c.Date < today {
		return reject("date must not be in the past")
	}
	if rules.WindowIndex(c.Window) < 0 {
		return reject(fmt.Sprintf("unknown window %q", c.Window))
	}
	return nil
}

// weekdayOf assumes the date already passed shape validation.
func weekdayOf(date string) time.Weekday {
	t, _ := time.Parse(model.DateLayout, date)
	return t.Weekday()
}

func isBlackout(date string, rules *config.BookingConfig) bool {
	return weekdayOf(date) == rules.Blackout
}

func checkMachineExists(c Candidate, s *Snapshot) *Rejection {
	if s.Machine == nil {
		return &Rejection{Reason: "machine not found", Category: CategoryNotFound}
	}
	return nil
}

// checkSlotFree is the direct collision check. It gives a clean message in
// the common case; the storage unique index remains the authoritative guard
// against two concurrent commits.
func checkSlotFree(c Candidate, s *Snapshot) *Rejection {
	if s.Exact != nil {
		return &Rejection{
			Reason:   "this machine is already booked for that window",
			Category: CategoryConflict,
		}
	}
	return nil
}

// checkNoDoubleBooking rejects a candidate whose user already holds any
// booking, on any machine, for the same date and window.
func checkNoDoubleBooking(c Candidate, s *Snapshot) *Rejection {
	for _, b := range s.UserSameDay {
		if b.Window == c.Window {
			return &Rejection{
				Reason:   "you already have a booking for this window on that date",
				Category: CategoryConflict,
			}
		}
	}
	return nil
}

// checkWasherBlackout rejects washer bookings on the blackout weekday.
// Dryers and tumblers are exempt.
func checkWasherBlackout(c Candidate, s *Snapshot) *Rejection {
	if s.Machine.Type != model.MachineTypeWasher {
		return nil
	}
	if isBlackout(c.Date, s.Rules) {
		return &Rejection{
			Reason:   fmt.Sprintf("washers cannot be booked on %ss", s.Rules.Blackout),
			Category: CategoryBusinessRule,
		}
	}
	return nil
}

// checkWasherDailyQuota limits the user's washer bookings per date. Dryer
// and tumbler bookings neither count against nor are limited by the quota.
func checkWasherDailyQuota(c Candidate, s *Snapshot) *Rejection {
	if s.Machine.Type != model.MachineTypeWasher {
		return nil
	}
	washers := 0
	for _, b := range s.UserSameDay {
		if b.Machine.Type == model.MachineTypeWasher {
			washers++
		}
	}
	if washers >= s.Rules.WasherDailyQuota {
		return &Rejection{
			Reason:   fmt.Sprintf("daily washer limit of %d reached for this date", s.Rules.WasherDailyQuota),
			Category: CategoryBusinessRule,
		}
	}
	return nil
}

// checkAdvanceLimit caps how many future-dated bookings a user may hold.
// The count is relative to today, not the candidate's date, and same-day
// candidates are exempt.
func checkAdvanceLimit(c Candidate, s *Snapshot) *Rejection {
	if c.Date <= s.Today {
		return nil
	}
	washersOnly := s.Rules.AdvanceLimitScope == config.AdvanceScopeWasher
	if washersOnly && s.Machine.Type != model.MachineTypeWasher {
		return nil
	}
	future := 0
	for _, b := range s.UserFuture {
		if washersOnly && b.Machine.Type != model.MachineTypeWasher {
			continue
		}
		future++
	}
	if future >= s.Rules.AdvanceBookingLimit {
		return &Rejection{
			Reason: fmt.Sprintf("advance booking limit reached: at most %d future booking(s) allowed",
				s.Rules.AdvanceBookingLimit),
			Category: CategoryBusinessRule,
		}
	}
	return nil
}

// earliestWasherWindow returns the chronological index of the user's first
// washer booking on the day, or -1 if there is none.
func earliestWasherWindow(s *Snapshot) int {
	earliest := -1
	for _, b := range s.UserSameDay {
		if b.Machine.Type != model.MachineTypeWasher {
			continue
		}
		idx := s.Rules.WindowIndex(b.Window)
		if idx >= 0 && (earliest < 0 || idx < earliest) {
			earliest = idx
		}
	}
	return earliest
}

// checkDryerPrerequisite requires a same-date washer booking before a dryer
// booking. On the blackout day dryers are independently usable, so the
// prerequisite is waived.
func checkDryerPrerequisite(c Candidate, s *Snapshot) *Rejection {
	if s.Machine.Type != model.MachineTypeDryer || isBlackout(c.Date, s.Rules) {
		return nil
	}
	if earliestWasherWindow(s) < 0 {
		return &Rejection{
			Reason:   "a washer booking is required before a dryer booking on this date",
			Category: CategoryBusinessRule,
		}
	}
	return nil
}

// checkDryerOrdering rejects a dryer booking chronologically before the
// user's earliest washer window of the day. Only reached when the
// prerequisite rule has already established that a washer booking exists.
func checkDryerOrdering(c Candidate, s *Snapshot) *Rejection {
	if s.Machine.Type != model.MachineTypeDryer || isBlackout(c.Date, s.Rules) {
		return nil
	}
	earliest := earliestWasherWindow(s)
	if earliest < 0 {
		return nil // prerequisite rule reports the missing washer
	}
	if s.Rules.WindowIndex(c.Window) < earliest {
		return &Rejection{
			Reason:   "dryer window is too early: it must not be before your first washer booking of the day",
			Category: CategoryBusinessRule,
		}
	}
	return nil
}
