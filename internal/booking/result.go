package booking

import (
	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/model"
)

// Category classifies a rejection so the transport layer can pick an
// outward-facing status without parsing reason strings.
type Category string

const (
	CategoryValidation   Category = "validation"
	CategoryNotFound     Category = "not-found"
	CategoryConflict     Category = "conflict"
	CategoryBusinessRule Category = "business-rule"
)

// Rejection is the verdict of a failed rule. Reason is stable and
// user-presentable; Rule names the evaluator that produced it.
type Rejection struct {
	Rule     string   `json:"rule"`
	Reason   string   `json:"reason"`
	Category Category `json:"category"`
}

// Status is the terminal state of one engine invocation.
type Status string

const (
	// StatusAccepted means every rule passed and the booking was committed.
	StatusAccepted Status = "accepted"

	// StatusRejected means a rule rejected the candidate before commit.
	StatusRejected Status = "rejected"

	// StatusConflict means the candidate passed every rule but lost the
	// commit race to a concurrent booking for the same slot.
	StatusConflict Status = "conflict"
)

// Decision is the outcome of EvaluateAndCommit. Booking is set only when
// Status is StatusAccepted; Rejection only otherwise. Infrastructure
// failures are reported as errors, never as a Decision.
type Decision struct {
	Status    Status
	Booking   *model.Booking
	Rejection *Rejection
}

// Candidate is a proposed, not-yet-committed booking request.
type Candidate struct {
	MachineID int64  `json:"machine_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Window    string `json:"window"`
	User      string `json:"user"`
}

// Snapshot is the consistent read-only view one evaluation pass runs
// against, plus the fixed rule parameters. Evaluators read it and nothing
// else, which keeps them pure and independently testable.
type Snapshot struct {
	// Today is the evaluation-time date in the configured timezone.
	Today string

	// Rules holds the immutable business-rule parameters.
	Rules *config.BookingConfig

	// Machine is the candidate's machine, nil if unknown.
	Machine *model.Machine

	// Exact is the live booking already occupying the candidate's slot,
	// nil if the slot is free.
	Exact *model.Booking

	// UserSameDay are the candidate user's live bookings on the candidate
	// date, any machine, with Machine populated.
	UserSameDay []model.Booking

	// UserFuture are the candidate user's live bookings dated strictly
	// after Today, with Machine populated.
	UserFuture []model.Booking
}
