package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"laundry-booking-backend/config"
	"laundry-booking-backend/internal/model"
	"laundry-booking-backend/internal/store"
)

// Cancellation outcomes. ErrNotFound doubles as the booking-lookup result
// so handlers can branch on a single sentinel.
var (
	ErrNotFound  = store.ErrNotFound
	ErrForbidden = errors.New("booking belongs to another user")
)

// Engine evaluates booking candidates against the rule pipeline and, on
// acceptance, commits them atomically. It keeps no state between
// invocations; the bookings table is the only shared resource, and the
// slot unique index is the single serialization point for writes.
type Engine struct {
	store    store.Store
	rules    *config.BookingConfig
	pipeline *Pipeline
	now      func() time.Time
}

// NewEngine creates a booking engine with the standard rule pipeline.
func NewEngine(s store.Store, rules *config.BookingConfig) *Engine {
	return &Engine{
		store:    s,
		rules:    rules,
		pipeline: NewPipeline(),
		now:      time.Now,
	}
}

// WithClock overrides the engine's time source so "today" can be pinned.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

func (e *Engine) today() string {
	return e.now().In(e.rules.Location).Format(model.DateLayout)
}

// evaluate runs the candidate through shape validation, loads a consistent
// snapshot, and runs the remaining rules. It performs no writes.
func (e *Engine) evaluate(ctx context.Context, c Candidate) (*Snapshot, *Rejection, error) {
	today := e.today()
	if rej := checkShape(c, today, e.rules); rej != nil {
		return nil, rej, nil
	}

	raw, err := e.store.Snapshot(ctx, c.MachineID, c.User, c.Date, c.Window, today)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load evaluation snapshot: %w", err)
	}
	snap := &Snapshot{
		Today:       today,
		Rules:       e.rules,
		Machine:     raw.Machine,
		Exact:       raw.Exact,
		UserSameDay: raw.UserSameDay,
		UserFuture:  raw.UserFuture,
	}

	return snap, e.pipeline.Evaluate(c, snap), nil
}

// Validate is the dry-run entry point: same rules, same order, no commit.
// Returns nil when the candidate would currently be accepted.
func (e *Engine) Validate(ctx context.Context, c Candidate) (*Rejection, error) {
	c.User = strings.TrimSpace(c.User)
	_, rej, err := e.evaluate(ctx, c)
	return rej, err
}

// EvaluateAndCommit runs the full pipeline and, if every rule accepts,
// inserts the booking. A unique-index violation at insert time means the
// candidate was valid when evaluated but lost a race, which is reported as
// StatusConflict rather than a rejection. Infrastructure failures come back
// as errors and carry no verdict about the candidate.
func (e *Engine) EvaluateAndCommit(ctx context.Context, c Candidate) (Decision, error) {
	c.User = strings.TrimSpace(c.User)

	snap, rej, err := e.evaluate(ctx, c)
	if err != nil {
		return Decision{}, err
	}
	if rej != nil {
		return Decision{Status: StatusRejected, Rejection: rej}, nil
	}

	b := &model.Booking{
		MachineID: c.MachineID,
		Date:      c.Date,
		Window:    c.Window,
		UserName:  c.User,
	}
	if err := e.store.CreateBooking(ctx, b); err != nil {
		if errors.Is(err, store.ErrDuplicateBooking) {
			return Decision{
				Status: StatusConflict,
				Rejection: &Rejection{
					Rule:     "commit",
					Reason:   "this slot was just taken by another booking",
					Category: CategoryConflict,
				},
			}, nil
		}
		return Decision{}, err
	}

	// Denormalize the machine for display; the snapshot already resolved it.
	b.Machine = *snap.Machine
	return Decision{Status: StatusAccepted, Booking: b}, nil
}

// Cancel removes a booking on behalf of its owner. It returns ErrNotFound
// if the booking does not exist and ErrForbidden if the requester does not
// own it. Once the delete commits, the freed slot is immediately bookable.
func (e *Engine) Cancel(ctx context.Context, id int64, user string) error {
	b, err := e.store.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if b.UserName != strings.TrimSpace(user) {
		return ErrForbidden
	}
	return e.store.DeleteBooking(ctx, id)
}
