// Package schedule tracks candidates of the planning inbox: their
// scheduling state, snoozes and queue ordering.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/Oslicek/Sazinka-sub005/planning"
)

// State is a candidate's scheduling state.
type State string

const (
	StateActive    State = "active"
	StateSnoozed   State = "snoozed"
	StateScheduled State = "scheduled"
	StateCancelled State = "cancelled"
)

// ErrInvalidTransition rejects a state change the machine does not
// allow.
var ErrInvalidTransition = errors.New("invalid state transition")

// SnoozeOffset is one of the fixed snooze durations offered by the
// planning inbox.
type SnoozeOffset string

const (
	OffsetDay      SnoozeOffset = "day"
	OffsetWeek     SnoozeOffset = "week"
	OffsetTwoWeeks SnoozeOffset = "two_weeks"
	OffsetMonth    SnoozeOffset = "month"
)

// Until resolves the offset relative to a base date.
func (o SnoozeOffset) Until(from time.Time) (time.Time, error) {
	switch o {
	case OffsetDay:
		return from.AddDate(0, 0, 1), nil
	case OffsetWeek:
		return from.AddDate(0, 0, 7), nil
	case OffsetTwoWeeks:
		return from.AddDate(0, 0, 14), nil
	case OffsetMonth:
		return from.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unknown snooze offset %q", o)
	}
}

// Candidate is a pending service obligation tracked by the inbox.
type Candidate struct {
	ID             int64             `json:"id"`
	CustomerID     int64             `json:"customer_id"`
	DeviceID       int64             `json:"device_id"`
	DeviceType     string            `json:"device_type"`
	Location       planning.Location `json:"location"`
	DueDate        time.Time         `json:"due_date"`
	Priority       string            `json:"priority"` // upcoming | due_soon | overdue
	State          State             `json:"state"`
	SnoozedUntil   *time.Time        `json:"snoozed_until,omitempty"`
	ServiceMinutes int               `json:"service_minutes"` // stop-level override hint, 0 = unset
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// EffectiveState applies lazy snooze expiry: a snoozed candidate whose
// until date has passed counts as active again. No background timer;
// recomputed on each query.
func (c Candidate) EffectiveState(today time.Time) State {
	if c.State == StateSnoozed && c.SnoozedUntil != nil && !c.SnoozedUntil.After(today) {
		return StateActive
	}
	return c.State
}

// Snooze defers the candidate until the given date. Re-snoozing simply
// replaces the previous until date.
func (c *Candidate) Snooze(until, now time.Time) error {
	switch c.EffectiveState(now) {
	case StateActive, StateSnoozed:
	default:
		return fmt.Errorf("%w: cannot snooze a %s candidate", ErrInvalidTransition, c.State)
	}
	if !until.After(now) {
		return fmt.Errorf("%w: snooze date must be in the future", ErrInvalidTransition)
	}

	u := until
	c.State = StateSnoozed
	c.SnoozedUntil = &u
	c.UpdatedAt = now
	return nil
}

// MarkScheduled records that the candidate has been placed on a route.
func (c *Candidate) MarkScheduled(now time.Time) error {
	if c.EffectiveState(now) != StateActive {
		return fmt.Errorf("%w: cannot schedule a %s candidate", ErrInvalidTransition, c.State)
	}
	c.State = StateScheduled
	c.SnoozedUntil = nil
	c.UpdatedAt = now
	return nil
}

// Cancel removes the candidate from planning entirely.
func (c *Candidate) Cancel(now time.Time) error {
	switch c.EffectiveState(now) {
	case StateActive, StateSnoozed:
	default:
		return fmt.Errorf("%w: cannot cancel a %s candidate", ErrInvalidTransition, c.State)
	}
	c.State = StateCancelled
	c.SnoozedUntil = nil
	c.UpdatedAt = now
	return nil
}

// Reactivate clears an unexpired snooze early.
func (c *Candidate) Reactivate(now time.Time) error {
	if c.State != StateSnoozed {
		return fmt.Errorf("%w: only snoozed candidates can be reactivated", ErrInvalidTransition)
	}
	c.State = StateActive
	c.SnoozedUntil = nil
	c.UpdatedAt = now
	return nil
}

// PlanningCandidate converts the record into the engine's input shape.
func (c Candidate) PlanningCandidate() planning.Candidate {
	return planning.Candidate{
		ID:             c.ID,
		CustomerID:     c.CustomerID,
		DeviceID:       c.DeviceID,
		DeviceType:     c.DeviceType,
		Location:       c.Location,
		DueDate:        c.DueDate,
		ServiceMinutes: c.ServiceMinutes,
	}
}
