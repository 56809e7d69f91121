// Package revision computes due/overdue status for device service
// obligations from their completion history and calendar rules.
package revision

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidInterval rejects non-positive revision intervals.
var ErrInvalidInterval = errors.New("revision interval must be positive")

// EvaluateInput describes one device's revision history.
type EvaluateInput struct {
	DeviceID       int64
	IntervalMonths int
	// LastCompleted is the most recent finished revision; nil when the
	// device has never been serviced.
	LastCompleted *time.Time
	// InstalledAt is the fallback anchor when no revision exists.
	InstalledAt *time.Time
	Today       time.Time
}

// Result is the overdue evaluation of one device.
type Result struct {
	DeviceID                int64      `json:"device_id"`
	IsOverdue               bool       `json:"is_overdue"`
	NeverServiced           bool       `json:"never_serviced"`
	NextDueDate             *time.Time `json:"next_due_date,omitempty"`
	OverdueDays             int        `json:"overdue_days"`
	OverdueFromInstallation bool       `json:"overdue_from_installation"`
}

// Evaluate computes the overdue status of a device.
//
// With a completed revision the next due date is interval months after
// it. Without one the device is never-serviced and the installation
// date anchors the calculation instead; with no anchor at all the
// device cannot be judged overdue.
func Evaluate(input EvaluateInput) (Result, error) {
	if input.IntervalMonths <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidInterval, input.IntervalMonths)
	}

	res := Result{DeviceID: input.DeviceID}

	anchor := input.LastCompleted
	if anchor == nil {
		res.NeverServiced = true
		anchor = input.InstalledAt
	}
	if anchor == nil {
		return res, nil
	}

	due := AddMonthsClamped(*anchor, input.IntervalMonths)
	res.NextDueDate = &due

	days := daysBetween(due, input.Today)
	if days > 0 {
		res.OverdueDays = days
		res.IsOverdue = true
		res.OverdueFromInstallation = res.NeverServiced
	}
	return res, nil
}

// AddMonthsClamped adds calendar months, clamping to the last valid day
// of the target month when the source day does not exist there
// (Jan 31 + 1 month = Feb 28/29). Go's AddDate would normalize the
// overflow into the following month instead.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysBetween counts whole calendar days from one date to another,
// ignoring the time of day.
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// FormatOverdueDuration renders an overdue day count for display using
// simplified 365-day years and 30-day months; zero-valued higher units
// are omitted. Returns false for negative input (not overdue). This is
// display bucketing, not precise calendar math.
func FormatOverdueDuration(days int) (string, bool) {
	if days < 0 {
		return "", false
	}

	years := days / 365
	rem := days % 365
	months := rem / 30
	rest := rem % 30

	var parts []string
	if years > 0 {
		parts = append(parts, fmt.Sprintf("%d years", years))
	}
	if months > 0 {
		parts = append(parts, fmt.Sprintf("%d months", months))
	}
	if rest > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%d days", rest))
	}
	return strings.Join(parts, ", "), true
}

// Priority classification buckets for the candidate queue.
const (
	PriorityOverdue  = "overdue"
	PriorityDueSoon  = "due_soon"
	PriorityUpcoming = "upcoming"
)

// PriorityFor buckets an evaluation result for queue ranking.
func PriorityFor(res Result, today time.Time, dueSoonDays int) string {
	if res.IsOverdue {
		return PriorityOverdue
	}
	if res.NextDueDate != nil && daysBetween(today, *res.NextDueDate) <= dueSoonDays {
		return PriorityDueSoon
	}
	return PriorityUpcoming
}
