package schedule

import (
	"context"
	"sort"
	"time"
)

// priorityRank orders queue buckets: overdue first, then due soon,
// then upcoming.
func priorityRank(priority string) int {
	switch priority {
	case "overdue":
		return 0
	case "due_soon":
		return 1
	default:
		return 2
	}
}

// BuildQueue filters and ranks the candidates visible in the planning
// inbox: snoozed (unexpired), scheduled and cancelled candidates are
// excluded; expired snoozes surface as active again without touching
// the store. Ordering is priority bucket first, then due date, then id
// for determinism.
func BuildQueue(candidates []Candidate, today time.Time) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.EffectiveState(today) != StateActive {
			continue
		}
		c.State = StateActive
		c.SnoozedUntil = nil
		out = append(out, c)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := priorityRank(a.Priority), priorityRank(b.Priority); ra != rb {
			return ra < rb
		}
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		return a.ID < b.ID
	})
	return out
}

// ActiveQueue loads the store's candidates and builds the queue.
func ActiveQueue(ctx context.Context, store Store, today time.Time) ([]Candidate, error) {
	candidates, err := store.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}
	return BuildQueue(candidates, today), nil
}
