package planning

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// CalculateBatch evaluates many candidates against one route.
//
// The default path (bestOnly=true) uses the 1xK + Kx1 reduction: per
// gap, one matrix query "predecessor -> all K candidates" and one "all
// K candidates -> successor", reusing route-internal edge costs carried
// on the stops. That is O(N+K) matrix traffic instead of the full
// (N+1)xK pairwise matrix.
//
// bestOnly=false is the slower exact path: a full single-candidate
// calculation per candidate. The response shape is identical either
// way; full position detail is only exposed by CalculateInsertion.
//
// One candidate's matrix failure never aborts the rest of the batch.
func (e *Engine) CalculateBatch(ctx context.Context, route Route, depot Location, cands []Candidate, workday Workday, bestOnly bool) (*BatchResult, error) {
	start := time.Now()

	if err := validateRoute(route, workday); err != nil {
		return nil, err
	}

	var items []BatchItemResult
	if bestOnly {
		var err error
		items, err = e.batchReduced(ctx, route, depot, cands, workday)
		if err != nil {
			return nil, err
		}
	} else {
		items = e.batchExact(ctx, route, depot, cands, workday)
	}

	sortBatchItems(items)

	res := &BatchResult{
		Results:          items,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}

	log.Debug().
		Int("route_stops", len(route.Stops)).
		Int("candidates", len(cands)).
		Bool("best_only", bestOnly).
		Int64("processing_ms", res.ProcessingTimeMs).
		Msg("batch insertion calculated")

	return res, nil
}

// batchExact runs the full single-candidate calculation per candidate.
func (e *Engine) batchExact(ctx context.Context, route Route, depot Location, cands []Candidate, workday Workday) []BatchItemResult {
	items := make([]BatchItemResult, 0, len(cands))
	for _, cand := range cands {
		res, err := e.CalculateInsertion(ctx, route, depot, cand, workday)
		if err != nil {
			// Route validation already passed; only the candidate can
			// be at fault here, so it fails alone.
			items = append(items, infeasibleItem(cand.ID, ReasonMatrixUnavailable))
			continue
		}
		items = append(items, itemFromResult(res))
	}
	return items
}

// gapLegs holds one gap's reduced matrix results for all candidates.
type gapLegs struct {
	in  []Leg // predecessor -> candidate k
	out []Leg // candidate k -> successor
	err error
}

// batchReduced issues the per-gap 1xK and Kx1 queries concurrently and
// evaluates every candidate against every reachable gap.
func (e *Engine) batchReduced(ctx context.Context, route Route, depot Location, cands []Candidate, workday Workday) ([]BatchItemResult, error) {
	gaps := buildGaps(route, workday)

	candLocs := make([]Location, len(cands))
	for i, c := range cands {
		candLocs[i] = c.Location
	}

	preds := make([]Location, 0, len(route.Stops)+1)
	preds = append(preds, depot)
	for _, s := range route.Stops {
		preds = append(preds, s.Location)
	}

	legs := make([]gapLegs, len(gaps))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(e.cfg.MaxParallelGapQueries)

	for i := range gaps {
		i := i
		grp.Go(func() error {
			g := gaps[i]

			inRows, err := e.queryMatrix(grpCtx, []Location{preds[g.insertAfterIndex+1]}, candLocs)
			if err != nil {
				legs[i].err = err
				return nil // isolated: other gaps stay usable
			}
			legs[i].in = inRows[0]

			if g.succIdx != noSuccessor {
				succ := successorLocation(g, route, depot)
				outRows, err := e.queryMatrix(grpCtx, candLocs, []Location{succ})
				if err != nil {
					legs[i].err = err
					return nil
				}
				col := make([]Leg, len(cands))
				for k := range cands {
					col[k] = outRows[k][0]
				}
				legs[i].out = col
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	items := make([]BatchItemResult, 0, len(cands))
	for k, cand := range cands {
		items = append(items, e.evaluateCandidateAcrossGaps(cand, k, gaps, legs, route, workday))
	}
	return items, nil
}

// evaluateCandidateAcrossGaps picks the best reachable gap for one
// candidate from the reduced query results.
func (e *Engine) evaluateCandidateAcrossGaps(cand Candidate, k int, gaps []gap, legs []gapLegs, route Route, workday Workday) BatchItemResult {
	var best *InsertionPosition
	firstReason := ""
	usableGaps := 0

	for i, g := range gaps {
		if legs[i].err != nil {
			continue
		}
		usableGaps++

		in := legs[i].in[k]
		var out Leg
		if g.succIdx != noSuccessor {
			out = legs[i].out[k]
		}

		pos, reason := e.cfg.evaluateGap(g, route, workday, cand, in, out)
		if pos.Status == StatusConflict {
			if firstReason == "" {
				firstReason = reason
			}
			continue
		}
		if best == nil || positionLess(pos, *best) {
			p := pos
			best = &p
		}
	}

	if usableGaps == 0 {
		return infeasibleItem(cand.ID, ReasonMatrixUnavailable)
	}
	if best == nil {
		if firstReason == "" {
			firstReason = ReasonWorkdayExceeded
		}
		return infeasibleItem(cand.ID, firstReason)
	}

	return BatchItemResult{
		CandidateID:          cand.ID,
		BestDeltaKm:          best.DeltaKm,
		BestDeltaMin:         best.DeltaMin,
		BestInsertAfterIndex: best.InsertAfterIndex,
		Status:               best.Status,
		IsFeasible:           true,
	}
}

func successorLocation(g gap, route Route, depot Location) Location {
	if g.succIdx == depotSuccessor {
		return depot
	}
	return route.Stops[g.succIdx].Location
}

func itemFromResult(res *InsertionResult) BatchItemResult {
	if !res.IsFeasible {
		return infeasibleItem(res.CandidateID, res.InfeasibleReason)
	}
	best := res.BestPosition
	return BatchItemResult{
		CandidateID:          res.CandidateID,
		BestDeltaKm:          best.DeltaKm,
		BestDeltaMin:         best.DeltaMin,
		BestInsertAfterIndex: best.InsertAfterIndex,
		Status:               best.Status,
		IsFeasible:           true,
	}
}

func infeasibleItem(candidateID int64, reason string) BatchItemResult {
	return BatchItemResult{
		CandidateID:          candidateID,
		BestInsertAfterIndex: -1,
		Status:               StatusConflict,
		IsFeasible:           false,
		InfeasibleReason:     reason,
	}
}

func sortBatchItems(items []BatchItemResult) {
	sort.Slice(items, func(i, j int) bool {
		return batchItemLess(items[i], items[j])
	})
}
