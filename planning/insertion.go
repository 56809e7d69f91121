package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Engine computes insertion positions for candidates against existing
// routes. It is stateless per request; all inputs are supplied by the
// caller.
type Engine struct {
	provider MatrixProvider
	cfg      InsertionConfig
}

// NewEngine creates an insertion engine on top of a matrix provider.
func NewEngine(provider MatrixProvider, cfg InsertionConfig) *Engine {
	if cfg.MatrixRetryMax <= 0 {
		cfg.MatrixRetryMax = DefaultInsertionConfig().MatrixRetryMax
	}
	if cfg.MatrixRetryBackoff <= 0 {
		cfg.MatrixRetryBackoff = DefaultInsertionConfig().MatrixRetryBackoff
	}
	if cfg.MaxParallelGapQueries <= 0 {
		cfg.MaxParallelGapQueries = DefaultInsertionConfig().MaxParallelGapQueries
	}
	if cfg.DefaultServiceMinutes <= 0 {
		cfg.DefaultServiceMinutes = DefaultInsertionConfig().DefaultServiceMinutes
	}
	return &Engine{provider: provider, cfg: cfg}
}

// Config returns the engine configuration.
func (e *Engine) Config() InsertionConfig {
	return e.cfg
}

// CalculateInsertion evaluates every gap of the route for one candidate
// and returns the cheapest feasible position plus all evaluated
// positions for diagnostics.
//
// A matrix outage is not an error: after bounded retries the result is
// returned infeasible with reason "matrix_unavailable".
func (e *Engine) CalculateInsertion(ctx context.Context, route Route, depot Location, cand Candidate, workday Workday) (*InsertionResult, error) {
	if err := validateRoute(route, workday); err != nil {
		return nil, err
	}

	gaps := buildGaps(route, workday)

	// One column query (predecessors -> candidate) and one row query
	// (candidate -> successors) cover every gap.
	origins := make([]Location, 0, len(route.Stops)+1)
	origins = append(origins, depot)
	for _, s := range route.Stops {
		origins = append(origins, s.Location)
	}

	colIn, err := e.queryMatrix(ctx, origins, []Location{cand.Location})
	if err != nil {
		return matrixUnavailableResult(cand.ID), nil
	}

	var rowOut [][]Leg
	succLocs := successorLocations(route, depot)
	if len(succLocs) > 0 {
		rowOut, err = e.queryMatrix(ctx, []Location{cand.Location}, succLocs)
		if err != nil {
			return matrixUnavailableResult(cand.ID), nil
		}
	}

	result := &InsertionResult{CandidateID: cand.ID, AllPositions: make([]InsertionPosition, 0, len(gaps))}
	var best *InsertionPosition
	var firstReason string

	for _, g := range gaps {
		in := colIn[g.insertAfterIndex+1][0]
		var out Leg
		if g.succIdx != noSuccessor {
			out = rowOut[0][successorColumn(g, route)]
		}

		pos, reason := e.cfg.evaluateGap(g, route, workday, cand, in, out)
		result.AllPositions = append(result.AllPositions, pos)

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

	result.BestPosition = best
	result.IsFeasible = best != nil
	if !result.IsFeasible {
		result.InfeasibleReason = firstReason
		if result.InfeasibleReason == "" {
			result.InfeasibleReason = ReasonWorkdayExceeded
		}
	}
	return result, nil
}

// ==================== gap machinery ====================

// successor sentinel values for gap.succIdx
const (
	depotSuccessor = -1 // successor is the depot return leg
	noSuccessor    = -2 // open-ended route, nothing after this gap
)

// gap describes one candidate insertion point between two route nodes.
type gap struct {
	insertAfterIndex int
	predDeparture    time.Time
	succIdx          int
	directKm         float64
	oldSuccArrival   time.Time
	oldRouteEnd      time.Time
}

// buildGaps enumerates the insertion points of a route: before stop 0,
// between consecutive stops, and after the last stop.
func buildGaps(route Route, workday Workday) []gap {
	n := len(route.Stops)

	oldRouteEnd := workday.Start
	if n > 0 {
		oldRouteEnd = route.Stops[n-1].Departure
	}
	returnArrival := oldRouteEnd
	if route.HasReturnLeg {
		returnArrival = oldRouteEnd.Add(minutesDur(route.ReturnLegMin))
		oldRouteEnd = returnArrival
	}

	gaps := make([]gap, 0, n+1)
	for idx := -1; idx < n; idx++ {
		g := gap{insertAfterIndex: idx, oldRouteEnd: oldRouteEnd}

		if idx == -1 {
			g.predDeparture = workday.Start
		} else {
			g.predDeparture = route.Stops[idx].Departure
		}

		switch {
		case idx+1 < n:
			g.succIdx = idx + 1
			g.directKm = route.Stops[idx+1].LegKm
			g.oldSuccArrival = route.Stops[idx+1].Arrival
		case route.HasReturnLeg:
			g.succIdx = depotSuccessor
			g.directKm = route.ReturnLegKm
			g.oldSuccArrival = returnArrival
		default:
			g.succIdx = noSuccessor
		}

		gaps = append(gaps, g)
	}
	return gaps
}

// successorLocations lists the row-query targets: every stop plus the
// depot when the route returns to it.
func successorLocations(route Route, depot Location) []Location {
	locs := make([]Location, 0, len(route.Stops)+1)
	for _, s := range route.Stops {
		locs = append(locs, s.Location)
	}
	if route.HasReturnLeg {
		locs = append(locs, depot)
	}
	return locs
}

// successorColumn maps a gap to its column in the row query built by
// successorLocations.
func successorColumn(g gap, route Route) int {
	if g.succIdx == depotSuccessor {
		return len(route.Stops)
	}
	return g.succIdx
}

// evaluateGap computes timing, cost delta and feasibility for one gap.
// The returned reason names the hard violation when the status is
// conflict.
func (cfg InsertionConfig) evaluateGap(g gap, route Route, workday Workday, cand Candidate, in, out Leg) (InsertionPosition, string) {
	arrival := g.predDeparture.Add(minutesDur(cfg.padTravel(in.DurationMin)))

	// Arriving before the window opens means waiting at the door; the
	// wait is part of the detour cost.
	if cand.Window != nil && arrival.Before(cand.Window.Start) {
		arrival = cand.Window.Start
	}

	service := cfg.padService(float64(cfg.resolveCandidateDuration(cand)))
	departure := arrival.Add(minutesDur(service))

	pos := InsertionPosition{
		InsertAfterIndex:   g.insertAfterIndex,
		EstimatedArrival:   arrival,
		EstimatedDeparture: departure,
		Status:             StatusOK,
	}

	status := StatusOK
	reason := ""
	slack := cfg.SlackMarginMinutes

	flag := func(s PositionStatus, r string) {
		status = worseStatus(status, s)
		if s == StatusConflict && reason == "" {
			reason = r
		}
	}

	if cand.Window != nil && cand.Window.Hard {
		switch {
		case arrival.After(cand.Window.End):
			flag(StatusConflict, ReasonTimeWindow)
		case minutesBetween(arrival, cand.Window.End) <= slack:
			flag(StatusTight, "")
		}
	}

	var routeEnd time.Time
	if g.succIdx == noSuccessor {
		pos.DeltaMin = minutesBetween(g.predDeparture, departure)
		pos.DeltaKm = in.DistanceKm
		routeEnd = departure
	} else {
		newSuccArrival := departure.Add(minutesDur(cfg.padTravel(out.DurationMin)))
		shift := newSuccArrival.Sub(g.oldSuccArrival)

		pos.DeltaMin = shift.Minutes()
		pos.DeltaKm = in.DistanceKm + out.DistanceKm - g.directKm

		if g.succIdx == depotSuccessor {
			routeEnd = newSuccArrival
		} else {
			routeEnd = g.oldRouteEnd.Add(shift)

			// Downstream stops shift by the same amount; check every
			// hard window behind the insertion point.
			if shift > 0 {
				for j := g.succIdx; j < len(route.Stops); j++ {
					w := route.Stops[j].Window
					if w == nil || !w.Hard {
						continue
					}
					shifted := route.Stops[j].Arrival.Add(shift)
					switch {
					case shifted.After(w.End):
						flag(StatusConflict, ReasonTimeWindow)
					case minutesBetween(shifted, w.End) <= slack:
						flag(StatusTight, "")
					}
				}
			}
		}
	}

	switch {
	case routeEnd.After(workday.End):
		flag(StatusConflict, ReasonWorkdayExceeded)
	case minutesBetween(routeEnd, workday.End) <= slack:
		flag(StatusTight, "")
	}

	pos.Status = status
	return pos, reason
}

// ==================== validation ====================

// validateRoute rejects malformed routes before any matrix traffic.
// An empty stop list is valid: the candidate becomes the first stop.
func validateRoute(route Route, workday Workday) error {
	if !workday.End.After(workday.Start) {
		return fmt.Errorf("%w: workday end must be after start", ErrValidation)
	}
	for i, s := range route.Stops {
		if s.ServiceMinutes < 0 {
			return fmt.Errorf("%w: stop %d has negative service duration", ErrValidation, i)
		}
		if s.LegKm < 0 || s.LegMin < 0 {
			return fmt.Errorf("%w: stop %d has negative leg cost", ErrValidation, i)
		}
		if i > 0 && s.Arrival.Before(route.Stops[i-1].Arrival) {
			return fmt.Errorf("%w: stops are not sorted by arrival time", ErrValidation)
		}
		if s.Departure.Before(s.Arrival) {
			return fmt.Errorf("%w: stop %d departs before it arrives", ErrValidation, i)
		}
	}
	return nil
}

// ==================== matrix access ====================

// queryMatrix calls the provider with bounded retry and exponential
// backoff. Callers treat an exhausted lookup as "unknown outcome" for
// the affected candidates, never as a failed request.
func (e *Engine) queryMatrix(ctx context.Context, origins, destinations []Location) ([][]Leg, error) {
	backoff := e.cfg.MatrixRetryBackoff

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MatrixRetryMax; attempt++ {
		legs, err := e.provider.Matrix(ctx, origins, destinations)
		if err == nil {
			if len(legs) != len(origins) {
				return nil, fmt.Errorf("%w: provider returned %d rows for %d origins", ErrMatrixUnavailable, len(legs), len(origins))
			}
			for i := range legs {
				if len(legs[i]) != len(destinations) {
					return nil, fmt.Errorf("%w: provider returned %d columns for %d destinations in row %d", ErrMatrixUnavailable, len(legs[i]), len(destinations), i)
				}
			}
			return legs, nil
		}
		lastErr = err

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("origins", len(origins)).
			Int("destinations", len(destinations)).
			Msg("matrix query failed")

		if attempt == e.cfg.MatrixRetryMax {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrMatrixUnavailable, ctx.Err())
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("%w: %v", ErrMatrixUnavailable, lastErr)
}

func matrixUnavailableResult(candidateID int64) *InsertionResult {
	return &InsertionResult{
		CandidateID:      candidateID,
		AllPositions:     []InsertionPosition{},
		IsFeasible:       false,
		InfeasibleReason: ReasonMatrixUnavailable,
	}
}

// ==================== small time helpers ====================

func minutesDur(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

func minutesBetween(from, to time.Time) float64 {
	return to.Sub(from).Minutes()
}
