package planning

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Compare recommends moving a candidate to another crew. A crew
// qualifies only when its insertion is feasible and the savings against
// the current crew reach the minute OR the kilometre threshold.
// Qualifying crews are ranked by crewSavingsScore; nil means no crew is
// worth switching to.
func Compare(currentCrewID int64, results []CrewInsertion, cfg CompareConfig) *CrewRecommendation {
	var current *CrewInsertion
	for i := range results {
		if results[i].CrewID == currentCrewID {
			current = &results[i]
			break
		}
	}
	if current == nil || !current.IsFeasible {
		// Without a feasible baseline there are no savings to compare.
		return nil
	}

	var best *CrewRecommendation
	for _, r := range results {
		if r.CrewID == currentCrewID || !r.IsFeasible {
			continue
		}

		savingsMin := current.DeltaMin - r.DeltaMin
		savingsKm := current.DeltaKm - r.DeltaKm
		if savingsMin < cfg.MinSavingsMin && savingsKm < cfg.MinSavingsKm {
			continue
		}

		score := crewSavingsScore(savingsMin, savingsKm)
		if best == nil || score > best.Score {
			best = &CrewRecommendation{
				CrewID:     r.CrewID,
				CrewName:   r.CrewName,
				SavingsMin: savingsMin,
				SavingsKm:  savingsKm,
				Score:      score,
				Savings:    FormatSavings(savingsMin, savingsKm),
			}
		}
	}
	return best
}

// FormatSavings renders a savings summary for the planning UI.
func FormatSavings(savingsMin, savingsKm float64) string {
	return fmt.Sprintf("%.0f min, %.1f km", savingsMin, savingsKm)
}

// CompareAcrossCrews runs the insertion calculation for every crew in
// parallel and feeds the outcomes into Compare. Crews' routes never
// interact, so the calculations are independent; the worker pool is
// sized to the crew count.
func (e *Engine) CompareAcrossCrews(ctx context.Context, cand Candidate, currentCrewID int64, crews []CrewContext, cfg CompareConfig) (*CrewRecommendation, []CrewInsertion, error) {
	if len(crews) == 0 {
		return nil, nil, fmt.Errorf("%w: no crews to compare", ErrValidation)
	}

	results := make([]CrewInsertion, len(crews))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(len(crews))

	for i := range crews {
		i := i
		grp.Go(func() error {
			crew := crews[i]

			res, err := e.CalculateInsertion(grpCtx, crew.Route, crew.Depot, cand, crew.Workday)
			if err != nil {
				return fmt.Errorf("crew %d: %w", crew.CrewID, err)
			}

			ci := CrewInsertion{CrewID: crew.CrewID, CrewName: crew.Name}
			if res.IsFeasible {
				ci.IsFeasible = true
				ci.DeltaKm = res.BestPosition.DeltaKm
				ci.DeltaMin = res.BestPosition.DeltaMin
			}
			results[i] = ci
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, nil, err
	}

	rec := Compare(currentCrewID, results, cfg)
	if rec != nil {
		log.Info().
			Int64("candidate_id", cand.ID).
			Int64("from_crew", currentCrewID).
			Int64("to_crew", rec.CrewID).
			Str("savings", rec.Savings).
			Msg("crew switch recommended")
	}
	return rec, results, nil
}
