package planning

// The single-route ordering and the multi-crew score are intentionally
// separate cost models and must not be unified. Positions within one
// route are ranked on pure time delta; crew switching weighs distance
// savings twice as heavily as time savings, a business tuning knob
// rather than a unit conversion.

// positionLess orders insertion positions: lower deltaMin first, then
// lower deltaKm, then lower insertion index. The tie-breaks keep the
// ordering stable and deterministic.
func positionLess(a, b InsertionPosition) bool {
	if a.DeltaMin != b.DeltaMin {
		return a.DeltaMin < b.DeltaMin
	}
	if a.DeltaKm != b.DeltaKm {
		return a.DeltaKm < b.DeltaKm
	}
	return a.InsertAfterIndex < b.InsertAfterIndex
}

// crewSavingsScore ranks qualifying alternative crews.
func crewSavingsScore(savingsMin, savingsKm float64) float64 {
	return savingsMin + savingsKm*2
}

// statusRank orders feasibility statuses: ok < tight < conflict.
func statusRank(s PositionStatus) int {
	switch s {
	case StatusOK:
		return 0
	case StatusTight:
		return 1
	default:
		return 2
	}
}

// worseStatus returns the more restrictive of two statuses.
func worseStatus(a, b PositionStatus) PositionStatus {
	if statusRank(b) > statusRank(a) {
		return b
	}
	return a
}

// batchItemLess totally orders batch results: feasible before
// infeasible, then ok < tight < conflict, then ascending best time
// delta, then candidate id for determinism.
func batchItemLess(a, b BatchItemResult) bool {
	if a.IsFeasible != b.IsFeasible {
		return a.IsFeasible
	}
	if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
		return ra < rb
	}
	if a.BestDeltaMin != b.BestDeltaMin {
		return a.BestDeltaMin < b.BestDeltaMin
	}
	return a.CandidateID < b.CandidateID
}
