// Package planning contains the route insertion and crew comparison core.
// The package is independent of transport and storage so it can be tested
// and upgraded in isolation.
package planning

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String returns the "lat,lng" form used by matrix services.
func (l Location) String() string {
	return fmt.Sprintf("%f,%f", l.Lat, l.Lng)
}

// Leg is one travel estimate between two locations.
type Leg struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min"`
}

// MatrixProvider supplies travel estimates between sets of locations.
// result[i][j] is the leg from origins[i] to destinations[j].
// Implementations may be backed by concurrent I/O; the engine only
// depends on this interface, never on a concrete transport.
type MatrixProvider interface {
	Matrix(ctx context.Context, origins, destinations []Location) ([][]Leg, error)
}

// TimeWindow is an arrival constraint on a stop or candidate.
// A hard window must be met; a soft window is a preference only.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Hard  bool      `json:"hard"`
}

// Workday bounds a crew's working hours on one date.
type Workday struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Candidate is a pending service obligation awaiting scheduling.
type Candidate struct {
	ID         int64    `json:"id"`
	CustomerID int64    `json:"customer_id"`
	DeviceID   int64    `json:"device_id"`
	DeviceType string   `json:"device_type"`
	Location   Location `json:"location"`
	DueDate    time.Time `json:"due_date"`
	// ServiceMinutes is the stop-level duration override; 0 means unset.
	ServiceMinutes int         `json:"service_minutes"`
	Window         *TimeWindow `json:"window,omitempty"`
}

// RouteStop is an ordered element of a crew's route. Arrival and
// Departure are post-buffer estimates. LegKm/LegMin are the raw travel
// costs from the previous stop (or the depot for the first stop), kept
// on the stop so insertion does not have to re-query route-internal
// edges.
type RouteStop struct {
	ID             int64       `json:"id"`
	CustomerID     int64       `json:"customer_id"`
	Location       Location    `json:"location"`
	ServiceMinutes int         `json:"service_minutes"`
	Window         *TimeWindow `json:"window,omitempty"`
	Arrival        time.Time   `json:"arrival"`
	Departure      time.Time   `json:"departure"`
	LegKm          float64     `json:"leg_km"`
	LegMin         float64     `json:"leg_min"`
}

// Route is one crew's ordered stop sequence for one date, anchored by an
// implicit depot before the first stop. When HasReturnLeg is set the
// route ends with a travel leg back to the depot.
type Route struct {
	CrewID       int64       `json:"crew_id"`
	Date         time.Time   `json:"date"`
	Stops        []RouteStop `json:"stops"`
	HasReturnLeg bool        `json:"has_return_leg"`
	ReturnLegKm  float64     `json:"return_leg_km"`
	ReturnLegMin float64     `json:"return_leg_min"`
}

// PositionStatus classifies the feasibility of one insertion position.
type PositionStatus string

const (
	StatusOK       PositionStatus = "ok"       // full slack
	StatusTight    PositionStatus = "tight"    // inside the slack margin of a hard boundary
	StatusConflict PositionStatus = "conflict" // violates a hard boundary
)

// Infeasibility reasons surfaced to callers.
const (
	ReasonWorkdayExceeded   = "workday_exceeded"
	ReasonTimeWindow        = "time_window_violation"
	ReasonMatrixUnavailable = "matrix_unavailable"
)

// ErrValidation marks malformed requests (empty route, unsorted stops,
// negative durations). Not retryable.
var ErrValidation = errors.New("validation error")

// ErrMatrixUnavailable marks an exhausted matrix lookup. The engine
// converts it into a partial result, never a failed batch.
var ErrMatrixUnavailable = errors.New("matrix unavailable")

// InsertionPosition is one evaluated gap. InsertAfterIndex is the stop
// index after which the candidate would be inserted; -1 means directly
// after the depot.
type InsertionPosition struct {
	InsertAfterIndex   int            `json:"insert_after_index"`
	DeltaKm            float64        `json:"delta_km"`
	DeltaMin           float64        `json:"delta_min"`
	EstimatedArrival   time.Time      `json:"estimated_arrival"`
	EstimatedDeparture time.Time      `json:"estimated_departure"`
	Status             PositionStatus `json:"status"`
}

// InsertionResult is the outcome of a single-candidate calculation.
// Positions with status conflict stay in AllPositions for diagnostics
// but are never chosen as BestPosition.
type InsertionResult struct {
	CandidateID      int64               `json:"candidate_id"`
	BestPosition     *InsertionPosition  `json:"best_position,omitempty"`
	AllPositions     []InsertionPosition `json:"all_positions"`
	IsFeasible       bool                `json:"is_feasible"`
	InfeasibleReason string              `json:"infeasible_reason,omitempty"`
}

// BatchItemResult carries only the best gap per candidate; full position
// detail is only available through the single-candidate call.
type BatchItemResult struct {
	CandidateID          int64          `json:"candidate_id"`
	BestDeltaKm          float64        `json:"best_delta_km"`
	BestDeltaMin         float64        `json:"best_delta_min"`
	BestInsertAfterIndex int            `json:"best_insert_after_index"`
	Status               PositionStatus `json:"status"`
	IsFeasible           bool           `json:"is_feasible"`
	InfeasibleReason     string         `json:"infeasible_reason,omitempty"`
}

// BatchResult is the ordered outcome of a batch calculation.
type BatchResult struct {
	Results          []BatchItemResult `json:"results"`
	ProcessingTimeMs int64             `json:"processing_time_ms"`
}

// ArrivalBufferConfig is the per-route padding policy. Percent applies
// to raw travel (and optionally service) time, FixedMinutes is added on
// top of every leg. Bounds (0-100%, 0-120 min) are enforced by the
// caller, not here.
type ArrivalBufferConfig struct {
	Percent      float64 `json:"percent"`
	FixedMinutes float64 `json:"fixed_minutes"`
}

// InsertionConfig tunes one engine instance.
type InsertionConfig struct {
	Buffer              ArrivalBufferConfig `json:"buffer"`
	BufferServiceTime   bool                `json:"buffer_service_time"`
	SlackMarginMinutes  float64             `json:"slack_margin_minutes"`
	DefaultServiceMinutes int               `json:"default_service_minutes"`
	// DeviceTypeDurations maps device types to their default service
	// duration; the middle tier of the resolution chain.
	DeviceTypeDurations map[string]int `json:"device_type_durations,omitempty"`
	MatrixRetryMax      int             `json:"matrix_retry_max"`
	MatrixRetryBackoff  time.Duration   `json:"matrix_retry_backoff"`
	// MaxParallelGapQueries bounds concurrent matrix calls in the batch
	// path.
	MaxParallelGapQueries int `json:"max_parallel_gap_queries"`
}

// DefaultInsertionConfig returns the production defaults.
func DefaultInsertionConfig() InsertionConfig {
	return InsertionConfig{
		Buffer: ArrivalBufferConfig{
			Percent:      10,
			FixedMinutes: 5,
		},
		BufferServiceTime:     false,
		SlackMarginMinutes:    15,
		DefaultServiceMinutes: 60,
		MatrixRetryMax:        3,
		MatrixRetryBackoff:    200 * time.Millisecond,
		MaxParallelGapQueries: 4,
	}
}

// CrewContext is one crew's planning input for multi-crew comparison.
type CrewContext struct {
	CrewID  int64    `json:"crew_id"`
	Name    string   `json:"name"`
	Workday Workday  `json:"workday"`
	Depot   Location `json:"depot"`
	Route   Route    `json:"route"`
}

// CrewInsertion is one crew's precomputed insertion cost.
type CrewInsertion struct {
	CrewID     int64   `json:"crew_id"`
	CrewName   string  `json:"crew_name"`
	DeltaKm    float64 `json:"delta_km"`
	DeltaMin   float64 `json:"delta_min"`
	IsFeasible bool    `json:"is_feasible"`
}

// CrewRecommendation names the best alternative crew and its savings
// over the current assignment.
type CrewRecommendation struct {
	CrewID     int64   `json:"crew_id"`
	CrewName   string  `json:"crew_name"`
	SavingsMin float64 `json:"savings_min"`
	SavingsKm  float64 `json:"savings_km"`
	Score      float64 `json:"score"`
	Savings    string  `json:"savings"`
}

// CompareConfig holds the crew-switch thresholds. Either threshold
// alone qualifies a crew.
type CompareConfig struct {
	MinSavingsMin float64 `json:"min_savings_min"`
	MinSavingsKm  float64 `json:"min_savings_km"`
}

// DefaultCompareConfig returns the business defaults.
func DefaultCompareConfig() CompareConfig {
	return CompareConfig{
		MinSavingsMin: 10,
		MinSavingsKm:  5,
	}
}
