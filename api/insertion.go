package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/val"
)

const maxBatchCandidates = 200

type calculateInsertionRequest struct {
	Route     planning.Route     `json:"route"`
	Depot     planning.Location  `json:"depot"`
	Candidate planning.Candidate `json:"candidate"`
	Workday   planning.Workday   `json:"workday"`
	// WorkdayStart and WorkdayEnd are the HH:MM alternative to the
	// workday object. When all of them are absent the configured
	// WORKDAY_START/WORKDAY_END defaults apply.
	WorkdayStart string `json:"workday_start" binding:"omitempty,timeofday"`
	WorkdayEnd   string `json:"workday_end" binding:"omitempty,timeofday"`
}

// calculateInsertion evaluates one candidate against one route.
// POST /v1/insertions/calculate
func (server *Server) calculateInsertion(ctx *gin.Context) {
	var req calculateInsertionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	workday, err := server.resolveWorkday(req.Workday, req.WorkdayStart, req.WorkdayEnd, req.Route.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if err := validatePlanningInput(req.Depot, workday, req.Candidate); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	result, err := server.engine.CalculateInsertion(ctx, req.Route, req.Depot, req.Candidate, workday)
	if err != nil {
		if errors.Is(err, planning.ErrValidation) {
			ctx.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	RecordInsertionCalculated(result.IsFeasible)
	ctx.JSON(http.StatusOK, result)
}

type calculateBatchRequest struct {
	Route      planning.Route       `json:"route"`
	Depot      planning.Location    `json:"depot"`
	Candidates []planning.Candidate `json:"candidates" binding:"required,min=1"`
	Workday    planning.Workday     `json:"workday"`
	// HH:MM alternative to the workday object, as on the single
	// calculation; configured defaults apply when absent.
	WorkdayStart string `json:"workday_start" binding:"omitempty,timeofday"`
	WorkdayEnd   string `json:"workday_end" binding:"omitempty,timeofday"`
	// BestOnly selects the reduced calculation; defaults to true.
	BestOnly *bool `json:"best_only,omitempty"`
}

// calculateBatchInsertion evaluates many candidates against one route.
// POST /v1/insertions/batch
func (server *Server) calculateBatchInsertion(ctx *gin.Context) {
	var req calculateBatchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if len(req.Candidates) > maxBatchCandidates {
		ctx.JSON(http.StatusBadRequest, errorResponse(
			fmt.Errorf("too many candidates: %d, maximum is %d", len(req.Candidates), maxBatchCandidates)))
		return
	}
	workday, err := server.resolveWorkday(req.Workday, req.WorkdayStart, req.WorkdayEnd, req.Route.Date)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if err := validatePlanningInput(req.Depot, workday, req.Candidates...); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	bestOnly := true
	if req.BestOnly != nil {
		bestOnly = *req.BestOnly
	}

	result, err := server.engine.CalculateBatch(ctx, req.Route, req.Depot, req.Candidates, workday, bestOnly)
	if err != nil {
		if errors.Is(err, planning.ErrValidation) {
			ctx.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	RecordBatchCalculated(len(result.Results), result.ProcessingTimeMs)
	ctx.JSON(http.StatusOK, result)
}

// resolveWorkday picks the explicit workday from the request, or
// builds one on the route date from the HH:MM bounds, request values
// first, then the configured defaults.
func (server *Server) resolveWorkday(workday planning.Workday, startHHMM, endHHMM string, routeDate time.Time) (planning.Workday, error) {
	if !workday.Start.IsZero() || !workday.End.IsZero() {
		if workday.Start.IsZero() || workday.End.IsZero() {
			return planning.Workday{}, fmt.Errorf("workday start and end must both be set")
		}
		return workday, nil
	}

	if startHHMM == "" && endHHMM == "" {
		startHHMM, endHHMM = server.config.WorkdayStart, server.config.WorkdayEnd
	}
	if startHHMM == "" || endHHMM == "" {
		return planning.Workday{}, fmt.Errorf("workday start and end are required")
	}

	date := routeDate
	if date.IsZero() {
		date = time.Now().UTC()
	}
	return workdayOnDate(date, startHHMM, endHHMM)
}

// workdayOnDate places HH:MM bounds onto the calendar date in UTC.
func workdayOnDate(date time.Time, start, end string) (planning.Workday, error) {
	startClock, err := time.Parse("15:04", start)
	if err != nil {
		return planning.Workday{}, fmt.Errorf("invalid workday start: %w", err)
	}
	endClock, err := time.Parse("15:04", end)
	if err != nil {
		return planning.Workday{}, fmt.Errorf("invalid workday end: %w", err)
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return planning.Workday{
		Start: day.Add(time.Duration(startClock.Hour())*time.Hour + time.Duration(startClock.Minute())*time.Minute),
		End:   day.Add(time.Duration(endClock.Hour())*time.Hour + time.Duration(endClock.Minute())*time.Minute),
	}, nil
}

// validatePlanningInput rejects out-of-range coordinates and an unset
// workday before the engine sees them.
func validatePlanningInput(depot planning.Location, workday planning.Workday, cands ...planning.Candidate) error {
	if err := val.ValidateCoordinates(depot.Lat, depot.Lng); err != nil {
		return fmt.Errorf("depot: %w", err)
	}
	if workday.Start.IsZero() || workday.End.IsZero() {
		return fmt.Errorf("workday start and end are required")
	}
	for _, cand := range cands {
		if err := val.ValidateCoordinates(cand.Location.Lat, cand.Location.Lng); err != nil {
			return fmt.Errorf("candidate %d: %w", cand.ID, err)
		}
	}
	return nil
}
