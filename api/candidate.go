package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/revision"
	"github.com/Oslicek/Sazinka-sub005/schedule"
	"github.com/Oslicek/Sazinka-sub005/val"
)

// listCandidates returns the ranked planning inbox: active candidates
// only, overdue first. Snoozed candidates whose date has passed surface
// as active without a store write.
// GET /v1/candidates?today=2026-03-02
func (server *Server) listCandidates(ctx *gin.Context) {
	today, err := parseDateQuery(ctx, "today")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	queue, err := schedule.ActiveQueue(ctx, server.store, today)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"candidates": queue, "total": len(queue)})
}

type createCandidateRequest struct {
	CustomerID     int64             `json:"customer_id" binding:"required"`
	DeviceID       int64             `json:"device_id" binding:"required"`
	DeviceType     string            `json:"device_type"`
	Location       planning.Location `json:"location"`
	DueDate        string            `json:"due_date" binding:"required,dateonly"`
	Priority       string            `json:"priority"`
	ServiceMinutes int               `json:"service_minutes"`
}

// createCandidate adds a candidate to the inbox manually, outside the
// nightly device evaluation.
// POST /v1/candidates
func (server *Server) createCandidate(ctx *gin.Context) {
	var req createCandidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if err := val.ValidateCoordinates(req.Location.Lat, req.Location.Lng); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if req.ServiceMinutes < 0 {
		ctx.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("service_minutes must not be negative")))
		return
	}

	dueDate, _ := time.Parse(time.DateOnly, req.DueDate)

	priority := req.Priority
	if priority == "" {
		priority = revision.PriorityUpcoming
	}

	created, err := server.store.CreateCandidate(ctx, schedule.Candidate{
		CustomerID:     req.CustomerID,
		DeviceID:       req.DeviceID,
		DeviceType:     req.DeviceType,
		Location:       req.Location,
		DueDate:        dueDate,
		Priority:       priority,
		State:          schedule.StateActive,
		ServiceMinutes: req.ServiceMinutes,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	ctx.JSON(http.StatusCreated, created)
}

type snoozeCandidateRequest struct {
	// UserID identifies whose snooze preference to read and update.
	UserID int64 `json:"user_id"`
	// Offset is one of day|week|two_weeks|month. When empty the user's
	// remembered preference applies.
	Offset string `json:"offset" binding:"omitempty,snoozeoffset"`
	// Until overrides the offset with an explicit date.
	Until string `json:"until" binding:"omitempty,dateonly"`
}

// snoozeCandidate defers a candidate. The chosen offset becomes the
// user's new default.
// POST /v1/candidates/:id/snooze
func (server *Server) snoozeCandidate(ctx *gin.Context) {
	id, err := parseIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	var req snoozeCandidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	cand, err := server.store.GetCandidate(ctx, id)
	if err != nil {
		candidateStoreError(ctx, err)
		return
	}

	now := time.Now().UTC()

	var until time.Time
	switch {
	case req.Until != "":
		until, _ = time.Parse(time.DateOnly, req.Until)
	case req.Offset != "":
		until, err = schedule.SnoozeOffset(req.Offset).Until(now)
	default:
		offset, prefErr := server.store.GetSnoozePreference(ctx, req.UserID)
		if prefErr != nil {
			ctx.JSON(http.StatusInternalServerError, internalError(ctx, prefErr))
			return
		}
		until, err = offset.Until(now)
	}
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	if err := cand.Snooze(until, now); err != nil {
		ctx.JSON(http.StatusConflict, errorResponse(err))
		return
	}

	updated, err := server.store.UpdateCandidate(ctx, cand)
	if err != nil {
		candidateStoreError(ctx, err)
		return
	}

	if req.Offset != "" {
		if err := server.store.SetSnoozePreference(ctx, req.UserID, schedule.SnoozeOffset(req.Offset)); err != nil {
			LogWithRequestID(ctx).Warn().Err(err).Msg("failed to remember snooze preference")
		}
	}

	ctx.JSON(http.StatusOK, updated)
}

// scheduleCandidate marks a candidate as placed on a route.
// POST /v1/candidates/:id/schedule
func (server *Server) scheduleCandidate(ctx *gin.Context) {
	server.transitionCandidate(ctx, func(c *schedule.Candidate, now time.Time) error {
		return c.MarkScheduled(now)
	})
}

// cancelCandidate removes a candidate from planning.
// POST /v1/candidates/:id/cancel
func (server *Server) cancelCandidate(ctx *gin.Context) {
	server.transitionCandidate(ctx, func(c *schedule.Candidate, now time.Time) error {
		return c.Cancel(now)
	})
}

// reactivateCandidate clears an unexpired snooze early.
// POST /v1/candidates/:id/reactivate
func (server *Server) reactivateCandidate(ctx *gin.Context) {
	server.transitionCandidate(ctx, func(c *schedule.Candidate, now time.Time) error {
		return c.Reactivate(now)
	})
}

// transitionCandidate applies one state machine transition and persists
// the outcome. Invalid transitions map to 409.
func (server *Server) transitionCandidate(ctx *gin.Context, apply func(*schedule.Candidate, time.Time) error) {
	id, err := parseIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	cand, err := server.store.GetCandidate(ctx, id)
	if err != nil {
		candidateStoreError(ctx, err)
		return
	}

	if err := apply(&cand, time.Now().UTC()); err != nil {
		ctx.JSON(http.StatusConflict, errorResponse(err))
		return
	}

	updated, err := server.store.UpdateCandidate(ctx, cand)
	if err != nil {
		candidateStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// getSnoozePreference returns the user's remembered snooze offset.
// GET /v1/users/:id/snooze-preference
func (server *Server) getSnoozePreference(ctx *gin.Context) {
	id, err := parseIDParam(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	offset, err := server.store.GetSnoozePreference(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"offset": offset})
}

func parseIDParam(ctx *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", ctx.Param("id"))
	}
	return id, nil
}

func candidateStoreError(ctx *gin.Context, err error) {
	if errors.Is(err, schedule.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, errorResponse(err))
		return
	}
	ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
}
