package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oslicek/Sazinka-sub005/revision"
)

type evaluateRevisionRequest struct {
	DeviceID       int64  `json:"device_id"`
	IntervalMonths int    `json:"interval_months" binding:"required"`
	LastCompleted  string `json:"last_completed" binding:"omitempty,dateonly"`
	InstalledAt    string `json:"installed_at" binding:"omitempty,dateonly"`
	// Today overrides the evaluation date, mainly for previews.
	Today string `json:"today" binding:"omitempty,dateonly"`
}

type evaluateRevisionResponse struct {
	revision.Result
	// OverdueLabel is the display form of OverdueDays ("1 months, 15 days").
	OverdueLabel string `json:"overdue_label,omitempty"`
	Priority     string `json:"priority"`
}

// evaluateRevision computes the overdue status of one device.
// POST /v1/revisions/evaluate
func (server *Server) evaluateRevision(ctx *gin.Context) {
	var req evaluateRevisionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	today := time.Now().UTC()
	if req.Today != "" {
		today, _ = time.Parse(time.DateOnly, req.Today)
	}

	input := revision.EvaluateInput{
		DeviceID:       req.DeviceID,
		IntervalMonths: req.IntervalMonths,
		Today:          today,
	}
	if req.LastCompleted != "" {
		t, _ := time.Parse(time.DateOnly, req.LastCompleted)
		input.LastCompleted = &t
	}
	if req.InstalledAt != "" {
		t, _ := time.Parse(time.DateOnly, req.InstalledAt)
		input.InstalledAt = &t
	}

	result, err := revision.Evaluate(input)
	if err != nil {
		if errors.Is(err, revision.ErrInvalidInterval) {
			ctx.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	resp := evaluateRevisionResponse{
		Result:   result,
		Priority: revision.PriorityFor(result, today, server.dueSoonDays()),
	}
	if result.IsOverdue {
		if label, ok := revision.FormatOverdueDuration(result.OverdueDays); ok {
			resp.OverdueLabel = label
		}
	}

	ctx.JSON(http.StatusOK, resp)
}

func (server *Server) dueSoonDays() int {
	if server.config.DueSoonDays > 0 {
		return server.config.DueSoonDays
	}
	return 30
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter, falling
// back to today.
func parseDateQuery(ctx *gin.Context, name string) (time.Time, error) {
	value := ctx.Query(name)
	if value == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}
