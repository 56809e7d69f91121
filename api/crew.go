package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/val"
)

type compareCrewsRequest struct {
	Candidate     planning.Candidate `json:"candidate"`
	CurrentCrewID int64              `json:"current_crew_id" binding:"required"`
	// Crews overrides the stored crew contexts, mainly for what-if
	// previews. When empty all stored crews participate.
	Crews []planning.CrewContext `json:"crews"`
}

type compareCrewsResponse struct {
	Recommendation *planning.CrewRecommendation `json:"recommendation,omitempty"`
	Results        []planning.CrewInsertion     `json:"results"`
}

// compareCrews evaluates a candidate against every crew's route and
// recommends a switch when another crew is clearly cheaper.
// POST /v1/crews/compare
func (server *Server) compareCrews(ctx *gin.Context) {
	var req compareCrewsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if err := val.ValidateCoordinates(req.Candidate.Location.Lat, req.Candidate.Location.Lng); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("candidate: %w", err)))
		return
	}

	crews := req.Crews
	if len(crews) == 0 {
		stored, err := server.store.ListCrews(ctx)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
			return
		}
		crews = stored
	}

	for _, crew := range crews {
		if err := validatePlanningInput(crew.Depot, crew.Workday); err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("crew %d: %w", crew.CrewID, err)))
			return
		}
	}

	rec, results, err := server.engine.CompareAcrossCrews(ctx, req.Candidate, req.CurrentCrewID, crews, server.compareConfig())
	if err != nil {
		if errors.Is(err, planning.ErrValidation) {
			ctx.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	RecordCrewComparison(rec != nil)
	ctx.JSON(http.StatusOK, compareCrewsResponse{Recommendation: rec, Results: results})
}

// listCrews returns the stored crew contexts.
// GET /v1/crews
func (server *Server) listCrews(ctx *gin.Context) {
	crews, err := server.store.ListCrews(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"crews": crews, "total": len(crews)})
}

type upsertCrewRequest struct {
	Crew planning.CrewContext `json:"crew" binding:"required"`
}

// upsertCrew stores or replaces one crew's planning context.
// PUT /v1/crews
func (server *Server) upsertCrew(ctx *gin.Context) {
	var req upsertCrewRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if req.Crew.CrewID <= 0 {
		ctx.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("crew_id is required")))
		return
	}
	if err := validatePlanningInput(req.Crew.Depot, req.Crew.Workday); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	if err := server.store.UpsertCrew(ctx, req.Crew); err != nil {
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	ctx.JSON(http.StatusOK, req.Crew)
}
