package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/schedule"
	"github.com/Oslicek/Sazinka-sub005/val"
)

// listDevices returns the device inventory the nightly refresh
// evaluates.
// GET /v1/devices
func (server *Server) listDevices(ctx *gin.Context) {
	devices, err := server.store.ListDevices(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"devices": devices, "total": len(devices)})
}

type upsertDeviceRequest struct {
	ID             int64             `json:"id" binding:"required"`
	CustomerID     int64             `json:"customer_id" binding:"required"`
	Type           string            `json:"type"`
	Location       planning.Location `json:"location"`
	IntervalMonths int               `json:"interval_months" binding:"required"`
	LastCompleted  string            `json:"last_completed" binding:"omitempty,dateonly"`
	InstalledAt    string            `json:"installed_at" binding:"omitempty,dateonly"`
	// DurationOverride is the per-device service duration in minutes;
	// 0 falls back to the device type default.
	DurationOverride int `json:"duration_override"`
}

// upsertDevice stores or replaces one device record.
// PUT /v1/devices
func (server *Server) upsertDevice(ctx *gin.Context) {
	var req upsertDeviceRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if err := val.ValidateCoordinates(req.Location.Lat, req.Location.Lng); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if req.IntervalMonths <= 0 {
		ctx.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("interval_months must be positive")))
		return
	}
	if req.DurationOverride < 0 {
		ctx.JSON(http.StatusBadRequest, errorResponse(fmt.Errorf("duration_override must not be negative")))
		return
	}

	device := schedule.Device{
		ID:               req.ID,
		CustomerID:       req.CustomerID,
		Type:             req.Type,
		Location:         req.Location,
		IntervalMonths:   req.IntervalMonths,
		DurationOverride: req.DurationOverride,
	}
	if req.LastCompleted != "" {
		t, _ := time.Parse(time.DateOnly, req.LastCompleted)
		device.LastCompleted = &t
	}
	if req.InstalledAt != "" {
		t, _ := time.Parse(time.DateOnly, req.InstalledAt)
		device.InstalledAt = &t
	}

	if err := server.store.UpsertDevice(ctx, device); err != nil {
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, err))
		return
	}

	ctx.JSON(http.StatusOK, device)
}
