package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/schedule"
	"github.com/Oslicek/Sazinka-sub005/util"
	"github.com/Oslicek/Sazinka-sub005/val"
	"github.com/Oslicek/Sazinka-sub005/worker"
)

// MessageResponse is the generic message payload.
type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error" example:"error message"`
}

// Server serves HTTP requests for the planning service.
type Server struct {
	config          util.Config
	store           schedule.Store
	engine          *planning.Engine
	taskDistributor worker.TaskDistributor
	router          *gin.Engine
}

// NewServer creates a new HTTP server and sets up routing. The matrix
// provider is injected so tests and deployments choose their own
// transport.
func NewServer(config util.Config, store schedule.Store, provider planning.MatrixProvider, taskDistributor worker.TaskDistributor) (*Server, error) {
	engineCfg, err := InsertionConfigFrom(config)
	if err != nil {
		return nil, fmt.Errorf("invalid insertion config: %w", err)
	}

	// the default workday is optional, but when configured both bounds
	// must parse so requests without a workday never 400 on bad config
	if config.WorkdayStart != "" || config.WorkdayEnd != "" {
		if err := val.ValidateTimeOfDay(config.WorkdayStart); err != nil {
			return nil, fmt.Errorf("invalid default workday: %w", err)
		}
		if err := val.ValidateTimeOfDay(config.WorkdayEnd); err != nil {
			return nil, fmt.Errorf("invalid default workday: %w", err)
		}
	}

	server := &Server{
		config:          config,
		store:           store,
		engine:          planning.NewEngine(provider, engineCfg),
		taskDistributor: taskDistributor,
	}

	server.setupRouter()
	return server, nil
}

// InsertionConfigFrom maps the service configuration onto the engine
// defaults, validating the bounded knobs. Shared with main so the HTTP
// server and the background workers price insertions identically.
func InsertionConfigFrom(config util.Config) (planning.InsertionConfig, error) {
	cfg := planning.DefaultInsertionConfig()

	if config.ArrivalBufferPercent != 0 || config.ArrivalBufferFixedMinutes != 0 {
		if err := val.ValidateBufferPercent(config.ArrivalBufferPercent); err != nil {
			return cfg, err
		}
		if err := val.ValidateBufferFixedMinutes(config.ArrivalBufferFixedMinutes); err != nil {
			return cfg, err
		}
		cfg.Buffer = planning.ArrivalBufferConfig{
			Percent:      config.ArrivalBufferPercent,
			FixedMinutes: config.ArrivalBufferFixedMinutes,
		}
	}
	cfg.BufferServiceTime = config.BufferServiceTime

	if config.SlackMarginMinutes > 0 {
		cfg.SlackMarginMinutes = config.SlackMarginMinutes
	}
	if config.DefaultServiceDuration > 0 {
		cfg.DefaultServiceMinutes = config.DefaultServiceDuration
	}
	if config.MatrixRetryMax > 0 {
		cfg.MatrixRetryMax = config.MatrixRetryMax
	}
	if config.MatrixRetryBackoff > 0 {
		cfg.MatrixRetryBackoff = config.MatrixRetryBackoff
	}
	return cfg, nil
}

// compareConfig resolves the crew-switch thresholds from configuration.
func (server *Server) compareConfig() planning.CompareConfig {
	cfg := planning.DefaultCompareConfig()
	if server.config.CrewSwitchMinSavingsMin > 0 {
		cfg.MinSavingsMin = server.config.CrewSwitchMinSavingsMin
	}
	if server.config.CrewSwitchMinSavingsKm > 0 {
		cfg.MinSavingsKm = server.config.CrewSwitchMinSavingsKm
	}
	return cfg
}

func (server *Server) setupRouter() {
	if server.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	registerCustomValidators()

	router.Use(CORSMiddleware(server.config.AllowedOrigins))
	router.Use(RequestTracingMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(PrometheusMiddleware())

	rateLimiter := NewRateLimiter(DefaultRateLimiterConfig())
	router.Use(rateLimiter.Middleware())

	requestTimeout := server.config.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	router.Use(TimeoutMiddleware(requestTimeout))

	router.GET("/metrics", MetricsHandler())
	router.GET("/health", server.healthCheck)
	router.GET("/ready", server.readinessCheck)

	v1 := router.Group("/v1")

	// insertion calculations
	v1.POST("/insertions/calculate", server.calculateInsertion)
	v1.POST("/insertions/batch", server.calculateBatchInsertion)

	// revision status
	v1.POST("/revisions/evaluate", server.evaluateRevision)

	// planning inbox
	v1.GET("/candidates", server.listCandidates)
	v1.POST("/candidates", server.createCandidate)
	v1.POST("/candidates/:id/snooze", server.snoozeCandidate)
	v1.POST("/candidates/:id/schedule", server.scheduleCandidate)
	v1.POST("/candidates/:id/cancel", server.cancelCandidate)
	v1.POST("/candidates/:id/reactivate", server.reactivateCandidate)
	v1.GET("/users/:id/snooze-preference", server.getSnoozePreference)

	// crews and devices (planning reference data)
	v1.POST("/crews/compare", server.compareCrews)
	v1.GET("/crews", server.listCrews)
	v1.PUT("/crews", server.upsertCrew)
	v1.GET("/devices", server.listDevices)
	v1.PUT("/devices", server.upsertDevice)
	v1.POST("/refresh", server.triggerRefresh)

	server.router = router
}

// GetRouter exposes the router for the http.Server wrapper in main.
func (server *Server) GetRouter() *gin.Engine {
	return server.router
}

// healthCheck is the basic liveness probe.
// GET /health
func (server *Server) healthCheck(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "sazinka-planner",
	})
}

// readinessCheck verifies the store answers before reporting ready.
// GET /ready
func (server *Server) readinessCheck(ctx *gin.Context) {
	if _, err := server.store.ListCrews(ctx); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  "store unavailable",
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "ready",
		"service": "sazinka-planner",
	})
}

// triggerRefresh enqueues an immediate candidate refresh.
// POST /v1/refresh
func (server *Server) triggerRefresh(ctx *gin.Context) {
	if server.taskDistributor == nil {
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, fmt.Errorf("task distributor is not configured")))
		return
	}

	err := server.taskDistributor.DistributeTaskCandidateRefresh(ctx, &worker.PayloadCandidateRefresh{
		Today: time.Now().UTC(),
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, internalError(ctx, fmt.Errorf("enqueue refresh: %w", err)))
		return
	}

	ctx.JSON(http.StatusAccepted, MessageResponse{Message: "refresh enqueued"})
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}

// internalError logs the actual error and returns a safe generic
// message so 5xx responses never leak implementation details.
func internalError(ctx *gin.Context, err error) gin.H {
	_ = ctx.Error(err)

	log.Error().
		Err(err).
		Str("request_id", GetRequestID(ctx)).
		Str("path", ctx.Request.URL.Path).
		Str("method", ctx.Request.Method).
		Msg("internal error")

	return gin.H{"error": "internal server error"}
}
