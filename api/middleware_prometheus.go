package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// planning metrics
	insertionsCalculatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insertions_calculated_total",
			Help: "Total number of single insertion calculations",
		},
		[]string{"outcome"}, // feasible, infeasible
	)

	batchCandidatesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "batch_candidates_total",
			Help: "Total number of candidates evaluated in batch calculations",
		},
	)

	batchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_calculation_duration_seconds",
			Help:    "Batch insertion calculation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	crewRecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crew_switch_recommendations_total",
			Help: "Total number of crew comparison requests",
		},
		[]string{"recommended"}, // yes, no
	)
)

// PrometheusMiddleware records HTTP request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		path := ctx.FullPath()
		if path == "/metrics" || path == "/health" || path == "/ready" {
			ctx.Next()
			return
		}

		// empty FullPath means an unmatched route (404)
		if path == "" {
			path = ctx.Request.URL.Path
		}

		httpRequestsInFlight.Inc()
		start := time.Now()

		ctx.Next()

		httpRequestsInFlight.Dec()
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(ctx.Writer.Status())

		httpRequestsTotal.WithLabelValues(ctx.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(ctx.Request.Method, path).Observe(duration)
	}
}

// MetricsHandler exposes the prometheus scrape endpoint.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(ctx *gin.Context) {
		h.ServeHTTP(ctx.Writer, ctx.Request)
	}
}

// RecordInsertionCalculated counts one single-candidate calculation.
func RecordInsertionCalculated(feasible bool) {
	outcome := "feasible"
	if !feasible {
		outcome = "infeasible"
	}
	insertionsCalculatedTotal.WithLabelValues(outcome).Inc()
}

// RecordBatchCalculated counts one batch calculation.
func RecordBatchCalculated(candidates int, processingMs int64) {
	batchCandidatesTotal.Add(float64(candidates))
	batchDuration.Observe(float64(processingMs) / 1000)
}

// RecordCrewComparison counts one crew comparison.
func RecordCrewComparison(recommended bool) {
	label := "no"
	if recommended {
		label = "yes"
	}
	crewRecommendationsTotal.WithLabelValues(label).Inc()
}
