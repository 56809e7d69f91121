package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/Oslicek/Sazinka-sub005/schedule"
	"github.com/Oslicek/Sazinka-sub005/worker"
)

// stubDistributor records enqueued tasks instead of talking to redis.
type stubDistributor struct {
	refreshCalls int
	digestCalls  int
	err          error
}

func (d *stubDistributor) DistributeTaskCandidateRefresh(context.Context, *worker.PayloadCandidateRefresh, ...asynq.Option) error {
	d.refreshCalls++
	return d.err
}

func (d *stubDistributor) DistributeTaskPlanDigest(context.Context, *worker.PayloadPlanDigest, ...asynq.Option) error {
	d.digestCalls++
	return d.err
}

func TestHealthCheckAPI(t *testing.T) {
	server := newTestServer(t, schedule.NewMemStore(), constantLegProvider{km: 10, min: 10})

	recorder := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodGet, "/health", nil)
	require.NoError(t, err)
	server.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp["status"])
	require.Equal(t, "sazinka-planner", resp["service"])
}

func TestReadinessCheckAPI(t *testing.T) {
	server := newTestServer(t, schedule.NewMemStore(), constantLegProvider{km: 10, min: 10})

	recorder := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodGet, "/ready", nil)
	require.NoError(t, err)
	server.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestTriggerRefreshAPI(t *testing.T) {
	t.Run("Enqueued", func(t *testing.T) {
		distributor := &stubDistributor{}
		server := newTestServerWithTaskDistributor(t, schedule.NewMemStore(), distributor)

		recorder := postJSON(t, server, "/v1/refresh", struct{}{})
		require.Equal(t, http.StatusAccepted, recorder.Code)
		require.Equal(t, 1, distributor.refreshCalls)
	})

	t.Run("NoDistributorConfigured", func(t *testing.T) {
		server := newTestServer(t, schedule.NewMemStore(), constantLegProvider{km: 10, min: 10})

		recorder := postJSON(t, server, "/v1/refresh", struct{}{})
		require.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}

func TestRequestIDPropagation(t *testing.T) {
	server := newTestServer(t, schedule.NewMemStore(), constantLegProvider{km: 10, min: 10})

	recorder := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodGet, "/health", nil)
	require.NoError(t, err)
	request.Header.Set(RequestIDHeader, "test-request-id")
	server.router.ServeHTTP(recorder, request)

	require.Equal(t, "test-request-id", recorder.Header().Get(RequestIDHeader))
}

func TestUnknownRouteReturns404(t *testing.T) {
	server := newTestServer(t, schedule.NewMemStore(), constantLegProvider{km: 10, min: 10})

	recorder := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodGet, "/v1/nope", nil)
	require.NoError(t, err)
	server.router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusNotFound, recorder.Code)
}
