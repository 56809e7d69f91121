package api

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/schedule"
	"github.com/Oslicek/Sazinka-sub005/util"
	"github.com/Oslicek/Sazinka-sub005/worker"
)

func newTestServer(t *testing.T, store schedule.Store, provider planning.MatrixProvider) *Server {
	config := util.Config{
		Environment:        "test",
		MatrixRetryMax:     1,
		MatrixRetryBackoff: time.Millisecond,
	}

	server, err := NewServer(config, store, provider, nil)
	require.NoError(t, err)

	return server
}

// newTestServerWithConfig creates a test server with a caller-supplied
// configuration, for handlers whose behavior depends on config values.
func newTestServerWithConfig(t *testing.T, config util.Config, store schedule.Store, provider planning.MatrixProvider) *Server {
	server, err := NewServer(config, store, provider, nil)
	require.NoError(t, err)

	return server
}

// newTestServerWithTaskDistributor creates a test server with a stub task distributor.
func newTestServerWithTaskDistributor(t *testing.T, store schedule.Store, taskDistributor worker.TaskDistributor) *Server {
	config := util.Config{
		Environment:        "test",
		MatrixRetryMax:     1,
		MatrixRetryBackoff: time.Millisecond,
	}

	server, err := NewServer(config, store, constantLegProvider{km: 10, min: 10}, taskDistributor)
	require.NoError(t, err)

	return server
}

// constantLegProvider answers every leg with the same cost. Enough for
// handler tests that only care about plumbing, not geometry.
type constantLegProvider struct {
	km  float64
	min float64
}

func (p constantLegProvider) Matrix(_ context.Context, origins, destinations []planning.Location) ([][]planning.Leg, error) {
	out := make([][]planning.Leg, len(origins))
	for i := range origins {
		row := make([]planning.Leg, len(destinations))
		for j := range destinations {
			row[j] = planning.Leg{DistanceKm: p.km, DurationMin: p.min}
		}
		out[i] = row
	}
	return out, nil
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}
