package planning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveServiceDuration(t *testing.T) {
	// stop override wins when positive
	require.Equal(t, 45, ResolveServiceDuration(45, 90, 60))

	// unset override falls back to the device type default
	require.Equal(t, 90, ResolveServiceDuration(0, 90, 60))
	require.Equal(t, 45, ResolveServiceDuration(0, 45, 60))

	// zero is indistinguishable from unset in the source data, so it
	// never selects a tier
	require.Equal(t, 45, ResolveServiceDuration(0, 45, 60))
	require.Equal(t, 60, ResolveServiceDuration(0, 0, 60))

	// negative values are absent too
	require.Equal(t, 60, ResolveServiceDuration(-15, -1, 60))

	// global default is returned unconditionally
	require.Equal(t, 60, ResolveServiceDuration(0, 0, 60))
}

func TestResolveCandidateDuration(t *testing.T) {
	cfg := DefaultInsertionConfig()
	cfg.DefaultServiceMinutes = 60
	cfg.DeviceTypeDurations = map[string]int{"boiler": 90}

	require.Equal(t, 45, cfg.resolveCandidateDuration(Candidate{DeviceType: "boiler", ServiceMinutes: 45}))
	require.Equal(t, 90, cfg.resolveCandidateDuration(Candidate{DeviceType: "boiler"}))
	require.Equal(t, 60, cfg.resolveCandidateDuration(Candidate{DeviceType: "chimney"}))
}
