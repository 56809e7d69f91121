package planning

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPadMinutes(t *testing.T) {
	cfg := ArrivalBufferConfig{Percent: 10, FixedMinutes: 5}

	require.InDelta(t, 71, PadMinutes(60, cfg), 0.001)
	require.InDelta(t, 5, PadMinutes(0, cfg), 0.001)

	// no padding configured
	require.InDelta(t, 42, PadMinutes(42, ArrivalBufferConfig{}), 0.001)

	// the model does not clamp; out-of-range configs propagate
	require.InDelta(t, 130, PadMinutes(60, ArrivalBufferConfig{Percent: 100, FixedMinutes: 10}), 0.001)
	require.InDelta(t, 30, PadMinutes(60, ArrivalBufferConfig{Percent: -50}), 0.001)
}

func TestPadService(t *testing.T) {
	cfg := DefaultInsertionConfig()
	cfg.Buffer = ArrivalBufferConfig{Percent: 50}

	cfg.BufferServiceTime = false
	require.InDelta(t, 60, cfg.padService(60), 0.001)

	cfg.BufferServiceTime = true
	require.InDelta(t, 90, cfg.padService(60), 0.001)
}
