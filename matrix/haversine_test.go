package matrix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/util"
)

func randomLocation() planning.Location {
	return planning.Location{
		Lat: util.RandomLatitude(),
		Lng: util.RandomLongitude(),
	}
}

func TestHaversineKm(t *testing.T) {
	brno := planning.Location{Lat: 49.1951, Lng: 16.6068}
	prague := planning.Location{Lat: 50.0755, Lng: 14.4378}

	km := HaversineKm(brno, prague)
	// straight-line Brno-Prague is roughly 185 km
	require.InDelta(t, 185, km, 5)

	require.Zero(t, HaversineKm(brno, brno))
}

func TestHaversineKmIsSymmetric(t *testing.T) {
	for i := 0; i < 20; i++ {
		a := randomLocation()
		b := randomLocation()
		require.InDelta(t, HaversineKm(a, b), HaversineKm(b, a), 1e-9)
	}
}

func TestHaversineProviderMatrix(t *testing.T) {
	provider := NewHaversineProvider(60)

	origins := []planning.Location{randomLocation(), randomLocation()}
	destinations := []planning.Location{randomLocation(), randomLocation(), randomLocation()}

	legs, err := provider.Matrix(context.Background(), origins, destinations)
	require.NoError(t, err)
	require.Len(t, legs, 2)

	for i := range legs {
		require.Len(t, legs[i], 3)
		for j, leg := range legs[i] {
			require.GreaterOrEqual(t, leg.DistanceKm, 0.0)
			// detour factor inflates the straight line
			require.InDelta(t, HaversineKm(origins[i], destinations[j])*1.3, leg.DistanceKm, 1e-9)
			// 60 km/h means one minute per kilometre
			require.InDelta(t, leg.DistanceKm, leg.DurationMin, 1e-9)
		}
	}
}

func TestHaversineProviderDefaultSpeed(t *testing.T) {
	provider := NewHaversineProvider(0)
	require.Equal(t, DefaultSpeedKmh, provider.SpeedKmh)

	provider = NewHaversineProvider(-10)
	require.Equal(t, DefaultSpeedKmh, provider.SpeedKmh)
}
