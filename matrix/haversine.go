package matrix

import (
	"context"
	"math"

	"github.com/Oslicek/Sazinka-sub005/planning"
)

const (
	// earth radius in kilometers
	earthRadiusKm = 6371.0

	// DefaultSpeedKmh approximates van travel on rural roads.
	DefaultSpeedKmh = 45.0

	// road networks are longer than the great-circle line
	detourFactor = 1.3
)

// HaversineProvider estimates travel legs from straight-line distances
// scaled by a detour factor and an average speed. Deterministic, no
// I/O; used when no routing service is configured and as the reference
// provider in tests.
type HaversineProvider struct {
	SpeedKmh float64
}

// NewHaversineProvider creates the fallback provider.
func NewHaversineProvider(speedKmh float64) *HaversineProvider {
	if speedKmh <= 0 {
		speedKmh = DefaultSpeedKmh
	}
	return &HaversineProvider{SpeedKmh: speedKmh}
}

// Matrix computes all pairs locally.
func (p *HaversineProvider) Matrix(_ context.Context, origins, destinations []planning.Location) ([][]planning.Leg, error) {
	legs := make([][]planning.Leg, len(origins))
	for i, from := range origins {
		legs[i] = make([]planning.Leg, len(destinations))
		for j, to := range destinations {
			km := HaversineKm(from, to) * detourFactor
			legs[i][j] = planning.Leg{
				DistanceKm:  km,
				DurationMin: km / p.SpeedKmh * 60,
			}
		}
	}
	return legs, nil
}

// HaversineKm computes the great-circle distance between two points.
func HaversineKm(from, to planning.Location) float64 {
	lat1 := toRadians(from.Lat)
	lat2 := toRadians(to.Lat)
	deltaLat := toRadians(to.Lat - from.Lat)
	deltaLng := toRadians(to.Lng - from.Lng)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

var _ planning.MatrixProvider = (*HaversineProvider)(nil)
