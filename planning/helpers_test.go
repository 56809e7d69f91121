package planning

import (
	"context"
	"errors"
	"sync"
	"time"
)

// The test metric places everything on one east-west line: longitude
// units are kilometers and travel takes one minute per kilometer.

func lineLoc(x float64) Location {
	return Location{Lat: 49.2, Lng: x}
}

func lineKm(a, b Location) float64 {
	d := a.Lng - b.Lng
	if d < 0 {
		d = -d
	}
	return d
}

// lineMatrix is a deterministic in-memory provider.
type lineMatrix struct {
	mu       sync.Mutex
	calls    int
	failWhen func(origins, destinations []Location) bool
}

func (m *lineMatrix) Matrix(_ context.Context, origins, destinations []Location) ([][]Leg, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.failWhen != nil && m.failWhen(origins, destinations) {
		return nil, errors.New("matrix backend down")
	}

	legs := make([][]Leg, len(origins))
	for i, from := range origins {
		legs[i] = make([]Leg, len(destinations))
		for j, to := range destinations {
			km := lineKm(from, to)
			legs[i][j] = Leg{DistanceKm: km, DurationMin: km}
		}
	}
	return legs, nil
}

func (m *lineMatrix) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func testClock(h, min int) time.Time {
	return time.Date(2026, 3, 2, h, min, 0, 0, time.UTC)
}

func testWorkday() Workday {
	return Workday{Start: testClock(8, 0), End: testClock(18, 0)}
}

// testConfig disables buffering so expected times stay readable.
func testConfig() InsertionConfig {
	cfg := DefaultInsertionConfig()
	cfg.Buffer = ArrivalBufferConfig{}
	cfg.SlackMarginMinutes = 15
	cfg.DefaultServiceMinutes = 30
	cfg.MatrixRetryMax = 2
	cfg.MatrixRetryBackoff = time.Millisecond
	return cfg
}

// lineRoute builds a consistent route along the line starting from the
// depot at x=0, thirty minutes of service per stop.
func lineRoute(xs ...float64) Route {
	const serviceMin = 30

	route := Route{Date: testClock(0, 0)}
	departure := testWorkday().Start
	prevX := 0.0

	for i, x := range xs {
		leg := x - prevX
		if leg < 0 {
			leg = -leg
		}
		arrival := departure.Add(time.Duration(leg) * time.Minute)
		departure = arrival.Add(serviceMin * time.Minute)

		route.Stops = append(route.Stops, RouteStop{
			ID:             int64(i + 1),
			CustomerID:     int64(100 + i),
			Location:       lineLoc(x),
			ServiceMinutes: serviceMin,
			Arrival:        arrival,
			Departure:      departure,
			LegKm:          leg,
			LegMin:         leg,
		})
		prevX = x
	}
	return route
}

func lineCandidate(id int64, x float64) Candidate {
	return Candidate{
		ID:         id,
		CustomerID: 200 + id,
		DeviceID:   300 + id,
		Location:   lineLoc(x),
	}
}
