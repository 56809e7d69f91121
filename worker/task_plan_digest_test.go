package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/revision"
	"github.com/Oslicek/Sazinka-sub005/schedule"
	"github.com/Oslicek/Sazinka-sub005/util"
)

// fixedLegs answers every leg with the same cost.
type fixedLegs struct {
	km  float64
	min float64
}

func (p fixedLegs) Matrix(_ context.Context, origins, destinations []planning.Location) ([][]planning.Leg, error) {
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

func digestTask(t *testing.T, today time.Time) *asynq.Task {
	data, err := json.Marshal(PayloadPlanDigest{Today: today})
	require.NoError(t, err)
	return asynq.NewTask(TaskPlanDigest, data)
}

func digestWorkday(today time.Time) planning.Workday {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return planning.Workday{Start: day.Add(8 * time.Hour), End: day.Add(18 * time.Hour)}
}

func TestProcessTaskPlanDigest(t *testing.T) {
	ctx := context.Background()
	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	store := schedule.NewMemStore()

	_, err := store.CreateCandidate(ctx, schedule.Candidate{
		CustomerID: 10,
		DeviceID:   1,
		Location:   planning.Location{Lat: 49.2, Lng: 16.6},
		DueDate:    time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		Priority:   revision.PriorityOverdue,
		State:      schedule.StateActive,
	})
	require.NoError(t, err)

	require.NoError(t, store.UpsertCrew(ctx, planning.CrewContext{
		CrewID:  1,
		Name:    "Brno",
		Workday: digestWorkday(today),
		Depot:   planning.Location{Lat: 49.2, Lng: 16.6},
	}))

	engine := planning.NewEngine(fixedLegs{km: 10, min: 10}, planning.DefaultInsertionConfig())
	processor := NewTestTaskProcessor(util.Config{}, store, engine)

	require.NoError(t, processor.ProcessTaskPlanDigest(ctx, digestTask(t, today)))
}

func TestProcessTaskPlanDigestEmptyQueue(t *testing.T) {
	engine := planning.NewEngine(fixedLegs{km: 10, min: 10}, planning.DefaultInsertionConfig())
	processor := NewTestTaskProcessor(util.Config{}, schedule.NewMemStore(), engine)

	today := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, processor.ProcessTaskPlanDigest(context.Background(), digestTask(t, today)))
}

func TestProcessTaskPlanDigestBadPayload(t *testing.T) {
	processor := NewTestTaskProcessor(util.Config{}, schedule.NewMemStore(), nil)

	task := asynq.NewTask(TaskPlanDigest, []byte("{not json"))
	err := processor.ProcessTaskPlanDigest(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}
