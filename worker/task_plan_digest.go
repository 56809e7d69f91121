package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/schedule"
)

const (
	// TaskPlanDigest precomputes batch insertion costs of the active
	// queue against every crew's route for the next planning day.
	TaskPlanDigest = "plan:digest"

	defaultDigestTimeout = 60 * time.Second
)

// PayloadPlanDigest carries the planning date. A zero Today means "now".
type PayloadPlanDigest struct {
	Today time.Time `json:"today"`
}

func (distributor *RedisTaskDistributor) DistributeTaskPlanDigest(
	ctx context.Context,
	payload *PayloadPlanDigest,
	opts ...asynq.Option,
) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskPlanDigest, data, opts...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	log.Info().Str("type", task.Type()).Str("queue", info.Queue).
		Msg("enqueued plan digest")
	return nil
}

// ProcessTaskPlanDigest runs the reduced batch calculation per crew and
// logs a cost summary. A crew whose matrix lookups fail entirely still
// produces a digest entry; failures never abort the other crews.
func (processor *RedisTaskProcessor) ProcessTaskPlanDigest(ctx context.Context, task *asynq.Task) error {
	var payload PayloadPlanDigest
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %w", asynq.SkipRetry)
	}

	today := payload.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}

	timeout := processor.config.BulkTimeout
	if timeout <= 0 {
		timeout = defaultDigestTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	queue, err := schedule.ActiveQueue(ctx, processor.store, today)
	if err != nil {
		return fmt.Errorf("load active queue: %w", err)
	}
	if len(queue) == 0 {
		log.Info().Msg("plan digest: no active candidates")
		return nil
	}

	planningCands := make([]planning.Candidate, 0, len(queue))
	for _, c := range queue {
		planningCands = append(planningCands, c.PlanningCandidate())
	}

	crews, err := processor.store.ListCrews(ctx)
	if err != nil {
		return fmt.Errorf("list crews: %w", err)
	}

	for _, crew := range crews {
		res, err := processor.engine.CalculateBatch(ctx, crew.Route, crew.Depot, planningCands, crew.Workday, true)
		if err != nil {
			log.Warn().Err(err).Int64("crew_id", crew.CrewID).Msg("plan digest: batch failed")
			continue
		}

		feasible := 0
		for _, item := range res.Results {
			if item.IsFeasible {
				feasible++
			}
		}

		log.Info().
			Int64("crew_id", crew.CrewID).
			Str("crew", crew.Name).
			Int("candidates", len(res.Results)).
			Int("feasible", feasible).
			Int64("processing_ms", res.ProcessingTimeMs).
			Msg("plan digest computed")
	}
	return nil
}
