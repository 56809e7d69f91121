package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/Oslicek/Sazinka-sub005/revision"
	"github.com/Oslicek/Sazinka-sub005/schedule"
)

const (
	// TaskCandidateRefresh re-evaluates all devices against their
	// revision intervals and syncs the candidate inbox.
	TaskCandidateRefresh = "candidate:refresh"

	defaultDueSoonDays = 30
)

// PayloadCandidateRefresh carries the evaluation date. A zero Today
// means "now".
type PayloadCandidateRefresh struct {
	Today time.Time `json:"today"`
}

func (distributor *RedisTaskDistributor) DistributeTaskCandidateRefresh(
	ctx context.Context,
	payload *PayloadCandidateRefresh,
	opts ...asynq.Option,
) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	task := asynq.NewTask(TaskCandidateRefresh, data, opts...)
	info, err := distributor.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}

	log.Info().Str("type", task.Type()).Str("queue", info.Queue).
		Msg("enqueued candidate refresh")
	return nil
}

// ProcessTaskCandidateRefresh walks every device, recomputes its overdue
// status and keeps one open candidate per due device. Scheduled and
// cancelled candidates are never touched; expired snoozes are cleared in
// the store so the lazy read-time expiry and the persisted state agree.
func (processor *RedisTaskProcessor) ProcessTaskCandidateRefresh(ctx context.Context, task *asynq.Task) error {
	var payload PayloadCandidateRefresh
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %w", asynq.SkipRetry)
	}

	today := payload.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}

	dueSoonDays := processor.config.DueSoonDays
	if dueSoonDays <= 0 {
		dueSoonDays = defaultDueSoonDays
	}

	devices, err := processor.store.ListDevices(ctx)
	if err != nil {
		return fmt.Errorf("list devices: %w", err)
	}

	candidates, err := processor.store.ListCandidates(ctx)
	if err != nil {
		return fmt.Errorf("list candidates: %w", err)
	}
	byDevice := make(map[int64]schedule.Candidate, len(candidates))
	for _, c := range candidates {
		byDevice[c.DeviceID] = c
	}

	var created, updated, swept int
	for _, device := range devices {
		res, err := revision.Evaluate(revision.EvaluateInput{
			DeviceID:       device.ID,
			IntervalMonths: device.IntervalMonths,
			LastCompleted:  device.LastCompleted,
			InstalledAt:    device.InstalledAt,
			Today:          today,
		})
		if err != nil {
			log.Warn().Err(err).Int64("device_id", device.ID).
				Msg("skipping device with invalid revision interval")
			continue
		}
		if res.NextDueDate == nil {
			continue
		}
		priority := revision.PriorityFor(res, today, dueSoonDays)

		existing, ok := byDevice[device.ID]
		if !ok {
			if priority == revision.PriorityUpcoming {
				continue
			}
			_, err := processor.store.CreateCandidate(ctx, schedule.Candidate{
				CustomerID:     device.CustomerID,
				DeviceID:       device.ID,
				DeviceType:     device.Type,
				Location:       device.Location,
				DueDate:        *res.NextDueDate,
				Priority:       priority,
				State:          schedule.StateActive,
				ServiceMinutes: device.DurationOverride,
			})
			if err != nil {
				log.Error().Err(err).Int64("device_id", device.ID).Msg("create candidate failed")
				continue
			}
			created++
			continue
		}

		switch existing.State {
		case schedule.StateScheduled, schedule.StateCancelled:
			continue
		}

		sweptSnooze := false
		if existing.State == schedule.StateSnoozed &&
			existing.EffectiveState(today) == schedule.StateActive {
			existing.State = schedule.StateActive
			existing.SnoozedUntil = nil
			sweptSnooze = true
			swept++
		}

		if sweptSnooze || existing.Priority != priority || !existing.DueDate.Equal(*res.NextDueDate) {
			existing.Priority = priority
			existing.DueDate = *res.NextDueDate
			existing.UpdatedAt = today
			if _, err := processor.store.UpdateCandidate(ctx, existing); err != nil {
				log.Error().Err(err).Int64("candidate_id", existing.ID).Msg("update candidate failed")
				continue
			}
			updated++
		}
	}

	log.Info().
		Int("devices", len(devices)).
		Int("created", created).
		Int("updated", updated).
		Int("snoozes_swept", swept).
		Msg("candidate refresh finished")
	return nil
}
