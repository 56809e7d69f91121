// Package refresher schedules the nightly background jobs that keep the
// planning inbox current.
package refresher

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/Oslicek/Sazinka-sub005/worker"
)

const (
	// candidates are re-evaluated before the working day starts
	candidateRefreshSpec = "30 4 * * *"
	// the digest runs after the refresh has had time to finish
	planDigestSpec = "0 5 * * *"

	enqueueTimeout = 30 * time.Second
)

// Scheduler enqueues the recurring planning tasks on a cron schedule.
// The heavy lifting happens in the worker; the scheduler only enqueues.
type Scheduler struct {
	cron        *cron.Cron
	distributor worker.TaskDistributor
}

func NewScheduler(distributor worker.TaskDistributor) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		distributor: distributor,
	}
}

// Start registers the cron entries and fires an immediate refresh so a
// fresh deployment does not wait a day for its first inbox sync.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(candidateRefreshSpec, func() {
		s.enqueueRefresh()
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(planDigestSpec, func() {
		s.enqueueDigest()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Info().Msg("refresh scheduler started")

	go s.enqueueRefresh()

	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Info().Msg("refresh scheduler stopped")
}

func (s *Scheduler) enqueueRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	err := s.distributor.DistributeTaskCandidateRefresh(ctx, &worker.PayloadCandidateRefresh{
		Today: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to enqueue candidate refresh")
	}
}

func (s *Scheduler) enqueueDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	err := s.distributor.DistributeTaskPlanDigest(ctx, &worker.PayloadPlanDigest{
		Today: time.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to enqueue plan digest")
	}
}
