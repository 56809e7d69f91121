package worker

import (
	"context"

	"github.com/hibiken/asynq"
)

// TaskDistributor enqueues background tasks for the planning service.
type TaskDistributor interface {
	// DistributeTaskCandidateRefresh enqueues a re-evaluation of all
	// devices against their revision intervals.
	DistributeTaskCandidateRefresh(
		ctx context.Context,
		payload *PayloadCandidateRefresh,
		opts ...asynq.Option,
	) error

	// DistributeTaskPlanDigest enqueues the batch insertion digest for
	// the planning inbox.
	DistributeTaskPlanDigest(
		ctx context.Context,
		payload *PayloadPlanDigest,
		opts ...asynq.Option,
	) error
}

type RedisTaskDistributor struct {
	client *asynq.Client
}

func NewRedisTaskDistributor(redisOpt asynq.RedisClientOpt) TaskDistributor {
	client := asynq.NewClient(redisOpt)
	return &RedisTaskDistributor{
		client: client,
	}
}
