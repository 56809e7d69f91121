package worker

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/schedule"
	"github.com/Oslicek/Sazinka-sub005/util"
)

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

// TaskProcessor consumes background tasks from redis.
type TaskProcessor interface {
	Start() error
	Shutdown()
	// ProcessTaskCandidateRefresh re-evaluates every device and keeps
	// the candidate inbox in sync.
	ProcessTaskCandidateRefresh(ctx context.Context, task *asynq.Task) error
	// ProcessTaskPlanDigest precomputes batch insertion costs per crew.
	ProcessTaskPlanDigest(ctx context.Context, task *asynq.Task) error
}

type RedisTaskProcessor struct {
	server *asynq.Server
	config util.Config
	store  schedule.Store
	engine *planning.Engine
}

func NewRedisTaskProcessor(
	redisOpt asynq.RedisClientOpt,
	config util.Config,
	store schedule.Store,
	engine *planning.Engine,
) TaskProcessor {
	logger := NewLogger()
	redis.SetLogger(logger)

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 10,
				QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).
					Bytes("payload", task.Payload()).Msg("process task failed")
			}),
			Logger:          logger,
			ShutdownTimeout: 10 * time.Second,
		},
	)

	return &RedisTaskProcessor{
		server: server,
		config: config,
		store:  store,
		engine: engine,
	}
}

// NewTestTaskProcessor creates a processor without a redis connection.
func NewTestTaskProcessor(
	config util.Config,
	store schedule.Store,
	engine *planning.Engine,
) *RedisTaskProcessor {
	return &RedisTaskProcessor{
		config: config,
		store:  store,
		engine: engine,
	}
}

func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskCandidateRefresh, processor.ProcessTaskCandidateRefresh)
	mux.HandleFunc(TaskPlanDigest, processor.ProcessTaskPlanDigest)

	return processor.server.Start(mux)
}

func (processor *RedisTaskProcessor) Shutdown() {
	processor.server.Shutdown()
}
