package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Oslicek/Sazinka-sub005/api"
	"github.com/Oslicek/Sazinka-sub005/matrix"
	"github.com/Oslicek/Sazinka-sub005/planning"
	"github.com/Oslicek/Sazinka-sub005/refresher"
	"github.com/Oslicek/Sazinka-sub005/schedule"
	"github.com/Oslicek/Sazinka-sub005/util"
	"github.com/Oslicek/Sazinka-sub005/worker"
)

var interruptSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGINT,
}

func main() {
	config, err := util.LoadConfig(".")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	if config.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), interruptSignals...)
	defer stop()

	store := schedule.NewMemStore()
	provider := buildMatrixProvider(config)

	engineCfg, err := api.InsertionConfigFrom(config)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid insertion config")
	}
	engine := planning.NewEngine(provider, engineCfg)

	waitGroup, ctx := errgroup.WithContext(ctx)

	var taskDistributor worker.TaskDistributor
	if config.RedisAddress != "" {
		redisOpt := asynq.RedisClientOpt{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
		}

		taskDistributor = worker.NewRedisTaskDistributor(redisOpt)
		runTaskProcessor(ctx, waitGroup, config, redisOpt, store, engine)
		runRefreshScheduler(ctx, waitGroup, taskDistributor)
	} else {
		log.Warn().Msg("REDIS_ADDRESS not configured, background refresh disabled")
	}

	runGinServer(ctx, waitGroup, config, store, provider, taskDistributor)

	err = waitGroup.Wait()
	if err != nil {
		log.Fatal().Err(err).Msg("error from wait group")
	}
}

// buildMatrixProvider picks the travel estimate source: the configured
// routing service when present, haversine estimates otherwise. With
// redis available the provider is wrapped in a read-through cache.
func buildMatrixProvider(config util.Config) planning.MatrixProvider {
	var provider planning.MatrixProvider
	if config.MatrixBaseURL != "" {
		provider = matrix.NewClient(config.MatrixBaseURL, config.MatrixAPIKey, config.MatrixHTTPTimeout)
		log.Info().Str("base_url", config.MatrixBaseURL).Msg("using routing matrix service")
	} else {
		provider = matrix.NewHaversineProvider(0)
		log.Warn().Msg("MATRIX_BASE_URL not configured, falling back to haversine estimates")
	}

	if config.RedisAddress != "" {
		cached, err := matrix.NewCachedProvider(provider, config.RedisAddress, config.RedisPassword, config.MatrixCacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("matrix cache unavailable, continuing without it")
			return provider
		}
		log.Info().Dur("ttl", config.MatrixCacheTTL).Msg("matrix cache enabled")
		return cached
	}
	return provider
}

func runTaskProcessor(
	ctx context.Context,
	waitGroup *errgroup.Group,
	config util.Config,
	redisOpt asynq.RedisClientOpt,
	store schedule.Store,
	engine *planning.Engine,
) {
	taskProcessor := worker.NewRedisTaskProcessor(redisOpt, config, store, engine)
	log.Info().Msg("start task processor")

	waitGroup.Go(func() error {
		return taskProcessor.Start()
	})

	waitGroup.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("graceful shutdown task processor")
		taskProcessor.Shutdown()
		log.Info().Msg("task processor is stopped")
		return nil
	})
}

// runRefreshScheduler starts the cron scheduler that enqueues the
// nightly candidate refresh and the morning plan digest.
func runRefreshScheduler(
	ctx context.Context,
	waitGroup *errgroup.Group,
	taskDistributor worker.TaskDistributor,
) {
	scheduler := refresher.NewScheduler(taskDistributor)

	if err := scheduler.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start refresh scheduler")
		return
	}

	waitGroup.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("graceful shutdown refresh scheduler")
		scheduler.Stop()
		return nil
	})
}

// runGinServer starts the Gin HTTP server with graceful shutdown.
func runGinServer(
	ctx context.Context,
	waitGroup *errgroup.Group,
	config util.Config,
	store schedule.Store,
	provider planning.MatrixProvider,
	taskDistributor worker.TaskDistributor,
) {
	server, err := api.NewServer(config, store, provider, taskDistributor)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create server")
	}

	httpServer := &http.Server{
		Addr:    config.HTTPServerAddress,
		Handler: server.GetRouter(),
		// Avoid slowloris and stuck connections under pressure.
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	waitGroup.Go(func() error {
		log.Info().Msgf("start HTTP server at %s", config.HTTPServerAddress)
		err = httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed to serve")
			return err
		}
		return nil
	})

	waitGroup.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("graceful shutdown HTTP server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server forced to shutdown")
			return err
		}

		log.Info().Msg("HTTP server is stopped")
		return nil
	})
}
