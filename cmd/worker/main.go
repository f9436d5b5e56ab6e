package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/userbase-hq/userbase/internal/app"
	jobmetrics "github.com/userbase-hq/userbase/internal/jobs"
	"github.com/userbase-hq/userbase/internal/platform/db"
	"github.com/userbase-hq/userbase/internal/seed"
	"github.com/userbase-hq/userbase/internal/users"
	"github.com/userbase-hq/userbase/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		logger.Error("apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	usersRepo := users.NewRepository(pool)
	metrics := jobmetrics.NewMetrics(nil)

	seedJob := jobs.NewSeedPopulateJob(usersRepo, logger, metrics, seed.Config{
		Total:     cfg.SeedTotal,
		BatchSize: cfg.SeedBatchSize,
		Throttle:  cfg.SeedThrottle,
	})

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskSeedPopulate, Handler: seedJob.Handle},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
