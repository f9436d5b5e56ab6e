package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/userbase-hq/userbase/internal/jobs"
	"github.com/userbase-hq/userbase/internal/seed"
)

// SeedPopulateJob runs the synthetic population pipeline from the worker
// process. The API server enqueues it after bootstrapping an empty store.
type SeedPopulateJob struct {
	Store   seed.Store
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Config  seed.Config
}

// NewSeedPopulateJob wires dependencies for the population handler.
func NewSeedPopulateJob(store seed.Store, logger *slog.Logger, metrics *jobmetrics.Metrics, cfg seed.Config) *SeedPopulateJob {
	return &SeedPopulateJob{Store: store, Logger: logger, Metrics: metrics, Config: cfg}
}

// Handle processes seed population tasks. A store that already holds more
// than the bootstrap record is left untouched, so a redelivered task cannot
// double-populate.
func (j *SeedPopulateJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("seed populate: handler not configured")
	}
	var payload SeedPopulatePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	cfg := j.Config
	if payload.Total > 0 {
		cfg.Total = payload.Total
	}
	if payload.BatchSize > 0 {
		cfg.BatchSize = payload.BatchSize
	}

	count, err := j.Store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 1 {
		j.logger().Info("store already populated, skipping population task", slog.Int64("count", count))
		return nil
	}

	tracker := j.Metrics.Track(TaskSeedPopulate)
	pipeline := seed.New(j.Store, j.logger(), j.Metrics, cfg)
	return tracker.End(pipeline.Populate(ctx))
}

func (j *SeedPopulateJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
