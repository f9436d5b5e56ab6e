package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	jobmetrics "github.com/userbase-hq/userbase/internal/jobs"
	"github.com/userbase-hq/userbase/internal/users"
)

// Well-known test credentials, created synchronously on first boot so the
// service always has one documented login pair.
const (
	TestUserName  = "Test User"
	TestUserEmail = "test@example.com"
	TestUserPhone = "+380123456789"
)

var testUserBirthDate = time.Date(1990, time.January, 15, 0, 0, 0, 0, time.UTC)

// Store captures the persistence operations the pipeline needs.
type Store interface {
	Count(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, rec users.NewUser) (users.User, error)
	BulkInsert(ctx context.Context, recs []users.NewUser) (inserted, skipped int, err error)
}

// Config bounds the synthetic population run.
type Config struct {
	Total     int
	BatchSize int
	Throttle  time.Duration
}

// Pipeline seeds an empty registry. Bootstrap runs synchronously before the
// service is considered ready; Populate is the long-running bulk phase and is
// meant to run in the background.
type Pipeline struct {
	store   Store
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	cfg     Config
	gen     *Generator
	clock   func() time.Time
}

// New wires a Pipeline. Zero config fields fall back to the defaults the
// service ships with (2M records, batches of 5000, 10ms throttle).
func New(store Store, logger *slog.Logger, metrics *jobmetrics.Metrics, cfg Config) *Pipeline {
	if cfg.Total <= 0 {
		cfg.Total = 2_000_000
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 5_000
	}
	if cfg.Throttle <= 0 {
		cfg.Throttle = 10 * time.Millisecond
	}
	return &Pipeline{
		store:   store,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
		gen:     NewGenerator(time.Now().UnixNano()),
		clock:   time.Now,
	}
}

// Bootstrap checks whether the store already holds records and, when empty,
// creates the well-known test record. It reports whether the bulk population
// phase still needs to run. Never reseeds a populated store.
func (p *Pipeline) Bootstrap(ctx context.Context) (bool, error) {
	count, err := p.store.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("seed: count records: %w", err)
	}
	if count > 0 {
		p.logger.Info("store already populated, skipping seed", slog.Int64("count", count))
		return false, nil
	}

	if _, err := p.store.CreateUser(ctx, users.NewUser{
		Name:      TestUserName,
		Email:     TestUserEmail,
		Phone:     TestUserPhone,
		BirthDate: testUserBirthDate,
	}); err != nil {
		return false, fmt.Errorf("seed: create test record: %w", err)
	}
	p.logger.Info("test record created",
		slog.String("email", TestUserEmail),
		slog.String("phone", TestUserPhone))
	return true, nil
}

// Populate generates and bulk-inserts the synthetic population in fixed-size
// batches. Per-record conflicts are counted and skipped; only store-level
// failures abort the run. A short pause between batches keeps the write path
// from starving concurrent requests.
func (p *Pipeline) Populate(ctx context.Context) error {
	start := p.clock()
	batches := (p.cfg.Total + p.cfg.BatchSize - 1) / p.cfg.BatchSize
	inserted, skipped := 0, 0

	p.logger.Info("starting background population",
		slog.Int("total", p.cfg.Total),
		slog.Int("batch_size", p.cfg.BatchSize))

	for batch := 0; batch < batches; batch++ {
		size := p.cfg.BatchSize
		if remaining := p.cfg.Total - batch*p.cfg.BatchSize; remaining < size {
			size = remaining
		}
		recs := p.gen.Batch(size, p.clock().UTC())

		batchInserted, batchSkipped, err := p.store.BulkInsert(ctx, recs)
		inserted += batchInserted
		skipped += batchSkipped
		if err != nil {
			return fmt.Errorf("seed: batch %d/%d: %w", batch+1, batches, err)
		}
		if p.metrics != nil {
			p.metrics.AddInserted(float64(batchInserted))
		}

		percent := float64(inserted) / float64(p.cfg.Total) * 100
		p.logger.Info("inserted batch",
			slog.Int("batch", batch+1),
			slog.Int("batches", batches),
			slog.Int("inserted", inserted),
			slog.Int("skipped", skipped),
			slog.String("progress", fmt.Sprintf("%.2f%%", percent)),
			slog.Duration("elapsed", p.clock().Sub(start)))

		if err := sleepCtx(ctx, p.cfg.Throttle); err != nil {
			return err
		}
	}

	p.logger.Info("population complete",
		slog.Int("inserted", inserted),
		slog.Int("skipped", skipped),
		slog.Duration("elapsed", p.clock().Sub(start)))
	return nil
}

// StartBackground launches Populate as a fire-and-forget task with its own
// error boundary. Failures are logged and counted; they never reach the host.
func (p *Pipeline) StartBackground(ctx context.Context) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("population panicked", slog.Any("panic", r))
			}
		}()
		tracker := p.metrics.Track(JobName)
		err := p.Populate(ctx)
		_ = tracker.End(err)
		if err != nil {
			p.logger.Error("background population failed", slog.Any("error", err))
		}
	}()
}

// JobName identifies the population run in logs and metrics.
const JobName = "seed:populate"

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
