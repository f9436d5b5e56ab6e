package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/userbase-hq/userbase/internal/app"
	"github.com/userbase-hq/userbase/internal/auth"
	jobmetrics "github.com/userbase-hq/userbase/internal/jobs"
	"github.com/userbase-hq/userbase/internal/observability"
	"github.com/userbase-hq/userbase/internal/platform/cache"
	"github.com/userbase-hq/userbase/internal/platform/db"
	"github.com/userbase-hq/userbase/internal/seed"
	"github.com/userbase-hq/userbase/internal/users"
	"github.com/userbase-hq/userbase/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	metrics := observability.NewMetrics()
	jm := jobmetrics.NewMetrics(metrics.Registerer())

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, issuer)
	authHandler := auth.NewHandler(logger, authService, issuer)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	// Redis backs the job queue only; the service stays up without it, the
	// population run just falls back to an in-process goroutine.
	var (
		jobsClient *jobs.Client
		jobHandler *jobs.Handler
	)
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	if redisClient, err := cache.New(ctx, cfg.RedisAddr); err != nil {
		logger.Warn("redis unavailable, job queue disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		client, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Warn("init jobs client", slog.Any("error", err))
		} else {
			jobsClient = client
			defer func() {
				if err := jobsClient.Close(); err != nil {
					logger.Warn("jobs client close", slog.Any("error", err))
				}
			}()
		}
		jobHandler = jobs.NewHandler(asynq.NewInspector(redisOpts), logger)
	}

	pipeline := seed.New(usersRepo, logger, jm, seed.Config{
		Total:     cfg.SeedTotal,
		BatchSize: cfg.SeedBatchSize,
		Throttle:  cfg.SeedThrottle,
	})
	// The test record is created before the server accepts traffic; the bulk
	// population never blocks startup.
	seeded, err := pipeline.Bootstrap(ctx)
	if err != nil {
		logger.Error("seed bootstrap failed", slog.Any("error", err))
	}
	if seeded {
		if cfg.SeedEnqueue && jobsClient != nil {
			if _, err := jobsClient.EnqueueSeedPopulate(ctx, jobs.SeedPopulatePayload{}); err != nil {
				logger.Error("enqueue population task", slog.Any("error", err))
				pipeline.StartBackground(ctx)
			} else {
				logger.Info("population task enqueued")
			}
		} else {
			pipeline.StartBackground(ctx)
		}
	}

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		AuthHandler:  authHandler,
		UsersHandler: usersHandler,
		JobHandler:   jobHandler,
		TokenIssuer:  issuer,
		Metrics:      metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
