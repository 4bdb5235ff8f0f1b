package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/quantabook/ledgercore/internal/core/quantize"
	"github.com/quantabook/ledgercore/internal/core/services"
	"github.com/quantabook/ledgercore/internal/jobs"
	"github.com/quantabook/ledgercore/internal/platform/config"
	"github.com/quantabook/ledgercore/internal/platform/logging"
	"github.com/quantabook/ledgercore/internal/repositories/database/pgsql"
	"github.com/quantabook/ledgercore/pkg/database"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.IsProduction)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to reach redis", slog.String("addr", cfg.RedisAddr), slog.String("error", err.Error()))
		os.Exit(1)
	}
	_ = redisClient.Close()

	repos := pgsql.NewRepositoryProvider(dbPool)
	container := services.NewServiceContainer(repos, quantize.NewPolicy(int32(cfg.RatePlaces)))

	retentionTask, err := jobs.NewFxAuditRetentionTask(jobs.FxAuditRetentionPayload{
		RetentionDays: cfg.FxRetentionDays,
		BatchSize:     cfg.FxArchiveBatchSize,
	})
	if err != nil {
		logger.Error("Failed to build retention task", slog.String("error", err.Error()))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskFxAuditRetention, Handler: jobs.NewFxAuditRetentionHandler(container.FxAudit)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.FxRetentionCron, Task: retentionTask},
		},
	})
	if err != nil {
		logger.Error("Failed to build worker", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Worker starting",
		slog.String("cron", cfg.FxRetentionCron),
		slog.Int("retention_days", cfg.FxRetentionDays),
	)
	if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Worker stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
