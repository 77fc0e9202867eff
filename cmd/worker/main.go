package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kasbook/kasbook/internal/app"
	"github.com/kasbook/kasbook/internal/catalog"
	"github.com/kasbook/kasbook/internal/expenses"
	"github.com/kasbook/kasbook/internal/finance"
	"github.com/kasbook/kasbook/internal/hr"
	jobmetrics "github.com/kasbook/kasbook/internal/jobs"
	"github.com/kasbook/kasbook/internal/purchases"
	"github.com/kasbook/kasbook/internal/sales"
	"github.com/kasbook/kasbook/internal/shared"
	"github.com/kasbook/kasbook/jobs"
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

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	reportCache := finance.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	financeService := finance.NewService(finance.ServiceParams{
		Logger:          logger,
		Sales:           sales.NewRepository(pool),
		Expenses:        expenses.NewRepository(pool),
		Purchases:       purchases.NewRepository(pool),
		HR:              hr.NewRepository(pool),
		Catalog:         catalog.NewRepository(pool),
		Cache:           reportCache,
		LeaveBonus:      cfg.LeaveBonus,
		PayrollCategory: cfg.PayrollCategory,
	})

	jobMetrics := jobmetrics.NewMetrics(nil)
	idempotencyStore := shared.NewIdempotencyStore(pool)

	warmupTask, err := jobs.NewReportsWarmupTask(jobs.ReportsWarmupPayload{Dashboard: true, Monthly: true, Cashflow: true})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskReportsWarmup, Handler: jobs.NewReportsWarmupHandler(financeService, logger, jobMetrics)},
			{Type: jobs.TaskLowStockScan, Handler: jobs.NewLowStockScanHandler(catalogService, logger, jobMetrics)},
			{Type: jobs.TaskIdempotencyCleanup, Handler: jobs.NewIdempotencyCleanupHandler(idempotencyStore, logger, jobMetrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "15 1 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 7 * * *", Task: jobs.NewLowStockScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 2 * * *", Task: jobs.NewIdempotencyCleanupTask(), Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
