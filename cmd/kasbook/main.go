package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/kasbook/kasbook/internal/app"
	"github.com/kasbook/kasbook/internal/auth"
	"github.com/kasbook/kasbook/internal/catalog"
	"github.com/kasbook/kasbook/internal/expenses"
	"github.com/kasbook/kasbook/internal/finance"
	financehttp "github.com/kasbook/kasbook/internal/finance/http"
	"github.com/kasbook/kasbook/internal/hr"
	"github.com/kasbook/kasbook/internal/observability"
	"github.com/kasbook/kasbook/internal/purchases"
	"github.com/kasbook/kasbook/internal/sales"
	"github.com/kasbook/kasbook/internal/shared"
	"github.com/kasbook/kasbook/jobs"
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

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "kasbook_session", cfg.SessionTTL, cfg.IsProduction())
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	metrics := observability.NewMetrics()

	reportCache := finance.NewCache(redisClient, cfg.ReportCacheTTL)
	if err := reportCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager)

	catalogRepo := catalog.NewRepository(dbpool)
	catalogService := catalog.NewService(catalogRepo)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	salesRepo := sales.NewRepository(dbpool)
	salesService := sales.NewService(logger, salesRepo, catalogRepo, reportCache)
	salesHandler := sales.NewHandler(logger, salesService, idempotencyStore)

	expensesRepo := expenses.NewRepository(dbpool)
	expensesService := expenses.NewService(logger, expensesRepo, reportCache)
	expensesHandler := expenses.NewHandler(logger, expensesService)

	purchasesRepo := purchases.NewRepository(dbpool)
	purchasesService := purchases.NewService(logger, purchasesRepo, reportCache)
	purchasesHandler := purchases.NewHandler(logger, purchasesService, idempotencyStore)

	hrRepo := hr.NewRepository(dbpool)
	hrService := hr.NewService(hrRepo)
	hrHandler := hr.NewHandler(logger, hrService)

	financeService := finance.NewService(finance.ServiceParams{
		Logger:          logger,
		Sales:           salesRepo,
		Expenses:        expensesRepo,
		Purchases:       purchasesRepo,
		HR:              hrRepo,
		Catalog:         catalogRepo,
		Cache:           reportCache,
		Audit:           shared.NewAuditLogger(dbpool),
		LeaveBonus:      cfg.LeaveBonus,
		PayrollCategory: cfg.PayrollCategory,
		OnCOGSMiss:      metrics.CountCOGSMiss,
	})
	financeHandler := financehttp.NewHandler(logger, financeService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		CatalogHandler:   catalogHandler,
		SalesHandler:     salesHandler,
		ExpensesHandler:  expensesHandler,
		PurchasesHandler: purchasesHandler,
		HRHandler:        hrHandler,
		FinanceHandler:   financeHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
