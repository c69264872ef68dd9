package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/cron"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboardsummary"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/issues"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/tasks"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/config"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/metrics"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/migrate"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/redis"
)

const lockKeyFormat = "sq:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	calcMetrics := metrics.NewCalculationMetrics(prometheus.DefaultRegisterer)
	collector := snapshot.NewRedisCollector(redisClient, logg)
	analyser := dashboard.NewAnalyser(logg, calcMetrics, tasks.NoopNotifier{})
	calculator := issues.NewCalculator(collector, analyser, redisClient, cfg.Calculation.InFlightTTL, logg, calcMetrics)

	issuesRepo := issues.NewRepository(dbClient.DB())
	summarySvc := issues.NewSummaryService(calculator, issuesRepo, logg)
	dataSvc := issues.NewDataService(calculator, issuesRepo, logg)
	productsSvc := issues.NewProductIssuesService(calculator, issuesRepo, logg)
	summaryMetrics := dashboardsummary.NewService(dashboardsummary.NewRepository(dbClient.DB()), issuesRepo, logg)
	recalculator := issues.NewRecalculator(calculator, summarySvc, dataSvc, productsSvc, summaryMetrics, logg)

	staleJob, err := cron.NewStaleRecalcJob(cron.StaleRecalcJobParams{
		Logger:       logg,
		Lister:       issuesRepo,
		Recalculator: recalculator,
		BatchSize:    cfg.Calculation.StaleRecalcBatchSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stale recalc job", err)
		os.Exit(1)
	}

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(staleJob),
		Lock:     lock,
		Metrics:  cronMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
