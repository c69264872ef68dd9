package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/consumers/recalc"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboardsummary"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/issues"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/tasks"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/config"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/instance"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/metrics"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/migrate"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/outbox/idempotency"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/pubsub"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = "worker"

	logg = logger.New(logger.Options{
		ServiceName: "worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "failed to close database client", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		requireResource(ctx, logg, "migrations", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	subscription := pubsubClient.IntegrationSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "integration subscription", errors.New("subscription not configured"))
	}

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	calcMetrics := metrics.NewCalculationMetrics(prometheus.DefaultRegisterer)
	collector := snapshot.NewRedisCollector(redisClient, logg)
	analyser := dashboard.NewAnalyser(logg, calcMetrics, tasks.NewPublisher(pubsubClient, logg))
	calculator := issues.NewCalculator(collector, analyser, redisClient, cfg.Calculation.InFlightTTL, logg, calcMetrics)

	issuesRepo := issues.NewRepository(dbClient.DB())
	summarySvc := issues.NewSummaryService(calculator, issuesRepo, logg)
	dataSvc := issues.NewDataService(calculator, issuesRepo, logg)
	productsSvc := issues.NewProductIssuesService(calculator, issuesRepo, logg)
	summaryMetrics := dashboardsummary.NewService(dashboardsummary.NewRepository(dbClient.DB()), issuesRepo, logg)
	recalculator := issues.NewRecalculator(calculator, summarySvc, dataSvc, productsSvc, summaryMetrics, logg)

	service, err := recalc.NewService(subscription, issuesRepo, recalculator, manager, logg)
	requireResource(ctx, logg, "recalc worker service", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"instance":    instance.GetID(),
	})
	logg.Info(runCtx, "recalc worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "recalc worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
