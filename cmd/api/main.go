package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/EstoreFactory109/SellerQI-sub007/api/controllers"
	"github.com/EstoreFactory109/SellerQI-sub007/api/routes"
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
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/pubsub"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	var notifier dashboard.TaskNotifier = tasks.NoopNotifier{}
	pingers := map[string]controllers.Pinger{
		"db":    dbClient,
		"redis": redisClient,
	}
	if cfg.GCP.ProjectID != "" {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		notifier = tasks.NewPublisher(pubsubClient, logg)
		pingers["pubsub"] = pubsubClient
	}

	calcMetrics := metrics.NewCalculationMetrics(prometheus.DefaultRegisterer)
	collector := snapshot.NewRedisCollector(redisClient, logg)
	analyser := dashboard.NewAnalyser(logg, calcMetrics, notifier)
	calculator := issues.NewCalculator(collector, analyser, redisClient, cfg.Calculation.InFlightTTL, logg, calcMetrics)

	issuesRepo := issues.NewRepository(dbClient.DB())
	summarySvc := issues.NewSummaryService(calculator, issuesRepo, logg)
	dataSvc := issues.NewDataService(calculator, issuesRepo, logg)
	productsSvc := issues.NewProductIssuesService(calculator, issuesRepo, logg)
	paginationSvc := issues.NewPaginationService(issuesRepo, dataSvc, logg)

	summaryMetrics := dashboardsummary.NewService(dashboardsummary.NewRepository(dbClient.DB()), issuesRepo, logg)
	recalculator := issues.NewRecalculator(calculator, summarySvc, dataSvc, productsSvc, summaryMetrics, logg)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Summary:     summarySvc,
			Issues:      paginationSvc,
			Products:    issuesRepo,
			Dashboard:   summaryMetrics,
			Recalc:      recalculator,
			Snapshots:   collector,
			RateLimiter: redisClient,
			Pingers:     pingers,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
