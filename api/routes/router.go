package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EstoreFactory109/SellerQI-sub007/api/controllers"
	"github.com/EstoreFactory109/SellerQI-sub007/api/middleware"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/config"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
)

// Dependencies carries everything the API router wires into its handlers.
type Dependencies struct {
	Summary     controllers.SummaryReader
	Issues      controllers.IssuesLister
	Products    controllers.ProductLister
	Dashboard   controllers.DashboardLoader
	Recalc      controllers.Recalculator
	Snapshots   controllers.SnapshotStager
	RateLimiter middleware.RateLimiterStore
	Pingers     map[string]controllers.Pinger
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	r.Route("/api/v1/sellers/{sellerId}", func(r chi.Router) {
		r.Use(middleware.SellerContext(logg))

		r.Route("/issues", func(r chi.Router) {
			r.Get("/summary", controllers.IssuesSummary(deps.Summary, logg))
			r.Get("/", controllers.IssuesByCategory(deps.Issues, logg))
			r.Get("/products", controllers.IssuesByProduct(deps.Products, logg))
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/phase1", controllers.DashboardPhase1(deps.Dashboard, logg))
			r.Get("/phase2", controllers.DashboardPhase2(deps.Dashboard, logg))
			r.Get("/phase3", controllers.DashboardPhase3(deps.Dashboard, logg))
		})

		r.With(middleware.RecalcRateLimit(
			deps.RateLimiter,
			cfg.RateLimit.RecalcLimit,
			cfg.RateLimit.RecalcWindow,
			logg,
		)).Post("/recalculate", controllers.TriggerRecalc(deps.Recalc, logg))

		r.Post("/snapshot", controllers.StageSnapshot(deps.Snapshots, cfg.Calculation.SnapshotTTL, logg))
	})

	return r
}
