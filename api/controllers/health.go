package controllers

import (
	"context"
	"net/http"

	"github.com/EstoreFactory109/SellerQI-sub007/api/responses"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/config"
	pkgerrors "github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
)

// Pinger checks one downstream dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SellerQI-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready only when every wired dependency answers a ping.
// Nil pingers are skipped so each binary probes only what it uses.
func HealthReady(cfg *config.Config, logg *logger.Logger, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SellerQI-Env", cfg.App.Env)

		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				ctx := logg.WithField(r.Context(), "dependency", name)
				responses.WriteError(ctx, logg, w,
					pkgerrors.Wrap(pkgerrors.CodeDependency, err, "dependency not ready"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
