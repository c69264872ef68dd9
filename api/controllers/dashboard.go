package controllers

import (
	"context"
	"net/http"

	"github.com/EstoreFactory109/SellerQI-sub007/api/middleware"
	"github.com/EstoreFactory109/SellerQI-sub007/api/responses"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboardsummary"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

// DashboardLoader serves the three progressive dashboard projections.
type DashboardLoader interface {
	Phase1(ctx context.Context, key types.SellerKey) (*dashboardsummary.Phase1Result, error)
	Phase2(ctx context.Context, key types.SellerKey) (*dashboardsummary.Phase2Result, error)
	Phase3(ctx context.Context, key types.SellerKey) (*dashboardsummary.Phase3Result, error)
}

// DashboardPhase1 returns the first-paint issue and product counts.
func DashboardPhase1(svc DashboardLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := middleware.SellerKeyFromContext(r.Context())
		result, err := svc.Phase1(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DashboardPhase2 returns account health plus financial and PPC positions.
func DashboardPhase2(svc DashboardLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := middleware.SellerKeyFromContext(r.Context())
		result, err := svc.Phase2(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DashboardPhase3 returns the chart series and the full product list.
func DashboardPhase3(svc DashboardLoader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := middleware.SellerKeyFromContext(r.Context())
		result, err := svc.Phase3(r.Context(), key)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
