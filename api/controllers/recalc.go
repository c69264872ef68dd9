package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/EstoreFactory109/SellerQI-sub007/api/middleware"
	"github.com/EstoreFactory109/SellerQI-sub007/api/responses"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/issues"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/models"
	pkgerrors "github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

// Recalculator runs one full recalculation for a seller marketplace.
type Recalculator interface {
	Recalculate(ctx context.Context, key types.SellerKey, source string) (*dashboard.Data, error)
}

type recalcResponse struct {
	Status        string    `json:"status"`
	TotalIssues   int       `json:"totalIssues"`
	AccountIssues int       `json:"accountIssues"`
	ComputedAt    time.Time `json:"computedAt"`
}

// TriggerRecalc recomputes the caches for one seller marketplace on demand.
// A computation already running elsewhere maps to a conflict.
func TriggerRecalc(svc Recalculator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := middleware.SellerKeyFromContext(r.Context())

		data, err := svc.Recalculate(r.Context(), key, models.CalculationSourceAPI)
		if err != nil {
			if pkgerrors.Is(err, issues.ErrCalculationInFlight) {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeConflict, "a recalculation is already running for this seller marketplace"))
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, recalcResponse{
			Status:        "recalculated",
			TotalIssues:   data.TotalIssueCount(),
			AccountIssues: data.AccountErrorCount(),
			ComputedAt:    time.Now().UTC(),
		})
	}
}
