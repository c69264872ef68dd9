package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/EstoreFactory109/SellerQI-sub007/api/responses"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

// SellerContext resolves the seller marketplace from the {sellerId} route
// param plus the country and region query params and injects it into the
// request context. Requests without a valid triple are rejected.
func SellerContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, err := types.NewSellerKey(
				chi.URLParam(r, "sellerId"),
				r.URL.Query().Get("country"),
				r.URL.Query().Get("region"),
			)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithSellerKey(r.Context(), key)
			if logg != nil {
				ctx = logg.WithSellerID(ctx, key.SellerID.String())
				ctx = logg.WithMarketplace(ctx, key.Country, key.Region)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
