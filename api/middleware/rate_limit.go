package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/EstoreFactory109/SellerQI-sub007/api/responses"
	pkgerrors "github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
)

// RateLimiterStore is the redis surface the limiter needs.
type RateLimiterStore interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RecalcRateLimit throttles manual recalculation triggers per seller
// marketplace. A broken limiter store fails open.
func RecalcRateLimit(store RateLimiterStore, limit int64, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if store == nil || limit <= 0 || window <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			key := SellerKeyFromContext(r.Context())
			scope := fmt.Sprintf("recalc:%s:%s:%s", key.SellerID, key.Country, key.Region)
			allowed, count, err := store.FixedWindowAllow(r.Context(), scope, limit, window)
			if err != nil {
				if logg != nil {
					logg.Error(r.Context(), "rate limit check failed", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				if logg != nil {
					ctx := logg.WithFields(r.Context(), map[string]any{"count": count, "limit": limit})
					logg.Warn(ctx, "recalculation trigger throttled")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many recalculation requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
