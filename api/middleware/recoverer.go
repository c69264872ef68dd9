package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/EstoreFactory109/SellerQI-sub007/api/responses"
	pkgerrors "github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
)

// Recoverer converts handler panics into 500 responses instead of dropped
// connections.
func Recoverer(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					err := fmt.Errorf("panic: %v", v)
					ctx := r.Context()
					if logg != nil {
						ctx = logg.WithFields(ctx, map[string]any{
							"method": r.Method,
							"path":   r.URL.Path,
							"stack":  string(debug.Stack()),
						})
						logg.Error(ctx, "panic.recovered", err)
					}
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "panic"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
