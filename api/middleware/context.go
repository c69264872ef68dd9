package middleware

import (
	"context"

	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

type contextKey string

const ctxSellerKey contextKey = "seller_key"

// SellerKeyFromContext returns the seller key injected by SellerContext,
// or a zero key when none is present.
func SellerKeyFromContext(ctx context.Context) types.SellerKey {
	if ctx == nil {
		return types.SellerKey{}
	}
	if v, ok := ctx.Value(ctxSellerKey).(types.SellerKey); ok {
		return v
	}
	return types.SellerKey{}
}

// WithSellerKey injects the seller key into the context for downstream handlers.
func WithSellerKey(ctx context.Context, key types.SellerKey) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxSellerKey, key)
}
