package issues

import (
	"context"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

// SummaryMetricsWriter persists the financial, advertising and account
// health summary rows from a computed payload.
type SummaryMetricsWriter interface {
	Store(ctx context.Context, key types.SellerKey, data *dashboard.Data) error
}

// Recalculator runs one full recalculation for a seller marketplace and
// refreshes every cache from the single computed payload, avoiding the
// duplicate aggregation the individual CalculateAndStore paths would cost.
type Recalculator struct {
	calc     *Calculator
	summary  *SummaryService
	data     *DataService
	products *ProductIssuesService
	metrics  SummaryMetricsWriter
	log      *logger.Logger
}

// NewRecalculator wires the full refresh path. metrics may be nil.
func NewRecalculator(
	calc *Calculator,
	summary *SummaryService,
	data *DataService,
	products *ProductIssuesService,
	metrics SummaryMetricsWriter,
	log *logger.Logger,
) *Recalculator {
	return &Recalculator{
		calc:     calc,
		summary:  summary,
		data:     data,
		products: products,
		metrics:  metrics,
		log:      log,
	}
}

// Recalculate collects and aggregates once, then stores every cache. The
// payload cache is authoritative: its failure fails the recalculation, while
// secondary cache failures are logged and absorbed.
func (r *Recalculator) Recalculate(ctx context.Context, key types.SellerKey, source string) (*dashboard.Data, error) {
	data, err := r.calc.Run(ctx, key)
	if err != nil {
		return nil, err
	}

	if res := r.data.StoreFromDashboardData(ctx, key, data, source); !res.Success {
		return nil, res.Err
	}
	if res := r.summary.StoreFromDashboardData(ctx, key, data, source); !res.Success {
		r.log.Error(ctx, "summary cache refresh failed", res.Err)
	}
	if res := r.products.StoreFromDashboardData(ctx, key, data, source); !res.Success {
		r.log.Error(ctx, "product issue counts refresh failed", res.Err)
	}
	if r.metrics != nil {
		if err := r.metrics.Store(ctx, key, data); err != nil {
			r.log.Error(ctx, "summary metrics refresh failed", err)
		}
	}
	return data, nil
}
