package cron

import (
	"context"
	"fmt"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/issues"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/models"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

const defaultStaleBatchSize = 50

// staleKeyLister finds seller keys whose caches are flagged stale.
type staleKeyLister interface {
	ListStaleKeys(ctx context.Context, limit int) ([]types.SellerKey, error)
}

// recalculator recomputes one seller marketplace end to end.
type recalculator interface {
	Recalculate(ctx context.Context, key types.SellerKey, source string) (*dashboard.Data, error)
}

// StaleRecalcJobParams configure the stale cache recalculation job.
type StaleRecalcJobParams struct {
	Logger       *logger.Logger
	Lister       staleKeyLister
	Recalculator recalculator
	BatchSize    int
}

// NewStaleRecalcJob builds the job that sweeps stale issue caches and
// recomputes them, oldest first.
func NewStaleRecalcJob(params StaleRecalcJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Lister == nil {
		return nil, fmt.Errorf("stale key lister required")
	}
	if params.Recalculator == nil {
		return nil, fmt.Errorf("recalculator required")
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultStaleBatchSize
	}
	return &staleRecalcJob{
		logg:   params.Logger,
		lister: params.Lister,
		recalc: params.Recalculator,
		batch:  batch,
	}, nil
}

type staleRecalcJob struct {
	logg   *logger.Logger
	lister staleKeyLister
	recalc recalculator
	batch  int
}

func (j *staleRecalcJob) Name() string { return "stale-issue-recalc" }

// Run recalculates up to one batch of stale seller marketplaces. A key that
// is already being recomputed elsewhere is skipped, not retried; a failed
// key is logged and the sweep continues.
func (j *staleRecalcJob) Run(ctx context.Context) error {
	keys, err := j.lister.ListStaleKeys(ctx, j.batch)
	if err != nil {
		return fmt.Errorf("list stale keys: %w", err)
	}
	if len(keys) == 0 {
		j.logg.Info(ctx, "no stale issue caches")
		return nil
	}

	failed := 0
	for _, key := range keys {
		keyCtx := j.logg.WithSellerID(ctx, key.SellerID.String())
		keyCtx = j.logg.WithMarketplace(keyCtx, key.Country, key.Region)
		if _, err := j.recalc.Recalculate(keyCtx, key, models.CalculationSourceCron); err != nil {
			if errors.Is(err, issues.ErrCalculationInFlight) {
				j.logg.Info(keyCtx, "recalculation already in flight; skipping")
				continue
			}
			failed++
			j.logg.Error(keyCtx, "stale cache recalculation failed", err)
			continue
		}
		j.logg.Info(keyCtx, "stale cache recalculated")
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d stale keys failed", failed, len(keys))
	}
	return nil
}
