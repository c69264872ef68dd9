package issues

import (
	"context"
	"time"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/models"
	dbtypes "github.com/EstoreFactory109/SellerQI-sub007/pkg/db/types"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/metrics"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/redis"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

// ErrCalculationInFlight is returned when another recalculation currently
// holds the per-key in-flight marker.
var ErrCalculationInFlight = errors.New(errors.CodeConflict, "calculation already in flight for this seller marketplace")

// OpResult is the uniform service return shape: either Data or Err is set,
// never both, and Duration always covers the full operation.
type OpResult[T any] struct {
	Success  bool
	Data     T
	Err      error
	Duration time.Duration
}

func success[T any](data T, start time.Time) OpResult[T] {
	return OpResult[T]{Success: true, Data: data, Duration: time.Since(start)}
}

func failure[T any](err error, start time.Time) OpResult[T] {
	return OpResult[T]{Success: false, Err: err, Duration: time.Since(start)}
}

// Calculator owns the collect-and-aggregate path shared by all issue
// services, plus the per-key in-flight guard that keeps concurrent misses
// from recomputing the same seller marketplace.
type Calculator struct {
	collector snapshot.Collector
	analyser  *dashboard.Analyser
	cache     *redis.Client
	ttl       time.Duration
	log       *logger.Logger
	metrics   *metrics.CalculationMetrics
}

// NewCalculator wires the shared calculation path. cache may be nil, which
// disables the in-flight guard.
func NewCalculator(
	collector snapshot.Collector,
	analyser *dashboard.Analyser,
	cache *redis.Client,
	inFlightTTL time.Duration,
	log *logger.Logger,
	calcMetrics *metrics.CalculationMetrics,
) *Calculator {
	return &Calculator{
		collector: collector,
		analyser:  analyser,
		cache:     cache,
		ttl:       inFlightTTL,
		log:       log,
		metrics:   calcMetrics,
	}
}

// Run collects a fresh snapshot and aggregates it. The in-flight marker is
// held for the duration; a concurrent holder short-circuits with
// ErrCalculationInFlight so the caller can fall back to the cached row.
func (c *Calculator) Run(ctx context.Context, key types.SellerKey) (*dashboard.Data, error) {
	release, err := c.acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	defer release()

	snap, err := c.collector.Collect(ctx, key.SellerID.String(), key.Country, key.Region)
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "snapshot collection failed")
	}
	return c.analyser.Analyse(ctx, snap, key.SellerID.String()), nil
}

func (c *Calculator) acquire(ctx context.Context, key types.SellerKey) (func(), error) {
	if c.cache == nil {
		return func() {}, nil
	}
	marker := c.cache.InFlightKey(key.SellerID.String(), key.Country, key.Region)
	ok, err := c.cache.SetNX(ctx, marker, time.Now().UTC().Format(time.RFC3339), c.ttl)
	if err != nil {
		// The guard is advisory; a broken cache must not block recalculation.
		c.log.Error(ctx, "in-flight marker unavailable", err)
		return func() {}, nil
	}
	if !ok {
		return nil, ErrCalculationInFlight
	}
	return func() {
		if err := c.cache.Del(context.WithoutCancel(ctx), marker); err != nil {
			c.log.Error(ctx, "in-flight marker release failed", err)
		}
	}, nil
}

// SummaryService computes and caches the per-category issue counts.
type SummaryService struct {
	calc *Calculator
	repo *Repository
	log  *logger.Logger
}

// NewSummaryService builds the summary cache writer.
func NewSummaryService(calc *Calculator, repo *Repository, log *logger.Logger) *SummaryService {
	return &SummaryService{calc: calc, repo: repo, log: log}
}

// CalculateAndStore runs the full collect-aggregate-extract-upsert path.
func (s *SummaryService) CalculateAndStore(ctx context.Context, key types.SellerKey, source string) OpResult[*models.IssueSummary] {
	start := time.Now()
	data, err := s.calc.Run(ctx, key)
	if err != nil {
		return failure[*models.IssueSummary](err, start)
	}
	return s.store(ctx, key, data, source, start)
}

// StoreFromDashboardData skips collection when the caller already holds a
// computed payload.
func (s *SummaryService) StoreFromDashboardData(ctx context.Context, key types.SellerKey, data *dashboard.Data, source string) OpResult[*models.IssueSummary] {
	start := time.Now()
	if data == nil {
		return failure[*models.IssueSummary](errors.New(errors.CodeValidation, "dashboard data is required"), start)
	}
	return s.store(ctx, key, data, source, start)
}

func (s *SummaryService) store(ctx context.Context, key types.SellerKey, data *dashboard.Data, source string, start time.Time) OpResult[*models.IssueSummary] {
	row := extractSummary(key, data, source, time.Now().UTC())
	if err := s.repo.UpsertSummary(ctx, row); err != nil {
		s.log.Error(ctx, "issue summary upsert failed", err)
		return failure[*models.IssueSummary](errors.Wrap(errors.CodeInternal, err, "issue summary upsert failed"), start)
	}
	return success(row, start)
}

// Get returns the cached summary row, computing it once on a miss. An
// in-flight computation elsewhere is waited out by re-reading.
func (s *SummaryService) Get(ctx context.Context, key types.SellerKey) (*models.IssueSummary, error) {
	row, err := s.repo.FindSummary(ctx, key)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "issue summary read failed")
	}
	if row != nil {
		return row, nil
	}

	res := s.CalculateAndStore(ctx, key, models.CalculationSourceAPI)
	if res.Success {
		return res.Data, nil
	}
	if !errors.Is(res.Err, ErrCalculationInFlight) {
		return nil, res.Err
	}
	row, err = s.repo.FindSummary(ctx, key)
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "issue summary read failed")
	}
	if row == nil {
		return nil, errors.New(errors.CodeNotFound, "no issue summary for this seller marketplace")
	}
	return row, nil
}

// extractSummary reduces the aggregated payload to category counts.
func extractSummary(key types.SellerKey, data *dashboard.Data, source string, now time.Time) *models.IssueSummary {
	row := &models.IssueSummary{
		SellerID:          key.SellerID,
		Country:           key.Country,
		Region:            key.Region,
		AccountIssues:     data.AccountErrorCount(),
		TotalProducts:     len(data.TotalProducts),
		ActiveProducts:    len(data.ActiveProducts),
		LastCalculatedAt:  now,
		CalculationSource: source,
	}
	for _, re := range data.RankingProductWiseErrors {
		row.RankingIssues += re.NumberOfErrors
		if re.CharLim != nil && re.CharLim.Status == snapshot.StatusError {
			row.RankingIssues++
		}
		if re.DuplicateWords != nil && re.DuplicateWords.Status == snapshot.StatusError {
			row.RankingIssues++
		}
	}
	for _, ce := range data.ConversionProductWiseErrors {
		row.ConversionIssues += ce.TotalErrors
	}
	for _, ie := range data.InventoryProductWiseErrors {
		row.InventoryIssues += ie.TotalErrors
	}
	row.ProfitabilityIssues = len(data.ProfitabilityErrors)
	row.SponsoredAdsIssues = len(data.SponsoredAdsErrors)
	for _, pe := range data.ProductWiseError {
		if pe.Errors > 0 {
			row.ProductsWithIssues++
		}
	}
	row.TotalIssues = row.RankingIssues + row.ConversionIssues + row.InventoryIssues +
		row.AccountIssues + row.ProfitabilityIssues + row.SponsoredAdsIssues
	return row
}

// DataService computes and caches the full aggregated payload.
type DataService struct {
	calc *Calculator
	repo *Repository
	log  *logger.Logger
}

// NewDataService builds the payload cache writer.
func NewDataService(calc *Calculator, repo *Repository, log *logger.Logger) *DataService {
	return &DataService{calc: calc, repo: repo, log: log}
}

// CalculateAndStore runs the full collect-aggregate-upsert path.
func (s *DataService) CalculateAndStore(ctx context.Context, key types.SellerKey, source string) OpResult[*models.IssuesData] {
	start := time.Now()
	data, err := s.calc.Run(ctx, key)
	if err != nil {
		return failure[*models.IssuesData](err, start)
	}
	return s.store(ctx, key, data, source, start)
}

// StoreFromDashboardData skips collection when the caller already holds a
// computed payload.
func (s *DataService) StoreFromDashboardData(ctx context.Context, key types.SellerKey, data *dashboard.Data, source string) OpResult[*models.IssuesData] {
	start := time.Now()
	if data == nil {
		return failure[*models.IssuesData](errors.New(errors.CodeValidation, "dashboard data is required"), start)
	}
	return s.store(ctx, key, data, source, start)
}

func (s *DataService) store(ctx context.Context, key types.SellerKey, data *dashboard.Data, source string, start time.Time) OpResult[*models.IssuesData] {
	payload, err := dbtypes.FromValue(data)
	if err != nil {
		return failure[*models.IssuesData](errors.Wrap(errors.CodeInternal, err, "dashboard payload encoding failed"), start)
	}
	row := &models.IssuesData{
		SellerID:          key.SellerID,
		Country:           key.Country,
		Region:            key.Region,
		Payload:           payload,
		LastCalculatedAt:  time.Now().UTC(),
		CalculationSource: source,
	}
	if err := s.repo.UpsertData(ctx, row); err != nil {
		s.log.Error(ctx, "issues data upsert failed", err)
		return failure[*models.IssuesData](errors.Wrap(errors.CodeInternal, err, "issues data upsert failed"), start)
	}
	return success(row, start)
}

// ProductIssuesService writes per-ASIN issue counts onto the seller's
// product rows.
type ProductIssuesService struct {
	calc *Calculator
	repo *Repository
	log  *logger.Logger
}

// NewProductIssuesService builds the per-product count writer.
func NewProductIssuesService(calc *Calculator, repo *Repository, log *logger.Logger) *ProductIssuesService {
	return &ProductIssuesService{calc: calc, repo: repo, log: log}
}

// CalculateAndStore runs the full path and returns how many product rows
// changed. Products whose stored count already matches are left untouched.
func (s *ProductIssuesService) CalculateAndStore(ctx context.Context, key types.SellerKey, source string) OpResult[int] {
	start := time.Now()
	data, err := s.calc.Run(ctx, key)
	if err != nil {
		return failure[int](err, start)
	}
	return s.store(ctx, key, data, start)
}

// StoreFromDashboardData skips collection when the caller already holds a
// computed payload.
func (s *ProductIssuesService) StoreFromDashboardData(ctx context.Context, key types.SellerKey, data *dashboard.Data, _ string) OpResult[int] {
	start := time.Now()
	if data == nil {
		return failure[int](errors.New(errors.CodeValidation, "dashboard data is required"), start)
	}
	return s.store(ctx, key, data, start)
}

func (s *ProductIssuesService) store(ctx context.Context, key types.SellerKey, data *dashboard.Data, start time.Time) OpResult[int] {
	counts := make(map[string]int, len(data.ProductWiseError))
	for _, pe := range data.ProductWiseError {
		counts[pe.ASIN] = pe.Errors
	}
	updated, err := s.repo.UpdateProductIssueCounts(ctx, key, counts, time.Now().UTC())
	if err != nil {
		s.log.Error(ctx, "product issue count update failed", err)
		return failure[int](errors.Wrap(errors.CodeInternal, err, "product issue count update failed"), start)
	}
	return success(updated, start)
}
