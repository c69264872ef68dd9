package dashboardsummary

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/models"
	dbtypes "github.com/EstoreFactory109/SellerQI-sub007/pkg/db/types"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/errors"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/logger"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

// CacheReader reads the issue caches owned by the issues package.
type CacheReader interface {
	FindSummary(ctx context.Context, key types.SellerKey) (*models.IssueSummary, error)
	FindData(ctx context.Context, key types.SellerKey) (*models.IssuesData, error)
	ListProducts(ctx context.Context, key types.SellerKey) ([]models.SellerProduct, error)
}

// MetricsStore reads and writes the summary metric tables.
type MetricsStore interface {
	UpsertFinancial(ctx context.Context, row *models.FinancialSummary) error
	UpsertPPC(ctx context.Context, row *models.PPCSummary) error
	UpsertAccountHealth(ctx context.Context, row *models.AccountHealthRecord) error
	FindFinancial(ctx context.Context, key types.SellerKey) (*models.FinancialSummary, error)
	FindPPC(ctx context.Context, key types.SellerKey) (*models.PPCSummary, error)
	FindAccountHealth(ctx context.Context, key types.SellerKey) (*models.AccountHealthRecord, error)
}

// Service serves the three phased dashboard loads and writes the summary
// metric rows after each recalculation.
type Service struct {
	repo  MetricsStore
	cache CacheReader
	log   *logger.Logger
}

// NewService builds the phased loader service.
func NewService(repo MetricsStore, cache CacheReader, log *logger.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// Phase1Result is the first paint: issue and product counts only.
type Phase1Result struct {
	TotalIssues        int        `json:"totalIssues"`
	RankingIssues      int        `json:"rankingIssues"`
	ConversionIssues   int        `json:"conversionIssues"`
	InventoryIssues    int        `json:"inventoryIssues"`
	AccountIssues      int        `json:"accountIssues"`
	TotalProducts      int        `json:"totalProducts"`
	ActiveProducts     int        `json:"activeProducts"`
	ProductsWithIssues int        `json:"productsWithIssues"`
	LastCalculatedAt   *time.Time `json:"lastCalculatedAt,omitempty"`
}

// Phase2Result adds account health and the financial and advertising
// positions.
type Phase2Result struct {
	AccountHealthStatus     string          `json:"accountHealthStatus"`
	AccountHealthPercentage int             `json:"accountHealthPercentage"`
	AccountTotalErrors      int             `json:"accountTotalErrors"`
	GrossRevenue            decimal.Decimal `json:"grossRevenue"`
	GrossProfit             decimal.Decimal `json:"grossProfit"`
	ProfitMargin            decimal.Decimal `json:"profitMargin"`
	AdSpend                 decimal.Decimal `json:"adSpend"`
	PPCSales                decimal.Decimal `json:"ppcSales"`
	ACOS                    decimal.Decimal `json:"acos"`
}

// Phase3Result adds the chart-ready series and the full product list.
type Phase3Result struct {
	DateWiseCosts     []dashboard.DateCost     `json:"dateWiseTotalCosts"`
	CampaignWiseCosts []dashboard.CampaignCost `json:"campaignWiseTotalSalesAndCost"`
	Products          []models.SellerProduct   `json:"products"`
}

// Phase1 loads precomputed issue counts and product counts. Missing rows
// fall back to zeroed defaults, never an error.
func (s *Service) Phase1(ctx context.Context, key types.SellerKey) (*Phase1Result, error) {
	var (
		summary  *models.IssueSummary
		products []models.SellerProduct
		sumErr   error
		prodErr  error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		summary, sumErr = s.cache.FindSummary(ctx, key)
	}()
	go func() {
		defer wg.Done()
		products, prodErr = s.cache.ListProducts(ctx, key)
	}()
	wg.Wait()

	if err := multierr.Combine(sumErr, prodErr); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "phase1 load failed")
	}

	out := &Phase1Result{}
	if summary != nil {
		out.TotalIssues = summary.TotalIssues
		out.RankingIssues = summary.RankingIssues
		out.ConversionIssues = summary.ConversionIssues
		out.InventoryIssues = summary.InventoryIssues
		out.AccountIssues = summary.AccountIssues
		out.ProductsWithIssues = summary.ProductsWithIssues
		at := summary.LastCalculatedAt
		out.LastCalculatedAt = &at
	}
	out.TotalProducts = len(products)
	for _, p := range products {
		if p.Status == models.ProductStatusActive {
			out.ActiveProducts++
		}
	}
	return out, nil
}

// Phase2 loads account health plus the financial and PPC summaries. Each
// source independently falls back to its zero value.
func (s *Service) Phase2(ctx context.Context, key types.SellerKey) (*Phase2Result, error) {
	var (
		health    *models.AccountHealthRecord
		financial *models.FinancialSummary
		ppc       *models.PPCSummary
		errs      [3]error
	)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		health, errs[0] = s.repo.FindAccountHealth(ctx, key)
	}()
	go func() {
		defer wg.Done()
		financial, errs[1] = s.repo.FindFinancial(ctx, key)
	}()
	go func() {
		defer wg.Done()
		ppc, errs[2] = s.repo.FindPPC(ctx, key)
	}()
	wg.Wait()

	if err := multierr.Combine(errs[:]...); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "phase2 load failed")
	}

	out := &Phase2Result{AccountHealthStatus: "Data Not Available"}
	if health != nil {
		out.AccountHealthStatus = health.Status
		out.AccountHealthPercentage = health.Percentage
		out.AccountTotalErrors = health.TotalErrors
	}
	if financial != nil {
		out.GrossRevenue = financial.GrossRevenue
		out.GrossProfit = financial.GrossProfit
		out.ProfitMargin = financial.ProfitMargin
	}
	if ppc != nil {
		out.AdSpend = ppc.Spend
		out.PPCSales = ppc.Sales
		out.ACOS = ppc.ACOS
	}
	return out, nil
}

// Phase3 loads the chart series from the cached payload plus the full
// product list.
func (s *Service) Phase3(ctx context.Context, key types.SellerKey) (*Phase3Result, error) {
	var (
		row      *models.IssuesData
		products []models.SellerProduct
		rowErr   error
		prodErr  error
	)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		row, rowErr = s.cache.FindData(ctx, key)
	}()
	go func() {
		defer wg.Done()
		products, prodErr = s.cache.ListProducts(ctx, key)
	}()
	wg.Wait()

	if err := multierr.Combine(rowErr, prodErr); err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "phase3 load failed")
	}

	out := &Phase3Result{
		DateWiseCosts:     []dashboard.DateCost{},
		CampaignWiseCosts: []dashboard.CampaignCost{},
		Products:          products,
	}
	if out.Products == nil {
		out.Products = []models.SellerProduct{}
	}
	if row != nil {
		var payload dashboard.Data
		if err := json.Unmarshal([]byte(row.Payload), &payload); err != nil {
			// A corrupt cache row degrades to empty charts; the next
			// recalculation overwrites it.
			s.log.Error(ctx, "cached payload is not decodable", err)
		} else {
			if payload.DateWiseCosts != nil {
				out.DateWiseCosts = payload.DateWiseCosts
			}
			if payload.CampaignWiseCosts != nil {
				out.CampaignWiseCosts = payload.CampaignWiseCosts
			}
		}
	}
	return out, nil
}

// Store writes the financial, advertising and account health summary rows
// from a computed payload.
func (s *Service) Store(ctx context.Context, key types.SellerKey, data *dashboard.Data) error {
	if data == nil {
		return errors.New(errors.CodeValidation, "dashboard data is required")
	}
	now := time.Now().UTC()

	var revenue, adSpend, fees, profit float64
	units := 0
	for _, rec := range data.Profitability {
		revenue += rec.Sales
		adSpend += rec.Ads
		fees += rec.TotalFees
		profit += rec.GrossProfit
		units += rec.Quantity
	}
	margin := 0.0
	if revenue > 0 {
		margin = profit / revenue * 100
	}

	financial := &models.FinancialSummary{
		SellerID:         key.SellerID,
		Country:          key.Country,
		Region:           key.Region,
		GrossRevenue:     money(revenue),
		UnitsSold:        units,
		AdSpend:          money(adSpend),
		AmazonFees:       money(fees),
		GrossProfit:      money(profit),
		ProfitMargin:     money(margin),
		LastCalculatedAt: now,
	}

	waste := 0.0
	for _, nk := range data.NegativeKeywordErrors {
		waste += nk.Spend
	}
	ppc := &models.PPCSummary{
		SellerID:           key.SellerID,
		Country:            key.Country,
		Region:             key.Region,
		Spend:              money(data.AdsSummary.TotalSpend),
		Sales:              money(data.AdsSummary.TotalSales),
		ACOS:               money(data.AdsSummary.ACOS),
		KeywordWaste:       money(waste),
		ProductsWithErrors: len(data.SponsoredAdsErrors),
		LastCalculatedAt:   now,
	}

	checks, err := dbtypes.FromValue(data.AccountErrors)
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "account checks encoding failed")
	}
	health := &models.AccountHealthRecord{
		SellerID:         key.SellerID,
		Country:          key.Country,
		Region:           key.Region,
		Status:           data.AccountHealth.Status,
		Percentage:       data.AccountHealth.Percentage,
		TotalErrors:      data.AccountErrorCount(),
		Checks:           checks,
		LastCalculatedAt: now,
	}

	return multierr.Combine(
		s.repo.UpsertFinancial(ctx, financial),
		s.repo.UpsertPPC(ctx, ppc),
		s.repo.UpsertAccountHealth(ctx, health),
	)
}

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
