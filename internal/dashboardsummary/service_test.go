package dashboardsummary

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/accounthealth"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/dashboard"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/profitability"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/db/models"
	dbtypes "github.com/EstoreFactory109/SellerQI-sub007/pkg/db/types"
	"github.com/EstoreFactory109/SellerQI-sub007/pkg/types"
)

type fakeCache struct {
	summary  *models.IssueSummary
	data     *models.IssuesData
	products []models.SellerProduct
}

func (f *fakeCache) FindSummary(context.Context, types.SellerKey) (*models.IssueSummary, error) {
	return f.summary, nil
}

func (f *fakeCache) FindData(context.Context, types.SellerKey) (*models.IssuesData, error) {
	return f.data, nil
}

func (f *fakeCache) ListProducts(context.Context, types.SellerKey) ([]models.SellerProduct, error) {
	return f.products, nil
}

type fakeMetricsStore struct {
	financial *models.FinancialSummary
	ppc       *models.PPCSummary
	health    *models.AccountHealthRecord
}

func (f *fakeMetricsStore) UpsertFinancial(_ context.Context, row *models.FinancialSummary) error {
	f.financial = row
	return nil
}

func (f *fakeMetricsStore) UpsertPPC(_ context.Context, row *models.PPCSummary) error {
	f.ppc = row
	return nil
}

func (f *fakeMetricsStore) UpsertAccountHealth(_ context.Context, row *models.AccountHealthRecord) error {
	f.health = row
	return nil
}

func (f *fakeMetricsStore) FindFinancial(context.Context, types.SellerKey) (*models.FinancialSummary, error) {
	return f.financial, nil
}

func (f *fakeMetricsStore) FindPPC(context.Context, types.SellerKey) (*models.PPCSummary, error) {
	return f.ppc, nil
}

func (f *fakeMetricsStore) FindAccountHealth(context.Context, types.SellerKey) (*models.AccountHealthRecord, error) {
	return f.health, nil
}

func testSellerKey() types.SellerKey {
	return types.SellerKey{SellerID: uuid.New(), Country: "US", Region: "NA"}
}

func TestPhase1WithSummary(t *testing.T) {
	now := time.Now()
	cache := &fakeCache{
		summary: &models.IssueSummary{
			TotalIssues:        12,
			RankingIssues:      5,
			ProductsWithIssues: 3,
			LastCalculatedAt:   now,
		},
		products: []models.SellerProduct{
			{ASIN: "A", Status: models.ProductStatusActive},
			{ASIN: "B", Status: models.ProductStatusActive},
			{ASIN: "C", Status: models.ProductStatusInactive},
		},
	}
	svc := NewService(&fakeMetricsStore{}, cache, nil)

	out, err := svc.Phase1(context.Background(), testSellerKey())
	if err != nil {
		t.Fatal(err)
	}
	if out.TotalIssues != 12 || out.RankingIssues != 5 {
		t.Errorf("counts = %d/%d, want 12/5", out.TotalIssues, out.RankingIssues)
	}
	if out.TotalProducts != 3 || out.ActiveProducts != 2 {
		t.Errorf("products = %d/%d, want 3/2", out.TotalProducts, out.ActiveProducts)
	}
	if out.LastCalculatedAt == nil {
		t.Error("lastCalculatedAt missing")
	}
}

func TestPhase1ZeroedFallback(t *testing.T) {
	svc := NewService(&fakeMetricsStore{}, &fakeCache{}, nil)

	out, err := svc.Phase1(context.Background(), testSellerKey())
	if err != nil {
		t.Fatal(err)
	}
	if out.TotalIssues != 0 || out.TotalProducts != 0 || out.LastCalculatedAt != nil {
		t.Errorf("want zeroed defaults, got %+v", out)
	}
}

func TestPhase2ZeroedFallback(t *testing.T) {
	svc := NewService(&fakeMetricsStore{}, &fakeCache{}, nil)

	out, err := svc.Phase2(context.Background(), testSellerKey())
	if err != nil {
		t.Fatal(err)
	}
	if out.AccountHealthStatus != "Data Not Available" {
		t.Errorf("status = %q, want Data Not Available", out.AccountHealthStatus)
	}
	if !out.GrossRevenue.IsZero() || !out.ACOS.IsZero() {
		t.Errorf("want zero money defaults, got %+v", out)
	}
}

func TestPhase2LoadsAllSources(t *testing.T) {
	store := &fakeMetricsStore{
		health: &models.AccountHealthRecord{Status: "Healthy", Percentage: 100, TotalErrors: 1},
		financial: &models.FinancialSummary{
			GrossRevenue: decimal.NewFromInt(1000),
			GrossProfit:  decimal.NewFromInt(250),
		},
		ppc: &models.PPCSummary{Spend: decimal.NewFromInt(80)},
	}
	svc := NewService(store, &fakeCache{}, nil)

	out, err := svc.Phase2(context.Background(), testSellerKey())
	if err != nil {
		t.Fatal(err)
	}
	if out.AccountHealthPercentage != 100 {
		t.Errorf("percentage = %d, want 100", out.AccountHealthPercentage)
	}
	if !out.GrossRevenue.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("grossRevenue = %s, want 1000", out.GrossRevenue)
	}
	if !out.AdSpend.Equal(decimal.NewFromInt(80)) {
		t.Errorf("adSpend = %s, want 80", out.AdSpend)
	}
}

func TestPhase3LoadsChartSeries(t *testing.T) {
	payload, err := dbtypes.FromValue(&dashboard.Data{
		DateWiseCosts: []dashboard.DateCost{{Date: "2024-01-01", TotalCost: 5}},
		CampaignWiseCosts: []dashboard.CampaignCost{
			{CampaignID: "c1", TotalSpend: 5},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	cache := &fakeCache{
		data:     &models.IssuesData{Payload: payload},
		products: []models.SellerProduct{{ASIN: "A"}},
	}
	svc := NewService(&fakeMetricsStore{}, cache, nil)

	out, err := svc.Phase3(context.Background(), testSellerKey())
	if err != nil {
		t.Fatal(err)
	}
	if len(out.DateWiseCosts) != 1 || out.DateWiseCosts[0].TotalCost != 5 {
		t.Errorf("dateWiseCosts = %+v, want one row with cost 5", out.DateWiseCosts)
	}
	if len(out.CampaignWiseCosts) != 1 || len(out.Products) != 1 {
		t.Errorf("campaigns/products = %d/%d, want 1/1", len(out.CampaignWiseCosts), len(out.Products))
	}
}

func TestStoreWritesAllSummaries(t *testing.T) {
	store := &fakeMetricsStore{}
	svc := NewService(store, &fakeCache{}, nil)
	key := testSellerKey()

	data := &dashboard.Data{
		Profitability: []profitability.Record{
			{ASIN: "A", Sales: 100, Ads: 20, TotalFees: 30, GrossProfit: 50, Quantity: 4},
			{ASIN: "B", Sales: 100, Ads: 0, TotalFees: 40, GrossProfit: 60, Quantity: 1},
		},
		AdsSummary:            dashboard.AdsSummary{TotalSpend: 20, TotalSales: 40, ACOS: 50},
		NegativeKeywordErrors: []dashboard.NegativeKeywordError{{Keyword: "k", Spend: 6}},
		SponsoredAdsErrors:    []dashboard.SponsoredAdsError{{ASIN: "A"}},
		AccountHealth:         accounthealth.Result{Status: "At Risk", Percentage: 80},
		AccountErrors:         &accounthealth.ErrorMap{TotalErrors: 2},
	}

	if err := svc.Store(context.Background(), key, data); err != nil {
		t.Fatal(err)
	}

	if store.financial == nil || store.ppc == nil || store.health == nil {
		t.Fatal("not all summary rows were written")
	}
	if !store.financial.GrossRevenue.Equal(decimal.NewFromInt(200)) {
		t.Errorf("grossRevenue = %s, want 200", store.financial.GrossRevenue)
	}
	if store.financial.UnitsSold != 5 {
		t.Errorf("unitsSold = %d, want 5", store.financial.UnitsSold)
	}
	if !store.financial.ProfitMargin.Equal(decimal.NewFromInt(55)) {
		t.Errorf("profitMargin = %s, want 55", store.financial.ProfitMargin)
	}
	if !store.ppc.KeywordWaste.Equal(decimal.NewFromInt(6)) {
		t.Errorf("keywordWaste = %s, want 6", store.ppc.KeywordWaste)
	}
	if store.ppc.ProductsWithErrors != 1 {
		t.Errorf("productsWithErrors = %d, want 1", store.ppc.ProductsWithErrors)
	}
	if store.health.Status != "At Risk" || store.health.TotalErrors != 2 {
		t.Errorf("health = %s/%d, want At Risk/2", store.health.Status, store.health.TotalErrors)
	}
}
