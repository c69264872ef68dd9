package dashboard

import (
	"github.com/EstoreFactory109/SellerQI-sub007/internal/accounthealth"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/profitability"
	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
)

// ProductError is the combined per-ASIN error count across every checker.
type ProductError struct {
	ASIN   string `json:"asin"`
	Errors int    `json:"errors"`
}

// RankingError is the per-ASIN ranking checker detail served on the issues
// page. Products without ranking errors still appear as a title-only stub so
// the frontend can render the full catalog.
type RankingError struct {
	ASIN           string                           `json:"asin"`
	Title          string                           `json:"title"`
	NumberOfErrors int                              `json:"NumberOfErrors,omitempty"`
	Checks         map[string]snapshot.CheckOutcome `json:"checks,omitempty"`
	CharLim        *snapshot.CheckOutcome           `json:"charLim,omitempty"`
	DuplicateWords *snapshot.CheckOutcome           `json:"dublicateWords,omitempty"`
}

// InventoryError groups every inventory report hit for one ASIN.
type InventoryError struct {
	ASIN                 string                    `json:"asin"`
	InventoryPlanning    []snapshot.InventoryIssue `json:"inventoryPlanning,omitempty"`
	StrandedInventory    []snapshot.InventoryIssue `json:"strandedInventory,omitempty"`
	InboundNonCompliance []snapshot.InventoryIssue `json:"inboundNonCompliance,omitempty"`
	Replenishment        []snapshot.InventoryIssue `json:"replenishment,omitempty"`
	TotalErrors          int                       `json:"totalErrors"`
}

// ConversionError carries the failed conversion-side checks for one ASIN.
type ConversionError struct {
	ASIN          string                    `json:"asin"`
	APlus         *snapshot.ConversionCheck `json:"aPlus,omitempty"`
	Image         *snapshot.ConversionCheck `json:"image,omitempty"`
	Video         *snapshot.ConversionCheck `json:"video,omitempty"`
	ProductReview *snapshot.ConversionCheck `json:"productReview,omitempty"`
	StarRating    *snapshot.ConversionCheck `json:"starRating,omitempty"`
	BuyboxMissing bool                      `json:"buyboxMissing,omitempty"`
	TotalErrors   int                       `json:"totalErrors"`
}

// ProfitabilityError flags an ASIN whose margin or net profit is below the
// dashboard thresholds. Computed from the raw sales/ads/fee rows, not from
// the stored profitability records.
type ProfitabilityError struct {
	ASIN         string  `json:"asin"`
	Sales        float64 `json:"sales"`
	Ads          float64 `json:"ads"`
	AmzFee       float64 `json:"amzFee"`
	NetProfit    float64 `json:"netProfit"`
	ProfitMargin float64 `json:"profitMargin"`
}

// SponsoredAdsError flags an ASIN with wasteful ad spend.
type SponsoredAdsError struct {
	ASIN  string  `json:"asin"`
	Spend float64 `json:"spend"`
	Sales float64 `json:"sales"`
	ACOS  float64 `json:"acos"`
}

// NegativeKeywordError flags a keyword with wasteful spend.
type NegativeKeywordError struct {
	Keyword string  `json:"keyword"`
	Spend   float64 `json:"spend"`
	Sales   float64 `json:"sales"`
	ACOS    float64 `json:"acos"`
}

// AdsSummary is the rolled-up sponsored ads position.
type AdsSummary struct {
	TotalSpend      float64 `json:"totalSpend"`
	TotalSales      float64 `json:"totalSales"`
	ACOS            float64 `json:"acos"`
	ProductsWithAds int     `json:"productsWithAds"`
}

// TopProduct is one of the four worst-offender slots on the dashboard.
type TopProduct struct {
	ASIN   string `json:"asin"`
	Name   string `json:"name"`
	Errors int    `json:"errors"`
}

// DateCost is daily PPC spend with attributed sales.
type DateCost struct {
	Date      string  `json:"date"`
	TotalCost float64 `json:"totalCost"`
	Sales     float64 `json:"sales"`
}

// CampaignCost is per-campaign spend with attributed sales.
type CampaignCost struct {
	CampaignID   string  `json:"campaignId"`
	CampaignName string  `json:"campaignName"`
	TotalSpend   float64 `json:"totalSpend"`
	TotalSales   float64 `json:"totalSales"`
}

// Data is the aggregated dashboard payload. It is a pure function of the
// snapshot: identical input produces an identical Data value, including
// slice ordering.
type Data struct {
	Country   string `json:"Country"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	TotalProducts  []snapshot.Product `json:"TotalProducts"`
	ActiveProducts []string           `json:"activeProducts"`

	Profitability []profitability.Record `json:"profitability"`
	AdsSummary    AdsSummary             `json:"adsSummary"`

	AccountHealth accounthealth.Result    `json:"accountHealthPercentage"`
	AccountErrors *accounthealth.ErrorMap `json:"accountHealthErrors,omitempty"`

	ProductWiseError            []ProductError         `json:"productWiseError"`
	RankingProductWiseErrors    []RankingError         `json:"rankingProductWiseErrors"`
	InventoryProductWiseErrors  []InventoryError       `json:"inventoryProductWiseErrors"`
	ConversionProductWiseErrors []ConversionError      `json:"conversionProductWiseErrors"`
	ProfitabilityErrors         []ProfitabilityError   `json:"profitabilityErrors"`
	SponsoredAdsErrors          []SponsoredAdsError    `json:"sponsoredAdsErrors"`
	NegativeKeywordErrors       []NegativeKeywordError `json:"negativeKeywordErrors"`

	First  *TopProduct `json:"first"`
	Second *TopProduct `json:"second"`
	Third  *TopProduct `json:"third"`
	Fourth *TopProduct `json:"fourth"`

	Keywords     []snapshot.KeywordPerformance `json:"keywords"`
	SearchTerms  []map[string]any              `json:"searchTerms"`
	CampaignData []map[string]any              `json:"campaignData"`
	FinanceData  map[string]float64            `json:"FinanceData"`

	DateWiseCosts     []DateCost     `json:"dateWiseTotalCosts"`
	CampaignWiseCosts []CampaignCost `json:"campaignWiseTotalSalesAndCost"`

	// Names of sub-calculations that fell back to an empty result.
	Degraded []string `json:"degraded,omitempty"`
}

// TotalIssueCount sums every per-category issue bucket. Used by the summary
// cache writers.
func (d *Data) TotalIssueCount() int {
	total := 0
	for _, pe := range d.ProductWiseError {
		total += pe.Errors
	}
	total += d.AccountErrorCount()
	total += len(d.ProfitabilityErrors)
	total += len(d.SponsoredAdsErrors)
	return total
}

// AccountErrorCount returns the number of failing account checks.
func (d *Data) AccountErrorCount() int {
	if d.AccountErrors == nil {
		return 0
	}
	return d.AccountErrors.TotalErrors
}
