package snapshot

import "context"

// Product statuses as reported by the listings feed.
const (
	StatusActive = "Active"
	StatusError  = "Error"
)

// Product is one catalog entry from the listings report.
type Product struct {
	ASIN     string  `json:"asin"`
	SKU      string  `json:"sku"`
	ItemName string  `json:"itemName"`
	Price    float64 `json:"price"`
	Status   string  `json:"status"`
}

// SaleRecord is per-ASIN sales attributed by the sales-and-traffic report.
type SaleRecord struct {
	ASIN     string  `json:"asin"`
	Amount   float64 `json:"amount"`
	Quantity int     `json:"quantity"`
}

// AdRecord is per-ASIN sponsored-products spend from the Ads API.
type AdRecord struct {
	ASIN          string  `json:"asin"`
	Spend         float64 `json:"spend"`
	SalesIn30Days float64 `json:"salesIn30Days"`
	CampaignName  string  `json:"campaignName"`
}

// FBARecord carries fulfillment fee fields from the FBA fee report.
type FBARecord struct {
	ASIN       string  `json:"asin"`
	FBAFee     float64 `json:"fbaFee"`
	StorageFee float64 `json:"storageFee"`
}

// FeeRecord is an estimated referral fee row. The fee value arrives in
// whatever shape the upstream report produced: a number, a numeric string,
// or an {amount} object. Use FeeAmount to read it.
type FeeRecord struct {
	ASIN string `json:"asin"`
	Fee  any    `json:"fee"`
}

// EconomicsEntry is the preferred per-ASIN snapshot from the product
// economics report. TotalFees and GrossProfit are nil when the report did not
// supply them and must be derived.
type EconomicsEntry struct {
	Sales       float64  `json:"sales"`
	UnitsSold   int      `json:"unitsSold"`
	PPCSpent    float64  `json:"ppcSpent"`
	FBAFees     float64  `json:"fbaFees"`
	StorageFees float64  `json:"storageFees"`
	TotalFees   *float64 `json:"totalFees,omitempty"`
	GrossProfit *float64 `json:"grossProfit,omitempty"`
}

// PPCSpendRow is one date-level spend row from the Ads API.
type PPCSpendRow struct {
	Date         string  `json:"date"`
	Cost         any     `json:"cost"`
	Sales7d      any     `json:"sales7d"`
	CampaignID   string  `json:"campaignId"`
	CampaignName string  `json:"campaignName"`
	Clicks       float64 `json:"clicks"`
	Impressions  float64 `json:"impressions"`
}

// CheckOutcome is a single listing check result.
type CheckOutcome struct {
	Status  string `json:"status"`
	Message string `json:"Message,omitempty"`
}

// RankingResult is the per-ASIN output of the ranking checker.
type RankingResult struct {
	ASIN           string                  `json:"asin"`
	Title          string                  `json:"title"`
	NumberOfErrors int                     `json:"NumberOfErrors"`
	Checks         map[string]CheckOutcome `json:"checks,omitempty"`
}

// BackendKeywordResult is the per-ASIN output of the backend keyword checker.
type BackendKeywordResult struct {
	ASIN           string        `json:"asin"`
	NumberOfErrors int           `json:"NumberOfErrors"`
	CharLim        *CheckOutcome `json:"charLim,omitempty"`
	DuplicateWords *CheckOutcome `json:"dublicateWords,omitempty"`
}

// RankingsData bundles both ranking-side checker outputs.
type RankingsData struct {
	RankingResultArray        []RankingResult        `json:"RankingResultArray"`
	BackendKeywordResultArray []BackendKeywordResult `json:"BackendKeywordResultArray"`
}

// ConversionCheck is one conversion-side check row (A+, image, video, ...).
type ConversionCheck struct {
	ASIN    string `json:"asin"`
	Status  string `json:"status"`
	Message string `json:"Message,omitempty"`
}

// BuyboxRecord flags an ASIN currently missing the buy box.
type BuyboxRecord struct {
	ASIN string `json:"asin"`
}

// ConversionData bundles the conversion-side checker outputs.
type ConversionData struct {
	APlusResult              []ConversionCheck `json:"aPlusResult"`
	ImageResult              []ConversionCheck `json:"imageResult"`
	VideoResult              []ConversionCheck `json:"videoResult"`
	ProductReviewResult      []ConversionCheck `json:"productReviewResult"`
	ProductStarRatingResult  []ConversionCheck `json:"productStarRatingResult"`
	ProductsWithoutBuybox    []BuyboxRecord    `json:"ProductWithOutBuybox"`
}

// InventoryIssue is one row from an inventory health report.
type InventoryIssue struct {
	ASIN    string `json:"asin"`
	Issue   string `json:"issue,omitempty"`
	Message string `json:"Message,omitempty"`
}

// InventoryAnalysis groups the four inventory report categories.
type InventoryAnalysis struct {
	InventoryPlanning    []InventoryIssue `json:"inventoryPlanning"`
	StrandedInventory    []InventoryIssue `json:"strandedInventory"`
	InboundNonCompliance []InventoryIssue `json:"inboundNonCompliance"`
	Replenishment        []InventoryIssue `json:"replenishment"`
}

// SellerPerformance is the raw seller-performance report; AHRScore is the
// Account Health Rating scalar and is nil when the report carried none.
type SellerPerformance struct {
	AHRScore *float64 `json:"ahrScore"`
}

// AccountHealthV2 carries the status-flag style account checks.
type AccountHealthV2 struct {
	AccountStatus           string `json:"accountStatus"`
	PolicyViolations        string `json:"PolicyViolations"`
	ValidTrackingRateStatus string `json:"validTrackingRateStatus"`
	OrderWithDefectsStatus  string `json:"orderWithDefectsStatus"`
	LateShipmentRateStatus  string `json:"lateShipmentRateStatus"`
	CancellationRate        string `json:"CancellationRate"`
}

// AccountHealthV1 carries the count-based account metrics. The upstream
// payload is loosely typed, so counters are decoded as-is and coerced with
// Float at the point of use.
type AccountHealthV1 struct {
	NegativeFeedbacks               any `json:"negativeFeedbacks"`
	LateShipmentCount               any `json:"lateShipmentCount"`
	PreFulfillmentCancellationCount any `json:"preFulfillmentCancellationCount"`
	RefundsCount                    any `json:"refundsCount"`
	AToZClaims                      any `json:"a_z_claims"`
	ResponseUnder24HoursCount       any `json:"responseUnder24HoursCount"`
}

// AccountData bundles both account health report snapshots.
type AccountData struct {
	HealthPercentage *SellerPerformance `json:"getAccountHealthPercentge"`
	HealthV2         *AccountHealthV2   `json:"accountHealth"`
	HealthV1         *AccountHealthV1   `json:"accountHealthV1"`
}

// NegativeKeywordMetric is per-keyword waste data from the Ads API.
type NegativeKeywordMetric struct {
	Keyword string  `json:"keyword"`
	Spend   float64 `json:"spend"`
	Sales   float64 `json:"sales"`
}

// KeywordPerformance is a raw keyword performance row passed through to the
// frontend untouched.
type KeywordPerformance struct {
	Keyword     string  `json:"keyword"`
	MatchType   string  `json:"matchType"`
	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Spend       float64 `json:"spend"`
	Sales       float64 `json:"sales"`
}

// Snapshot is the raw multi-source fetch result handed over by the
// integration collector. Every field is optional; Normalize nil-fills the
// nested groups so downstream code never guards against missing sections.
type Snapshot struct {
	Country   string `json:"Country"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`

	TotalProducts           []Product    `json:"TotalProducts"`
	SalesByProducts         []SaleRecord `json:"SalesByProducts"`
	ProductWiseSponsoredAds []AdRecord   `json:"ProductWiseSponsoredAds"`
	FBAData                 []FBARecord  `json:"fbaData"`
	FBAFees                 []FeeRecord  `json:"fbaFees"`

	EconomicsByASIN map[string]EconomicsEntry `json:"economicsAsinData"`

	FinanceData            map[string]float64      `json:"FinanceData"`
	DateWisePPCSpend       []PPCSpendRow           `json:"GetDateWisePPCspendData"`
	InventoryAnalysis      *InventoryAnalysis      `json:"InventoryAnalysis"`
	RankingsData           *RankingsData           `json:"RankingsData"`
	ConversionData         *ConversionData         `json:"ConversionData"`
	AccountData            *AccountData            `json:"AccountData"`
	NegativeKeywords       []NegativeKeywordMetric `json:"negetiveKeywords"`
	AdsKeywordsPerformance []KeywordPerformance    `json:"adsKeywordsPerformanceData"`

	// Passed through to the frontend untouched.
	SearchTerms  []map[string]any `json:"searchTerms"`
	CampaignData []map[string]any `json:"campaignData"`
}

// Normalize fills every nil nested group with its zero value so field access
// never needs a nil check past the entry boundary.
func (s *Snapshot) Normalize() *Snapshot {
	if s == nil {
		return &Snapshot{
			InventoryAnalysis: &InventoryAnalysis{},
			RankingsData:      &RankingsData{},
			ConversionData:    &ConversionData{},
			AccountData:       &AccountData{},
		}
	}
	if s.InventoryAnalysis == nil {
		s.InventoryAnalysis = &InventoryAnalysis{}
	}
	if s.RankingsData == nil {
		s.RankingsData = &RankingsData{}
	}
	if s.ConversionData == nil {
		s.ConversionData = &ConversionData{}
	}
	if s.AccountData == nil {
		s.AccountData = &AccountData{}
	}
	return s
}

// HasData reports whether any of the primary sources returned rows. When all
// are empty the aggregation short-circuits to a default structure.
func (s *Snapshot) HasData() bool {
	if s == nil {
		return false
	}
	return len(s.TotalProducts) > 0 ||
		len(s.SalesByProducts) > 0 ||
		len(s.ProductWiseSponsoredAds) > 0 ||
		len(s.FinanceData) > 0
}

// Collector is the integration boundary that assembles a Snapshot from the
// external marketplace APIs.
type Collector interface {
	Collect(ctx context.Context, sellerID, country, region string) (*Snapshot, error)
}
