package profitability

import (
	"sort"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
)

// Record provenance markers. Fields seeded from the economics report are
// final; legacy report rows may only create missing records or accumulate
// into records the economics report never covered. Ad spend is the sole
// exception: sponsored-ads rows supplement it on economics records too.
const (
	SourceEconomics = "economicsMetrics"
	SourceLegacy    = "legacy"
)

// Record is the merged per-ASIN profitability row.
type Record struct {
	ASIN         string  `json:"asin"`
	Quantity     int     `json:"quantity"`
	Sales        float64 `json:"sales"`
	Ads          float64 `json:"ads"`
	AmzFee       float64 `json:"amzFee"`
	TotalFees    float64 `json:"totalFees"`
	FBAFees      float64 `json:"fbaFees"`
	StorageFees  float64 `json:"storageFees"`
	GrossProfit  float64 `json:"grossProfit"`
	ProfitMargin float64 `json:"profitMargin"`
	Source       string  `json:"source"`

	totalFeesSet   bool
	grossProfitSet bool
	adsFromAdsAPI  bool
}

// Compute merges sales, ads and fee rows from every available source into one
// profitability record per ASIN. Records seeded from the economics snapshot
// take precedence over the legacy report arrays. Output order is
// deterministic: economics ASINs sorted lexicographically, then legacy ASINs
// in first-seen order. Malformed rows degrade to zero-valued fields, never
// errors.
func Compute(
	totalSales []snapshot.SaleRecord,
	sponsoredAds []snapshot.AdRecord,
	fbaData []snapshot.FBARecord,
	fbaFees []snapshot.FeeRecord,
	economics map[string]snapshot.EconomicsEntry,
) []Record {
	byASIN := make(map[string]*Record)
	order := make([]string, 0, len(totalSales)+len(economics))

	insert := func(asin, source string) *Record {
		rec, ok := byASIN[asin]
		if !ok {
			rec = &Record{ASIN: asin, Source: source}
			byASIN[asin] = rec
			order = append(order, asin)
		}
		return rec
	}

	seeds := make([]string, 0, len(economics))
	for asin := range economics {
		if asin != "" {
			seeds = append(seeds, asin)
		}
	}
	sort.Strings(seeds)
	for _, asin := range seeds {
		entry := economics[asin]
		rec := insert(asin, SourceEconomics)
		rec.Sales = snapshot.Float(entry.Sales)
		rec.Quantity = entry.UnitsSold
		rec.Ads = snapshot.Float(entry.PPCSpent)
		rec.FBAFees = snapshot.Float(entry.FBAFees)
		rec.StorageFees = snapshot.Float(entry.StorageFees)
		if entry.TotalFees != nil {
			rec.TotalFees = snapshot.Float(*entry.TotalFees)
			rec.totalFeesSet = true
		} else if rec.FBAFees != 0 || rec.StorageFees != 0 {
			rec.TotalFees = rec.FBAFees + rec.StorageFees
			rec.totalFeesSet = true
		}
		if entry.GrossProfit != nil {
			rec.GrossProfit = snapshot.Float(*entry.GrossProfit)
			rec.grossProfitSet = true
		}
	}

	for _, row := range totalSales {
		if row.ASIN == "" {
			continue
		}
		rec := insert(row.ASIN, SourceLegacy)
		if rec.Source == SourceEconomics {
			continue
		}
		rec.Sales += snapshot.Float(row.Amount)
		rec.Quantity += row.Quantity
	}

	// Ad spend is the one field economics seeds do not own: the Ads API is
	// its preferred source. The first ads row for an economics record
	// replaces the ppcSpent seed; later rows accumulate as usual.
	for _, row := range sponsoredAds {
		if row.ASIN == "" {
			continue
		}
		rec := insert(row.ASIN, SourceLegacy)
		if rec.Source == SourceEconomics && !rec.adsFromAdsAPI {
			rec.Ads = snapshot.Float(row.Spend)
			rec.adsFromAdsAPI = true
			continue
		}
		rec.Ads += snapshot.Float(row.Spend)
	}

	for _, row := range fbaData {
		if row.ASIN == "" {
			continue
		}
		rec := insert(row.ASIN, SourceLegacy)
		if rec.Source == SourceEconomics {
			continue
		}
		rec.FBAFees += snapshot.Float(row.FBAFee)
		rec.StorageFees += snapshot.Float(row.StorageFee)
		rec.AmzFee += snapshot.Float(row.FBAFee) + snapshot.Float(row.StorageFee)
	}

	for _, row := range fbaFees {
		if row.ASIN == "" {
			// Fee rows without an ASIN cannot be attributed; skip silently.
			continue
		}
		rec := insert(row.ASIN, SourceLegacy)
		if rec.Source == SourceEconomics {
			continue
		}
		rec.AmzFee += snapshot.FeeAmount(row.Fee)
	}

	records := make([]Record, 0, len(order))
	for _, asin := range order {
		rec := byASIN[asin]
		normalize(rec)
		records = append(records, *rec)
	}
	return records
}

func normalize(rec *Record) {
	rec.Sales = snapshot.Float(rec.Sales)
	rec.Ads = snapshot.Float(rec.Ads)
	rec.AmzFee = snapshot.Float(rec.AmzFee)
	rec.FBAFees = snapshot.Float(rec.FBAFees)
	rec.StorageFees = snapshot.Float(rec.StorageFees)

	if !rec.totalFeesSet {
		rec.TotalFees = rec.AmzFee
	}
	if !rec.grossProfitSet {
		rec.GrossProfit = rec.Sales - rec.Ads - rec.TotalFees
	}
	if rec.Sales <= 0 {
		rec.ProfitMargin = 0
	} else {
		rec.ProfitMargin = snapshot.Round2(rec.GrossProfit / rec.Sales * 100)
	}
}
