package dashboard

import (
	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
)

// Ad waste thresholds used by the error derivations.
const (
	acosErrorThreshold        = 50
	acosHighSpendThreshold    = 30
	acosNegKeywordThreshold   = 100
	spendNoSalesThreshold     = 5
	spendHighThreshold        = 10
	profitMarginErrorThreshold = 10
)

func summarizeAds(ads []snapshot.AdRecord) AdsSummary {
	var summary AdsSummary
	seen := make(map[string]bool)
	for _, row := range ads {
		summary.TotalSpend += snapshot.Float(row.Spend)
		summary.TotalSales += snapshot.Float(row.SalesIn30Days)
		if row.ASIN != "" && !seen[row.ASIN] {
			seen[row.ASIN] = true
			summary.ProductsWithAds++
		}
	}
	summary.TotalSpend = snapshot.Round2(summary.TotalSpend)
	summary.TotalSales = snapshot.Round2(summary.TotalSales)
	if summary.TotalSales > 0 {
		summary.ACOS = snapshot.Round2(summary.TotalSpend / summary.TotalSales * 100)
	}
	return summary
}

// deriveSponsoredAdsErrors aggregates spend and sales per ASIN, then flags
// wasteful spenders: high ACOS with sales, real spend with zero sales, or
// heavy spend at a moderate ACOS.
func deriveSponsoredAdsErrors(ads []snapshot.AdRecord) []SponsoredAdsError {
	type tally struct {
		spend, sales float64
	}
	totals := make(map[string]*tally)
	order := make([]string, 0, len(ads))
	for _, row := range ads {
		if row.ASIN == "" {
			continue
		}
		tl, ok := totals[row.ASIN]
		if !ok {
			tl = &tally{}
			totals[row.ASIN] = tl
			order = append(order, row.ASIN)
		}
		tl.spend += snapshot.Float(row.Spend)
		tl.sales += snapshot.Float(row.SalesIn30Days)
	}

	var out []SponsoredAdsError
	for _, asin := range order {
		tl := totals[asin]
		acos := 0.0
		if tl.sales > 0 {
			acos = tl.spend / tl.sales * 100
		}
		wasteful := (acos > acosErrorThreshold && tl.sales > 0) ||
			(tl.spend > spendNoSalesThreshold && tl.sales == 0) ||
			(tl.spend > spendHighThreshold && acos > acosHighSpendThreshold)
		if !wasteful {
			continue
		}
		out = append(out, SponsoredAdsError{
			ASIN:  asin,
			Spend: snapshot.Round2(tl.spend),
			Sales: snapshot.Round2(tl.sales),
			ACOS:  snapshot.Round2(acos),
		})
	}
	return out
}

func deriveNegativeKeywordErrors(metrics []snapshot.NegativeKeywordMetric) []NegativeKeywordError {
	var out []NegativeKeywordError
	for _, m := range metrics {
		spend := snapshot.Float(m.Spend)
		sales := snapshot.Float(m.Sales)
		acos := 0.0
		if sales > 0 {
			acos = spend / sales * 100
		}
		wasteful := (acos > acosNegKeywordThreshold && sales > 0) ||
			(spend > spendNoSalesThreshold && sales == 0)
		if !wasteful {
			continue
		}
		out = append(out, NegativeKeywordError{
			Keyword: m.Keyword,
			Spend:   snapshot.Round2(spend),
			Sales:   snapshot.Round2(sales),
			ACOS:    snapshot.Round2(acos),
		})
	}
	return out
}

// deriveProfitabilityErrors recomputes per-ASIN margin from the raw sales,
// ad and fee rows and flags thin or negative margins. Deliberately
// independent of the stored profitability records, which follow different
// source precedence.
func deriveProfitabilityErrors(
	totalSales []snapshot.SaleRecord,
	ads []snapshot.AdRecord,
	fbaData []snapshot.FBARecord,
	fbaFees []snapshot.FeeRecord,
) []ProfitabilityError {
	type tally struct {
		sales, ads, amzFee float64
	}
	totals := make(map[string]*tally)
	order := make([]string, 0, len(totalSales))

	get := func(asin string) *tally {
		tl, ok := totals[asin]
		if !ok {
			tl = &tally{}
			totals[asin] = tl
			order = append(order, asin)
		}
		return tl
	}

	for _, row := range totalSales {
		if row.ASIN == "" {
			continue
		}
		get(row.ASIN).sales += snapshot.Float(row.Amount)
	}
	for _, row := range ads {
		if row.ASIN == "" {
			continue
		}
		get(row.ASIN).ads += snapshot.Float(row.Spend)
	}
	for _, row := range fbaData {
		if row.ASIN == "" {
			continue
		}
		get(row.ASIN).amzFee += snapshot.Float(row.FBAFee) + snapshot.Float(row.StorageFee)
	}
	for _, row := range fbaFees {
		if row.ASIN == "" {
			continue
		}
		get(row.ASIN).amzFee += snapshot.FeeAmount(row.Fee)
	}

	var out []ProfitabilityError
	for _, asin := range order {
		tl := totals[asin]
		net := tl.sales - tl.ads - tl.amzFee
		margin := 0.0
		if tl.sales > 0 {
			margin = net / tl.sales * 100
		}
		if margin >= profitMarginErrorThreshold && net >= 0 {
			continue
		}
		out = append(out, ProfitabilityError{
			ASIN:         asin,
			Sales:        snapshot.Round2(tl.sales),
			Ads:          snapshot.Round2(tl.ads),
			AmzFee:       snapshot.Round2(tl.amzFee),
			NetProfit:    snapshot.Round2(net),
			ProfitMargin: snapshot.Round2(margin),
		})
	}
	return out
}
