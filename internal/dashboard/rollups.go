package dashboard

import (
	"sort"
	"strings"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
)

// CalculateDateWiseTotalCosts groups PPC spend rows by day, summing cost and
// attributed sales with 2-decimal rounding. Rows without a date are dropped.
// Output is sorted ascending by date.
func CalculateDateWiseTotalCosts(rows []snapshot.PPCSpendRow) []DateCost {
	totals := make(map[string]*DateCost)
	for _, row := range rows {
		date := normalizeDate(row.Date)
		if date == "" {
			continue
		}
		dc, ok := totals[date]
		if !ok {
			dc = &DateCost{Date: date}
			totals[date] = dc
		}
		dc.TotalCost += snapshot.Float(row.Cost)
		dc.Sales += snapshot.Float(row.Sales7d)
	}

	out := make([]DateCost, 0, len(totals))
	for _, dc := range totals {
		dc.TotalCost = snapshot.Round2(dc.TotalCost)
		dc.Sales = snapshot.Round2(dc.Sales)
		out = append(out, *dc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// CalculateCampaignWiseTotalSalesAndCost groups PPC spend rows by campaign,
// summing spend and sales. Output is sorted descending by spend; ties keep
// first-seen campaign order.
func CalculateCampaignWiseTotalSalesAndCost(rows []snapshot.PPCSpendRow) []CampaignCost {
	totals := make(map[string]*CampaignCost)
	order := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.CampaignID == "" {
			continue
		}
		cc, ok := totals[row.CampaignID]
		if !ok {
			cc = &CampaignCost{CampaignID: row.CampaignID, CampaignName: row.CampaignName}
			totals[row.CampaignID] = cc
			order = append(order, row.CampaignID)
		}
		cc.TotalSpend += snapshot.Float(row.Cost)
		cc.TotalSales += snapshot.Float(row.Sales7d)
	}

	out := make([]CampaignCost, 0, len(order))
	for _, id := range order {
		cc := totals[id]
		cc.TotalSpend = snapshot.Round2(cc.TotalSpend)
		cc.TotalSales = snapshot.Round2(cc.TotalSales)
		out = append(out, *cc)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TotalSpend > out[j].TotalSpend })
	return out
}

// normalizeDate reduces a raw report date to its calendar-day part.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "T "); i > 0 {
		raw = raw[:i]
	}
	return raw
}
