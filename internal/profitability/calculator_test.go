package profitability

import (
	"testing"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
)

func floatPtr(v float64) *float64 { return &v }

func recordByASIN(t *testing.T, records []Record, asin string) Record {
	t.Helper()
	for _, rec := range records {
		if rec.ASIN == asin {
			return rec
		}
	}
	t.Fatalf("no record for asin %q", asin)
	return Record{}
}

func TestComputeEconomicsWinsOverLegacy(t *testing.T) {
	economics := map[string]snapshot.EconomicsEntry{
		"A": {Sales: 100, TotalFees: floatPtr(10)},
	}
	totalSales := []snapshot.SaleRecord{
		{ASIN: "A", Amount: 999, Quantity: 5},
	}

	records := Compute(totalSales, nil, nil, nil, economics)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Sales != 100 {
		t.Errorf("sales = %v, want 100 (economics must win over legacy 999)", rec.Sales)
	}
	if rec.Quantity != 0 {
		t.Errorf("quantity = %d, want 0 (legacy must not accumulate)", rec.Quantity)
	}
	if rec.TotalFees != 10 {
		t.Errorf("totalFees = %v, want 10", rec.TotalFees)
	}
	if rec.Source != SourceEconomics {
		t.Errorf("source = %q, want %q", rec.Source, SourceEconomics)
	}
}

func TestComputeLegacyAccumulation(t *testing.T) {
	totalSales := []snapshot.SaleRecord{
		{ASIN: "B", Amount: 40, Quantity: 2},
		{ASIN: "B", Amount: 60, Quantity: 3},
	}
	sponsoredAds := []snapshot.AdRecord{
		{ASIN: "B", Spend: 12.5},
		{ASIN: "B", Spend: 7.5},
	}
	fbaData := []snapshot.FBARecord{
		{ASIN: "B", FBAFee: 4, StorageFee: 1},
	}
	fbaFees := []snapshot.FeeRecord{
		{ASIN: "B", Fee: map[string]any{"amount": 15.0}},
		{ASIN: "", Fee: 99},
	}

	records := Compute(totalSales, sponsoredAds, fbaData, fbaFees, nil)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (missing-asin fee row must be skipped)", len(records))
	}

	rec := recordByASIN(t, records, "B")
	if rec.Sales != 100 || rec.Quantity != 5 {
		t.Errorf("sales/quantity = %v/%d, want 100/5", rec.Sales, rec.Quantity)
	}
	if rec.Ads != 20 {
		t.Errorf("ads = %v, want 20", rec.Ads)
	}
	if rec.AmzFee != 20 {
		t.Errorf("amzFee = %v, want 20 (5 from fbaData + 15 from fee object)", rec.AmzFee)
	}
	if rec.TotalFees != 20 {
		t.Errorf("totalFees = %v, want amzFee fallback 20", rec.TotalFees)
	}
	if want := 100.0 - 20 - 20; rec.GrossProfit != want {
		t.Errorf("grossProfit = %v, want %v", rec.GrossProfit, want)
	}
	if rec.ProfitMargin != 60 {
		t.Errorf("profitMargin = %v, want 60", rec.ProfitMargin)
	}
	if rec.Source != SourceLegacy {
		t.Errorf("source = %q, want %q", rec.Source, SourceLegacy)
	}
}

func TestComputeZeroSalesMargin(t *testing.T) {
	sponsoredAds := []snapshot.AdRecord{{ASIN: "C", Spend: 8}}

	records := Compute(nil, sponsoredAds, nil, nil, nil)
	rec := recordByASIN(t, records, "C")
	if rec.ProfitMargin != 0 {
		t.Errorf("profitMargin = %v, want 0 when sales <= 0", rec.ProfitMargin)
	}
	if rec.GrossProfit != -8 {
		t.Errorf("grossProfit = %v, want -8", rec.GrossProfit)
	}
}

func TestComputeDeterministicOrder(t *testing.T) {
	economics := map[string]snapshot.EconomicsEntry{
		"B2": {Sales: 1},
		"A1": {Sales: 1},
		"C3": {Sales: 1},
	}
	totalSales := []snapshot.SaleRecord{
		{ASIN: "Z9", Amount: 1},
		{ASIN: "M5", Amount: 1},
	}

	first := Compute(totalSales, nil, nil, nil, economics)
	want := []string{"A1", "B2", "C3", "Z9", "M5"}
	for i, asin := range want {
		if first[i].ASIN != asin {
			t.Fatalf("order[%d] = %q, want %q", i, first[i].ASIN, asin)
		}
	}

	for i := 0; i < 10; i++ {
		again := Compute(totalSales, nil, nil, nil, economics)
		for j := range want {
			if again[j].ASIN != first[j].ASIN {
				t.Fatalf("run %d: order diverged at %d", i, j)
			}
		}
	}
}

func TestComputeAdsAPISupplementsEconomicsRecords(t *testing.T) {
	economics := map[string]snapshot.EconomicsEntry{
		"E": {Sales: 100, UnitsSold: 2, PPCSpent: 5},
	}
	sponsoredAds := []snapshot.AdRecord{
		{ASIN: "E", Spend: 7},
		{ASIN: "E", Spend: 3},
	}
	totalSales := []snapshot.SaleRecord{{ASIN: "E", Amount: 999, Quantity: 9}}

	rec := recordByASIN(t, Compute(totalSales, sponsoredAds, nil, nil, economics), "E")
	if rec.Ads != 10 {
		t.Errorf("ads = %v, want 10 (ads API replaces ppcSpent seed, then accumulates)", rec.Ads)
	}
	if rec.Sales != 100 || rec.Quantity != 2 {
		t.Errorf("sales/quantity = %v/%v, want 100/2 (economics fields stay immutable)", rec.Sales, rec.Quantity)
	}
	if rec.Source != SourceEconomics {
		t.Errorf("source = %q, want %q", rec.Source, SourceEconomics)
	}
	if want := 100.0 - 10; rec.GrossProfit != want {
		t.Errorf("grossProfit = %v, want %v", rec.GrossProfit, want)
	}
}

func TestComputeDerivedEconomicsFees(t *testing.T) {
	economics := map[string]snapshot.EconomicsEntry{
		"D": {Sales: 200, UnitsSold: 4, PPCSpent: 30, FBAFees: 25, StorageFees: 5},
	}

	rec := recordByASIN(t, Compute(nil, nil, nil, nil, economics), "D")
	if rec.TotalFees != 30 {
		t.Errorf("totalFees = %v, want 30 (fbaFees + storageFees)", rec.TotalFees)
	}
	if want := 200.0 - 30 - 30; rec.GrossProfit != want {
		t.Errorf("grossProfit = %v, want %v", rec.GrossProfit, want)
	}
	if rec.ProfitMargin != 70 {
		t.Errorf("profitMargin = %v, want 70", rec.ProfitMargin)
	}
}
