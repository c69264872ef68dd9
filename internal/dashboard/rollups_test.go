package dashboard

import (
	"testing"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
)

func TestCalculateDateWiseTotalCostsRounding(t *testing.T) {
	rows := []snapshot.PPCSpendRow{
		{Date: "2024-01-01", Cost: 1.005, Sales7d: "2.005"},
	}

	out := CalculateDateWiseTotalCosts(rows)
	if len(out) != 1 {
		t.Fatalf("got %d rows, want 1", len(out))
	}
	// Round-half-up through x*100: 1.005 sits just below 100.5 in binary
	// floating point, so it rounds down.
	if out[0].TotalCost != 1 {
		t.Errorf("totalCost = %v, want 1", out[0].TotalCost)
	}
	if out[0].Sales != 2 {
		t.Errorf("sales = %v, want 2", out[0].Sales)
	}
}

func TestCalculateDateWiseTotalCostsGroupsAndSorts(t *testing.T) {
	rows := []snapshot.PPCSpendRow{
		{Date: "2024-01-02T00:00:00Z", Cost: 3, Sales7d: 1},
		{Date: "2024-01-01", Cost: 1.25, Sales7d: 2},
		{Date: "2024-01-02", Cost: "2.5", Sales7d: 4},
		{Date: "", Cost: 100},
	}

	out := CalculateDateWiseTotalCosts(rows)
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2 (dateless row dropped)", len(out))
	}
	if out[0].Date != "2024-01-01" || out[1].Date != "2024-01-02" {
		t.Errorf("dates = %s, %s, want ascending 2024-01-01, 2024-01-02", out[0].Date, out[1].Date)
	}
	if out[1].TotalCost != 5.5 {
		t.Errorf("2024-01-02 totalCost = %v, want 5.5 (timestamped row grouped into day)", out[1].TotalCost)
	}
}

func TestCalculateCampaignWiseTotalSalesAndCost(t *testing.T) {
	rows := []snapshot.PPCSpendRow{
		{CampaignID: "c1", CampaignName: "Alpha", Cost: 5, Sales7d: 10},
		{CampaignID: "c2", CampaignName: "Beta", Cost: 20, Sales7d: 8},
		{CampaignID: "c1", Cost: 3, Sales7d: 2},
		{CampaignID: "", Cost: 50},
	}

	out := CalculateCampaignWiseTotalSalesAndCost(rows)
	if len(out) != 2 {
		t.Fatalf("got %d campaigns, want 2", len(out))
	}
	if out[0].CampaignID != "c2" {
		t.Errorf("first campaign = %s, want c2 (descending by spend)", out[0].CampaignID)
	}
	if out[1].TotalSpend != 8 || out[1].TotalSales != 12 {
		t.Errorf("c1 spend/sales = %v/%v, want 8/12", out[1].TotalSpend, out[1].TotalSales)
	}
	if out[1].CampaignName != "Alpha" {
		t.Errorf("c1 name = %q, want first-seen name Alpha", out[1].CampaignName)
	}
}
