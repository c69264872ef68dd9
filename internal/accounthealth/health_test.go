package accounthealth

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
)

func scorePtr(v float64) *float64 { return &v }

func TestCalculatePercentageThresholds(t *testing.T) {
	tests := []struct {
		name       string
		data       *snapshot.SellerPerformance
		status     string
		percentage int
	}{
		{"score 800", &snapshot.SellerPerformance{AHRScore: scorePtr(800)}, StatusHealthy, 100},
		{"score 1000", &snapshot.SellerPerformance{AHRScore: scorePtr(1000)}, StatusHealthy, 100},
		{"score 799", &snapshot.SellerPerformance{AHRScore: scorePtr(799)}, StatusAtRisk, 80},
		{"score 500", &snapshot.SellerPerformance{AHRScore: scorePtr(500)}, StatusAtRisk, 80},
		{"score 200", &snapshot.SellerPerformance{AHRScore: scorePtr(200)}, StatusAtRisk, 80},
		{"score 199", &snapshot.SellerPerformance{AHRScore: scorePtr(199)}, StatusAtRisk, 50},
		{"score 100", &snapshot.SellerPerformance{AHRScore: scorePtr(100)}, StatusAtRisk, 50},
		{"score 99", &snapshot.SellerPerformance{AHRScore: scorePtr(99)}, StatusUnhealthy, 30},
		{"score 0", &snapshot.SellerPerformance{AHRScore: scorePtr(0)}, StatusUnhealthy, 30},
		{"missing score", &snapshot.SellerPerformance{}, StatusNoData, 0},
		{"nil report", nil, StatusNoData, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculatePercentage(tc.data)
			if got.Status != tc.status || got.Percentage != tc.percentage {
				t.Errorf("got %s/%d, want %s/%d", got.Status, got.Percentage, tc.status, tc.percentage)
			}
		})
	}
}

func allBadV2() *snapshot.AccountHealthV2 {
	return &snapshot.AccountHealthV2{
		AccountStatus:           "AT_RISK",
		PolicyViolations:        "BAD",
		ValidTrackingRateStatus: "POOR",
		OrderWithDefectsStatus:  "POOR",
		LateShipmentRateStatus:  "POOR",
		CancellationRate:        "POOR",
	}
}

func TestCheckAccountHealthAllTriggered(t *testing.T) {
	v1 := &snapshot.AccountHealthV1{
		NegativeFeedbacks:               3,
		LateShipmentCount:               1,
		PreFulfillmentCancellationCount: 2,
		RefundsCount:                    4,
		AToZClaims:                      1,
		ResponseUnder24HoursCount:       2,
	}

	em := CheckAccountHealth(allBadV2(), v1)
	if em == nil {
		t.Fatal("got nil, want populated error map")
	}
	if em.TotalErrors != 10 {
		t.Errorf("TotalErrors = %d, want 10", em.TotalErrors)
	}
	if em.NCX.Status != CheckError {
		t.Errorf("NCX status = %q, want Error (late 1 + cancel 2 + refunds 4)", em.NCX.Status)
	}
}

func TestCheckAccountHealthAllClean(t *testing.T) {
	v2 := &snapshot.AccountHealthV2{
		AccountStatus:           "NORMAL",
		PolicyViolations:        "GOOD",
		ValidTrackingRateStatus: "GOOD",
		OrderWithDefectsStatus:  "GOOD",
		LateShipmentRateStatus:  "GOOD",
		CancellationRate:        "GOOD",
	}
	v1 := &snapshot.AccountHealthV1{}

	em := CheckAccountHealth(v2, v1)
	if em == nil {
		t.Fatal("got nil, want populated error map")
	}
	if em.TotalErrors != 0 {
		t.Errorf("TotalErrors = %d, want 0", em.TotalErrors)
	}
	if em.AccountStatus.Status != CheckSuccess {
		t.Errorf("accountStatus = %q, want Success", em.AccountStatus.Status)
	}
}

// The count checks are asymmetric with the status-flag checks: when a count
// check does not trigger it stays an empty object on the wire rather than a
// Success verdict.
func TestCheckAccountHealthUntriggeredCountsMarshalEmpty(t *testing.T) {
	em := CheckAccountHealth(allBadV2(), &snapshot.AccountHealthV1{})

	raw, err := json.Marshal(em)
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)
	if !strings.Contains(body, `"negativeFeedbacks":{}`) {
		t.Errorf("negativeFeedbacks did not marshal as {}: %s", body)
	}
	if !strings.Contains(body, `"NCX":{}`) {
		t.Errorf("NCX did not marshal as {}: %s", body)
	}
	if !strings.Contains(body, `"a_z_claims":{}`) {
		t.Errorf("a_z_claims did not marshal as {}: %s", body)
	}
	if em.TotalErrors != 6 {
		t.Errorf("TotalErrors = %d, want 6 (status flags only)", em.TotalErrors)
	}
}

// Numeric counters alone never mark the payload as populated; the probe only
// sees the status-flag strings.
func TestCheckAccountHealthEmptyPayload(t *testing.T) {
	if em := CheckAccountHealth(nil, nil); em != nil {
		t.Errorf("got %+v, want nil for absent inputs", em)
	}
	v1 := &snapshot.AccountHealthV1{NegativeFeedbacks: 5, AToZClaims: 2}
	if em := CheckAccountHealth(&snapshot.AccountHealthV2{}, v1); em != nil {
		t.Errorf("got %+v, want nil when only counters carry data", em)
	}
}
