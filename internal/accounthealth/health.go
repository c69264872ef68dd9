package accounthealth

import (
	"github.com/EstoreFactory109/SellerQI-sub007/internal/snapshot"
)

// Health statuses derived from the AHR score thresholds.
const (
	StatusHealthy   = "Healthy"
	StatusAtRisk    = "At Risk"
	StatusUnhealthy = "Unhealthy"
	StatusNoData    = "Data Not Available"
)

// Check sentinels the report uses for passing account-status flags.
const (
	sentinelNormal = "NORMAL"
	sentinelGood   = "GOOD"
)

// Result is the scored health rating served on the dashboard.
type Result struct {
	Status     string `json:"status"`
	Percentage int    `json:"Percentage"`
}

// CalculatePercentage maps the raw AHR score onto the fixed status ladder.
// A missing report or missing score yields the Data Not Available sentinel.
func CalculatePercentage(data *snapshot.SellerPerformance) Result {
	if data == nil || data.AHRScore == nil {
		return Result{Status: StatusNoData, Percentage: 0}
	}
	score := *data.AHRScore
	switch {
	case score >= 800:
		return Result{Status: StatusHealthy, Percentage: 100}
	case score >= 200:
		return Result{Status: StatusAtRisk, Percentage: 80}
	case score >= 100:
		return Result{Status: StatusAtRisk, Percentage: 50}
	default:
		return Result{Status: StatusUnhealthy, Percentage: 30}
	}
}

// CheckResult statuses.
const (
	CheckError   = "Error"
	CheckSuccess = "Success"
)

// CheckResult is a single account check verdict. The zero value marshals as
// {}, which is the wire shape for count checks that did not trigger.
type CheckResult struct {
	Status     string `json:"status,omitempty"`
	Message    string `json:"Message,omitempty"`
	HowToSolve string `json:"HowTOSolve,omitempty"`
}

// ErrorMap is the structured pass/fail breakdown of the account health
// report. The first six checks always carry a verdict; the count-based
// checks stay empty unless they trigger. TotalErrors counts the entries
// whose status is Error.
type ErrorMap struct {
	AccountStatus           CheckResult `json:"accountStatus"`
	PolicyViolations        CheckResult `json:"PolicyViolations"`
	ValidTrackingRateStatus CheckResult `json:"validTrackingRateStatus"`
	OrderWithDefectsStatus  CheckResult `json:"orderWithDefectsStatus"`
	LateShipmentRateStatus  CheckResult `json:"lateShipmentRateStatus"`
	CancellationRate        CheckResult `json:"CancellationRate"`
	NegativeFeedbacks       CheckResult `json:"negativeFeedbacks"`
	NCX                     CheckResult `json:"NCX"`
	AToZClaims              CheckResult `json:"a_z_claims"`
	ResponseUnder24Hours    CheckResult `json:"responseUnder24HoursCount"`
	TotalErrors             int         `json:"TotalErrors"`
}

// CheckAccountHealth builds the ErrorMap from the two report generations.
// Returns nil when the payload carries no usable data. The upstream
// populated probe reads a length off each metric, so only the status-flag
// strings can mark the payload populated; numeric counters have no length
// and never pass the gate on their own.
func CheckAccountHealth(v2 *snapshot.AccountHealthV2, v1 *snapshot.AccountHealthV1) *ErrorMap {
	if !hasStatusFlags(v2) {
		return nil
	}

	em := &ErrorMap{}

	em.AccountStatus = statusCheck(v2.AccountStatus, sentinelNormal,
		"Your account status is not normal.",
		"Review the account health page in Seller Central and resolve the flagged violations.")
	em.PolicyViolations = statusCheck(v2.PolicyViolations, sentinelGood,
		"There are policy violations on your account.",
		"Open the policy compliance section and appeal or fix each listed violation.")
	em.ValidTrackingRateStatus = statusCheck(v2.ValidTrackingRateStatus, sentinelGood,
		"Your valid tracking rate is below the required threshold.",
		"Upload valid tracking numbers for all seller-fulfilled shipments.")
	em.OrderWithDefectsStatus = statusCheck(v2.OrderWithDefectsStatus, sentinelGood,
		"Your order defect rate is above the allowed threshold.",
		"Investigate recent negative feedback, A-to-z claims and chargebacks.")
	em.LateShipmentRateStatus = statusCheck(v2.LateShipmentRateStatus, sentinelGood,
		"Your late shipment rate is above the allowed threshold.",
		"Confirm shipments on time or adjust your handling time settings.")
	em.CancellationRate = statusCheck(v2.CancellationRate, sentinelGood,
		"Your pre-fulfillment cancellation rate is too high.",
		"Keep inventory levels accurate to avoid cancelling confirmed orders.")

	for _, c := range []CheckResult{
		em.AccountStatus, em.PolicyViolations, em.ValidTrackingRateStatus,
		em.OrderWithDefectsStatus, em.LateShipmentRateStatus, em.CancellationRate,
	} {
		if c.Status == CheckError {
			em.TotalErrors++
		}
	}

	if v1 != nil {
		if snapshot.Float(v1.NegativeFeedbacks) > 0 {
			em.NegativeFeedbacks = CheckResult{
				Status:     CheckError,
				Message:    "You have received negative feedback from buyers.",
				HowToSolve: "Contact the buyers to resolve their complaints and request feedback removal where eligible.",
			}
			em.TotalErrors++
		}
		ncx := snapshot.Float(v1.LateShipmentCount) +
			snapshot.Float(v1.PreFulfillmentCancellationCount) +
			snapshot.Float(v1.RefundsCount)
		if ncx > 0 {
			em.NCX = CheckResult{
				Status:     CheckError,
				Message:    "Orders with a negative customer experience were detected.",
				HowToSolve: "Reduce late shipments, cancellations and refunds by keeping stock and handling times accurate.",
			}
			em.TotalErrors++
		}
		if snapshot.Float(v1.AToZClaims) != 0 {
			em.AToZClaims = CheckResult{
				Status:     CheckError,
				Message:    "There are open A-to-z guarantee claims against your account.",
				HowToSolve: "Respond to each claim in Seller Central before the response deadline.",
			}
			em.TotalErrors++
		}
		if snapshot.Float(v1.ResponseUnder24HoursCount) != 0 {
			em.ResponseUnder24Hours = CheckResult{
				Status:     CheckError,
				Message:    "Buyer messages were not answered within 24 hours.",
				HowToSolve: "Answer every buyer message within 24 hours, including weekends and holidays.",
			}
			em.TotalErrors++
		}
	}

	return em
}

func statusCheck(value, want, message, howToSolve string) CheckResult {
	if value != want {
		return CheckResult{Status: CheckError, Message: message, HowToSolve: howToSolve}
	}
	return CheckResult{Status: CheckSuccess, Message: "No issues detected."}
}

func hasStatusFlags(v2 *snapshot.AccountHealthV2) bool {
	if v2 == nil {
		return false
	}
	return v2.AccountStatus != "" ||
		v2.PolicyViolations != "" ||
		v2.ValidTrackingRateStatus != "" ||
		v2.OrderWithDefectsStatus != "" ||
		v2.LateShipmentRateStatus != "" ||
		v2.CancellationRate != ""
}
