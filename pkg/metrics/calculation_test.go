package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCalculationMetricsExports(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewCalculationMetrics(reg)

	metrics.ObserveDuration("issues-data", 120*time.Millisecond)
	metrics.IncSuccess("issues-data")
	metrics.IncFailure("issue-summary")
	metrics.IncDegraded("profitability")
	metrics.IncDegraded("profitability")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	byName := map[string]*dto.MetricFamily{}
	for _, fam := range families {
		byName[fam.GetName()] = fam
	}

	if fam := byName["calculation_success"]; fam == nil || fam.GetMetric()[0].GetCounter().GetValue() != 1 {
		t.Fatalf("expected one success, got %v", fam)
	}
	if fam := byName["calculation_degraded_subresults"]; fam == nil || fam.GetMetric()[0].GetCounter().GetValue() != 2 {
		t.Fatalf("expected two degraded counts, got %v", fam)
	}
	if fam := byName["calculation_duration_seconds"]; fam == nil {
		t.Fatalf("expected duration histogram to be registered")
	}
}

func TestCalculationMetricsNilSafe(t *testing.T) {
	var metrics *CalculationMetrics
	metrics.IncSuccess("x")
	metrics.IncFailure("x")
	metrics.IncDegraded("x")
	metrics.ObserveDuration("x", time.Second)

	empty := NewCalculationMetrics(nil)
	empty.IncSuccess("x")
}
