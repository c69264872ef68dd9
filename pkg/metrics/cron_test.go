package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestCronJobMetricsRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.ObserveDuration("issue-sweep", 250*time.Millisecond)
	m.IncSuccess("issue-sweep")
	m.IncSuccess("issue-sweep")
	m.IncFailure("issue-sweep")

	if got := testutil.ToFloat64(m.success.WithLabelValues("issue-sweep")); got != 2 {
		t.Fatalf("success counter: want 2, got %f", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("issue-sweep")); got != 1 {
		t.Fatalf("failure counter: want 1, got %f", got)
	}
	if sum := histogramSum(t, reg, "cron_job_duration_seconds", "issue-sweep"); sum < 0.25 || sum > 0.26 {
		t.Fatalf("duration sum: want ~0.25, got %f", sum)
	}
}

func TestCronJobMetricsLabelsUnnamedJobs(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCronJobMetrics(reg)

	m.IncSuccess("")

	if got := testutil.ToFloat64(m.success.WithLabelValues("unknown")); got != 1 {
		t.Fatalf("blank job should count under the unknown label, got %f", got)
	}
}

func TestCronJobMetricsNoopWithoutRegistry(t *testing.T) {
	m := NewCronJobMetrics(nil)

	// must not panic
	m.ObserveDuration("issue-sweep", time.Second)
	m.IncSuccess("issue-sweep")
	m.IncFailure("issue-sweep")
}

func histogramSum(t *testing.T, reg *prometheus.Registry, name, job string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabel(metric.GetLabel(), "job", job) {
				return metric.GetHistogram().GetSampleSum()
			}
		}
	}
	t.Fatalf("histogram %q with job=%q not found", name, job)
	return 0
}

func hasLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
