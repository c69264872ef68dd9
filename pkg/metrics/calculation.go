package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CalculationMetrics records the issue aggregation pipeline behavior.
type CalculationMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
	degraded *prometheus.CounterVec
}

// NewCalculationMetrics registers the calculation metrics on the provided registerer.
func NewCalculationMetrics(reg prometheus.Registerer) *CalculationMetrics {
	if reg == nil {
		return &CalculationMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "calculation_duration_seconds",
		Help:    "Duration of dashboard calculations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"service"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calculation_success",
		Help: "Successful dashboard calculations.",
	}, []string{"service"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calculation_failure",
		Help: "Failed dashboard calculations.",
	}, []string{"service"})
	degraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "calculation_degraded_subresults",
		Help: "Sub-calculations that fell back to an empty result.",
	}, []string{"step"})
	reg.MustRegister(duration, success, failure, degraded)
	return &CalculationMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
		degraded: degraded,
	}
}

// ObserveDuration records the duration for the named calculation service.
func (c *CalculationMetrics) ObserveDuration(service string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(jobLabel(service)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named calculation service.
func (c *CalculationMetrics) IncSuccess(service string) {
	if c == nil || c.success == nil {
		return
	}
	c.success.WithLabelValues(jobLabel(service)).Inc()
}

// IncFailure increments the failure counter for the named calculation service.
func (c *CalculationMetrics) IncFailure(service string) {
	if c == nil || c.failure == nil {
		return
	}
	c.failure.WithLabelValues(jobLabel(service)).Inc()
}

// IncDegraded counts a sub-calculation that degraded to its zero result.
func (c *CalculationMetrics) IncDegraded(step string) {
	if c == nil || c.degraded == nil {
		return
	}
	c.degraded.WithLabelValues(jobLabel(step)).Inc()
}
