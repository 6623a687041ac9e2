// Package metrics exposes the Prometheus collectors for scoring, shortlisting,
// guardrail resolution and the watchdog.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "candidate_matcher"

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	CandidatesScored    prometheus.Counter
	PoolScoreDuration   prometheus.Histogram
	ShortlistDecisions  *prometheus.CounterVec
	GuardrailFallbacks  *prometheus.CounterVec
	GuardrailSaves      *prometheus.CounterVec
	GuardrailCacheReads *prometheus.CounterVec
	WatchdogAlerts      *prometheus.CounterVec
	PipelineRuns        *prometheus.CounterVec
}

// New registers the collectors on reg. Use a fresh prometheus.NewRegistry() in
// tests; registering twice on the same registerer panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CandidatesScored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidates_scored_total",
			Help:      "Total number of candidates scored against a job",
		}),
		PoolScoreDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pool_score_duration_seconds",
			Help:      "Duration of scoring a whole candidate pool in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ShortlistDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shortlist_decisions_total",
			Help:      "Shortlist decisions by strategy and status",
		}, []string{"strategy", "status"}),
		GuardrailFallbacks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guardrail_fallbacks_total",
			Help:      "Guardrail loads that fell back to defaults, by reason",
		}, []string{"reason"}),
		GuardrailSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guardrail_saves_total",
			Help:      "Guardrail save attempts by result",
		}, []string{"result"}),
		GuardrailCacheReads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guardrail_cache_reads_total",
			Help:      "Guardrail cache lookups by result",
		}, []string{"result"}),
		WatchdogAlerts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_alerts_total",
			Help:      "Watchdog alerts raised by type",
		}, []string{"type"}),
		PipelineRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Match pipeline runs by mode and outcome",
		}, []string{"mode", "outcome"}),
	}
}

// ObserveScored records a scored pool of n candidates taking seconds.
func (m *Metrics) ObserveScored(n int, seconds float64) {
	if m == nil {
		return
	}
	m.CandidatesScored.Add(float64(n))
	m.PoolScoreDuration.Observe(seconds)
}

// ShortlistDecision counts one decision.
func (m *Metrics) ShortlistDecision(strategy, status string) {
	if m == nil {
		return
	}
	m.ShortlistDecisions.WithLabelValues(strategy, status).Inc()
}

// GuardrailFallback counts a guardrail load that returned defaults.
func (m *Metrics) GuardrailFallback(reason string) {
	if m == nil {
		return
	}
	m.GuardrailFallbacks.WithLabelValues(reason).Inc()
}

// GuardrailSave counts a save attempt ("created", "updated" or "rejected").
func (m *Metrics) GuardrailSave(result string) {
	if m == nil {
		return
	}
	m.GuardrailSaves.WithLabelValues(result).Inc()
}

// GuardrailCacheRead counts a cache lookup ("hit", "miss" or "error").
func (m *Metrics) GuardrailCacheRead(result string) {
	if m == nil {
		return
	}
	m.GuardrailCacheReads.WithLabelValues(result).Inc()
}

// WatchdogAlert counts a raised alert.
func (m *Metrics) WatchdogAlert(alertType string) {
	if m == nil {
		return
	}
	m.WatchdogAlerts.WithLabelValues(alertType).Inc()
}

// PipelineRun counts a finished pipeline run.
func (m *Metrics) PipelineRun(mode, outcome string) {
	if m == nil {
		return
	}
	m.PipelineRuns.WithLabelValues(mode, outcome).Inc()
}
