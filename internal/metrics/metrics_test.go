package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveScored(12, 0.25)
	m.ShortlistDecision("quality", "SHORTLISTED")
	m.ShortlistDecision("quality", "SHORTLISTED")
	m.GuardrailFallback("store_error")
	m.GuardrailSave("created")
	m.GuardrailCacheRead("hit")
	m.WatchdogAlert("LATENCY")
	m.PipelineRun("production", "success")

	assert.Equal(t, 12.0, testutil.ToFloat64(m.CandidatesScored))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ShortlistDecisions.WithLabelValues("quality", "SHORTLISTED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardrailFallbacks.WithLabelValues("store_error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardrailSaves.WithLabelValues("created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardrailCacheReads.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.WatchdogAlerts.WithLabelValues("LATENCY")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PipelineRuns.WithLabelValues("production", "success")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveScored(1, 1)
		m.ShortlistDecision("strict", "NOT_SHORTLISTED")
		m.GuardrailFallback("x")
		m.GuardrailSave("rejected")
		m.GuardrailCacheRead("miss")
		m.WatchdogAlert("FAILURE_RATE")
		m.PipelineRun("sandbox", "error")
	})
}

func TestMetrics_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.GuardrailFallback("no_store")

	count, err := testutil.GatherAndCount(reg, "candidate_matcher_guardrail_fallbacks_total")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
