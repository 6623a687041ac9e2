// Package watchdog evaluates a trailing window of agent run outcomes and raises
// alerts when failure rate, latency or incomplete output drift past their
// thresholds.
package watchdog

import (
	"math"
	"sort"
	"time"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// AlertType names the metric an alert fired on
type AlertType string

// Alert types, in evaluation order
const (
	AlertFailureRate      AlertType = "FAILURE_RATE"
	AlertLatency          AlertType = "LATENCY"
	AlertIncompleteOutput AlertType = "INCOMPLETE_OUTPUT"
)

// Metric names used in tags
const (
	MetricFailureRate    = "failure_rate"
	MetricLatencyP95     = "latency_p95_ms"
	MetricIncompleteRate = "incomplete_rate"
)

// UnknownCategory is recorded for failed runs without an error category.
const UnknownCategory = "unknown"

// rateTolerance absorbs float error when a rate lands on threshold + jitter.
const rateTolerance = 1e-9

// Config holds the evaluation window and alert thresholds.
type Config struct {
	WindowSize              int     `json:"window_size" yaml:"window_size" mapstructure:"window_size"`
	MinWindow               int     `json:"min_window" yaml:"min_window" mapstructure:"min_window"`
	FailureRateThreshold    float64 `json:"failure_rate_threshold" yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`
	LatencyP95ThresholdMs   int64   `json:"latency_p95_threshold_ms" yaml:"latency_p95_threshold_ms" mapstructure:"latency_p95_threshold_ms"`
	IncompleteRateThreshold float64 `json:"incomplete_rate_threshold" yaml:"incomplete_rate_threshold" mapstructure:"incomplete_rate_threshold"`
	RateJitter              float64 `json:"rate_jitter" yaml:"rate_jitter" mapstructure:"rate_jitter"`
	LatencyJitterMs         int64   `json:"latency_jitter_ms" yaml:"latency_jitter_ms" mapstructure:"latency_jitter_ms"`
	SlowestRuns             int     `json:"slowest_runs" yaml:"slowest_runs" mapstructure:"slowest_runs"`
}

// DefaultConfig returns the default watchdog configuration.
func DefaultConfig() Config {
	return Config{
		WindowSize:              25,
		MinWindow:               10,
		FailureRateThreshold:    0.25,
		LatencyP95ThresholdMs:   30000,
		IncompleteRateThreshold: 0.2,
		RateJitter:              0.05,
		LatencyJitterMs:         2000,
		SlowestRuns:             3,
	}
}

// withDefaults fills the window sizes when unset. Thresholds and jitter are
// taken as given so callers can set them to zero.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WindowSize <= 0 {
		c.WindowSize = d.WindowSize
	}
	if c.MinWindow <= 0 {
		c.MinWindow = d.MinWindow
	}
	if c.SlowestRuns <= 0 {
		c.SlowestRuns = d.SlowestRuns
	}
	return c
}

// RunRef identifies one run in alert context.
type RunRef struct {
	Agent      string     `json:"agent"`
	DurationMs int64      `json:"duration_ms"`
	Status     string     `json:"status"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

// AlertContext carries the evidence behind an alert.
type AlertContext struct {
	FailedRuns      int            `json:"failed_runs"`
	SlowestRuns     []RunRef       `json:"slowest_runs"`
	ErrorCategories map[string]int `json:"error_categories"`
}

// Alert is raised when a metric exceeds its threshold plus jitter.
type Alert struct {
	Type       AlertType    `json:"type"`
	Value      float64      `json:"value"`
	Threshold  float64      `json:"threshold"`
	SampleSize int          `json:"sample_size"`
	Tags       []string     `json:"tags"`
	Context    AlertContext `json:"context"`
}

// Summary describes the evaluated window. Evaluated is false when the window
// is smaller than MinWindow, in which case no alert can fire.
type Summary struct {
	SampleSize     int     `json:"sample_size"`
	FailedRuns     int     `json:"failed_runs"`
	IncompleteRuns int     `json:"incomplete_runs"`
	FailureRate    float64 `json:"failure_rate"`
	LatencyP95Ms   int64   `json:"latency_p95_ms"`
	IncompleteRate float64 `json:"incomplete_rate"`
	Evaluated      bool    `json:"evaluated"`
}

// Report is the result of one evaluation.
type Report struct {
	Summary Summary `json:"summary"`
	Alerts  []Alert `json:"alerts"`
}

// HasAlerts reports whether any alert fired.
func (r *Report) HasAlerts() bool {
	return len(r.Alerts) > 0
}

// Evaluate inspects the trailing window of snapshots. A nil cfg uses
// DefaultConfig. It holds no state between calls.
func Evaluate(snapshots []types.WatchdogSnapshot, cfg *Config) Report {
	c := DefaultConfig()
	if cfg != nil {
		c = cfg.withDefaults()
	}

	window := snapshots
	if len(window) > c.WindowSize {
		window = window[len(window)-c.WindowSize:]
	}

	report := Report{Alerts: make([]Alert, 0)}
	n := len(window)
	report.Summary.SampleSize = n
	if n == 0 {
		return report
	}

	durations := make([]int64, 0, n)
	categories := make(map[string]int)
	for _, s := range window {
		durations = append(durations, s.DurationMs)
		if s.Failed() {
			report.Summary.FailedRuns++
			categories[category(s)]++
		}
		if !s.OutputComplete {
			report.Summary.IncompleteRuns++
		}
	}

	report.Summary.FailureRate = float64(report.Summary.FailedRuns) / float64(n)
	report.Summary.IncompleteRate = float64(report.Summary.IncompleteRuns) / float64(n)
	report.Summary.LatencyP95Ms = Percentile(durations, 0.95)
	report.Summary.Evaluated = n >= c.MinWindow

	if !report.Summary.Evaluated {
		return report
	}

	ctx := AlertContext{
		FailedRuns:      report.Summary.FailedRuns,
		SlowestRuns:     slowest(window, c.SlowestRuns),
		ErrorCategories: categories,
	}
	agents := agentNames(window)

	if exceeds(report.Summary.FailureRate, c.FailureRateThreshold, c.RateJitter) {
		report.Alerts = append(report.Alerts, newAlert(AlertFailureRate, MetricFailureRate,
			report.Summary.FailureRate, c.FailureRateThreshold, n, agents, categories, ctx))
	}
	if report.Summary.LatencyP95Ms > c.LatencyP95ThresholdMs+c.LatencyJitterMs {
		report.Alerts = append(report.Alerts, newAlert(AlertLatency, MetricLatencyP95,
			float64(report.Summary.LatencyP95Ms), float64(c.LatencyP95ThresholdMs), n, agents, nil, ctx))
	}
	if exceeds(report.Summary.IncompleteRate, c.IncompleteRateThreshold, c.RateJitter) {
		report.Alerts = append(report.Alerts, newAlert(AlertIncompleteOutput, MetricIncompleteRate,
			report.Summary.IncompleteRate, c.IncompleteRateThreshold, n, agents, nil, ctx))
	}

	return report
}

// exceeds reports whether rate is strictly above threshold + jitter.
func exceeds(rate, threshold, jitter float64) bool {
	return rate > threshold+jitter+rateTolerance
}

// Percentile returns the nearest-rank percentile of values, sorted[ceil(p*n)-1].
// It returns 0 for an empty slice and does not modify values.
func Percentile(values []int64, p float64) int64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int64(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func newAlert(t AlertType, metric string, value, threshold float64, n int, agents []string, categories map[string]int, ctx AlertContext) Alert {
	tags := []string{"watchdog", "metric:" + metric}
	for _, a := range agents {
		tags = append(tags, "agent:"+a)
	}
	for cat := range categories {
		tags = append(tags, "error:"+cat)
	}
	sort.Strings(tags)

	return Alert{
		Type:       t,
		Value:      value,
		Threshold:  threshold,
		SampleSize: n,
		Tags:       tags,
		Context:    copyContext(ctx),
	}
}

// copyContext gives each alert its own histogram and run list.
func copyContext(ctx AlertContext) AlertContext {
	out := AlertContext{
		FailedRuns:      ctx.FailedRuns,
		SlowestRuns:     append([]RunRef(nil), ctx.SlowestRuns...),
		ErrorCategories: make(map[string]int, len(ctx.ErrorCategories)),
	}
	for k, v := range ctx.ErrorCategories {
		out.ErrorCategories[k] = v
	}
	return out
}

func category(s types.WatchdogSnapshot) string {
	if s.ErrorCategory == "" {
		return UnknownCategory
	}
	return s.ErrorCategory
}

func agentNames(window []types.WatchdogSnapshot) []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, s := range window {
		if s.Agent == "" || seen[s.Agent] {
			continue
		}
		seen[s.Agent] = true
		names = append(names, s.Agent)
	}
	return names
}

// slowest returns up to n runs by descending duration; equal durations keep
// window order.
func slowest(window []types.WatchdogSnapshot, n int) []RunRef {
	idx := make([]int, len(window))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return window[idx[a]].DurationMs > window[idx[b]].DurationMs
	})
	if len(idx) > n {
		idx = idx[:n]
	}

	out := make([]RunRef, 0, len(idx))
	for _, i := range idx {
		s := window[i]
		out = append(out, RunRef{
			Agent:      s.Agent,
			DurationMs: s.DurationMs,
			Status:     string(s.Status),
			Timestamp:  s.Timestamp,
		})
	}
	return out
}
