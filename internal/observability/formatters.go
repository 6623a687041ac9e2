// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/candidate-matcher/internal/guardrails"
	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/jonathan/candidate-matcher/internal/watchdog"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 64
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func optionalInt(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *v)
}

// PrintJob outputs a summary of the job requisition being matched.
func (p *Printer) PrintJob(job *types.Job) {
	if job == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job:       %s\n", job.ID))
	if job.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:     %s\n", job.Title))
	}
	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("Location:  %s\n", job.Location))
	}
	if job.SeniorityLevel != "" {
		sb.WriteString(fmt.Sprintf("Seniority: %s\n", job.SeniorityLevel))
	}

	if required := job.RequiredSkills(); len(required) > 0 {
		sb.WriteString("\nRequired:\n")
		writeSkills(&sb, required)
	}
	if optional := job.OptionalSkills(); len(optional) > 0 {
		sb.WriteString("\nNice-to-have:\n")
		writeSkills(&sb, optional)
	}

	p.printBox("JOB REQUISITION", strings.TrimSuffix(sb.String(), "\n"))
}

func writeSkills(sb *strings.Builder, skills []types.SkillRequirement) {
	count := min(len(skills), maxItemsToShow)
	for i := 0; i < count; i++ {
		s := skills[i]
		sb.WriteString(fmt.Sprintf("  • %s", s.Name))
		if s.Weight > 0 && s.Weight != 1 {
			sb.WriteString(fmt.Sprintf(" (w=%g)", s.Weight))
		}
		sb.WriteString("\n")
	}
	if len(skills) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(skills)-maxItemsToShow))
	}
}

// PrintRanking outputs the top scored candidates with their leading reasons.
func (p *Printer) PrintRanking(scored []types.ScoredCandidate) {
	if len(scored) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Candidates scored: %d\n\n", len(scored)))

	count := min(len(scored), maxItemsToShow)
	for i := 0; i < count; i++ {
		c := scored[i]
		sb.WriteString(fmt.Sprintf("#%d  %s\n", i+1, c.CandidateID))
		sb.WriteString(fmt.Sprintf("    Score: %d  Confidence: %s\n", c.Score, optionalInt(c.Confidence)))
		if c.Explanation != nil && len(c.Explanation.TopReasons) > 0 {
			sb.WriteString(fmt.Sprintf("    + %s\n", c.Explanation.TopReasons[0]))
		}
		if len(c.MissingSkills) > 0 {
			sb.WriteString(fmt.Sprintf("    - missing %s\n", strings.Join(c.MissingSkills, ", ")))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(scored) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more candidates", len(scored)-maxItemsToShow))
	}

	p.printBox("MATCH RANKING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintShortlist outputs shortlisted candidates, the count excluded and any notes.
func (p *Printer) PrintShortlist(result *types.ShortlistResult) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Strategy: %s\n", result.Strategy))
	sb.WriteString(fmt.Sprintf("Shortlisted: %d  Not shortlisted: %d\n",
		len(result.ShortlistedCandidates), len(result.NotShortlisted)))

	if len(result.ShortlistedCandidates) > 0 {
		sb.WriteString("\n")
		for _, d := range result.ShortlistedCandidates {
			sb.WriteString(fmt.Sprintf("%2d. %s  score %d  confidence %s\n",
				d.Rank, d.CandidateID, d.Score, optionalInt(d.Confidence)))
		}
	}

	if len(result.NotShortlisted) > 0 {
		sb.WriteString("\nExcluded:\n")
		count := min(len(result.NotShortlisted), maxItemsToShow)
		for i := 0; i < count; i++ {
			d := result.NotShortlisted[i]
			sb.WriteString(fmt.Sprintf("  ✗ %s: %s\n", d.CandidateID, d.Reason))
		}
		if len(result.NotShortlisted) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.NotShortlisted)-maxItemsToShow))
		}
	}

	for _, note := range result.Notes {
		sb.WriteString(fmt.Sprintf("\nNote: %s", note))
	}

	p.printBox("SHORTLIST", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintGuardrails outputs the effective guardrail policy.
func (p *Printer) PrintGuardrails(cfg *guardrails.Config) {
	if cfg == nil {
		return
	}

	w := cfg.ScoringWeights().Normalize()
	t := cfg.Thresholds

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Scoring:   %s\n", cfg.StrategyName()))
	sb.WriteString(fmt.Sprintf("Weights:   must %.2f nice %.2f exp %.2f loc %.2f sig %.2f\n",
		w.MustHave, w.NiceToHave, w.Experience, w.Location, w.CandidateSignal))
	sb.WriteString(fmt.Sprintf("Minimums:  match %d  shortlist %d  confidence %d\n",
		t.MinMatchScore, t.ShortlistMinScore, t.MinConfidence))
	sb.WriteString(fmt.Sprintf("Shortlist: %s (max %d)\n", cfg.Shortlist.Strategy, t.ShortlistMaxCandidates))
	sb.WriteString(fmt.Sprintf("Safety:    must-haves %t  exclude internal %t",
		cfg.Safety.RequireMustHaves, cfg.Safety.ExcludeInternalCandidates))

	p.printBox("GUARDRAILS", sb.String())
}

// PrintWatchdogReport outputs window metrics and any alerts raised.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintWatchdogReport(report *watchdog.Report) {
	if report == nil {
		return
	}

	s := report.Summary
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Runs: %d  Failed: %d  Incomplete: %d\n", s.SampleSize, s.FailedRuns, s.IncompleteRuns))
	sb.WriteString(fmt.Sprintf("Failure rate: %.1f%%  p95: %dms  Incomplete rate: %.1f%%",
		s.FailureRate*100, s.LatencyP95Ms, s.IncompleteRate*100))
	if !s.Evaluated {
		sb.WriteString("\nWindow below minimum sample size; no alerts evaluated.")
	}
	p.printBox("WATCHDOG", sb.String())

	if !report.HasAlerts() {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO ALERTS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	sb.Reset()
	for i, a := range report.Alerts {
		sb.WriteString(fmt.Sprintf("⚠ %s  value %g > threshold %g (n=%d)\n", a.Type, a.Value, a.Threshold, a.SampleSize))
		sb.WriteString(fmt.Sprintf("  %s", strings.Join(a.Tags, " ")))
		if i < len(report.Alerts)-1 {
			sb.WriteString("\n\n")
		}
	}
	p.printBox("ALERTS", sb.String())
}
