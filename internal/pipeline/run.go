// Package pipeline provides the high-level orchestration for a match run:
// guardrail resolution, tradeoffs, pool scoring, shortlisting and recording.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/db"
	"github.com/jonathan/candidate-matcher/internal/guardrails"
	"github.com/jonathan/candidate-matcher/internal/logger"
	"github.com/jonathan/candidate-matcher/internal/metrics"
	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/jonathan/candidate-matcher/internal/pipeline/steps"
	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/selection"
	"github.com/jonathan/candidate-matcher/internal/tradeoffs"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// AgentName identifies match pipeline runs in the agent run history.
const AgentName = "match_pipeline"

const tracerName = "github.com/jonathan/candidate-matcher/internal/pipeline"

// Run outcomes reported to metrics
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Error categories recorded for failed runs
const (
	CategoryValidation = "validation"
	CategoryTradeoffs  = "tradeoffs"
	CategoryScoring    = "scoring"
	CategoryShortlist  = "shortlist"
	CategoryCancelled  = "cancelled"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// Recorder persists match runs and agent run history. *db.DB implements it.
type Recorder interface {
	CreateMatchRun(ctx context.Context, input *db.MatchRunInput) (uuid.UUID, error)
	SaveShortlistDecisions(ctx context.Context, runID uuid.UUID, decisions []types.ShortlistDecision) error
	CompleteMatchRun(ctx context.Context, runID uuid.UUID, outcome *db.RunOutcome) error
	RecordAgentRun(ctx context.Context, s types.WatchdogSnapshot) error
}

// RunOptions holds configuration for one pipeline run. ScoreOnly stops after
// scoring; nothing is shortlisted or recorded.
type RunOptions struct {
	Tenant     string
	Mode       types.Mode
	Job        *types.Job
	Pool       []types.PoolEntry
	Tradeoffs  *tradeoffs.Overrides
	ScoreOnly  bool
	Now        time.Time
	OnProgress ProgressCallback
}

// RunResult is everything a run produced
type RunResult struct {
	RunID      uuid.UUID              `json:"run_id"`
	Tenant     string                 `json:"tenant"`
	Plan       guardrails.Plan        `json:"plan"`
	Steps      []string               `json:"steps"`
	Guardrails guardrails.Config      `json:"guardrails"`
	Adjustment *tradeoffs.Adjustment  `json:"tradeoffs,omitempty"`
	Results    []ranking.MatchResult  `json:"results"`
	Shortlist  *types.ShortlistResult `json:"shortlist,omitempty"`
	Persisted  bool                   `json:"persisted"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   time.Duration          `json:"duration"`
}

// Engine runs the match pipeline against a guardrail policy
type Engine struct {
	policy      *guardrails.Policy
	recorder    Recorder
	logger      *zap.Logger
	metrics     *metrics.Metrics
	printer     *observability.Printer
	tracer      trace.Tracer
	clock       func() time.Time
	concurrency int
}

// Option configures an Engine
type Option func(*Engine)

// WithRecorder persists runs through r
func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithLogger sets the engine logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger.OrNop(l) }
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithPrinter enables verbose boxed output
func WithPrinter(p *observability.Printer) Option {
	return func(e *Engine) { e.printer = p }
}

// WithTracerProvider traces runs and steps with tp instead of the global provider
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) { e.tracer = tp.Tracer(tracerName) }
}

// WithClock overrides the wall clock used for durations
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithConcurrency bounds concurrent candidate scoring
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// NewEngine creates an Engine. A nil policy uses an in-memory store.
func NewEngine(policy *guardrails.Policy, opts ...Option) *Engine {
	if policy == nil {
		policy = guardrails.NewPolicy(guardrails.NewMemoryStore())
	}
	e := &Engine{
		policy: policy,
		logger: zap.NewNop(),
		tracer: otel.Tracer(tracerName),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunError wraps a failed run with the category recorded in agent history
type RunError struct {
	Category string
	Err      error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func fail(category string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		category = CategoryCancelled
	}
	return &RunError{Category: category, Err: err}
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, runID uuid.UUID, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			RunID:    runID.String(),
			Content:  content,
		})
	}
}

// Run executes one match run. Persistence failures are logged and reported as
// warnings; they never fail the run.
func (e *Engine) Run(ctx context.Context, opts RunOptions) (result *RunResult, err error) {
	if opts.Mode == "" {
		opts.Mode = types.ModeProduction
	}
	start := e.clock()
	runID := uuid.New()
	log := e.logger.With(
		zap.String("run_id", runID.String()),
		zap.String("tenant", opts.Tenant),
		zap.String("mode", string(opts.Mode)),
	)

	plan := guardrails.PlanFor(opts.Mode)
	result = &RunResult{RunID: runID, Tenant: opts.Tenant, Plan: plan}

	ctx, span := e.tracer.Start(ctx, "match.run", trace.WithAttributes(
		attribute.String("run.id", runID.String()),
		attribute.String("tenant", opts.Tenant),
		attribute.String("mode", string(plan.Mode)),
		attribute.Int("pool.size", len(opts.Pool)),
	))
	defer span.End()

	defer func() {
		result.Duration = e.clock().Sub(start)
		outcome := OutcomeSuccess
		if err != nil {
			outcome = OutcomeFailed
			log.Error("match run failed", zap.Error(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		e.metrics.PipelineRun(string(plan.Mode), outcome)
		e.recordAgentRun(ctx, log, result, opts.ScoreOnly, err)
	}()

	if opts.Job == nil {
		return result, fail(CategoryValidation, fmt.Errorf("job is required"))
	}
	if err := opts.Job.Validate(); err != nil {
		return result, fail(CategoryValidation, err)
	}

	persist := e.recorder != nil && !opts.ScoreOnly
	withTradeoffs := opts.Tradeoffs != nil && plan.Mode != types.ModeFireDrill
	result.Steps = steps.ForPlan(plan, withTradeoffs, persist)
	if opts.ScoreOnly {
		result.Steps = scoringSteps(result.Steps)
	}
	if err := steps.ValidatePlan(result.Steps); err != nil {
		return result, fail(CategoryValidation, err)
	}

	// load_guardrails
	stepCtx, stepSpan := e.startStep(ctx, steps.LoadGuardrails)
	cfg := guardrails.Effective(e.policy.Load(stepCtx, opts.Tenant), plan.Mode)
	stepSpan.End()
	emitProgress(&opts, runID, steps.LoadGuardrails, steps.CategoryPolicy,
		fmt.Sprintf("Loaded %s guardrails (%s strategy)", plan.Preset, cfg.Shortlist.Strategy), cfg)

	// resolve_tradeoffs
	if withTradeoffs {
		decl, err := tradeoffs.Resolve(tradeoffs.DefaultDeclaration(), opts.Tradeoffs)
		if err != nil {
			var validationErr *tradeoffs.ValidationError
			if !errors.As(err, &validationErr) {
				return result, fail(CategoryTradeoffs, err)
			}
			log.Warn("tradeoff overrides rejected, using default declaration", zap.Error(err))
			for _, fe := range validationErr.Errors {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("tradeoffs: %s: %s; using default declaration", fe.Field, fe.Message))
			}
		}
		adj := tradeoffs.ApplyToWeights(cfg.ScoringWeights(), decl)
		cfg = cfg.WithTradeoffs(adj)
		result.Adjustment = &adj
		emitProgress(&opts, runID, steps.ResolveTradeoffs, steps.CategoryPolicy,
			fmt.Sprintf("Applied tradeoffs (min score %+d)", adj.MinScoreAdjustment), adj)
	}
	result.Guardrails = cfg
	if e.printer != nil {
		e.printer.PrintJob(opts.Job)
		e.printer.PrintGuardrails(&cfg)
	}

	// score, confidence, explain
	weights := cfg.ScoringWeights()
	scoreOpts := &ranking.Options{
		Weights:         &weights,
		Verbosity:       cfg.Explain.Verbosity,
		IncludeWeights:  cfg.Explain.IncludeWeights,
		SkipConfidence:  !steps.Contains(result.Steps, steps.Confidence),
		SkipExplanation: !steps.Contains(result.Steps, steps.Explain),
		Concurrency:     e.concurrency,
	}

	stepCtx, stepSpan = e.startStep(ctx, steps.Score)
	scoreStart := time.Now()
	results, err := ranking.ScorePool(stepCtx, opts.Job, opts.Pool, scoreOpts, opts.Now)
	stepSpan.End()
	if err != nil {
		return result, fail(CategoryScoring, err)
	}
	e.metrics.ObserveScored(len(results), time.Since(scoreStart).Seconds())
	result.Results = results
	log.Info("scored candidate pool",
		zap.String("job_id", opts.Job.ID),
		zap.Int("candidates", len(results)),
	)
	emitProgress(&opts, runID, steps.Score, steps.CategoryScoring,
		fmt.Sprintf("Scored %d candidates", len(results)), nil)

	scored := ranking.ToScored(results)
	if e.printer != nil {
		e.printer.PrintRanking(scored)
	}
	if opts.ScoreOnly {
		return result, nil
	}

	// shortlist
	_, stepSpan = e.startStep(ctx, steps.Shortlist)
	shortlist, err := selection.RunShortlist(opts.Job, scored, cfg, plan.Mode)
	stepSpan.End()
	if err != nil {
		return result, fail(CategoryShortlist, err)
	}
	result.Shortlist = &shortlist
	for _, d := range shortlist.Decisions() {
		e.metrics.ShortlistDecision(string(shortlist.Strategy), string(d.Status))
	}
	log.Info("shortlist selected",
		zap.String("strategy", string(shortlist.Strategy)),
		zap.Int("shortlisted", len(shortlist.ShortlistedCandidates)),
		zap.Int("not_shortlisted", len(shortlist.NotShortlisted)),
		zap.Strings("notes", shortlist.Notes),
	)
	emitProgress(&opts, runID, steps.Shortlist, steps.CategorySelection,
		fmt.Sprintf("Shortlisted %d of %d candidates", len(shortlist.ShortlistedCandidates), len(results)), shortlist)
	if e.printer != nil {
		e.printer.PrintShortlist(&shortlist)
	}

	// record
	if steps.Contains(result.Steps, steps.Record) {
		stepCtx, stepSpan = e.startStep(ctx, steps.Record)
		recordErr := e.record(stepCtx, &opts, result)
		stepSpan.End()
		if recordErr != nil {
			log.Warn("failed to record match run", zap.Error(recordErr))
			result.Warnings = append(result.Warnings, recordErr.Error())
		} else {
			result.Persisted = true
			emitProgress(&opts, runID, steps.Record, steps.CategoryPersistence, "Recorded shortlist decisions", nil)
		}
	} else if plan.DryRun {
		log.Info("dry run, shortlist not recorded")
	}

	return result, nil
}

func (e *Engine) startStep(ctx context.Context, step string) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, "match."+step,
		trace.WithAttributes(attribute.String("step.category", steps.StepRegistry[step].Category)))
}

func (e *Engine) record(ctx context.Context, opts *RunOptions, result *RunResult) error {
	runID, err := e.recorder.CreateMatchRun(ctx, &db.MatchRunInput{
		ID:             result.RunID,
		TenantID:       opts.Tenant,
		JobID:          opts.Job.ID,
		Mode:           result.Plan.Mode,
		CandidateCount: len(result.Results),
		Guardrails:     result.Guardrails,
	})
	if err != nil {
		return err
	}

	shortlist := result.Shortlist
	if err := e.recorder.SaveShortlistDecisions(ctx, runID, shortlist.Decisions()); err != nil {
		_ = e.recorder.CompleteMatchRun(ctx, runID, &db.RunOutcome{Status: db.RunStatusFailed, ErrorMessage: err.Error()})
		return err
	}

	return e.recorder.CompleteMatchRun(ctx, runID, &db.RunOutcome{
		Status:      db.RunStatusCompleted,
		Strategy:    shortlist.Strategy,
		Shortlisted: len(shortlist.ShortlistedCandidates),
		Notes:       shortlist.Notes,
	})
}

// recordAgentRun appends the run to agent history for the watchdog.
func (e *Engine) recordAgentRun(ctx context.Context, log *zap.Logger, result *RunResult, scoreOnly bool, runErr error) {
	if e.recorder == nil {
		return
	}

	snapshot := types.WatchdogSnapshot{
		Agent:          AgentName,
		Status:         types.RunSuccess,
		DurationMs:     result.Duration.Milliseconds(),
		OutputComplete: runErr == nil && (result.Shortlist != nil || scoreOnly),
	}
	if runErr != nil {
		snapshot.Status = types.RunFailed
		var re *RunError
		if errors.As(runErr, &re) {
			snapshot.ErrorCategory = re.Category
		}
	}

	if err := e.recorder.RecordAgentRun(context.WithoutCancel(ctx), snapshot); err != nil {
		log.Warn("failed to record agent run", zap.Error(err))
	}
}

// scoringSteps trims a step list down to what a score-only run executes.
func scoringSteps(planned []string) []string {
	out := make([]string, 0, len(planned))
	for _, s := range planned {
		if s == steps.Shortlist || s == steps.Record {
			continue
		}
		out = append(out, s)
	}
	return out
}
