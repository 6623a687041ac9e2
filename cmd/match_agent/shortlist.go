package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-matcher/internal/ingestion"
	"github.com/jonathan/candidate-matcher/internal/pipeline"
	"github.com/jonathan/candidate-matcher/internal/schemas"
	"github.com/jonathan/candidate-matcher/internal/tradeoffs"
)

type shortlistOptions struct {
	job        string
	candidates string
	tradeoffs  string
	out        string
}

func newShortlistCmd(a *app) *cobra.Command {
	opts := &shortlistOptions{}

	cmd := &cobra.Command{
		Use:   "shortlist",
		Short: "Score a pool and select a shortlist",
		Long: `Runs the full match pipeline for one job: guardrail resolution, optional tradeoffs,
scoring, confidence, explanations and shortlist selection. Decisions are recorded
when a database is configured, except in sandbox mode.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShortlist(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.job, "job", "j", "", "Path to job YAML/JSON file (required)")
	cmd.Flags().StringVarP(&opts.candidates, "candidates", "c", "", "Path to candidate pool YAML/JSON file (required)")
	cmd.Flags().StringVarP(&opts.tradeoffs, "tradeoffs", "t", "", "Path to tradeoff overrides YAML/JSON file")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Path to output JSON file (default stdout)")
	markRequired(cmd, "job", "candidates")

	return cmd
}

func runShortlist(cmd *cobra.Command, a *app, opts *shortlistOptions) error {
	job, err := ingestion.LoadJob(opts.job)
	if err != nil {
		return err
	}
	pool, err := ingestion.LoadPool(opts.candidates)
	if err != nil {
		return err
	}

	var overrides *tradeoffs.Overrides
	if opts.tradeoffs != "" {
		overrides, err = ingestion.LoadTradeoffs(opts.tradeoffs)
		var schemaErr *schemas.ValidationError
		switch {
		case errors.As(err, &schemaErr):
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: invalid tradeoffs (%s); using default tradeoff declaration\n",
				strings.Join(schemaErr.Fields(), ", "))
			overrides = &tradeoffs.Overrides{}
		case err != nil:
			return err
		}
	}

	ctx, cancel := a.context(cmd)
	defer cancel()

	d := a.open(ctx)
	defer d.Close()

	result, err := a.engine(d, cmd.ErrOrStderr()).Run(ctx, pipeline.RunOptions{
		Tenant:    a.cfg.Tenant,
		Mode:      a.runMode(),
		Job:       job,
		Pool:      pool,
		Tradeoffs: overrides,
	})
	if err != nil {
		return fmt.Errorf("failed to shortlist candidates: %w", err)
	}

	for _, w := range result.Warnings {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", w)
	}
	return writeJSON(cmd.OutOrStdout(), opts.out, result)
}
