package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-matcher/internal/ingestion"
	"github.com/jonathan/candidate-matcher/internal/pipeline"
)

type scoreOptions struct {
	job        string
	candidates string
	out        string
}

func newScoreCmd(a *app) *cobra.Command {
	opts := &scoreOptions{}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a candidate pool against a job",
		Long:  "Scores every candidate in a pool against a job under the tenant's guardrails and writes the ranked match results as JSON. Nothing is shortlisted or recorded.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.job, "job", "j", "", "Path to job YAML/JSON file (required)")
	cmd.Flags().StringVarP(&opts.candidates, "candidates", "c", "", "Path to candidate pool YAML/JSON file (required)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Path to output JSON file (default stdout)")
	markRequired(cmd, "job", "candidates")

	return cmd
}

func runScore(cmd *cobra.Command, a *app, opts *scoreOptions) error {
	job, err := ingestion.LoadJob(opts.job)
	if err != nil {
		return err
	}
	pool, err := ingestion.LoadPool(opts.candidates)
	if err != nil {
		return err
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
		ScoreOnly: true,
	})
	if err != nil {
		return fmt.Errorf("failed to score candidates: %w", err)
	}

	return writeJSON(cmd.OutOrStdout(), opts.out, result.Results)
}
