package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-matcher/internal/ingestion"
	"github.com/jonathan/candidate-matcher/internal/observability"
	"github.com/jonathan/candidate-matcher/internal/types"
	"github.com/jonathan/candidate-matcher/internal/watchdog"
)

// errAlerts is returned with --fail-on-alert when any alert fires.
var errAlerts = errors.New("watchdog alerts fired")

type watchdogOptions struct {
	snapshots   string
	agent       string
	limit       int
	out         string
	failOnAlert bool
}

func newWatchdogCmd(a *app) *cobra.Command {
	opts := &watchdogOptions{}

	cmd := &cobra.Command{
		Use:   "watchdog",
		Short: "Evaluate recent agent runs for failure, latency and incomplete output",
		Long: `Evaluates a window of agent run snapshots against the configured thresholds.
Snapshots come from a YAML/JSON file (--snapshots) or from the agent run history
in PostgreSQL (--agent).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatchdog(cmd, a, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.snapshots, "snapshots", "s", "", "Path to snapshots YAML/JSON file")
	cmd.Flags().StringVarP(&opts.agent, "agent", "a", "", "Agent name to read from the database")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Number of recent runs to read with --agent (default window size)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Path to output JSON file (default stdout)")
	cmd.Flags().BoolVar(&opts.failOnAlert, "fail-on-alert", false, "Exit non-zero when any alert fires")
	cmd.MarkFlagsMutuallyExclusive("snapshots", "agent")
	cmd.MarkFlagsOneRequired("snapshots", "agent")

	return cmd
}

func runWatchdog(cmd *cobra.Command, a *app, opts *watchdogOptions) error {
	wcfg := a.cfg.Watchdog

	var snapshots []types.WatchdogSnapshot
	if opts.snapshots != "" {
		loaded, err := ingestion.LoadSnapshots(opts.snapshots)
		if err != nil {
			return err
		}
		snapshots = loaded
	} else {
		ctx, cancel := a.context(cmd)
		defer cancel()

		d := a.open(ctx)
		defer d.Close()
		if d.db == nil {
			return fmt.Errorf("--agent requires a database (set MATCH_DATABASE_URL)")
		}

		limit := opts.limit
		if limit <= 0 {
			limit = wcfg.WindowSize
		}
		loaded, err := d.db.RecentAgentRuns(ctx, opts.agent, limit)
		if err != nil {
			return err
		}
		snapshots = loaded
	}

	report := watchdog.Evaluate(snapshots, &wcfg)
	for _, alert := range report.Alerts {
		a.metrics.WatchdogAlert(string(alert.Type))
	}

	if a.verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintWatchdogReport(&report)
	}
	if err := writeJSON(cmd.OutOrStdout(), opts.out, report); err != nil {
		return err
	}

	if opts.failOnAlert && report.HasAlerts() {
		return fmt.Errorf("%w: %d", errAlerts, len(report.Alerts))
	}
	return nil
}
