package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-matcher/internal/guardrails"
	"github.com/jonathan/candidate-matcher/internal/ingestion"
	"github.com/jonathan/candidate-matcher/internal/observability"
)

func newGuardrailsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "guardrails",
		Short: "Read or update tenant guardrails",
	}
	cmd.AddCommand(newGuardrailsGetCmd(a), newGuardrailsSetCmd(a))
	return cmd
}

func newGuardrailsGetCmd(a *app) *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the tenant's guardrails",
		Long:  "Prints the tenant's stored guardrails, or the defaults when none are stored. With --effective the operating mode overlay is applied.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := a.context(cmd)
			defer cancel()

			d := a.open(ctx)
			defer d.Close()

			cfg := a.policy(d).Load(ctx, a.cfg.Tenant)
			if effective {
				cfg = guardrails.Effective(cfg, a.runMode())
			}

			if a.verbose {
				observability.NewPrinter(cmd.ErrOrStderr()).PrintGuardrails(&cfg)
			}
			return writeJSON(cmd.OutOrStdout(), "", cfg)
		},
	}

	cmd.Flags().BoolVar(&effective, "effective", false, "Apply the operating mode overlay")
	return cmd
}

func newGuardrailsSetCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Validate and store the tenant's guardrails",
		Long:  "Validates a guardrail document (JSON or YAML, partial documents are merged over the defaults) and stores it for the tenant.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			payload, err := ingestion.ReadDocument(file)
			if err != nil {
				return err
			}

			ctx, cancel := a.context(cmd)
			defer cancel()

			d := a.open(ctx)
			defer d.Close()
			if d.db == nil {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Warning: no database configured; guardrails are validated but not persisted")
			}

			result, err := a.policy(d).Save(ctx, a.cfg.Tenant, payload)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), "", result)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to guardrails JSON/YAML file (required)")
	markRequired(cmd, "file")
	return cmd
}
