package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"aiteddy-hq/guardian/pkg/cli"
	"aiteddy-hq/guardian/pkg/telemetry/health"
)

var healthFlags struct {
	format string
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Build the engine and run its readiness checks",
	Long: `Build the engine from the configuration and run every readiness check:
configuration, pattern tables, the self-test against a known-unsafe reply
and, when configured, the embeddings endpoint and audit storage.

Exits 1 when a required check fails. A failed optional check only degrades
the engine and still exits 0.`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVarP(&healthFlags.format, "format", "f", "text", "output format: text, json")
}

func runHealth(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(healthFlags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := openService(cmd, cfg, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	report := svc.Health(cmd.Context())
	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		if err := cli.WriteJSON(out, report, true); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Status: %s (bias scorer: %s, rules generation %d)\n", report.Status, svc.BiasMethod(), svc.Generation())
		names := make([]string, 0, len(report.Checks))
		for name := range report.Checks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			res := report.Checks[name]
			mark := "✓"
			if res.Status == health.StatusFailed {
				mark = "✗"
			}
			kind := "optional"
			if res.Required {
				kind = "required"
			}
			fmt.Fprintf(out, "  %s %-10s %-8s %.1fms", mark, name, kind, res.Duration)
			if res.Message != "" {
				fmt.Fprintf(out, "  %s", res.Message)
			}
			fmt.Fprintln(out)
		}
	}

	if !report.Healthy() {
		return &cli.ExitError{Code: cli.ExitFailure}
	}
	return nil
}
