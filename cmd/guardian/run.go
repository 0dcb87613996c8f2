package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"aiteddy-hq/guardian/pkg/cli"
	"aiteddy-hq/guardian/pkg/server"
)

var runFlags struct {
	listen   string
	logLevel string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the engine as a long-lived process",
	Long: `Keep the engine loaded: hot-reload pattern packs when rules.watch is set,
prune the audit trail on its cron schedule, and optionally serve /healthz,
/readyz and the Prometheus metrics endpoint.

Examples:
  # Start with default config
  guardian run

  # Serve health and metrics for the orchestrator
  guardian run --config /etc/guardian/guardian.yaml --listen 0.0.0.0:9090

  # Validate config and build the engine without running
  guardian run --dry-run`,
	RunE: runService,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listen, "listen", "l", "", "operations endpoint address (disabled when empty)")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "build the engine and run health checks, then exit")
}

func runService(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}

	svc, err := openService(cmd, cfg, false)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	report := svc.Health(cmd.Context())
	if !report.Healthy() {
		return cli.NewCommandError("run", fmt.Errorf("engine is unhealthy: failed checks %v", report.Failed()))
	}
	fmt.Fprintf(out, "✓ Engine ready (%s, bias scorer %s)\n", report.Status, svc.BiasMethod())
	if runFlags.dryRun {
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	errChan := make(chan error, 2)
	if runFlags.listen != "" {
		var metricsHandler = svc.Metrics().Handler()
		if !cfg.Telemetry.Metrics.Enabled {
			metricsHandler = nil
		}
		srv := server.New(server.Config{
			Addr:        runFlags.listen,
			MetricsPath: cfg.Telemetry.Metrics.Path,
		}, svc, metricsHandler, svc.Logger())
		go func() { errChan <- srv.Start(ctx) }()
		fmt.Fprintf(out, "✓ Operations endpoint on http://%s (/healthz, /readyz", runFlags.listen)
		if metricsHandler != nil {
			fmt.Fprintf(out, ", %s", cfg.Telemetry.Metrics.Path)
		}
		fmt.Fprintln(out, ")")
	}
	go func() { errChan <- svc.Run(ctx) }()

	fmt.Fprintln(out, "Press Ctrl+C to stop")

	select {
	case <-ctx.Done():
	case err := <-errChan:
		if err != nil {
			cancel()
			return cli.NewCommandError("run", err)
		}
	}

	fmt.Fprintln(out, "✓ Stopped")
	return nil
}
