package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"aiteddy-hq/guardian/pkg/audit"
	"aiteddy-hq/guardian/pkg/audit/export"
	"aiteddy-hq/guardian/pkg/audit/retention"
	"aiteddy-hq/guardian/pkg/audit/storage"
	"aiteddy-hq/guardian/pkg/cli"
	"aiteddy-hq/guardian/pkg/config"
	"aiteddy-hq/guardian/pkg/telemetry/logging"
)

var auditFlags struct {
	backend    string
	path       string
	since      time.Duration
	timeRange  string
	session    string
	kind       string
	minRisk    string
	unsafeOnly bool
	biasOnly   bool
	limit      int
	offset     int
	sort       string
	format     string
	output     string
	days       int
	dryRun     bool
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Query and maintain the decision audit trail",
	Long: `Every analysis can be recorded to the audit trail (audit.enabled). Records
hold the decision, scores and a digest of the text, never the text itself.

Subcommands:
  query   - Query records with filters and export them
  stats   - Count records by kind and outcome
  prune   - Delete records older than the retention period

Examples:
  # Unsafe replies in the last day
  guardian audit query --since 24h --unsafe-only

  # One session, as CSV
  guardian audit query --session abc123 --format csv -o session.csv

  # Preview a prune with a shorter retention
  guardian audit prune --days 7 --dry-run`,
}

var auditQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query audit records",
	Long: `Query audit records with filters.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-07-01T00:00:00Z/2026-07-02T00:00:00Z"`,
	RunE: runAuditQuery,
}

var auditStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count audit records",
	RunE:  runAuditStats,
}

var auditPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Apply the retention policy now",
	RunE:  runAuditPrune,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditQueryCmd, auditStatsCmd, auditPruneCmd)

	auditCmd.PersistentFlags().StringVar(&auditFlags.backend, "backend", "", "backend: sqlite (uses config if not specified)")
	auditCmd.PersistentFlags().StringVar(&auditFlags.path, "db", "", "SQLite database path (uses config if not specified)")

	for _, c := range []*cobra.Command{auditQueryCmd, auditStatsCmd} {
		c.Flags().DurationVar(&auditFlags.since, "since", 0, "only records analyzed within this duration (e.g. 24h)")
		c.Flags().StringVar(&auditFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
		c.Flags().StringVar(&auditFlags.session, "session", "", "filter by session ID")
	}

	auditQueryCmd.Flags().StringVar(&auditFlags.kind, "kind", "", "filter by kind: content, bias")
	auditQueryCmd.Flags().StringVar(&auditFlags.minRisk, "min-risk", "", "minimum risk level (safe, low_risk, medium_risk, high_risk, critical)")
	auditQueryCmd.Flags().BoolVar(&auditFlags.unsafeOnly, "unsafe-only", false, "only blocked content decisions")
	auditQueryCmd.Flags().BoolVar(&auditFlags.biasOnly, "bias-only", false, "only decisions where bias was found")
	auditQueryCmd.Flags().IntVar(&auditFlags.limit, "limit", audit.DefaultLimit, "max results")
	auditQueryCmd.Flags().IntVar(&auditFlags.offset, "offset", 0, "pagination offset")
	auditQueryCmd.Flags().StringVar(&auditFlags.sort, "sort", "desc", "sort by analysis time: asc, desc")
	auditQueryCmd.Flags().StringVarP(&auditFlags.format, "format", "f", "text", "output format: text, json, jsonl, csv")
	auditQueryCmd.Flags().StringVarP(&auditFlags.output, "output", "o", "", "output file (default: stdout)")

	auditPruneCmd.Flags().IntVar(&auditFlags.days, "days", 0, "retention in days (uses config if not specified)")
	auditPruneCmd.Flags().BoolVar(&auditFlags.dryRun, "dry-run", false, "count what would be deleted without deleting")
}

// openAuditStore opens the configured backend with flag overrides applied.
func openAuditStore(cmd *cobra.Command) (audit.Storage, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if auditFlags.backend != "" {
		cfg.Audit.Backend = auditFlags.backend
	}
	if auditFlags.path != "" {
		cfg.Audit.SQLite.Path = auditFlags.path
	}
	if cfg.Audit.Backend == "memory" {
		return nil, nil, errors.New("the memory audit backend only lives inside a running process; use sqlite to query it")
	}

	logger, err := logging.New(logging.Config{
		Level:  "warn",
		Format: cfg.Telemetry.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, err
	}
	store, err := storage.Open(cfg.Audit, logger)
	if err != nil {
		return nil, nil, cli.NewCommandError("audit", err)
	}
	return store, cfg, nil
}

// timeFilter turns --since and --time-range into query bounds.
func timeFilter(now time.Time) (start, end *time.Time, err error) {
	if auditFlags.since > 0 && auditFlags.timeRange != "" {
		return nil, nil, errors.New("--since and --time-range are mutually exclusive")
	}
	if auditFlags.since > 0 {
		t := now.Add(-auditFlags.since)
		return &t, nil, nil
	}
	if auditFlags.timeRange == "" {
		return nil, nil, nil
	}

	parts := strings.Split(auditFlags.timeRange, "/")
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid time range format (expected: start/end)")
	}
	startTime, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid start time: %w", err)
	}
	endTime, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return nil, nil, fmt.Errorf("invalid end time: %w", err)
	}
	return &startTime, &endTime, nil
}

func buildAuditQuery() (*audit.Query, error) {
	start, end, err := timeFilter(time.Now().UTC())
	if err != nil {
		return nil, err
	}
	q := &audit.Query{
		StartTime:  start,
		EndTime:    end,
		SessionID:  auditFlags.session,
		Kind:       auditFlags.kind,
		MinRisk:    auditFlags.minRisk,
		UnsafeOnly: auditFlags.unsafeOnly,
		BiasOnly:   auditFlags.biasOnly,
		Limit:      auditFlags.limit,
		Offset:     auditFlags.offset,
		SortOrder:  auditFlags.sort,
	}
	if err := audit.Validate(q); err != nil {
		return nil, err
	}
	return q, nil
}

func runAuditQuery(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(auditFlags.format, cli.FormatText, cli.FormatJSON, cli.FormatJSONL, cli.FormatCSV)
	if err != nil {
		return err
	}
	query, err := buildAuditQuery()
	if err != nil {
		return err
	}
	store, _, err := openAuditStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Query(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("audit", fmt.Errorf("query failed: %w", err))
	}

	var out io.WriteCloser = nopWriteCloser{cmd.OutOrStdout()}
	if auditFlags.output != "" {
		if out, err = cli.OpenOutput(auditFlags.output); err != nil {
			return err
		}
	}
	defer out.Close()

	if format == cli.FormatText {
		return outputAuditText(out, records)
	}
	exporter, err := export.New(string(format))
	if err != nil {
		return err
	}
	if err := exporter.Export(cmd.Context(), records, out); err != nil {
		return cli.NewCommandError("audit", err)
	}
	return nil
}

func outputAuditText(w io.Writer, records []*audit.Record) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No audit records found.")
		return nil
	}
	fmt.Fprintf(w, "%-20s %-7s %-4s %-11s %-6s %-12s %s\n", "ANALYZED", "KIND", "AGE", "RISK", "SAFE", "SESSION", "CONCERNS")
	for _, r := range records {
		session := r.SessionID
		if session == "" {
			session = "-"
		}
		fmt.Fprintf(w, "%-20s %-7s %-4d %-11s %-6s %-12s %s\n",
			r.AnalyzedAt.UTC().Format("2006-01-02 15:04:05"),
			r.Kind, r.ChildAge, r.RiskLevel, yesNo(r.IsSafe), session,
			strings.Join(r.Concerns, ", "))
	}
	fmt.Fprintf(w, "\n%d records\n", len(records))
	return nil
}

func runAuditStats(cmd *cobra.Command, args []string) error {
	start, end, err := timeFilter(time.Now().UTC())
	if err != nil {
		return err
	}
	store, _, err := openAuditStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	base := audit.Query{StartTime: start, EndTime: end, SessionID: auditFlags.session}
	counts := []struct {
		label  string
		mutate func(*audit.Query)
	}{
		{"total", func(*audit.Query) {}},
		{"content decisions", func(q *audit.Query) { q.Kind = audit.KindContent }},
		{"unsafe", func(q *audit.Query) { q.UnsafeOnly = true }},
		{"critical", func(q *audit.Query) { q.MinRisk = "critical" }},
		{"bias checks", func(q *audit.Query) { q.Kind = audit.KindBias }},
		{"biased", func(q *audit.Query) { q.BiasOnly = true }},
	}

	out := cmd.OutOrStdout()
	for _, c := range counts {
		q := base
		c.mutate(&q)
		n, err := store.Count(cmd.Context(), &q)
		if err != nil {
			return cli.NewCommandError("audit", err)
		}
		fmt.Fprintf(out, "%-18s %d\n", c.label+":", n)
	}
	return nil
}

func runAuditPrune(cmd *cobra.Command, args []string) error {
	store, cfg, err := openAuditStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	days := cfg.Audit.Retention.Days
	if auditFlags.days > 0 {
		days = auditFlags.days
	}
	pruner := retention.NewPruner(store, &retention.Config{RetentionDays: days})
	cutoff, ok := pruner.Cutoff()
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, "Retention is unlimited; nothing to prune.")
		return nil
	}

	if auditFlags.dryRun {
		n, err := store.Count(cmd.Context(), &audit.Query{EndTime: &cutoff})
		if err != nil {
			return cli.NewCommandError("audit", err)
		}
		fmt.Fprintf(out, "Would delete %d records analyzed before %s\n", n, cutoff.Format(time.RFC3339))
		return nil
	}

	deleted, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("audit", err)
	}
	fmt.Fprintf(out, "✓ Deleted %d records analyzed before %s\n", deleted, cutoff.Format(time.RFC3339))
	return nil
}
