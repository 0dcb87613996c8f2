package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"aiteddy-hq/guardian/pkg/cli"
	"aiteddy-hq/guardian/pkg/safety"
	"aiteddy-hq/guardian/pkg/safety/bias"
	"aiteddy-hq/guardian/pkg/safety/model"
)

const (
	batchModeContent = "content"
	batchModeBias    = "bias"
)

var batchFlags struct {
	conversation conversationFlags
	input        string
	output       string
	format       string
	mode         string
	chunk        int
	progress     bool
	failOnUnsafe bool
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Analyze many replies at once",
	Long: `Analyze a file of replies concurrently, keeping input order.

Each non-empty input line is one reply, either plain text or a JSON object
with its own context. Lines starting with "#" are ignored:

  Let's count to ten together!
  {"text": "Boys are better at sports.", "context": {"child_age": 9}}

Replies without a context use the --age/--session/... flags.

Examples:
  guardian batch --input replies.txt
  guardian batch --input replies.jsonl --mode bias --format json -o report.json
  cat replies.txt | guardian batch --format jsonl --progress`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchFlags.conversation.register(batchCmd.Flags())
	batchCmd.Flags().StringVarP(&batchFlags.input, "input", "i", "-", "input file (- for stdin)")
	batchCmd.Flags().StringVarP(&batchFlags.output, "output", "o", "", "output file (default: stdout)")
	batchCmd.Flags().StringVarP(&batchFlags.format, "format", "f", "text", "output format: text, json, jsonl")
	batchCmd.Flags().StringVar(&batchFlags.mode, "mode", batchModeContent, "analysis: content, bias")
	batchCmd.Flags().IntVar(&batchFlags.chunk, "chunk", 64, "replies analyzed per round")
	batchCmd.Flags().BoolVar(&batchFlags.progress, "progress", false, "show progress on stderr")
	batchCmd.Flags().BoolVar(&batchFlags.failOnUnsafe, "fail-on-unsafe", false, "exit with status 2 when any reply is unsafe (or biased in bias mode)")
}

// contentSummary aggregates a content batch.
type contentSummary struct {
	Total               int            `json:"total"`
	Unsafe              int            `json:"unsafe"`
	ParentNotifications int            `json:"parent_notifications"`
	Degraded            int            `json:"degraded"`
	Failed              int            `json:"failed"`
	RiskDistribution    map[string]int `json:"risk_distribution"`
}

func summarize(results []*safety.ContentAnalysisResult) contentSummary {
	s := contentSummary{Total: len(results), RiskDistribution: make(map[string]int)}
	for _, r := range results {
		if !r.IsSafe {
			s.Unsafe++
		}
		if r.ParentNotificationRequired {
			s.ParentNotifications++
		}
		if r.Degraded {
			s.Degraded++
		}
		if r.Metadata[safety.MetaFailure] != "" {
			s.Failed++
		}
		s.RiskDistribution[r.OverallRiskLevel.String()]++
	}
	return s
}

func runBatch(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(batchFlags.format, cli.FormatText, cli.FormatJSON, cli.FormatJSONL)
	if err != nil {
		return err
	}
	if batchFlags.mode != batchModeContent && batchFlags.mode != batchModeBias {
		return fmt.Errorf("unsupported mode %q (supported: content, bias)", batchFlags.mode)
	}
	if batchFlags.chunk < 1 {
		return fmt.Errorf("--chunk must be at least 1")
	}

	texts, contexts, err := readBatchInput(cmd)
	if err != nil {
		return err
	}
	if len(texts) == 0 {
		return fmt.Errorf("no replies in input")
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

	var out io.WriteCloser = nopWriteCloser{cmd.OutOrStdout()}
	if batchFlags.output != "" {
		if out, err = cli.OpenOutput(batchFlags.output); err != nil {
			return err
		}
	}
	defer out.Close()

	var progress cli.ProgressReporter
	if batchFlags.progress {
		progress = cli.NewProgressReporter(cmd.ErrOrStderr())
		progress.Start(int64(len(texts)))
	}

	var flagged bool
	if batchFlags.mode == batchModeBias {
		results, err := batchChunks(cmd, svc.BatchDetectBias, texts, contexts, progress)
		if err != nil {
			return err
		}
		report := bias.BuildReport(results)
		flagged = report.BiasedDetected > 0
		if err := writeBiasBatch(out, format, texts, results, report); err != nil {
			return cli.NewCommandError("batch", err)
		}
	} else {
		results, err := batchChunks(cmd, svc.BatchAnalyze, texts, contexts, progress)
		if err != nil {
			return err
		}
		summary := summarize(results)
		flagged = summary.Unsafe > 0
		if err := writeContentBatch(out, format, texts, results, summary); err != nil {
			return cli.NewCommandError("batch", err)
		}
	}

	if batchFlags.failOnUnsafe && flagged {
		return cli.ErrUnsafe
	}
	return nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func readBatchInput(cmd *cobra.Command) ([]string, []model.ConversationContext, error) {
	var r io.Reader = cmd.InOrStdin()
	if batchFlags.input != "-" && batchFlags.input != "" {
		f, err := os.Open(batchFlags.input)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	return cli.ReadItems(r, batchFlags.conversation.context())
}

// batchChunks runs fn over the input in rounds of --chunk items so progress
// can be reported between rounds.
func batchChunks[T any](
	cmd *cobra.Command,
	fn func(ctx context.Context, texts []string, contexts []model.ConversationContext) ([]T, error),
	texts []string,
	contexts []model.ConversationContext,
	progress cli.ProgressReporter,
) ([]T, error) {
	results := make([]T, 0, len(texts))
	for start := 0; start < len(texts); start += batchFlags.chunk {
		end := min(start+batchFlags.chunk, len(texts))
		part, err := fn(cmd.Context(), texts[start:end], contexts[start:end])
		if err != nil {
			if progress != nil {
				progress.Error(err)
			}
			return nil, cli.NewCommandError("batch", err)
		}
		results = append(results, part...)
		if progress != nil {
			progress.Add(int64(end - start))
		}
	}
	if progress != nil {
		progress.Finish()
	}
	return results, nil
}

func writeContentBatch(w io.Writer, format cli.OutputFormat, texts []string, results []*safety.ContentAnalysisResult, summary contentSummary) error {
	switch format {
	case cli.FormatJSON:
		return cli.WriteJSON(w, struct {
			Results []*safety.ContentAnalysisResult `json:"results"`
			Summary contentSummary                  `json:"summary"`
		}{results, summary}, true)
	case cli.FormatJSONL:
		return cli.WriteJSONLines(w, results)
	}

	for i, r := range results {
		mark := "✓"
		if !r.IsSafe {
			mark = "✗"
		}
		fmt.Fprintf(w, "%4d %s %-11s %s\n", i+1, mark, r.OverallRiskLevel, preview(texts[i]))
	}
	fmt.Fprintf(w, "\n%d analyzed, %d unsafe, %d parent notifications", summary.Total, summary.Unsafe, summary.ParentNotifications)
	if summary.Degraded > 0 || summary.Failed > 0 {
		fmt.Fprintf(w, ", %d degraded, %d failed", summary.Degraded, summary.Failed)
	}
	fmt.Fprintln(w)
	return nil
}

func writeBiasBatch(w io.Writer, format cli.OutputFormat, texts []string, results []*model.BiasAnalysisResult, report *bias.Report) error {
	switch format {
	case cli.FormatJSON:
		return cli.WriteJSON(w, struct {
			Results []*model.BiasAnalysisResult `json:"results"`
			Report  *bias.Report                `json:"report"`
		}{results, report}, true)
	case cli.FormatJSONL:
		return cli.WriteJSONLines(w, results)
	}

	for i, r := range results {
		mark := "✓"
		if r.HasBias {
			mark = "✗"
		}
		fmt.Fprintf(w, "%4d %s %.2f %s\n", i+1, mark, r.OverallBiasScore, preview(texts[i]))
	}
	fmt.Fprintf(w, "\n%d analyzed, %d biased (%.1f%%)\n", report.TotalAnalyzed, report.BiasedDetected, report.BiasRate*100)
	if len(report.CommonPatterns) > 0 {
		fmt.Fprintf(w, "common patterns: %s\n", strings.Join(report.CommonPatterns, ", "))
	}
	for _, rec := range report.Recommendations {
		fmt.Fprintf(w, "  - %s\n", rec)
	}
	return nil
}

func preview(text string) string {
	const width = 60
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width-1]) + "…"
}
