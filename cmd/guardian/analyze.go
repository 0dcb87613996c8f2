package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"aiteddy-hq/guardian/pkg/cli"
	"aiteddy-hq/guardian/pkg/safety"
	"aiteddy-hq/guardian/pkg/safety/model"
)

var analyzeFlags struct {
	conversation conversationFlags
	format       string
	withBias     bool
	failOnUnsafe bool
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Check one reply for child safety",
	Long: `Analyze a candidate reply and print the safety decision.

The reply is taken from the arguments, or from stdin when no argument (or
"-") is given. With --bias the bias analysis runs as well and the reply only
passes when it is safe and unbiased.

Examples:
  # Check a reply for a five-year-old
  guardian analyze --age 5 "Dinosaurs lived a long, long time ago!"

  # Full JSON result, content and bias
  guardian analyze --age 9 --bias --format json "..."

  # Use in a pipeline: exit status 2 when the reply is blocked
  echo "$REPLY" | guardian analyze --age 6 --fail-on-unsafe`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeFlags.conversation.register(analyzeCmd.Flags())
	analyzeCmd.Flags().StringVarP(&analyzeFlags.format, "format", "f", "text", "output format: text, json")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.withBias, "bias", false, "also run bias analysis")
	analyzeCmd.Flags().BoolVar(&analyzeFlags.failOnUnsafe, "fail-on-unsafe", false, "exit with status 2 when the reply is not safe")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(analyzeFlags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}
	text, err := readText(cmd, args)
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

	ctx := cmd.Context()
	cc := analyzeFlags.conversation.context()
	out := cmd.OutOrStdout()

	var safe bool
	if analyzeFlags.withBias {
		result := svc.AnalyzeIntegrated(ctx, text, cc)
		safe = result.IsCompletelySafe()
		if format == cli.FormatJSON {
			err = cli.WriteJSON(out, result, true)
		} else {
			printContent(out, result.Content)
			printBias(out, result.Bias)
			if concerns := result.Concerns(); len(concerns) > 0 {
				fmt.Fprintf(out, "Concerns: %s\n", strings.Join(concerns, ", "))
			}
		}
	} else {
		result := svc.AnalyzeContent(ctx, text, cc)
		safe = result.IsSafe
		if format == cli.FormatJSON {
			err = cli.WriteJSON(out, result, true)
		} else {
			printContent(out, result)
		}
	}
	if err != nil {
		return cli.NewCommandError("analyze", err)
	}

	if analyzeFlags.failOnUnsafe && !safe {
		return cli.ErrUnsafe
	}
	return nil
}

func printContent(w io.Writer, r *safety.ContentAnalysisResult) {
	if r == nil {
		return
	}
	verdict := "✓ SAFE"
	if !r.IsSafe {
		verdict = "✗ UNSAFE"
	}
	fmt.Fprintf(w, "%s  risk=%s  category=%s  confidence=%.2f\n",
		verdict, r.OverallRiskLevel, r.ContentCategory, r.ConfidenceScore)
	fmt.Fprintf(w, "  age appropriate: %s (target ages %d-%d)\n",
		yesNo(r.AgeAppropriate), r.TargetAgeRange.Min, r.TargetAgeRange.Max)
	if r.Toxicity != nil {
		fmt.Fprintf(w, "  toxicity: %.2f", r.Toxicity.ToxicityScore)
		if len(r.Toxicity.ToxicCategories) > 0 {
			fmt.Fprintf(w, " (%s)", strings.Join(r.Toxicity.ToxicCategories, ", "))
		}
		fmt.Fprintln(w)
	}
	if r.ParentNotificationRequired {
		fmt.Fprintln(w, "  parent notification required")
	}
	if r.Degraded {
		fmt.Fprintln(w, "  degraded: analysis exceeded its time budget")
	}
	if failure := r.Metadata[safety.MetaFailure]; failure != "" {
		fmt.Fprintf(w, "  analysis failed, blocked as a precaution: %s\n", failure)
	}
	if len(r.RequiredModifications) > 0 {
		fmt.Fprintln(w, "  required modifications:")
		for _, m := range r.RequiredModifications {
			fmt.Fprintf(w, "    - [%s] %s", m.Type, m.Instruction)
			if len(m.Targets) > 0 {
				fmt.Fprintf(w, " (%s)", strings.Join(m.Targets, ", "))
			}
			fmt.Fprintln(w)
		}
	}
	if len(r.SafetyRecommendations) > 0 {
		fmt.Fprintln(w, "  recommendations:")
		for _, rec := range r.SafetyRecommendations {
			fmt.Fprintf(w, "    - %s\n", rec)
		}
	}
}

func printBias(w io.Writer, r *model.BiasAnalysisResult) {
	if r == nil {
		return
	}
	verdict := "✓ NO BIAS"
	if r.HasBias {
		verdict = "✗ BIAS"
	}
	fmt.Fprintf(w, "%s  score=%.2f  risk=%s  method=%s\n", verdict, r.OverallBiasScore, r.RiskLevel, r.Method)
	if len(r.BiasCategories) > 0 {
		names := make([]string, len(r.BiasCategories))
		for i, c := range r.BiasCategories {
			names[i] = string(c)
		}
		fmt.Fprintf(w, "  categories: %s\n", strings.Join(names, ", "))
	}
	if len(r.DetectedPatterns) > 0 {
		fmt.Fprintf(w, "  patterns: %s\n", strings.Join(r.DetectedPatterns, ", "))
	}
	for _, s := range r.MitigationSuggestions {
		fmt.Fprintf(w, "    - %s\n", s)
	}
}
