package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"aiteddy-hq/guardian/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "guardian",
	Short: "Guardian - child-safety content and bias analysis",
	Long: `Guardian decides whether an AI-generated reply is safe to show to a child,
explains why, and says what to change when it is not.

Every reply is scored for toxicity, emotional impact, educational value,
conversation health and bias. The scores are combined under a fixed policy
into a risk level, a pass/fail decision and mitigation guidance.

Exit status is 0 on success, 1 on error and 2 when --fail-on-unsafe (or
--fail-on-bias) is set and a reply was blocked.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	ctx, stop := cli.SetupSignalHandler()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !cli.Silent(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", os.Getenv("GUARDIAN_CONFIG"), "config file path (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
