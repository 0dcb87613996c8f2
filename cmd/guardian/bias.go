package main

import (
	"github.com/spf13/cobra"

	"aiteddy-hq/guardian/pkg/cli"
)

var biasFlags struct {
	conversation conversationFlags
	format       string
	failOnBias   bool
}

var biasCmd = &cobra.Command{
	Use:   "bias [text]",
	Short: "Check one reply for bias",
	Long: `Run only the bias analysis on a reply.

The scorer is selected by bias.scorer in the configuration: "pattern" uses
the phrase tables, "embedding" compares against category prototypes through
an embeddings endpoint and falls back to patterns when it is unreachable.

Examples:
  guardian bias --age 8 "Boys are naturally better at math than girls."
  guardian bias --format json --fail-on-bias < reply.txt`,
	RunE: runBias,
}

func init() {
	rootCmd.AddCommand(biasCmd)

	biasFlags.conversation.register(biasCmd.Flags())
	biasCmd.Flags().StringVarP(&biasFlags.format, "format", "f", "text", "output format: text, json")
	biasCmd.Flags().BoolVar(&biasFlags.failOnBias, "fail-on-bias", false, "exit with status 2 when bias is detected")
}

func runBias(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(biasFlags.format, cli.FormatText, cli.FormatJSON)
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

	result := svc.DetectBias(cmd.Context(), text, biasFlags.conversation.context())
	if format == cli.FormatJSON {
		if err := cli.WriteJSON(cmd.OutOrStdout(), result, true); err != nil {
			return cli.NewCommandError("bias", err)
		}
	} else {
		printBias(cmd.OutOrStdout(), result)
	}

	if biasFlags.failOnBias && result.HasBias {
		return cli.ErrUnsafe
	}
	return nil
}
