package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"aiteddy-hq/guardian/pkg/cli"
	"aiteddy-hq/guardian/pkg/safety/rules"
)

var rulesFlags struct {
	category string
	format   string
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and check pattern packs",
	Long: `Pattern packs are YAML files that extend the built-in phrase tables:

  version: "1"
  categories:
    toxicity:
      patterns:
        insults: ["meanie"]

rules.path in the configuration names a pack file or a directory of packs.

Examples:
  guardian rules list
  guardian rules list --category privacy
  guardian rules check packs/
  guardian rules match "What's your address?"`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active phrase tables",
	RunE:  runRulesList,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check <path>...",
	Short: "Validate pattern pack files or directories",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRulesCheck,
}

var rulesMatchCmd = &cobra.Command{
	Use:   "match [text]",
	Short: "Show which patterns match a text",
	RunE:  runRulesMatch,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesCheckCmd, rulesMatchCmd)

	rulesListCmd.Flags().StringVar(&rulesFlags.category, "category", "", "print the phrases of one category")
	rulesListCmd.Flags().StringVarP(&rulesFlags.format, "format", "f", "text", "output format: text, json")
}

// activeRules loads the built-in tables merged with the configured packs.
func activeRules() (*rules.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := rules.Load(rules.Default(), cfg.Rules.Path)
	if err != nil {
		return nil, cli.NewCommandError("rules", err)
	}
	return store, nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(rulesFlags.format, cli.FormatText, cli.FormatJSON)
	if err != nil {
		return err
	}
	store, err := activeRules()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if rulesFlags.category != "" {
		table, ok := store.Table(rulesFlags.category)
		if !ok {
			return fmt.Errorf("unknown category %q (have: %s)", rulesFlags.category, strings.Join(store.Categories(), ", "))
		}
		if format == cli.FormatJSON {
			return cli.WriteJSON(out, map[string]any{
				"name":      rulesFlags.category,
				"increment": table.Increment,
				"patterns":  table.Patterns,
			}, true)
		}
		fmt.Fprintf(out, "%s (increment %.2f)\n", rulesFlags.category, table.Increment)
		for _, sub := range sortedKeys(table.Patterns) {
			fmt.Fprintf(out, "  %s:\n", sub)
			for _, phrase := range table.Patterns[sub] {
				fmt.Fprintf(out, "    - %s\n", phrase)
			}
		}
		return nil
	}

	type categorySummary struct {
		Name          string  `json:"name"`
		Increment     float64 `json:"increment"`
		Subcategories int     `json:"subcategories"`
		Phrases       int     `json:"phrases"`
	}
	var summaries []categorySummary
	for _, name := range store.Categories() {
		table, _ := store.Table(name)
		summaries = append(summaries, categorySummary{
			Name:          name,
			Increment:     table.Increment,
			Subcategories: len(table.Patterns),
			Phrases:       len(store.Phrases(name)),
		})
	}
	if format == cli.FormatJSON {
		return cli.WriteJSON(out, summaries, true)
	}
	fmt.Fprintf(out, "%-24s %9s %6s %7s\n", "CATEGORY", "INCREMENT", "SUBS", "PHRASES")
	for _, s := range summaries {
		fmt.Fprintf(out, "%-24s %9.2f %6d %7d\n", s.Name, s.Increment, s.Subcategories, s.Phrases)
	}
	return nil
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", path, err)
			failed++
			continue
		}
		if info.IsDir() {
			store, err := rules.LoadDir(rules.Default(), path)
			if err != nil {
				fmt.Fprintf(out, "✗ %v\n", err)
				failed++
				continue
			}
			fmt.Fprintf(out, "✓ %s (%d categories after merge)\n", path, len(store.Categories()))
			continue
		}
		pack, err := rules.LoadFile(path)
		if err != nil {
			fmt.Fprintf(out, "✗ %v\n", err)
			failed++
			continue
		}
		phrases := 0
		for _, t := range pack.Tables() {
			for _, p := range t.Patterns {
				phrases += len(p)
			}
		}
		fmt.Fprintf(out, "✓ %s (%d categories, %d phrases)\n", path, len(pack.Categories), phrases)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pattern packs invalid", failed, len(args))
	}
	return nil
}

func runRulesMatch(cmd *cobra.Command, args []string) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	store, err := activeRules()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	normalized := rules.Normalize(text)
	found := 0
	for _, category := range store.Categories() {
		score, matches := store.Score(category, normalized)
		if len(matches) == 0 {
			continue
		}
		found += len(matches)
		fmt.Fprintf(out, "%s (score %.2f)\n", category, score)
		for _, m := range matches {
			fmt.Fprintf(out, "  %s\n", m.ID())
		}
	}
	if found == 0 {
		fmt.Fprintln(out, "no patterns matched")
	}
	return nil
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
