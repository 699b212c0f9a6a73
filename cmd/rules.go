package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/ezhl/internal/highlight"
	"github.com/zjrosen/ezhl/internal/ui/markdown"
)

var (
	rulesTable string
	rulesRaw   bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Show a rule table in application order",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().StringVarP(&rulesTable, "language", "l", highlight.RulesEZ,
		fmt.Sprintf("rule table: %q or %q", highlight.RulesEZ, highlight.RulesGeneric))
	rulesCmd.Flags().BoolVar(&rulesRaw, "raw", false, "print markdown without styling")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, _ []string) error {
	var doc string
	switch rulesTable {
	case highlight.RulesEZ:
		doc = markdown.RuleTable(highlight.EZRules(), true)
	case highlight.RulesGeneric:
		doc = markdown.RuleTable(highlight.GenericRules(), false)
	default:
		return fmt.Errorf("unknown rule table %q (available: %s, %s)",
			rulesTable, highlight.RulesEZ, highlight.RulesGeneric)
	}

	if rulesRaw {
		_, err := fmt.Fprint(cmd.OutOrStdout(), doc)
		return err
	}
	r, err := markdown.New(100)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(doc)
	if err != nil {
		return fmt.Errorf("rendering rules: %w", err)
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
