package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
	"github.com/bdahlka1/cec.ai-demo/internal/rules"
	"github.com/bdahlka1/cec.ai-demo/internal/score"
)

func newRulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate rule sets",
	}
	cmd.AddCommand(newRulesValidateCmd(a), newRulesShowCmd(a))
	return cmd
}

// rulesFrom loads the rule set named by args, or the configured one.
func (a *app) rulesFrom(args []string) (entity.RuleSet, error) {
	path := a.cfg.Scoring.RulesPath
	if len(args) > 0 {
		path = args[0]
	}
	return rules.Load(path)
}

func newRulesValidateCmd(a *app) *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Check a calibration workbook or rule file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := a.rulesFrom(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			warnings := rules.Lint(rs)
			for _, w := range warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			fmt.Fprintf(out, "%s: %d rules, max total %s\n", rs.Source, rs.Len(), score.FormatPoints(rs.MaxTotal()))
			if strict && len(warnings) > 0 {
				return fmt.Errorf("%d warnings", len(warnings))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func newRulesShowCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Print a rule set as a YAML or JSON rule file",
		Long: `Show prints the rule set in rule file form. Converting a calibration workbook:

  bidscore rules show Bid_Scoring_Calibration.xlsx > rules.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := a.rulesFrom(args)
			if err != nil {
				return err
			}
			var data []byte
			switch format {
			case "yaml":
				data, err = rules.MarshalRuleFile(rs)
			case "json":
				data, err = json.MarshalIndent(map[string][]entity.Rule{"rules": rs.Rules}, "", "  ")
				data = append(data, '\n')
			default:
				return common.InvalidInputError(fmt.Sprintf("unknown format %q (want yaml or json)", format), nil)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}
