package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bdahlka1/cec.ai-demo/internal/entity"
	"github.com/bdahlka1/cec.ai-demo/internal/extract"
	"github.com/bdahlka1/cec.ai-demo/internal/scorecard"
)

func newScoreCmd(a *app) *cobra.Command {
	var (
		outPath string
		asJSON  bool
		noXLSX  bool
	)
	cmd := &cobra.Command{
		Use:   "score <document> [document...]",
		Short: "Score one bid package and write its Go/No-Go scorecard",
		Long: `Score extracts every listed document, concatenates their pages in order (page 1 of
the second document follows the last page of the first) and evaluates the rule set.

Example:
  bidscore score spec.pdf --location "Fresno, CA"
  bidscore score spec.pdf addendum1.pdf --template "Water Bid Go_NoGo Weighting Scale.xlsx"
  bidscore score spec.pdf --json --no-xlsx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			scorer, err := a.newScorer()
			if err != nil {
				return err
			}

			renderer := a.newRenderer()
			if !noXLSX {
				if err := renderer.Check(); err != nil {
					return err
				}
			}

			pages, err := extract.ExtractAll(ctx, a.newExtractor(), args)
			if err != nil {
				return err
			}

			report := scorer.Score(ctx, filepath.Base(args[0]), pages)

			if !noXLSX {
				path := outPath
				if path == "" {
					path = filepath.Join(a.cfg.Output.Dir, scorecard.OutputName(args[0], time.Now()))
				}
				if err := renderer.WriteFile(report, a.cfg.Output.Location, path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Scorecard written to %s\n", path)
			}

			a.archiveReports(ctx, report)
			return printReport(cmd, report, scorer.Rules(), asJSON)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&outPath, "out", "o", "", "scorecard path (default: <out-dir>/Go_NoGo_<document>_<date>.xlsx)")
	f.String("out-dir", "", "directory for scorecards")
	f.String("template", "", "scorecard template workbook to fill")
	f.String("location", "", "project location written to the scorecard")
	f.String("pdftotext", "", "pdftotext binary")
	f.Int("max-pages", 0, "only read the first N pages of each document")
	f.Bool("ocr", false, "recognize PDFs that have no text layer (pdftoppm + tesseract)")
	f.BoolVar(&asJSON, "json", false, "print the report as JSON")
	f.BoolVar(&noXLSX, "no-xlsx", false, "do not write a scorecard workbook")
	return cmd
}

func printReport(cmd *cobra.Command, report entity.ScoreReport, rs entity.RuleSet, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return scorecard.WriteReport(cmd.OutOrStdout(), report, rs)
}
