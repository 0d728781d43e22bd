package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/bdahlka1/cec.ai-demo/internal/harness"
	"github.com/bdahlka1/cec.ai-demo/internal/scorecard"
)

func newEvaluateCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure the rubric against historical human-scored projects",
		Long: `Evaluate reads the project manifest (project_name, scorecard_file, rfp_files), scores
each project's RFP documents and compares the result with its historical scorecard.
Projects whose files cannot be resolved, extracted or read are excluded and listed with
the reason.

Relative paths in the manifest resolve against <data-dir>/rfps and <data-dir>/scorecards.

Example:
  bidscore evaluate --data-dir ./data --workers 4
  bidscore evaluate --manifest ./data/mapping.csv --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			scorer, err := a.newScorer()
			if err != nil {
				return err
			}

			h := harness.New(scorer, a.newExtractor(), a.cfg.Harness.RFPPath(), a.cfg.Harness.ScorecardPath(), a.logger,
				harness.WithWorkers(a.cfg.Harness.Workers),
				harness.WithProjectTimeout(a.cfg.Harness.ProjectTimeout),
			)
			manifest := a.cfg.Harness.ManifestPath()
			summary, err := h.EvaluateCorpus(ctx, manifest)
			if err != nil {
				return err
			}

			store, err := a.openArchive(ctx)
			if err != nil {
				a.logger.Error("archive.unavailable", "error", err)
			} else if store != nil {
				if err := store.SaveEvaluation(ctx, manifest, summary); err != nil {
					a.logger.Error("archive.save_failed", "run_id", summary.RunID, "error", err)
				}
				store.Close()
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			return scorecard.WriteEvaluation(cmd.OutOrStdout(), summary)
		},
	}
	f := cmd.Flags()
	f.String("manifest", "", "project manifest CSV (default: <data-dir>/mapping.csv)")
	f.String("data-dir", "", "directory holding mapping.csv, rfps/ and scorecards/")
	f.String("pdftotext", "", "pdftotext binary")
	f.Int("max-pages", 0, "only read the first N pages of each document")
	f.Int("workers", 0, "parallel projects")
	f.BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}
