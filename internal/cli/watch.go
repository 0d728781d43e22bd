package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/bdahlka1/cec.ai-demo/internal/inbox"
	"github.com/bdahlka1/cec.ai-demo/internal/score"
	"github.com/bdahlka1/cec.ai-demo/internal/scorecard"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		existing bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <dir> [dir...]",
		Short: "Score documents as they land in an inbox directory",
		Long: `Watch scores every PDF or text document written under the given directories and
writes its scorecard into --out-dir. It runs until interrupted.

Example:
  bidscore watch ./inbox --out-dir ./scorecards --existing`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			scorer, err := a.newScorer()
			if err != nil {
				return err
			}
			renderer := a.newRenderer()
			if err := renderer.Check(); err != nil {
				return err
			}
			docs, errs, err := inbox.Watch(ctx, inbox.WatchConfig{
				Roots:       args,
				InitialScan: existing,
				Debounce:    debounce,
			}, a.logger)
			if err != nil {
				return fmt.Errorf("watch: %w", err)
			}

			ex := a.newExtractor()
			namer := scorecard.NewNamer()
			out := cmd.OutOrStdout()
			for {
				select {
				case <-ctx.Done():
					return nil
				case err, ok := <-errs:
					if ok {
						a.logger.Warn("watch.error", "error", err)
					} else {
						errs = nil
					}
				case path, ok := <-docs:
					if !ok {
						return nil
					}
					res := scoreOne(ctx, a, scorer, ex, renderer, path, namer.Next(a.cfg.Output.Dir, path, time.Now()))
					if res.err != nil {
						fmt.Fprintf(out, "%s: ERROR %v\n", filepath.Base(path), res.err)
						continue
					}
					fmt.Fprintf(out, "%s: %s %s -> %s\n", filepath.Base(path),
						score.FormatPoints(res.report.Total), res.report.Decision, res.output)
					a.archiveReports(ctx, *res.report)
				}
			}
		},
	}
	f := cmd.Flags()
	f.BoolVar(&existing, "existing", false, "also score documents already in the directories")
	f.DurationVar(&debounce, "debounce", 2*time.Second, "wait for writes to settle before scoring")
	f.String("out-dir", "", "directory for scorecards")
	f.String("template", "", "scorecard template workbook to fill")
	f.String("location", "", "project location written to each scorecard")
	f.String("pdftotext", "", "pdftotext binary")
	f.Int("max-pages", 0, "only read the first N pages of each document")
	f.Bool("ocr", false, "recognize PDFs that have no text layer (pdftoppm + tesseract)")
	return cmd
}
