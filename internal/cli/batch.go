package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/bdahlka1/cec.ai-demo/internal/async"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
	"github.com/bdahlka1/cec.ai-demo/internal/extract"
	"github.com/bdahlka1/cec.ai-demo/internal/score"
	"github.com/bdahlka1/cec.ai-demo/internal/scorecard"
)

type batchResult struct {
	path   string
	report *entity.ScoreReport
	output string
	err    error
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		exts       []string
		skipHidden bool
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Score every document in a directory, one scorecard each",
		Long: `Batch walks a directory for PDF and text documents and scores each one on its own,
writing one scorecard per document into --out-dir. Documents are processed in parallel;
the summary lists them in path order.

Example:
  bidscore batch ./incoming --workers 4 --out-dir ./scorecards`,
		Args: cobra.ExactArgs(1),
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

			docs, err := extract.CollectDocuments(args[0], exts, skipHidden)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return fmt.Errorf("no documents found in %s", args[0])
			}
			a.logger.Info("batch.start", "dir", args[0], "documents", len(docs), "workers", a.cfg.Harness.Workers)

			// named up front in path order so a shared base name always maps the same way
			namer := scorecard.NewNamer()
			now := time.Now()
			outputs := make([]string, len(docs))
			for i, doc := range docs {
				outputs[i] = namer.Next(a.cfg.Output.Dir, doc, now)
			}

			ex := a.newExtractor()
			results := make([]batchResult, len(docs))
			handler := func(jobCtx context.Context, job async.Job) error {
				res := scoreOne(jobCtx, a, scorer, ex, renderer, docs[job.Index], outputs[job.Index])
				results[job.Index] = res
				return res.err
			}
			err = async.RunAll(ctx, len(docs), func(i int) string { return docs[i] }, handler, a.logger,
				async.WithWorkers(a.cfg.Harness.Workers), async.WithProcessTimeout(timeout))
			if err != nil {
				return err
			}

			var reports []entity.ScoreReport
			failed := 0
			t := tablewriter.NewWriter(cmd.OutOrStdout())
			t.SetHeader([]string{"Document", "Pages", "Total", "Decision", "Scorecard"})
			t.SetAutoFormatHeaders(false)
			for _, r := range results {
				if r.err != nil {
					failed++
					t.Append([]string{filepath.Base(r.path), "", "", "ERROR", r.err.Error()})
					continue
				}
				reports = append(reports, *r.report)
				t.Append([]string{
					filepath.Base(r.path),
					strconv.Itoa(r.report.Pages),
					score.FormatPoints(r.report.Total),
					string(r.report.Decision),
					r.output,
				})
			}
			t.Render()

			a.archiveReports(ctx, reports...)
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(docs))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&exts, "ext", nil, "file extensions to include (default: pdf, txt)")
	f.BoolVar(&skipHidden, "skip-hidden", true, "skip hidden files and directories")
	f.DurationVar(&timeout, "timeout", 5*time.Minute, "timeout per document")
	f.String("out-dir", "", "directory for scorecards")
	f.String("template", "", "scorecard template workbook to fill")
	f.String("location", "", "project location written to each scorecard")
	f.String("pdftotext", "", "pdftotext binary")
	f.Int("max-pages", 0, "only read the first N pages of each document")
	f.Bool("ocr", false, "recognize PDFs that have no text layer (pdftoppm + tesseract)")
	f.Int("workers", 0, "parallel documents")
	return cmd
}

func scoreOne(ctx context.Context, a *app, scorer *score.Scorer, ex extract.PageExtractor, renderer *scorecard.Renderer, path, out string) batchResult {
	pages, err := ex.Extract(ctx, path)
	if err != nil {
		return batchResult{path: path, err: err}
	}
	report := scorer.Score(ctx, filepath.Base(path), pages)
	if err := renderer.WriteFile(report, a.cfg.Output.Location, out); err != nil {
		return batchResult{path: path, err: err}
	}
	return batchResult{path: path, report: &report, output: out}
}
