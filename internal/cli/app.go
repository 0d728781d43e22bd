package cli

import (
	"context"
	"fmt"

	"github.com/bdahlka1/cec.ai-demo/internal/archive"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
	"github.com/bdahlka1/cec.ai-demo/internal/extract"
	"github.com/bdahlka1/cec.ai-demo/internal/rules"
	"github.com/bdahlka1/cec.ai-demo/internal/score"
	"github.com/bdahlka1/cec.ai-demo/internal/scorecard"
)

// loadRules loads and validates the configured rule set. Failure stops the command before
// anything is scored.
func (a *app) loadRules() (entity.RuleSet, error) {
	rs, err := rules.Load(a.cfg.Scoring.RulesPath)
	if err != nil {
		return entity.RuleSet{}, err
	}
	for _, w := range rules.Lint(rs) {
		a.logger.Warn("rules.lint", "source", rs.Source, "warning", w)
	}
	a.logger.Info("rules.loaded", "source", rs.Source, "rules", rs.Len(), "max_total", rs.MaxTotal())
	return rs, nil
}

func (a *app) newScorer() (*score.Scorer, error) {
	rs, err := a.loadRules()
	if err != nil {
		return nil, err
	}
	return score.NewScorer(rs, a.cfg.Scoring.Threshold, a.logger,
		score.WithSnippetLength(a.cfg.Scoring.SnippetLength),
		score.WithFallbackLength(a.cfg.Scoring.FallbackLength),
	)
}

func (a *app) newExtractor() extract.PageExtractor {
	ex := extract.NewExtractor(extract.ConfigFrom(a.cfg.Extract), a.logger)
	return extract.NewCachedExtractor(ex, a.cfg.Extract.CacheTTL, a.logger)
}

func (a *app) newRenderer() *scorecard.Renderer {
	return scorecard.NewRenderer(a.cfg.Output.TemplatePath, a.logger)
}

// openArchive returns nil when no archive is configured.
func (a *app) openArchive(ctx context.Context) (archive.Store, error) {
	if a.cfg.Archive.DSN == "" {
		return nil, nil
	}
	store, err := archive.Open(ctx, a.cfg.Archive.DSN, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return store, nil
}

// archiveReports stores reports when an archive is configured. Failures are logged: the
// scorecards are already written.
func (a *app) archiveReports(ctx context.Context, reports ...entity.ScoreReport) {
	store, err := a.openArchive(ctx)
	if err != nil {
		a.logger.Error("archive.unavailable", "error", err)
		return
	}
	if store == nil {
		return
	}
	defer store.Close()
	for _, r := range reports {
		if err := store.SaveScoreReport(ctx, r); err != nil {
			a.logger.Error("archive.save_failed", "run_id", r.RunID, "error", err)
		}
	}
}
