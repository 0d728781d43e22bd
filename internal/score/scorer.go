package score

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// Scorer runs a whole rule set over a document and aggregates the outcome.
type Scorer struct {
	rules     entity.RuleSet
	evaluator Evaluator
	threshold float64
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Scorer)

func WithSnippetLength(n int) Option {
	return func(s *Scorer) { s.evaluator.SnippetLength = n }
}

func WithFallbackLength(n int) Option {
	return func(s *Scorer) { s.evaluator.FallbackLength = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// NewScorer binds a loaded rule set and threshold. An empty rule set is a configuration
// error: scoring never runs against a partial or missing rubric.
func NewScorer(rules entity.RuleSet, threshold float64, logger *slog.Logger, opts ...Option) (*Scorer, error) {
	if rules.Len() == 0 {
		return nil, common.ConfigurationErrorf("rule set %q has no rules", rules.Source)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Scorer{
		rules:     rules,
		threshold: threshold,
		logger:    logger,
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Rules returns the rule set the scorer was built with.
func (s *Scorer) Rules() entity.RuleSet { return s.rules }

// Threshold returns the decision threshold.
func (s *Scorer) Threshold() float64 { return s.threshold }

// Score evaluates every rule in rubric order. The run id is taken from ctx when present.
func (s *Scorer) Score(ctx context.Context, document string, pages entity.Pages) entity.ScoreReport {
	start := time.Now()
	logger := common.ContextLogger(ctx, s.logger)
	runID := common.RunIDFromContext(ctx)
	if runID == uuid.Nil {
		runID = uuid.New()
	}

	results := make([]entity.RuleResult, 0, s.rules.Len())
	for _, rule := range s.rules.Rules {
		res := s.evaluator.Evaluate(pages, rule)
		logger.Debug("score.rule",
			"run_id", runID,
			"rule_id", rule.ID,
			"outcome", res.Outcome,
			"points", res.Points,
			"page", res.Page,
		)
		results = append(results, res)
	}

	report := Aggregate(results, s.threshold)
	report.RunID = runID
	report.Document = document
	report.Pages = pages.Len()
	report.ScoredAt = s.now().UTC()

	logger.Info("score.ok",
		"run_id", runID,
		"document", document,
		"pages", report.Pages,
		"rules", len(results),
		"total", report.Total,
		"decision", report.Decision,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report
}
