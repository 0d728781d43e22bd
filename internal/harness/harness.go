// Package harness measures scoring fidelity against historical human-scored projects.
package harness

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bdahlka1/cec.ai-demo/internal/async"
	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
	"github.com/bdahlka1/cec.ai-demo/internal/extract"
	"github.com/bdahlka1/cec.ai-demo/internal/rules"
	"github.com/bdahlka1/cec.ai-demo/internal/score"
	"github.com/bdahlka1/cec.ai-demo/internal/scorecard"
)

// GroundTruthLoader reads the human points for the given rule ids from a scorecard file.
type GroundTruthLoader func(path string, ruleIDs []int) (entity.GroundTruthScorecard, error)

// Harness evaluates a corpus of historical projects. It only reads the historical store.
type Harness struct {
	scorer       *score.Scorer
	extractor    extract.PageExtractor
	groundTruth  GroundTruthLoader
	rfpDir       string
	scorecardDir string
	workers      int
	timeout      time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

type Option func(*Harness)

func WithWorkers(n int) Option {
	return func(h *Harness) {
		if n > 0 {
			h.workers = n
		}
	}
}

func WithProjectTimeout(d time.Duration) Option {
	return func(h *Harness) {
		if d > 0 {
			h.timeout = d
		}
	}
}

func WithGroundTruthLoader(l GroundTruthLoader) Option {
	return func(h *Harness) {
		if l != nil {
			h.groundTruth = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Harness) {
		if now != nil {
			h.now = now
		}
	}
}

// New builds a harness. Relative manifest paths resolve against rfpDir and scorecardDir.
func New(scorer *score.Scorer, extractor extract.PageExtractor, rfpDir, scorecardDir string, logger *slog.Logger, opts ...Option) *Harness {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Harness{
		scorer:       scorer,
		extractor:    extractor,
		groundTruth:  scorecard.LoadGroundTruth,
		rfpDir:       rfpDir,
		scorecardDir: scorecardDir,
		workers:      1,
		timeout:      5 * time.Minute,
		logger:       logger,
		now:          time.Now,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// EvaluateCorpus reads the manifest and evaluates every project in it. An unreadable
// manifest fails the run; per-project failures are recorded as exclusions.
func (h *Harness) EvaluateCorpus(ctx context.Context, manifestPath string) (entity.EvaluationSummary, error) {
	projects, err := ReadManifest(manifestPath)
	if err != nil {
		return entity.EvaluationSummary{}, err
	}
	h.logger.Info("harness.manifest", "path", manifestPath, "projects", len(projects))
	return h.EvaluateProjects(ctx, projects)
}

type outcome struct {
	eval     *entity.ProjectEvaluation
	excluded *entity.ExcludedProject
}

// EvaluateProjects evaluates the given projects in parallel and reports them in input order.
func (h *Harness) EvaluateProjects(ctx context.Context, projects []entity.Project) (entity.EvaluationSummary, error) {
	runID := common.RunIDFromContext(ctx)
	if runID == uuid.Nil {
		runID = uuid.New()
		ctx = common.WithRunID(ctx, runID)
	}
	started := h.now()

	outcomes := make([]outcome, len(projects))
	handler := func(jobCtx context.Context, job async.Job) error {
		p := projects[job.Index]
		eval, err := h.EvaluateProject(common.WithProject(jobCtx, p.Name), p)
		if err != nil {
			kind := common.CodeOf(err)
			if kind == "" {
				kind = "ERROR"
			}
			h.logger.Warn("harness.excluded", "run_id", runID, "project", p.Name, "kind", kind, "error", err)
			outcomes[job.Index] = outcome{excluded: &entity.ExcludedProject{Project: p, Reason: err.Error(), Kind: kind}}
			return err
		}
		outcomes[job.Index] = outcome{eval: &eval}
		return nil
	}

	err := async.RunAll(ctx, len(projects), func(i int) string { return projects[i].Name }, handler, h.logger,
		async.WithWorkers(h.workers), async.WithProcessTimeout(h.timeout))
	if err != nil {
		return entity.EvaluationSummary{}, fmt.Errorf("evaluate corpus: %w", err)
	}

	var evals []entity.ProjectEvaluation
	var excluded []entity.ExcludedProject
	for _, o := range outcomes {
		switch {
		case o.eval != nil:
			evals = append(evals, *o.eval)
		case o.excluded != nil:
			excluded = append(excluded, *o.excluded)
		}
	}

	summary := Summarize(evals, h.scorer.Rules())
	summary.RunID = runID
	summary.StartedAt = started
	summary.FinishedAt = h.now()
	summary.Excluded = excluded

	h.logger.Info("harness.ok",
		"run_id", runID,
		"evaluated", summary.ProjectCount,
		"excluded", len(excluded),
		"mean_abs_total_error", summary.MeanAbsTotalError,
		"elapsed_ms", summary.FinishedAt.Sub(started).Milliseconds(),
	)
	return summary, nil
}

// EvaluateProject scores one project's documents and compares them with its scorecard.
func (h *Harness) EvaluateProject(ctx context.Context, p entity.Project) (entity.ProjectEvaluation, error) {
	scorecardPath, rfpPaths, err := h.resolve(p)
	if err != nil {
		return entity.ProjectEvaluation{}, err
	}

	truth, err := h.groundTruth(scorecardPath, h.scorer.Rules().IDs())
	if err != nil {
		return entity.ProjectEvaluation{}, err
	}

	pages, err := extract.ExtractAll(ctx, h.extractor, rfpPaths)
	if err != nil {
		return entity.ProjectEvaluation{}, err
	}

	report := h.scorer.Score(ctx, p.Name, pages)
	eval := Compare(p, truth, report)

	h.logger.Info("harness.project",
		"project", p.Name,
		"documents", len(rfpPaths),
		"pages", pages.Len(),
		"human_total", eval.HumanTotal,
		"model_total", eval.ModelTotal,
		"difference", eval.Difference,
	)
	return eval, nil
}

func (h *Harness) resolve(p entity.Project) (string, []string, error) {
	if p.ScorecardFile == "" {
		return "", nil, common.MappingError(fmt.Sprintf("project %q has no scorecard file", p.Name), nil)
	}
	if len(p.RFPFiles) == 0 {
		return "", nil, common.MappingError(fmt.Sprintf("project %q has no rfp files", p.Name), nil)
	}

	scorecardPath := resolvePath(h.scorecardDir, p.ScorecardFile)
	if err := mustExist(scorecardPath); err != nil {
		return "", nil, common.MappingError(fmt.Sprintf("project %q: scorecard %s not found", p.Name, scorecardPath), err)
	}
	rfps := make([]string, 0, len(p.RFPFiles))
	for _, name := range p.RFPFiles {
		path := resolvePath(h.rfpDir, name)
		if err := mustExist(path); err != nil {
			return "", nil, common.MappingError(fmt.Sprintf("project %q: document %s not found", p.Name, path), err)
		}
		rfps = append(rfps, path)
	}
	return scorecardPath, rfps, nil
}

func resolvePath(dir, name string) string {
	if filepath.IsAbs(name) || dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

func mustExist(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// Compare builds the per-project comparison. Rules missing from the ground truth are left out.
func Compare(p entity.Project, truth entity.GroundTruthScorecard, report entity.ScoreReport) entity.ProjectEvaluation {
	eval := entity.ProjectEvaluation{
		Project:    p,
		HumanTotal: truth.Total,
		ModelTotal: report.Total,
		Difference: report.Total - truth.Total,
		Report:     &report,
	}
	for _, res := range report.Results {
		gt, ok := truth.Criteria[res.RuleID]
		if !ok {
			continue
		}
		eval.Rules = append(eval.Rules, entity.RuleComparison{
			RuleID:   res.RuleID,
			HumanPts: gt.Points,
			ModelPts: res.Points,
			AbsError: math.Abs(res.Points - gt.Points),
		})
	}
	return eval
}

// Summarize computes corpus statistics over evaluated projects. Per-rule error only counts
// projects whose scorecard carries the rule; rules follow rubric order.
func Summarize(evals []entity.ProjectEvaluation, rs entity.RuleSet) entity.EvaluationSummary {
	s := entity.EvaluationSummary{Projects: evals, ProjectCount: len(evals)}
	if len(evals) == 0 {
		return s
	}

	totalErrs := make([]float64, 0, len(evals))
	perRule := map[int][]float64{}
	for _, e := range evals {
		totalErrs = append(totalErrs, math.Abs(e.Difference))
		for _, rc := range e.Rules {
			perRule[rc.RuleID] = append(perRule[rc.RuleID], rc.AbsError)
		}
	}
	s.MeanAbsTotalError = mean(totalErrs)

	order := rs.IDs()
	var extra []int
	for id := range perRule {
		if _, ok := rs.Rule(id); !ok {
			extra = append(extra, id)
		}
	}
	sort.Ints(extra)
	order = append(order, extra...)
	seen := map[int]bool{}
	for _, id := range order {
		errs, ok := perRule[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		name := fmt.Sprintf("Rule %d", id)
		if r, ok := rs.Rule(id); ok {
			name = rules.DisplayName(r)
		}
		s.RuleErrors = append(s.RuleErrors, entity.RuleError{RuleID: id, Name: name, Samples: len(errs), MeanAbs: mean(errs)})
	}
	return s
}

// mean sums in ascending order so the result does not depend on project completion order.
func mean(xs []float64) float64 {
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	var sum float64
	for _, x := range sorted {
		sum += x
	}
	return sum / float64(len(sorted))
}
