package entity

import (
	"time"

	"github.com/google/uuid"
)

// GroundTruthCriterion is the human-recorded outcome of one criterion.
type GroundTruthCriterion struct {
	Points  float64 `json:"points"`
	Comment string  `json:"comment,omitempty"`
}

// GroundTruthScorecard is a historical, human-filled scorecard.
type GroundTruthScorecard struct {
	Path     string                       `json:"path"`
	Total    float64                      `json:"total"`
	Criteria map[int]GroundTruthCriterion `json:"criteria"`
}

// Project is one row of the historical mapping manifest.
type Project struct {
	Name          string   `json:"name"`
	ScorecardFile string   `json:"scorecard_file"`
	RFPFiles      []string `json:"rfp_files"`
}

// RuleComparison compares model and human points for one rule on one project.
type RuleComparison struct {
	RuleID   int     `json:"rule_id"`
	HumanPts float64 `json:"human_points"`
	ModelPts float64 `json:"model_points"`
	AbsError float64 `json:"absolute_error"`
}

// ProjectEvaluation is the harness output for one historical project.
type ProjectEvaluation struct {
	Project    Project          `json:"project"`
	HumanTotal float64          `json:"human_total"`
	ModelTotal float64          `json:"model_total"`
	Difference float64          `json:"difference"` // model - human
	Rules      []RuleComparison `json:"rules"`
	Report     *ScoreReport     `json:"report,omitempty"`
}

// ExcludedProject records a project that could not be evaluated.
type ExcludedProject struct {
	Project Project `json:"project"`
	Reason  string  `json:"reason"`
	Kind    string  `json:"kind"` // MAPPING_ERROR | EXTRACTION_ERROR | SCORECARD_ERROR
}

// RuleError is the per-rule mean absolute error across evaluated projects.
type RuleError struct {
	RuleID  int     `json:"rule_id"`
	Name    string  `json:"name,omitempty"`
	Samples int     `json:"samples"`
	MeanAbs float64 `json:"mean_absolute_error"`
}

// EvaluationSummary is the corpus-level result of a harness run.
type EvaluationSummary struct {
	RunID             uuid.UUID           `json:"run_id"`
	StartedAt         time.Time           `json:"started_at"`
	FinishedAt        time.Time           `json:"finished_at"`
	Projects          []ProjectEvaluation `json:"projects"`
	Excluded          []ExcludedProject   `json:"excluded,omitempty"`
	ProjectCount      int                 `json:"project_count"`
	MeanAbsTotalError float64             `json:"mean_absolute_total_error"`
	RuleErrors        []RuleError         `json:"rule_errors"`
}
