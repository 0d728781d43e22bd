package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/bdahlka1/cec.ai-demo/constants"
)

// RuleResult is the outcome of evaluating one rule against one document.
type RuleResult struct {
	RuleID  int               `json:"rule_id"`
	Points  float64           `json:"points"`
	Page    int               `json:"page,omitempty"` // 0 when nothing matched
	Snippet string            `json:"snippet,omitempty"`
	Comment string            `json:"comment"`
	Outcome constants.Outcome `json:"outcome"`
}

// HasLocator reports whether the result points at a page.
func (r RuleResult) HasLocator() bool { return r.Page > 0 }

// ScoreReport aggregates the rule results for one document.
type ScoreReport struct {
	RunID     uuid.UUID          `json:"run_id"`
	Document  string             `json:"document,omitempty"`
	Pages     int                `json:"pages"`
	Results   []RuleResult       `json:"results"`
	Total     float64            `json:"total"`
	Threshold float64            `json:"threshold"`
	Decision  constants.Decision `json:"decision"`
	ScoredAt  time.Time          `json:"scored_at"`
}

// Result returns the result recorded for a rule.
func (r ScoreReport) Result(ruleID int) (RuleResult, bool) {
	for _, res := range r.Results {
		if res.RuleID == ruleID {
			return res, true
		}
	}
	return RuleResult{}, false
}
