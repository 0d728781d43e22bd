package score

import (
	"sort"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// Aggregate sums rule results into a report and derives the decision against threshold.
// Results keep the caller's order; the total does not depend on it.
func Aggregate(results []entity.RuleResult, threshold float64) entity.ScoreReport {
	kept := make([]entity.RuleResult, len(results))
	copy(kept, results)

	total := Sum(kept)
	return entity.ScoreReport{
		Results:   kept,
		Total:     total,
		Threshold: threshold,
		Decision:  Decide(total, threshold),
	}
}

// Sum adds result points in ascending order so any permutation of the input yields the
// same float64.
func Sum(results []entity.RuleResult) float64 {
	pts := make([]float64, len(results))
	for i, r := range results {
		pts[i] = r.Points
	}
	sort.Float64s(pts)

	var total float64
	for _, p := range pts {
		total += p
	}
	return total
}

// Decide returns GO when total reaches threshold.
func Decide(total, threshold float64) constants.Decision {
	if total >= threshold {
		return constants.DecisionGo
	}
	return constants.DecisionNoGo
}
