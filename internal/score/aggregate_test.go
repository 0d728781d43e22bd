package score

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

func results(points ...float64) []entity.RuleResult {
	out := make([]entity.RuleResult, len(points))
	for i, p := range points {
		out[i] = entity.RuleResult{RuleID: i + 1, Points: p}
	}
	return out
}

func TestAggregate_GoAtThreshold(t *testing.T) {
	pts := make([]float64, 0, 15)
	for i := 0; i < 14; i++ {
		pts = append(pts, 5)
	}
	pts = append(pts, 10)

	report := Aggregate(results(pts...), 75)

	assert.Equal(t, 80.0, report.Total)
	assert.Equal(t, constants.DecisionGo, report.Decision)
	assert.Len(t, report.Results, 15)
}

func TestAggregate_ExactlyThresholdIsGo(t *testing.T) {
	report := Aggregate(results(70, 5), 75)
	assert.Equal(t, constants.DecisionGo, report.Decision)
}

func TestAggregate_BelowThreshold(t *testing.T) {
	report := Aggregate(results(40, 30, -5), 75)

	assert.Equal(t, 65.0, report.Total)
	assert.Equal(t, constants.DecisionNoGo, report.Decision)
}

func TestAggregate_Empty(t *testing.T) {
	report := Aggregate(nil, constants.DefaultThreshold)

	assert.Zero(t, report.Total)
	assert.Equal(t, constants.DecisionNoGo, report.Decision)
	assert.Empty(t, report.Results)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	base := results(10, 0.1, 0.2, -3, 2.5, 7.3, 0.7, 15, -0.4, 1e-3)
	want := Aggregate(base, 30)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		perm := make([]entity.RuleResult, len(base))
		copy(perm, base)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })

		got := Aggregate(perm, 30)
		assert.Equal(t, want.Total, got.Total)
		assert.Equal(t, want.Decision, got.Decision)
	}
}

func TestAggregate_KeepsCallerOrderAndCopies(t *testing.T) {
	in := results(1, 2, 3)
	report := Aggregate(in, 0)

	in[0].Points = 99
	assert.Equal(t, 1.0, report.Results[0].Points)
	assert.Equal(t, []int{1, 2, 3}, []int{report.Results[0].RuleID, report.Results[1].RuleID, report.Results[2].RuleID})
}
