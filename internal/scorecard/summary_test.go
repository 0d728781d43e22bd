package scorecard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	rs := entity.RuleSet{Rules: []entity.Rule{{ID: 6}, {ID: 25, Name: "LDs"}}}

	require.NoError(t, WriteReport(&buf, sampleReport(), rs))

	out := buf.String()
	assert.Contains(t, out, "Document: spec.pdf")
	assert.Contains(t, out, "Approved integrator")
	assert.Contains(t, out, "LDs")
	assert.Contains(t, out, "NO-GO (threshold 75)")
}

func TestWriteEvaluation(t *testing.T) {
	var buf bytes.Buffer
	s := entity.EvaluationSummary{
		Projects: []entity.ProjectEvaluation{
			{Project: entity.Project{Name: "Lift Station 4"}, HumanTotal: 70, ModelTotal: 80, Difference: 10},
			{Project: entity.Project{Name: "WTP Upgrade"}, HumanTotal: 60, ModelTotal: 55, Difference: -5},
		},
		ProjectCount:      2,
		MeanAbsTotalError: 7.5,
		RuleErrors:        []entity.RuleError{{RuleID: 6, Name: "Approved integrator", Samples: 2, MeanAbs: 2.5}},
		Excluded:          []entity.ExcludedProject{{Project: entity.Project{Name: "Ghost"}, Kind: "MAPPING_ERROR", Reason: "scorecard not found"}},
	}

	require.NoError(t, WriteEvaluation(&buf, s))

	out := buf.String()
	assert.Contains(t, out, "Lift Station 4")
	assert.Contains(t, out, "+10")
	assert.Contains(t, out, "-5")
	assert.Contains(t, out, "Projects evaluated: 2")
	assert.Contains(t, out, "7.5")
	assert.Contains(t, out, "Excluded projects: 1")
	assert.Contains(t, out, "MAPPING_ERROR")
}
