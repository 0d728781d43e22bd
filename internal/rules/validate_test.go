package rules

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(entity.RuleSet{Rules: []entity.Rule{{ID: 1, PositivePoints: 2, NegativePoints: -3}}}))

	err := Validate(entity.RuleSet{Source: "bad", Rules: []entity.Rule{
		{ID: 0},
		{ID: 2, PositivePoints: math.Inf(1)},
		{ID: 3, NegativePoints: math.NaN()},
	}})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "rule 0 id")
		assert.Contains(t, err.Error(), "rule 2 positive points")
		assert.Contains(t, err.Error(), "rule 3 negative points")
	}
}

func TestLint(t *testing.T) {
	def := 2.0
	warnings := Lint(entity.RuleSet{Rules: []entity.Rule{
		{ID: 24, PositivePoints: 5},
		{ID: 6, PositivePoints: 10, PositiveKeywords: []string{"cec"}, DefaultPoints: &def},
		{ID: 12, MaxPoints: 5, PositivePoints: 8, PositiveKeywords: []string{"plc"}},
		{ID: 13, PositiveKeywords: []string{"wonderware"}},
		{ID: 25, NegativePoints: -5, NegativeKeywords: []string{"liquidated damages"}},
	}})

	assert.Len(t, warnings, 4)
	assert.Contains(t, warnings[0], "Strategic value")
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Custom", DisplayName(entity.Rule{ID: 6, Name: "Custom"}))
	assert.Equal(t, "Approved integrator", DisplayName(entity.Rule{ID: 6}))
	assert.Equal(t, "Rule 99", DisplayName(entity.Rule{ID: 99}))
}
