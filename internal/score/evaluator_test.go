package score

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

func ptr(f float64) *float64 { return &f }

func TestEvaluate_PositiveKeywordOnFirstPage(t *testing.T) {
	pages := entity.Pages{1: "CEC Controls is the approved integrator."}
	rule := entity.Rule{ID: 6, MaxPoints: 10, PositivePoints: 10, PositiveKeywords: []string{"cec"}}

	res := Evaluate(pages, rule)

	assert.Equal(t, 10.0, res.Points)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, "CEC Controls is the approved integrator.", res.Snippet)
	assert.Equal(t, constants.OutcomePositive, res.Outcome)
	assert.Equal(t, `10 pts – Page 1: "CEC Controls is the approved integrator."`, res.Comment)
}

func TestEvaluate_NegativeOnlyRule(t *testing.T) {
	pages := entity.Pages{
		1: "No mention of SCADA here.",
		2: "Liquidated damages apply per section 4.",
	}
	rule := entity.Rule{ID: 25, NegativePoints: 5, NegativeKeywords: []string{"liquidated damages"}}

	res := Evaluate(pages, rule)

	assert.Equal(t, 5.0, res.Points)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, constants.OutcomeNegative, res.Outcome)
	assert.Equal(t, `5 pts – Page 2: "Liquidated damages apply per section 4."`, res.Comment)
}

func TestEvaluate_NegativeOverridesPositive(t *testing.T) {
	pages := entity.Pages{
		1: "Bidders shall use Allen-Bradley PLCs.",
		2: "Or approved equal.",
	}
	rule := entity.Rule{
		ID:               12,
		PositivePoints:   8,
		NegativePoints:   -4,
		PositiveKeywords: []string{"allen-bradley"},
		NegativeKeywords: []string{"approved equal"},
	}

	res := Evaluate(pages, rule)

	assert.Equal(t, -4.0, res.Points)
	assert.Equal(t, constants.OutcomeNegative, res.Outcome)
	assert.Equal(t, 1, res.Page, "locator is the lowest page with any keyword")
	assert.Equal(t, "Bidders shall use Allen-Bradley PLCs.", res.Snippet)
}

func TestEvaluate_ZeroNegativePointsStillNegativeOutcome(t *testing.T) {
	pages := entity.Pages{1: "Design-build delivery."}
	rule := entity.Rule{ID: 26, PositivePoints: 5, PositiveKeywords: []string{"design-bid-build"}, NegativeKeywords: []string{"design-build"}}

	res := Evaluate(pages, rule)

	assert.Equal(t, 0.0, res.Points)
	assert.Equal(t, constants.OutcomeNegative, res.Outcome)
	assert.Equal(t, 1, res.Page)
}

func TestEvaluate_NoMatch(t *testing.T) {
	pages := entity.Pages{1: "Pump station upgrades.", 2: "General conditions."}
	rule := entity.Rule{ID: 13, PositivePoints: 5, PositiveKeywords: []string{"wonderware"}}

	res := Evaluate(pages, rule)

	assert.Zero(t, res.Points)
	assert.Zero(t, res.Page)
	assert.Empty(t, res.Snippet)
	assert.Equal(t, constants.OutcomeNone, res.Outcome)
	assert.Equal(t, "0 pts", res.Comment)
}

func TestEvaluate_LowestPageWins(t *testing.T) {
	pages := entity.Pages{
		5: "SCADA appears again on page five.",
		1: "Cover sheet.",
		3: "Section 40 90 00: SCADA system.",
		4: "Also scada here.",
	}
	rule := entity.Rule{ID: 11, PositivePoints: 6, PositiveKeywords: []string{"scada"}}

	for i := 0; i < 20; i++ {
		res := Evaluate(pages, rule)
		require.Equal(t, 3, res.Page)
		require.Equal(t, "Section 40 90 00: SCADA system.", res.Snippet)
	}
}

func TestEvaluate_FirstMatchingLineOnPage(t *testing.T) {
	pages := entity.Pages{1: "Division 40\n\n  The integrator shall be CEC Controls.  \nCEC again"}
	rule := entity.Rule{ID: 6, PositivePoints: 10, PositiveKeywords: []string{"cec controls"}}

	res := Evaluate(pages, rule)

	assert.Equal(t, "The integrator shall be CEC Controls.", res.Snippet)
}

func TestEvaluate_SnippetTruncatedInComment(t *testing.T) {
	line := "CEC " + strings.Repeat("x", 200)
	pages := entity.Pages{1: line}
	rule := entity.Rule{ID: 6, PositivePoints: 10, PositiveKeywords: []string{"cec"}}

	res := Evaluate(pages, rule)

	assert.Equal(t, line, res.Snippet, "the result keeps the full line")
	want := `10 pts – Page 1: "` + line[:120] + `..."`
	assert.Equal(t, want, res.Comment)
}

func TestEvaluate_SnippetAtLimitNotTruncated(t *testing.T) {
	line := "cec" + strings.Repeat("y", 117)
	res := Evaluate(entity.Pages{1: line}, entity.Rule{ID: 1, PositivePoints: 1, PositiveKeywords: []string{"cec"}})

	assert.Equal(t, `1 pts – Page 1: "`+line+`"`, res.Comment)
}

func TestEvaluate_CustomSnippetLength(t *testing.T) {
	e := Evaluator{SnippetLength: 10}
	res := e.Evaluate(entity.Pages{1: "CEC Controls approved integrator"}, entity.Rule{ID: 1, PositivePoints: 2, PositiveKeywords: []string{"cec"}})

	assert.Equal(t, `2 pts – Page 1: "CEC Contro..."`, res.Comment)
}

func TestEvaluate_FallbackWhenNoSingleLineMatches(t *testing.T) {
	text := "liquidated\ndamages apply " + strings.Repeat("z", 300)
	rule := entity.Rule{ID: 25, NegativePoints: -5, NegativeKeywords: []string{"liquidated\ndamages"}}

	res := Evaluate(entity.Pages{1: text}, rule)

	assert.Equal(t, 1, res.Page)
	assert.Equal(t, -5.0, res.Points)
	assert.True(t, strings.HasPrefix(res.Snippet, "liquidated damages apply"))
	assert.LessOrEqual(t, len([]rune(res.Snippet)), constants.DefaultFallbackLength)
}

func TestEvaluate_NegativeAcrossPageBoundary(t *testing.T) {
	pages := entity.Pages{1: "the contractor shall pay liquidated", 2: "damages of $500 per day"}
	rule := entity.Rule{ID: 25, NegativePoints: -5, NegativeKeywords: []string{"liquidated damages"}}

	res := Evaluate(pages, rule)

	assert.Equal(t, -5.0, res.Points, "negatives are matched on the joined document")
	assert.Zero(t, res.Page, "no single page holds the keyword")
	assert.Equal(t, "-5 pts", res.Comment)
}

func TestEvaluate_CaseInsensitiveKeywords(t *testing.T) {
	pages := entity.Pages{1: "owner furnished equipment"}
	rule := entity.Rule{ID: 27, PositivePoints: 3, PositiveKeywords: []string{"Owner Furnished"}}

	res := Evaluate(pages, rule)

	assert.Equal(t, 3.0, res.Points)
}

func TestEvaluate_RuleWithoutKeywords(t *testing.T) {
	pages := entity.Pages{1: "Strategic client in a growth market."}

	t.Run("no default scores zero", func(t *testing.T) {
		res := Evaluate(pages, entity.Rule{ID: 24, MaxPoints: 5, PositivePoints: 5})
		assert.Zero(t, res.Points)
		assert.Zero(t, res.Page)
		assert.Equal(t, constants.OutcomeNone, res.Outcome)
		assert.Equal(t, "0 pts", res.Comment)
	})

	t.Run("explicit default is awarded", func(t *testing.T) {
		res := Evaluate(pages, entity.Rule{ID: 24, MaxPoints: 5, PositivePoints: 5, DefaultPoints: ptr(3)})
		assert.Equal(t, 3.0, res.Points)
		assert.Equal(t, constants.OutcomeDefault, res.Outcome)
		assert.Equal(t, "3 pts", res.Comment)
	})
}

func TestEvaluate_EmptyDocument(t *testing.T) {
	rules := []entity.Rule{
		{ID: 6, PositivePoints: 10, PositiveKeywords: []string{"cec"}},
		{ID: 25, NegativePoints: -5, NegativeKeywords: []string{"liquidated damages"}},
		{ID: 24, PositivePoints: 5},
	}
	for _, r := range rules {
		res := Evaluate(entity.Pages{}, r)
		assert.Zero(t, res.Points, "rule %d", r.ID)
		assert.False(t, res.HasLocator(), "rule %d", r.ID)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	pages := entity.Pages{1: "alpha", 2: "Bravo SCADA", 3: "charlie scada"}
	rule := entity.Rule{ID: 11, PositivePoints: 6, NegativePoints: -1, PositiveKeywords: []string{"scada"}, NegativeKeywords: []string{"delta"}}

	first := Evaluate(pages, rule)
	second := Evaluate(pages, rule)

	assert.Equal(t, first, second)
}

func TestEvaluate_DoesNotMutateInputs(t *testing.T) {
	pages := entity.Pages{1: "CEC"}
	rule := entity.Rule{ID: 6, PositivePoints: 1, PositiveKeywords: []string{"CEC", ""}, NegativeKeywords: []string{"x"}}

	_ = Evaluate(pages, rule)

	assert.Equal(t, entity.Pages{1: "CEC"}, pages)
	assert.Equal(t, []string{"CEC", ""}, rule.PositiveKeywords)
	assert.Equal(t, []string{"x"}, rule.NegativeKeywords)
}

func TestEvaluate_EmptyKeywordIgnored(t *testing.T) {
	rule := entity.Rule{ID: 1, PositivePoints: 4, PositiveKeywords: []string{""}}

	res := Evaluate(entity.Pages{1: "anything"}, rule)

	assert.Zero(t, res.Points)
	assert.Equal(t, constants.OutcomeNone, res.Outcome)
}

func TestFormatPoints(t *testing.T) {
	tests := map[float64]string{0: "0", 10: "10", 2.5: "2.5", -5: "-5", 0.25: "0.25"}
	for in, want := range tests {
		assert.Equal(t, want, FormatPoints(in))
	}
}
