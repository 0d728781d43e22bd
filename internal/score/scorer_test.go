package score

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

func rubric() entity.RuleSet {
	return entity.RuleSet{
		Source: "test",
		Rules: []entity.Rule{
			{ID: 6, PositivePoints: 10, PositiveKeywords: []string{"cec"}},
			{ID: 11, PositivePoints: 6, PositiveKeywords: []string{"scada"}},
			{ID: 24, PositivePoints: 5},
			{ID: 25, NegativePoints: -5, NegativeKeywords: []string{"liquidated damages"}},
		},
	}
}

func TestNewScorer_EmptyRuleSet(t *testing.T) {
	_, err := NewScorer(entity.RuleSet{Source: "empty.xlsx"}, 75, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}

func TestScorer_Score(t *testing.T) {
	fixed := time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)
	s, err := NewScorer(rubric(), 10, nil, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	pages := entity.Pages{
		1: "CEC Controls is the approved integrator.",
		2: "SCADA by others.",
		3: "Liquidated damages: $1,000/day.",
	}
	report := s.Score(context.Background(), "spec.pdf", pages)

	require.Len(t, report.Results, 4)
	assert.Equal(t, []int{6, 11, 24, 25}, []int{
		report.Results[0].RuleID, report.Results[1].RuleID, report.Results[2].RuleID, report.Results[3].RuleID,
	})
	assert.Equal(t, 11.0, report.Total)
	assert.Equal(t, constants.DecisionGo, report.Decision)
	assert.Equal(t, "spec.pdf", report.Document)
	assert.Equal(t, 3, report.Pages)
	assert.Equal(t, fixed, report.ScoredAt)
	assert.NotEqual(t, uuid.Nil, report.RunID)

	res, ok := report.Result(25)
	require.True(t, ok)
	assert.Equal(t, 3, res.Page)
}

func TestScorer_EmptyDocumentIsNoGo(t *testing.T) {
	s, err := NewScorer(rubric(), constants.DefaultThreshold, nil)
	require.NoError(t, err)

	report := s.Score(context.Background(), "blank.pdf", entity.Pages{})

	assert.Zero(t, report.Total)
	assert.Equal(t, constants.DecisionNoGo, report.Decision)
	for _, r := range report.Results {
		assert.Zero(t, r.Points)
		assert.False(t, r.HasLocator())
	}
}

func TestScorer_RunIDFromContext(t *testing.T) {
	s, err := NewScorer(rubric(), 75, nil)
	require.NoError(t, err)

	id := uuid.New()
	report := s.Score(common.WithRunID(context.Background(), id), "x", entity.Pages{1: ""})

	assert.Equal(t, id, report.RunID)
}

func TestScorer_SnippetOption(t *testing.T) {
	s, err := NewScorer(rubric(), 75, nil, WithSnippetLength(3))
	require.NoError(t, err)

	report := s.Score(context.Background(), "x", entity.Pages{1: "CEC Controls"})
	res, _ := report.Result(6)

	assert.Equal(t, `10 pts – Page 1: "CEC..."`, res.Comment)
}

func TestScorer_LogsHarnessProject(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	s, err := NewScorer(rubric(), 10, logger)
	require.NoError(t, err)

	s.Score(common.WithProject(context.Background(), "Alpha"), "alpha.pdf", entity.Pages{1: "cec"})

	assert.Contains(t, buf.String(), "msg=score.ok")
	assert.Contains(t, buf.String(), "project=Alpha")
}
