package scorecard

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

func writeScorecard(t *testing.T, cells map[string]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for cell, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	path := filepath.Join(t.TempDir(), "historical.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoadGroundTruth(t *testing.T) {
	path := writeScorecard(t, map[string]any{
		"B35": 62.5,
		"F6":  10,
		"G6":  "  CEC named in 40 05 00  ",
		"F25": -5,
		"G25": "LDs",
	})

	gt, err := LoadGroundTruth(path, []int{6, 12, 25})
	require.NoError(t, err)

	assert.Equal(t, 62.5, gt.Total)
	assert.Equal(t, path, gt.Path)
	assert.Equal(t, map[int]entity.GroundTruthCriterion{
		6:  {Points: 10, Comment: "CEC named in 40 05 00"},
		12: {Points: 0, Comment: ""},
		25: {Points: -5, Comment: "LDs"},
	}, gt.Criteria)
}

func TestLoadGroundTruth_BlankTotal(t *testing.T) {
	gt, err := LoadGroundTruth(writeScorecard(t, map[string]any{"F6": 3}), []int{6})
	require.NoError(t, err)
	assert.Zero(t, gt.Total)
}

func TestLoadGroundTruth_Errors(t *testing.T) {
	_, err := LoadGroundTruth(filepath.Join(t.TempDir(), "missing.xlsx"), []int{6})
	assert.True(t, errors.Is(err, common.ErrScorecard))

	_, err = LoadGroundTruth(writeScorecard(t, map[string]any{"B35": "n/a"}), []int{6})
	assert.True(t, errors.Is(err, common.ErrScorecard))

	_, err = LoadGroundTruth(writeScorecard(t, map[string]any{"F6": "high"}), []int{6})
	assert.True(t, errors.Is(err, common.ErrScorecard))
}
