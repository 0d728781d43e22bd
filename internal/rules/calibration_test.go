package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

var header = []any{"Row", "Criterion", "Max", "Positive keywords", "Negative keywords", "Pos pts", "Neg pts", "Default"}

func writeCalibration(t *testing.T, rows ...[]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	all := append([][]any{header}, rows...)
	for i, row := range all {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cellName, &r))
	}
	path := filepath.Join(t.TempDir(), "Bid_Scoring_Calibration.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad_Calibration(t *testing.T) {
	path := writeCalibration(t,
		[]any{6, "Approved integrator", 10, "CEC, cec controls ,,", nil, nil, nil},
		[]any{nil, "separator row"},
		[]any{12, "PLC brand", 8, "Allen-Bradley", "approved equal", 6, -4},
		[]any{24, "Strategic value", 5, nil, nil, nil, nil, 3},
		[]any{25, "Liquidated damages", 0, nil, "liquidated damages", nil, 5},
	)

	rs, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, rs.Source)
	assert.Equal(t, []int{6, 12, 24, 25}, rs.IDs())

	r6, _ := rs.Rule(6)
	assert.Equal(t, "Approved integrator", r6.Name)
	assert.Equal(t, []string{"CEC", "cec controls"}, r6.PositiveKeywords)
	assert.Empty(t, r6.NegativeKeywords)
	assert.Equal(t, 10.0, r6.PositivePoints, "blank override falls back to max")
	assert.Zero(t, r6.NegativePoints)
	assert.Nil(t, r6.DefaultPoints)

	r12, _ := rs.Rule(12)
	assert.Equal(t, 6.0, r12.PositivePoints)
	assert.Equal(t, -4.0, r12.NegativePoints)

	r24, _ := rs.Rule(24)
	require.NotNil(t, r24.DefaultPoints)
	assert.Equal(t, 3.0, *r24.DefaultPoints)
	assert.False(t, r24.HasKeywords())

	r25, _ := rs.Rule(25)
	assert.Equal(t, 5.0, r25.NegativePoints, "negative points keep their sign")
}

func TestLoad_ExplicitZeroOverride(t *testing.T) {
	path := writeCalibration(t, []any{9, "Client/GC relationship", 5, "preferred", nil, 0})

	rs, err := Load(path)
	require.NoError(t, err)

	r, _ := rs.Rule(9)
	assert.Zero(t, r.PositivePoints, "an explicit 0 override is honoured")
}

func TestLoad_CalibrationErrors(t *testing.T) {
	tests := []struct {
		name string
		rows [][]any
		msg  string
	}{
		{"non-numeric max", [][]any{{6, "x", "ten", "cec"}}, "max points"},
		{"non-numeric id", [][]any{{"six", "x", 10, "cec"}}, "id"},
		{"fractional id", [][]any{{6.5, "x", 10, "cec"}}, "whole number"},
		{"duplicate id", [][]any{{6, "a", 10, "cec"}, {6, "b", 5, "scada"}}, "duplicate rule id"},
		{"negative positive points", [][]any{{6, "a", 10, "cec", nil, -1}}, "must not be negative"},
		{"empty", nil, "rule set is empty"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rs, err := Load(writeCalibration(t, tc.rows...))

			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrConfiguration))
			assert.Contains(t, err.Error(), tc.msg)
			assert.Equal(t, entity.RuleSet{}, rs)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"))

	assert.True(t, errors.Is(err, common.ErrConfiguration))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_UnreadableWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o644))

	_, err := Load(path)
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.csv")
	require.NoError(t, os.WriteFile(path, []byte("id\n6\n"), 0o644))

	_, err := Load(path)
	assert.True(t, errors.Is(err, common.ErrConfiguration))
}

func TestReadCalibration(t *testing.T) {
	path := writeCalibration(t, []any{13, "SCADA brand", 4, "wonderware"})
	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()

	rs, err := ReadCalibration(fh, "upload")
	require.NoError(t, err)
	assert.Equal(t, "upload", rs.Source)
	assert.Equal(t, []int{13}, rs.IDs())
}

func TestSplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"a", "b c"}, SplitKeywords(" a ,, b c ,"))
	assert.Nil(t, SplitKeywords(""))
}
