// Package scorecard reads historical Go/No-Go scorecards and writes new ones.
package scorecard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// LoadGroundTruth reads the human total and per-rule points and comments from a historical
// scorecard. Rule ids are scorecard rows; blank cells read as 0 points and an empty comment.
func LoadGroundTruth(path string, ruleIDs []int) (entity.GroundTruthScorecard, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return entity.GroundTruthScorecard{}, common.ScorecardError(fmt.Sprintf("open scorecard %s", path), err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	gt := entity.GroundTruthScorecard{Path: path, Criteria: make(map[int]entity.GroundTruthCriterion, len(ruleIDs))}

	gt.Total, err = numberAt(f, sheet, constants.CellTotal)
	if err != nil {
		return entity.GroundTruthScorecard{}, common.ScorecardError(fmt.Sprintf("scorecard %s", path), err)
	}

	for _, id := range ruleIDs {
		pointsCell, _ := excelize.CoordinatesToCellName(constants.ColPoints, id)
		commentCell, _ := excelize.CoordinatesToCellName(constants.ColComment, id)

		pts, err := numberAt(f, sheet, pointsCell)
		if err != nil {
			return entity.GroundTruthScorecard{}, common.ScorecardError(fmt.Sprintf("scorecard %s", path), err)
		}
		comment, err := f.GetCellValue(sheet, commentCell)
		if err != nil {
			return entity.GroundTruthScorecard{}, common.ScorecardError(fmt.Sprintf("scorecard %s", path), err)
		}
		gt.Criteria[id] = entity.GroundTruthCriterion{Points: pts, Comment: strings.TrimSpace(comment)}
	}
	return gt, nil
}

func numberAt(f *excelize.File, sheet, cell string) (float64, error) {
	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", cell, err)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", cell, raw)
	}
	return n, nil
}
