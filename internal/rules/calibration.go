package rules

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// Calibration workbook columns (0-based).
const (
	colID = iota
	colLabel
	colMax
	colPositiveKeywords
	colNegativeKeywords
	colPositiveOverride
	colNegativeOverride
	colDefault
)

// KeywordSeparator splits keyword cells.
const KeywordSeparator = ","

// LoadCalibration reads the first sheet of a calibration workbook.
func LoadCalibration(path string) (entity.RuleSet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return entity.RuleSet{}, common.ConfigurationError(fmt.Sprintf("open calibration %s", path), err)
	}
	defer f.Close()
	return readCalibration(f, path)
}

// ReadCalibration reads a calibration workbook from r; source names it in errors.
func ReadCalibration(r io.Reader, source string) (entity.RuleSet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return entity.RuleSet{}, common.ConfigurationError(fmt.Sprintf("open calibration %s", source), err)
	}
	defer f.Close()
	return readCalibration(f, source)
}

func readCalibration(f *excelize.File, source string) (entity.RuleSet, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return entity.RuleSet{}, common.ConfigurationErrorf("calibration %s has no sheets", source)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return entity.RuleSet{}, common.ConfigurationError(fmt.Sprintf("read calibration %s", source), err)
	}

	v := common.NewValidator()
	rs := entity.RuleSet{Source: source}
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rowNum := i + 1
		idCell := cell(row, colID)
		if idCell == "" {
			continue
		}

		id, err := parseID(idCell)
		if err != nil {
			v.Fail(fmt.Sprintf("row %d id", rowNum), idCell, err.Error())
			continue
		}
		rule := entity.Rule{
			ID:               id,
			Name:             cell(row, colLabel),
			PositiveKeywords: SplitKeywords(cell(row, colPositiveKeywords)),
			NegativeKeywords: SplitKeywords(cell(row, colNegativeKeywords)),
		}

		field := func(col int, name string) *float64 {
			raw := cell(row, col)
			if raw == "" {
				return nil
			}
			n, err := parseNumber(raw)
			if err != nil {
				v.Fail(fmt.Sprintf("row %d %s", rowNum, name), raw, err.Error())
				return nil
			}
			return &n
		}

		if maxPts := field(colMax, "max points"); maxPts != nil {
			rule.MaxPoints = *maxPts
		}
		// An explicit override, including 0, wins over the nominal max.
		rule.PositivePoints = rule.MaxPoints
		if pos := field(colPositiveOverride, "positive points"); pos != nil {
			rule.PositivePoints = *pos
		}
		if neg := field(colNegativeOverride, "negative points"); neg != nil {
			rule.NegativePoints = *neg
		}
		rule.DefaultPoints = field(colDefault, "default points")

		rs.Rules = append(rs.Rules, rule)
	}

	if v.HasErrors() {
		return entity.RuleSet{}, common.ConfigurationError(fmt.Sprintf("calibration %s", source), v.Error())
	}
	return rs, nil
}

// SplitKeywords splits a delimited keyword cell, trimming tokens and dropping empties.
func SplitKeywords(s string) []string {
	var out []string
	for _, k := range strings.Split(s, KeywordSeparator) {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func parseNumber(s string) (float64, error) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("not a number")
	}
	return n, nil
}

func parseID(s string) (int, error) {
	n, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if n != math.Trunc(n) || n < 1 {
		return 0, fmt.Errorf("must be a positive whole number")
	}
	return int(n), nil
}
