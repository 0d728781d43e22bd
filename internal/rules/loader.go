// Package rules loads the scoring rubric from a calibration workbook or a rule file.
package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// Load reads a rule set and validates it. Any problem is a ConfigurationError; a partial
// rule set is never returned.
func Load(path string) (entity.RuleSet, error) {
	if _, err := os.Stat(path); err != nil {
		return entity.RuleSet{}, common.ConfigurationError(fmt.Sprintf("rules file %s", path), err)
	}

	var (
		rs  entity.RuleSet
		err error
	)
	switch ext := constants.NormalizeExt(filepath.Ext(path)); ext {
	case "xlsx", "xlsm":
		rs, err = LoadCalibration(path)
	case "yaml", "yml", "json":
		rs, err = LoadRuleFile(path)
	default:
		return entity.RuleSet{}, common.ConfigurationErrorf("rules file %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return entity.RuleSet{}, err
	}

	if err := Validate(rs); err != nil {
		return entity.RuleSet{}, err
	}
	return rs, nil
}

// DisplayName is the rule label, falling back to the known scorecard criterion name.
func DisplayName(r entity.Rule) string {
	if r.Name != "" {
		return r.Name
	}
	if name, ok := constants.CriterionName(r.ID); ok {
		return name
	}
	return fmt.Sprintf("Rule %d", r.ID)
}
