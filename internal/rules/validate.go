package rules

import (
	"fmt"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// Validate collects every structural problem of a rule set into one ConfigurationError.
func Validate(rs entity.RuleSet) error {
	v := common.NewValidator()
	if rs.Len() == 0 {
		v.Fail("rules", rs.Source, "rule set is empty")
	}

	seen := make(map[int]bool, rs.Len())
	for _, r := range rs.Rules {
		prefix := fmt.Sprintf("rule %d", r.ID)
		if r.ID < 1 {
			v.Fail(prefix+" id", r.ID, "must be a positive whole number")
		}
		if seen[r.ID] {
			v.Fail(prefix+" id", r.ID, "duplicate rule id")
		}
		seen[r.ID] = true

		v.Field(prefix+" max points", r.MaxPoints, common.Finite)
		v.Field(prefix+" positive points", r.PositivePoints, common.Finite, common.NonNegative)
		v.Field(prefix+" negative points", r.NegativePoints, common.Finite)
		if r.DefaultPoints != nil {
			v.Field(prefix+" default points", *r.DefaultPoints, common.Finite)
		}
	}

	if v.HasErrors() {
		return common.ConfigurationError(fmt.Sprintf("invalid rule set %s", rs.Source), v.Error())
	}
	return nil
}

// Lint reports rules that are valid but likely unintended.
func Lint(rs entity.RuleSet) []string {
	var warnings []string
	for _, r := range rs.Rules {
		switch {
		case !r.HasKeywords() && r.DefaultPoints == nil:
			warnings = append(warnings, fmt.Sprintf("rule %d (%s) has no keywords and no default points; it always scores 0", r.ID, DisplayName(r)))
		case r.HasKeywords() && r.DefaultPoints != nil:
			warnings = append(warnings, fmt.Sprintf("rule %d (%s) has keywords; its default points are ignored", r.ID, DisplayName(r)))
		}
		if len(r.PositiveKeywords) > 0 && r.PositivePoints == 0 {
			warnings = append(warnings, fmt.Sprintf("rule %d (%s) awards 0 points on a positive match", r.ID, DisplayName(r)))
		}
		if r.PositivePoints > r.MaxPoints && r.MaxPoints > 0 {
			warnings = append(warnings, fmt.Sprintf("rule %d (%s) positive points exceed its max of %g", r.ID, DisplayName(r), r.MaxPoints))
		}
	}
	return warnings
}
