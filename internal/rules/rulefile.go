package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// ruleFile is the on-disk shape of a YAML/JSON rule file. Points are pointers so an absent
// value can fall back the same way a blank calibration cell does.
type ruleFile struct {
	Rules []ruleEntry `json:"rules" yaml:"rules"`
}

type ruleEntry struct {
	ID               int      `json:"id" yaml:"id"`
	Name             string   `json:"name,omitempty" yaml:"name,omitempty"`
	MaxPoints        *float64 `json:"max_points,omitempty" yaml:"max_points,omitempty"`
	PositivePoints   *float64 `json:"positive_points,omitempty" yaml:"positive_points,omitempty"`
	NegativePoints   *float64 `json:"negative_points,omitempty" yaml:"negative_points,omitempty"`
	DefaultPoints    *float64 `json:"default_points,omitempty" yaml:"default_points,omitempty"`
	PositiveKeywords []string `json:"positive_keywords,omitempty" yaml:"positive_keywords,omitempty"`
	NegativeKeywords []string `json:"negative_keywords,omitempty" yaml:"negative_keywords,omitempty"`
}

// LoadRuleFile reads a YAML or JSON rule file and checks it against the rule file schema.
func LoadRuleFile(path string) (entity.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entity.RuleSet{}, common.ConfigurationError(fmt.Sprintf("read rules %s", path), err)
	}
	yamlInput := constants.NormalizeExt(filepath.Ext(path)) != "json"
	return ParseRuleFile(data, yamlInput, path)
}

// ParseRuleFile decodes rule file bytes. YAML input is converted to JSON before schema
// validation so both formats are checked by the same schema.
func ParseRuleFile(data []byte, yamlInput bool, source string) (entity.RuleSet, error) {
	if yamlInput {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return entity.RuleSet{}, common.ConfigurationError(fmt.Sprintf("parse rules %s", source), err)
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return entity.RuleSet{}, common.ConfigurationError(fmt.Sprintf("parse rules %s", source), err)
		}
		data = b
	}

	if err := validateAgainstSchema(ruleFileSchema, data); err != nil {
		return entity.RuleSet{}, common.ConfigurationError(fmt.Sprintf("rules %s", source), err)
	}

	var rf ruleFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return entity.RuleSet{}, common.ConfigurationError(fmt.Sprintf("decode rules %s", source), err)
	}

	rs := entity.RuleSet{Source: source, Rules: make([]entity.Rule, 0, len(rf.Rules))}
	for _, e := range rf.Rules {
		r := entity.Rule{
			ID:               e.ID,
			Name:             e.Name,
			PositiveKeywords: trimKeywords(e.PositiveKeywords),
			NegativeKeywords: trimKeywords(e.NegativeKeywords),
			DefaultPoints:    e.DefaultPoints,
		}
		if e.MaxPoints != nil {
			r.MaxPoints = *e.MaxPoints
		}
		r.PositivePoints = r.MaxPoints
		if e.PositivePoints != nil {
			r.PositivePoints = *e.PositivePoints
		}
		if e.NegativePoints != nil {
			r.NegativePoints = *e.NegativePoints
		}
		rs.Rules = append(rs.Rules, r)
	}
	return rs, nil
}

// MarshalRuleFile renders a rule set in rule file form (YAML).
func MarshalRuleFile(rs entity.RuleSet) ([]byte, error) {
	rf := ruleFile{Rules: make([]ruleEntry, 0, rs.Len())}
	for _, r := range rs.Rules {
		maxPts, pos, neg := r.MaxPoints, r.PositivePoints, r.NegativePoints
		rf.Rules = append(rf.Rules, ruleEntry{
			ID:               r.ID,
			Name:             r.Name,
			MaxPoints:        &maxPts,
			PositivePoints:   &pos,
			NegativePoints:   &neg,
			DefaultPoints:    r.DefaultPoints,
			PositiveKeywords: r.PositiveKeywords,
			NegativeKeywords: r.NegativeKeywords,
		})
	}
	return yaml.Marshal(rf)
}

func trimKeywords(in []string) []string {
	var out []string
	for _, k := range in {
		out = append(out, SplitKeywords(k)...)
	}
	return out
}
