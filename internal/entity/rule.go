package entity

// Rule is one scoring criterion of the rubric.
type Rule struct {
	ID               int      `json:"id" yaml:"id"`     // scorecard row; stable key
	Name             string   `json:"name" yaml:"name"` // label column, display only
	MaxPoints        float64  `json:"max_points" yaml:"max_points"`
	PositivePoints   float64  `json:"positive_points" yaml:"positive_points"`
	NegativePoints   float64  `json:"negative_points" yaml:"negative_points"`
	PositiveKeywords []string `json:"positive_keywords,omitempty" yaml:"positive_keywords,omitempty"`
	NegativeKeywords []string `json:"negative_keywords,omitempty" yaml:"negative_keywords,omitempty"`
	// DefaultPoints is awarded to a rule that has no keywords at all. Nil means the rule
	// scores 0 when it has nothing to match.
	DefaultPoints *float64 `json:"default_points,omitempty" yaml:"default_points,omitempty"`
}

// HasKeywords reports whether the rule carries any textual trigger.
func (r Rule) HasKeywords() bool {
	return len(r.PositiveKeywords) > 0 || len(r.NegativeKeywords) > 0
}

// Keywords returns positive keywords followed by negative keywords.
func (r Rule) Keywords() []string {
	out := make([]string, 0, len(r.PositiveKeywords)+len(r.NegativeKeywords))
	out = append(out, r.PositiveKeywords...)
	return append(out, r.NegativeKeywords...)
}

// RuleSet is the ordered rubric used for a scoring session. It is built once at startup
// and passed explicitly to whatever scores documents.
type RuleSet struct {
	Source string
	Rules  []Rule
}

// Len is the number of rules.
func (s RuleSet) Len() int { return len(s.Rules) }

// IDs returns rule identifiers in rubric order.
func (s RuleSet) IDs() []int {
	ids := make([]int, len(s.Rules))
	for i, r := range s.Rules {
		ids[i] = r.ID
	}
	return ids
}

// Rule looks up a rule by identifier.
func (s RuleSet) Rule(id int) (Rule, bool) {
	for _, r := range s.Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// MaxTotal is the sum of the positive points of every rule.
func (s RuleSet) MaxTotal() float64 {
	var total float64
	for _, r := range s.Rules {
		total += r.PositivePoints
	}
	return total
}
