package score

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// Evaluator applies a single rule to page-indexed document text. The zero value uses the
// default snippet and fallback lengths.
type Evaluator struct {
	SnippetLength  int // max runes of snippet quoted in the comment
	FallbackLength int // runes of page text quoted when no line holds a keyword
}

// Evaluate scores one rule with the default Evaluator.
func Evaluate(pages entity.Pages, rule entity.Rule) entity.RuleResult {
	return Evaluator{}.Evaluate(pages, rule)
}

// Evaluate computes the rule's points, locator and comment. It is a pure function of its
// inputs: matching is case-insensitive substring search, pages are visited in page order.
func (e Evaluator) Evaluate(pages entity.Pages, rule entity.Rule) entity.RuleResult {
	res := entity.RuleResult{RuleID: rule.ID, Outcome: constants.OutcomeNone}

	pos := lowerKeywords(rule.PositiveKeywords)
	neg := lowerKeywords(rule.NegativeKeywords)

	if len(pos) == 0 && len(neg) == 0 {
		if rule.DefaultPoints != nil {
			res.Points = *rule.DefaultPoints
			res.Outcome = constants.OutcomeDefault
		}
		res.Comment = e.comment(res.Points, 0, "")
		return res
	}

	nums := pages.Numbers()
	lowered := make(map[int]string, len(nums))
	for _, n := range nums {
		lowered[n] = strings.ToLower(pages[n])
	}

	posHit := false
	for _, n := range nums {
		if containsAny(lowered[n], pos) {
			posHit = true
			break
		}
	}
	// negatives are tested against the whole document, not page by page
	negHit := containsAny(strings.ToLower(pages.Joined()), neg)

	switch {
	case posHit && !negHit:
		res.Points = rule.PositivePoints
		res.Outcome = constants.OutcomePositive
	case negHit:
		res.Points = rule.NegativePoints
		res.Outcome = constants.OutcomeNegative
	}

	res.Page, res.Snippet = e.locate(nums, pages, lowered, append(pos, neg...))
	res.Comment = e.comment(res.Points, res.Page, res.Snippet)
	return res
}

// locate returns the lowest page holding any keyword and the first line on it that does.
func (e Evaluator) locate(nums []int, pages entity.Pages, lowered map[int]string, keywords []string) (int, string) {
	for _, n := range nums {
		if !containsAny(lowered[n], keywords) {
			continue
		}
		for _, line := range strings.Split(pages[n], "\n") {
			if containsAny(strings.ToLower(line), keywords) {
				return n, strings.TrimSpace(line)
			}
		}
		// keyword straddles a line break
		return n, strings.Join(strings.Fields(truncateRunes(pages[n], e.fallbackLength())), " ")
	}
	return 0, ""
}

func (e Evaluator) comment(points float64, page int, snippet string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s pts", FormatPoints(points))
	if page > 0 {
		fmt.Fprintf(&b, " – Page %d", page)
		if snippet != "" {
			short := truncateRunes(snippet, e.snippetLength())
			if utf8.RuneCountInString(snippet) > e.snippetLength() {
				short += "..."
			}
			fmt.Fprintf(&b, ": \"%s\"", short)
		}
	}
	return b.String()
}

func (e Evaluator) snippetLength() int {
	if e.SnippetLength > 0 {
		return e.SnippetLength
	}
	return constants.DefaultSnippetLength
}

func (e Evaluator) fallbackLength() int {
	if e.FallbackLength > 0 {
		return e.FallbackLength
	}
	return constants.DefaultFallbackLength
}

// FormatPoints renders points without trailing zeros ("10", "2.5", "-5").
func FormatPoints(p float64) string {
	if p == 0 {
		return "0"
	}
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func lowerKeywords(kws []string) []string {
	out := make([]string, 0, len(kws))
	for _, k := range kws {
		if k = strings.ToLower(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
