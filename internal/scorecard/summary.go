package scorecard

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/bdahlka1/cec.ai-demo/internal/entity"
	"github.com/bdahlka1/cec.ai-demo/internal/rules"
	"github.com/bdahlka1/cec.ai-demo/internal/score"
)

const commentWidth = 90

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

// WriteReport prints one scored document as a table of criteria followed by the decision.
func WriteReport(w io.Writer, report entity.ScoreReport, rs entity.RuleSet) error {
	if _, err := fmt.Fprintf(w, "Document: %s (%d pages)\n", report.Document, report.Pages); err != nil {
		return err
	}

	t := newTable(w, "Row", "Criterion", "Points", "Page", "Comment")
	for _, res := range report.Results {
		name := fmt.Sprintf("Rule %d", res.RuleID)
		if r, ok := rs.Rule(res.RuleID); ok {
			name = rules.DisplayName(r)
		}
		page := ""
		if res.HasLocator() {
			page = strconv.Itoa(res.Page)
		}
		t.Append([]string{
			strconv.Itoa(res.RuleID),
			name,
			score.FormatPoints(res.Points),
			page,
			clip(res.Comment, commentWidth),
		})
	}
	t.SetFooter([]string{"", "Total", score.FormatPoints(report.Total), "", fmt.Sprintf("%s (threshold %s)", report.Decision, score.FormatPoints(report.Threshold))})
	t.Render()
	return nil
}

// WriteEvaluation prints the per-project comparison, per-rule error and exclusions.
func WriteEvaluation(w io.Writer, s entity.EvaluationSummary) error {
	projects := newTable(w, "Project", "Human", "Model", "Diff (model-human)")
	for _, p := range s.Projects {
		projects.Append([]string{
			p.Project.Name,
			score.FormatPoints(p.HumanTotal),
			score.FormatPoints(p.ModelTotal),
			signed(p.Difference),
		})
	}
	projects.Render()

	if _, err := fmt.Fprintf(w, "\nProjects evaluated: %d  Mean absolute total error: %s\n\n",
		s.ProjectCount, humanize.FtoaWithDigits(s.MeanAbsTotalError, 2)); err != nil {
		return err
	}

	perRule := newTable(w, "Row", "Criterion", "Samples", "MAE")
	for _, re := range s.RuleErrors {
		perRule.Append([]string{
			strconv.Itoa(re.RuleID),
			re.Name,
			strconv.Itoa(re.Samples),
			humanize.FtoaWithDigits(re.MeanAbs, 2),
		})
	}
	perRule.Render()

	if len(s.Excluded) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\nExcluded projects: %d\n", len(s.Excluded)); err != nil {
		return err
	}
	excluded := newTable(w, "Project", "Kind", "Reason")
	for _, e := range s.Excluded {
		excluded.Append([]string{e.Project.Name, e.Kind, clip(e.Reason, commentWidth)})
	}
	excluded.Render()
	return nil
}

func signed(f float64) string {
	if f > 0 {
		return "+" + score.FormatPoints(f)
	}
	return score.FormatPoints(f)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
