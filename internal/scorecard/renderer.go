package scorecard

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/bdahlka1/cec.ai-demo/constants"
	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// SheetName is the title of the rendered scorecard sheet.
const SheetName = "Go_NoGo_Result"

// Renderer writes a ScoreReport into a Go/No-Go workbook. With a template the template's
// first sheet is filled in place and keeps its layout; without one a plain sheet is produced.
type Renderer struct {
	templatePath string
	logger       *slog.Logger
	now          func() time.Time
}

func NewRenderer(templatePath string, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{templatePath: templatePath, logger: logger, now: time.Now}
}

// Render returns the populated workbook. The caller closes it.
func (r *Renderer) Render(report entity.ScoreReport, location string) (*excelize.File, error) {
	f, err := r.open()
	if err != nil {
		return nil, err
	}

	for _, res := range report.Results {
		if res.RuleID < 1 {
			continue
		}
		earned, _ := excelize.CoordinatesToCellName(constants.ColEarned, res.RuleID)
		points, _ := excelize.CoordinatesToCellName(constants.ColPoints, res.RuleID)
		comment, _ := excelize.CoordinatesToCellName(constants.ColComment, res.RuleID)

		if err := f.SetCellValue(SheetName, earned, res.Points); err != nil {
			return closeWith(f, err)
		}
		if err := f.SetCellValue(SheetName, points, res.Points); err != nil {
			return closeWith(f, err)
		}
		if err := f.SetCellValue(SheetName, comment, res.Comment); err != nil {
			return closeWith(f, err)
		}
		if err := wrapTop(f, SheetName, comment); err != nil {
			return closeWith(f, err)
		}
	}

	date := report.ScoredAt
	if date.IsZero() {
		date = r.now()
	}
	cells := []struct {
		cell  string
		value any
	}{
		{constants.CellTotal, report.Total},
		{constants.CellDecision, string(report.Decision)},
		{constants.CellDate, date.Format("2006-01-02")},
		{constants.CellLocation, location},
	}
	for _, c := range cells {
		if err := f.SetCellValue(SheetName, c.cell, c.value); err != nil {
			return closeWith(f, err)
		}
	}
	return f, nil
}

// WriteFile renders and saves the workbook to path.
func (r *Renderer) WriteFile(report entity.ScoreReport, location, path string) error {
	start := time.Now()
	f, err := r.Render(report, location)
	if err != nil {
		return err
	}
	defer f.Close()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}

	r.logger.Info("scorecard.xlsx.ok",
		"path", path,
		"run_id", report.RunID.String(),
		"decision", report.Decision,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Bytes renders the workbook into memory.
func (r *Renderer) Bytes(report entity.ScoreReport, location string) ([]byte, error) {
	f, err := r.Render(report, location)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// Check opens the configured template and closes it again, so a bad --template fails
// before any document is scored.
func (r *Renderer) Check() error {
	f, err := r.open()
	if err != nil {
		return err
	}
	return f.Close()
}

func (r *Renderer) open() (*excelize.File, error) {
	if r.templatePath == "" {
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
			return closeWith(f, err)
		}
		_ = f.SetColWidth(SheetName, "B", "B", 36)
		_ = f.SetColWidth(SheetName, "G", "G", 80)
		return f, nil
	}

	f, err := excelize.OpenFile(r.templatePath)
	if err != nil {
		return nil, common.ConfigurationError(fmt.Sprintf("open scorecard template %s", r.templatePath), err)
	}
	first := f.GetSheetName(f.GetActiveSheetIndex())
	if first != SheetName {
		if err := f.SetSheetName(first, SheetName); err != nil {
			return closeWith(f, err)
		}
	}
	return f, nil
}

// wrapTop turns on wrap text and top alignment while keeping the cell's other formatting.
func wrapTop(f *excelize.File, sheet, cell string) error {
	id, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return err
	}
	style, err := f.GetStyle(id)
	if err != nil {
		return err
	}
	if style.Alignment == nil {
		style.Alignment = &excelize.Alignment{}
	}
	style.Alignment.WrapText = true
	style.Alignment.Vertical = "top"

	newID, err := f.NewStyle(style)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, cell, cell, newID)
}

func closeWith(f *excelize.File, err error) (*excelize.File, error) {
	_ = f.Close()
	return nil, err
}

// OutputName is the default file name for a rendered scorecard.
func OutputName(document string, at time.Time) string {
	base := filepath.Base(document)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "document"
	}
	return fmt.Sprintf("Go_NoGo_%s_%s.xlsx", base, at.Format("20060102"))
}

// Namer hands out scorecard file names for one run. Documents that share a base name get
// Go_NoGo_<base>_<date>_2.xlsx, _3 and so on, in the order they are named; asking again for
// a document already named returns the same name. Safe for concurrent use.
type Namer struct {
	mu    sync.Mutex
	byDoc map[string]string
	taken map[string]bool
}

func NewNamer() *Namer {
	return &Namer{byDoc: map[string]string{}, taken: map[string]bool{}}
}

// Next returns the output path in dir for document.
func (n *Namer) Next(dir, document string, at time.Time) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	if name, ok := n.byDoc[document]; ok {
		return filepath.Join(dir, name)
	}
	name := OutputName(document, at)
	stem := strings.TrimSuffix(name, ".xlsx")
	// compared case-folded so spec and SPEC never share a file
	for i := 2; n.taken[strings.ToLower(name)]; i++ {
		name = fmt.Sprintf("%s_%d.xlsx", stem, i)
	}
	n.taken[strings.ToLower(name)] = true
	n.byDoc[document] = name
	return filepath.Join(dir, name)
}
