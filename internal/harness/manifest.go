package harness

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

// Manifest columns.
const (
	ColProjectName   = "project_name"
	ColScorecardFile = "scorecard_file"
	ColRFPFiles      = "rfp_files"
)

// RFPSeparator splits the rfp_files column.
const RFPSeparator = "|"

// ReadManifest reads the historical project mapping CSV.
func ReadManifest(path string) ([]entity.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()
	return ParseManifest(f)
}

// ParseManifest decodes a manifest with a header row naming project_name, scorecard_file and
// rfp_files in any order. Fully blank rows are skipped. Input is UTF-8; a byte order mark
// selects UTF-16 (spreadsheet "Unicode text" exports).
func ParseManifest(r io.Reader) ([]entity.Project, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, common.MappingError("manifest is empty", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{ColProjectName, ColScorecardFile, ColRFPFiles} {
		if _, ok := idx[col]; !ok {
			return nil, common.MappingError(fmt.Sprintf("manifest is missing column %q", col), nil)
		}
	}

	get := func(rec []string, col string) string {
		i := idx[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var projects []entity.Project
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		p := entity.Project{
			Name:          get(rec, ColProjectName),
			ScorecardFile: get(rec, ColScorecardFile),
			RFPFiles:      splitRFPs(get(rec, ColRFPFiles)),
		}
		if p.Name == "" && p.ScorecardFile == "" && len(p.RFPFiles) == 0 {
			continue
		}
		if p.Name == "" {
			p.Name = strings.TrimSuffix(p.ScorecardFile, filepath.Ext(p.ScorecardFile))
		}
		projects = append(projects, p)
	}
	return projects, nil
}

func splitRFPs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, RFPSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
