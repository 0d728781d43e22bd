package harness

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"

	"github.com/bdahlka1/cec.ai-demo/internal/common"
	"github.com/bdahlka1/cec.ai-demo/internal/entity"
)

func TestParseManifest(t *testing.T) {
	in := "\ufeffRFP_Files,project_name,scorecard_file\n" +
		"spec.pdf | addendum1.pdf ||,Lift Station 4,ls4.xlsx\n" +
		",,\n" +
		"wtp.pdf,,wtp_card.xlsx\n"

	projects, err := ParseManifest(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []entity.Project{
		{Name: "Lift Station 4", ScorecardFile: "ls4.xlsx", RFPFiles: []string{"spec.pdf", "addendum1.pdf"}},
		{Name: "wtp_card", ScorecardFile: "wtp_card.xlsx", RFPFiles: []string{"wtp.pdf"}},
	}, projects)
}

func TestParseManifest_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	in, err := enc.String("project_name,scorecard_file,rfp_files\r\nPompe Élévatrice,pe.xlsx,pe.pdf\r\n")
	require.NoError(t, err)

	projects, err := ParseManifest(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, []entity.Project{
		{Name: "Pompe Élévatrice", ScorecardFile: "pe.xlsx", RFPFiles: []string{"pe.pdf"}},
	}, projects)
}

func TestParseManifest_MissingColumn(t *testing.T) {
	_, err := ParseManifest(strings.NewReader("project_name,rfp_files\nA,a.pdf\n"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrMapping))
	assert.Contains(t, err.Error(), "scorecard_file")
}

func TestParseManifest_Empty(t *testing.T) {
	_, err := ParseManifest(strings.NewReader(""))
	assert.True(t, errors.Is(err, common.ErrMapping))
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "mapping.csv"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
