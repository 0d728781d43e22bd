package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesCodeSentinel(t *testing.T) {
	cause := errors.New("open foo.xlsx: no such file")
	err := fmt.Errorf("load rules: %w", ConfigurationError("rules file unreadable", cause))

	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.False(t, errors.Is(err, ErrExtraction))
	assert.True(t, errors.Is(err, cause), "the cause stays reachable")
	assert.Equal(t, CodeConfiguration, CodeOf(err))
}

func TestAppError_Message(t *testing.T) {
	assert.Equal(t, "MAPPING_ERROR: missing scorecard", MappingError("missing scorecard", nil).Error())
	assert.Equal(t, "EXTRACTION_ERROR: a.pdf: boom", ExtractionError("a.pdf", errors.New("boom")).Error())
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Empty(t, CodeOf(errors.New("plain")))
	assert.Empty(t, CodeOf(nil))
}

func TestInvalidInputError(t *testing.T) {
	err := fmt.Errorf("history show: %w", InvalidInputError("run id", errors.New("invalid UUID length: 3")))

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrConfiguration))
	assert.Equal(t, CodeInvalidInput, CodeOf(err))
}
