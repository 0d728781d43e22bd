package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel registered for the error's code, so callers can write
// errors.Is(err, common.ErrConfiguration) regardless of the wrapped cause.
func (e *AppError) Is(target error) bool {
	sentinel, ok := codeSentinels[e.Code]
	return ok && sentinel == target
}

// Error codes
const (
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeExtraction    = "EXTRACTION_ERROR"
	CodeMapping       = "MAPPING_ERROR"
	CodeScorecard     = "SCORECARD_ERROR"
	CodeInvalidInput  = "INVALID_INPUT"
)

// Common application errors
var (
	ErrConfiguration = errors.New("configuration error")
	ErrExtraction    = errors.New("extraction error")
	ErrMapping       = errors.New("mapping error")
	ErrScorecard     = errors.New("scorecard error")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("resource not found")
)

var codeSentinels = map[string]error{
	CodeConfiguration: ErrConfiguration,
	CodeExtraction:    ErrExtraction,
	CodeMapping:       ErrMapping,
	CodeScorecard:     ErrScorecard,
	CodeInvalidInput:  ErrInvalidInput,
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ConfigurationError marks the rule set or its source as unusable. It is fatal to a scoring run.
func ConfigurationError(message string, cause error) *AppError {
	return NewAppError(CodeConfiguration, message, cause)
}

func ConfigurationErrorf(format string, args ...any) *AppError {
	return ConfigurationError(fmt.Sprintf(format, args...), nil)
}

// ExtractionError marks a document that could not be read at all.
func ExtractionError(message string, cause error) *AppError {
	return NewAppError(CodeExtraction, message, cause)
}

// MappingError marks a manifest entry that references a missing file.
func MappingError(message string, cause error) *AppError {
	return NewAppError(CodeMapping, message, cause)
}

// ScorecardError marks a historical scorecard that could not be read.
func ScorecardError(message string, cause error) *AppError {
	return NewAppError(CodeScorecard, message, cause)
}

// InvalidInputError marks a malformed command argument.
func InvalidInputError(message string, cause error) *AppError {
	return NewAppError(CodeInvalidInput, message, cause)
}

// CodeOf returns the AppError code carried anywhere in err's chain, or "".
func CodeOf(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
