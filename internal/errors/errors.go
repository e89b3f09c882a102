package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Data errors (DATA-001 to DATA-099)
	ErrCodeQuestionsUnreadable ErrorCode = "DATA-001"
	ErrCodeMoviesUnreadable    ErrorCode = "DATA-002"
	ErrCodeRootMissing         ErrorCode = "DATA-003"
	ErrCodeMovieNotFound       ErrorCode = "DATA-004"

	// Conversion errors (CONVERT-001 to CONVERT-099)
	ErrCodeConvertInputUnreadable ErrorCode = "CONVERT-001"
	ErrCodeConvertOutputFailed    ErrorCode = "CONVERT-002"
	ErrCodeConvertNoHeader        ErrorCode = "CONVERT-003"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionNotFound   ErrorCode = "SESSION-001"
	ErrCodeSessionLimit      ErrorCode = "SESSION-002"
	ErrCodeSessionBadRequest ErrorCode = "SESSION-003"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigUnreadable ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG-002"
)

// ScarepickError represents an error with code, suggestions, and documentation
type ScarepickError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *ScarepickError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ScarepickError) Unwrap() error {
	return e.Cause
}

// Category returns the prefix of the error code, e.g. "DATA"
func (e *ScarepickError) Category() string {
	code := string(e.Code)
	if i := strings.IndexByte(code, '-'); i > 0 {
		return code[:i]
	}
	return code
}

// New creates a new ScarepickError
func New(code ErrorCode, message string) *ScarepickError {
	return &ScarepickError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new ScarepickError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *ScarepickError {
	return &ScarepickError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ScarepickError) WithSuggestion(suggestion string) *ScarepickError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *ScarepickError) WithSuggestions(suggestions ...string) *ScarepickError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *ScarepickError) WithDocs(url string) *ScarepickError {
	e.DocsURL = url
	return e
}

// As returns the first ScarepickError in err's chain
func As(err error) (*ScarepickError, bool) {
	var se *ScarepickError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code anywhere in its chain
func HasCode(err error, code ErrorCode) bool {
	se, ok := As(err)
	return ok && se.Code == code
}

// Common error constructors

// NewQuestionsUnreadableError creates an error for a questions file that cannot be loaded
func NewQuestionsUnreadableError(path string, cause error) *ScarepickError {
	return Wrap(ErrCodeQuestionsUnreadable, fmt.Sprintf("cannot load questions from %s", path), cause).
		WithSuggestion("Check that the file exists and contains {\"questions\": [...]}").
		WithSuggestion("Regenerate it with 'scarepick convert questions'")
}

// NewMoviesUnreadableError creates an error for a movies file that cannot be loaded
func NewMoviesUnreadableError(path string, cause error) *ScarepickError {
	return Wrap(ErrCodeMoviesUnreadable, fmt.Sprintf("cannot load movies from %s", path), cause).
		WithSuggestion("Check that the file exists and contains {\"movies\": {...}}").
		WithSuggestion("Regenerate it with 'scarepick convert movies'")
}

// NewRootMissingError creates an error for a graph without its starting question
func NewRootMissingError(root string) *ScarepickError {
	return New(ErrCodeRootMissing, fmt.Sprintf("root question %q is not in the question data", root)).
		WithSuggestion("Set data.root in the config file to an existing question id")
}

// NewMovieNotFoundError creates an unknown movie error
func NewMovieNotFoundError(id string) *ScarepickError {
	return New(ErrCodeMovieNotFound, fmt.Sprintf("movie not found: %s", id)).
		WithSuggestion("List known movies with GET /api/v1/movies or 'scarepick movies'")
}

// NewSessionBadRequestError creates an error for a request body that cannot be used
func NewSessionBadRequestError(details string, cause error) *ScarepickError {
	return Wrap(ErrCodeSessionBadRequest, fmt.Sprintf("invalid request: %s", details), cause).
		WithSuggestion(`Send a JSON body such as {"optionId": "1"}`)
}

// NewConvertInputError creates an error for an unreadable CSV export
func NewConvertInputError(path string, cause error) *ScarepickError {
	return Wrap(ErrCodeConvertInputUnreadable, fmt.Sprintf("cannot read CSV export: %s", path), cause).
		WithSuggestion("Export the sheet as CSV and pass its path with --in")
}

// NewConvertOutputError creates an error for a data file that cannot be written
func NewConvertOutputError(path string, cause error) *ScarepickError {
	return Wrap(ErrCodeConvertOutputFailed, fmt.Sprintf("cannot write data file: %s", path), cause).
		WithSuggestion("Check that the output directory exists and is writable")
}

// NewSessionNotFoundError creates an unknown session error
func NewSessionNotFoundError(id string) *ScarepickError {
	return New(ErrCodeSessionNotFound, fmt.Sprintf("session not found: %s", id)).
		WithSuggestion("Start a new session with POST /api/v1/sessions")
}

// NewSessionLimitError creates a session limit error
func NewSessionLimitError(limit int) *ScarepickError {
	return New(ErrCodeSessionLimit, fmt.Sprintf("session limit of %d reached", limit)).
		WithSuggestion("Retry once idle sessions have expired")
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *ScarepickError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Compare your config file with 'scarepick config' output")
}
