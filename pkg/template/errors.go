package template

import "fmt"

// ParseError reports a rule file that could not be decoded at all.
type ParseError struct {
	// Path is the repository-relative path of the file.
	Path string

	// Line is the line number where decoding failed (1-indexed, 0 if unknown).
	Line int

	// Message describes the failure.
	Message string

	// Cause is the underlying decoder error.
	Cause error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %q at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %q: %s", e.Path, e.Message)
}

// Unwrap implements the errors.Unwrap interface for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}
