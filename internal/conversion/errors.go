// Package conversion turns resume text into a rendered LaTeX document by way of an LLM.
package conversion

import (
	"errors"
	"fmt"
)

// ParseMessage is the user-facing message for an unusable model response
const ParseMessage = "could not parse AI response"

// ErrEmptyResume is returned when there is no resume text to convert
var ErrEmptyResume = errors.New("resume text is empty")

// ParseError represents a model response that could not be turned into a CV document.
// It is never retried: the same prompt is likely to fail the same way.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

func parseError(cause error) *ParseError {
	return &ParseError{Message: ParseMessage, Cause: cause}
}
