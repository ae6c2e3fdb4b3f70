// Package rendering provides functionality to render LaTeX resumes from CV documents.
package rendering

import (
	"errors"
	"fmt"
)

// ErrUnknownTemplate is the cause of the TemplateError for a template name that is not embedded
var ErrUnknownTemplate = errors.New("unknown template")

// TemplateError represents an error parsing or executing a LaTeX template
type TemplateError struct {
	Message string
	Cause   error
}

func (e *TemplateError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("template error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("template error: %s", e.Message)
}

func (e *TemplateError) Unwrap() error {
	return e.Cause
}

// RenderError represents a general rendering failure
type RenderError struct {
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("render error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("render error: %s", e.Message)
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// SectionError reports a section whose data could not be decoded.
// The assembler skips such sections instead of failing the document.
type SectionError struct {
	Tag     string
	Message string
	Cause   error
}

func (e *SectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("section %q: %s: %v", e.Tag, e.Message, e.Cause)
	}
	return fmt.Sprintf("section %q: %s", e.Tag, e.Message)
}

func (e *SectionError) Unwrap() error {
	return e.Cause
}
