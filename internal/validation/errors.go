// Package validation checks rendered LaTeX by compiling it locally and screens
// uploaded resume text before it reaches a model.
package validation

import "fmt"

// CompilationError means the engine could not run or produced no usable PDF.
// LogOutput holds the engine's combined stdout and stderr, when it ran.
type CompilationError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("compile: %s: %v", e.Message, e.Cause)
	}
	return "compile: " + e.Message
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// InputError means a .tex source or produced PDF could not be read
type InputError struct {
	Path  string
	Cause error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Cause)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

// WorkspaceError is a filesystem failure while staging a compile run or
// keeping its PDF, e.g. Op "create temp directory"
type WorkspaceError struct {
	Op    string
	Path  string
	Cause error
}

func (e *WorkspaceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("compile workspace: %s: %v", e.Op, e.Cause)
	}
	return fmt.Sprintf("compile workspace: %s %s: %v", e.Op, e.Path, e.Cause)
}

func (e *WorkspaceError) Unwrap() error {
	return e.Cause
}

// PDFError means a compiled PDF could not be parsed for its page count
type PDFError struct {
	Path  string
	Cause error
}

func (e *PDFError) Error() string {
	return fmt.Sprintf("unreadable PDF %s: %v", e.Path, e.Cause)
}

func (e *PDFError) Unwrap() error {
	return e.Cause
}
