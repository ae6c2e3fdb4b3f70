// Package ingestion turns uploaded resume files into clean plain text.
package ingestion

import (
	"errors"
	"fmt"
)

// ErrNoText is returned when a file holds no extractable text, such as a scanned PDF
var ErrNoText = errors.New("no text could be extracted from the document")

// UnsupportedTypeError represents a file whose type cannot be read
type UnsupportedTypeError struct {
	Filename  string
	MediaType string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("unsupported file type %q for %s (supported: PDF, DOCX, plain text)", e.MediaType, e.Filename)
	}
	return fmt.Sprintf("unsupported file type %q (supported: PDF, DOCX, plain text)", e.MediaType)
}

// ExtractionError represents a file of a supported type that could not be read
type ExtractionError struct {
	Format  string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s extraction error: %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s extraction error: %s", e.Format, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
