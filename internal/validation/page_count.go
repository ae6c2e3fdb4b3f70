package validation

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// CountPDFPages counts the pages of a PDF file
func CountPDFPages(pdfPath string) (count int, err error) {
	// The PDF reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			count, err = 0, &PDFError{Path: pdfPath, Cause: fmt.Errorf("%v", r)}
		}
	}()

	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return 0, &PDFError{Path: pdfPath, Cause: err}
	}
	defer f.Close() //nolint:errcheck

	return reader.NumPage(), nil
}
