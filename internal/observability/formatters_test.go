package observability

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jonathan/resume-builder/internal/conversion"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/validation"
	"github.com/stretchr/testify/assert"
)

func TestPrintSource(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSource(&ingestion.Metadata{
		Filename:   "jane.pdf",
		MediaType:  ingestion.MediaTypePDF,
		Pages:      2,
		Characters: 1834,
		Hash:       "abc123",
	})
	output := buf.String()

	assert.Contains(t, output, "EXTRACTED RESUME TEXT")
	assert.Contains(t, output, "jane.pdf")
	assert.Contains(t, output, "application/pdf")
	assert.Contains(t, output, "Pages:      2")
	assert.Contains(t, output, "1834")
	assert.Contains(t, output, "abc123")
}

func TestPrintSource_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSource(nil)
	assert.Empty(t, buf.String())
}

func TestPrintConversion(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintConversion(&conversion.Result{
		RequestID: "req-1",
		Sections:  []string{"header", "summary", "experience", "education", "skills", "projects", "languages"},
		Skipped:   []rendering.SkippedSection{{Tag: "mystery", Reason: rendering.SkipUnknownType}},
		Provider:  &conversion.ProviderInfo{Slot: "api_2", Model: "openrouter/test", Attempts: 3},
	})
	output := buf.String()

	assert.Contains(t, output, "RENDERED DOCUMENT")
	assert.Contains(t, output, "req-1")
	assert.Contains(t, output, "openrouter/test (slot api_2, 3 attempts)")
	assert.Contains(t, output, "Rendered 7 sections")
	assert.Contains(t, output, "• skills")
	assert.NotContains(t, output, "• projects")
	assert.Contains(t, output, "... and 2 more")
	assert.Contains(t, output, "mystery (unknown section type)")
}

func TestPrintConversion_WithoutProvider(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintConversion(&conversion.Result{RequestID: "req-2", Sections: []string{"summary"}})

	assert.NotContains(t, buf.String(), "Provider:")
	assert.NotContains(t, buf.String(), "Skipped")
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintReport(&validation.Report{
		Pages: 2,
		Issues: []validation.Issue{
			{Severity: validation.SeverityWarning, Kind: validation.KindOverfullBox, Message: "content overflows the margin by 4.0pt", Line: 31},
			{Severity: validation.SeverityError, Kind: validation.KindPageOverflow, Message: "document has 2 pages, maximum allowed is 1"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "COMPILATION ISSUES")
	assert.Contains(t, output, "Found 2 issues")
	assert.Contains(t, output, "⚠ overfull_box (line 31)")
	assert.Contains(t, output, "✗ page_overflow")
}

func TestPrintReport_NoIssues(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintReport(&validation.Report{Pages: 1})

	assert.Contains(t, buf.String(), "NO ISSUES FOUND (1 pages)")
}

func TestPrintBox_ClipsLongLines(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.printBox("TITLE", strings.Repeat("é", 100))

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
	assert.Contains(t, buf.String(), "...")
}
