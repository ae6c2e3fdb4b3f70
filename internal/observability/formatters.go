// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/resume-builder/internal/conversion"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/validation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, clip(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// clip shortens s to at most width runes, marking the cut with "..."
func clip(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// PrintSource outputs what was extracted from an uploaded resume file.
func (p *Printer) PrintSource(meta *ingestion.Metadata) {
	if meta == nil {
		return
	}

	var sb strings.Builder
	if meta.Filename != "" {
		sb.WriteString(fmt.Sprintf("File:       %s\n", meta.Filename))
	}
	sb.WriteString(fmt.Sprintf("Type:       %s\n", meta.MediaType))
	if meta.Pages > 0 {
		sb.WriteString(fmt.Sprintf("Pages:      %d\n", meta.Pages))
	}
	sb.WriteString(fmt.Sprintf("Characters: %d\n", meta.Characters))
	sb.WriteString(fmt.Sprintf("SHA-256:    %s", meta.Hash))

	p.printBox("EXTRACTED RESUME TEXT", sb.String())
}

// PrintConversion outputs the provider that answered and the sections that were rendered.
func (p *Printer) PrintConversion(result *conversion.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Request:  %s\n", result.RequestID))
	if result.Provider != nil {
		sb.WriteString(fmt.Sprintf("Provider: %s (slot %s, %d attempts)\n", result.Provider.Model, result.Provider.Slot, result.Provider.Attempts))
	}
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("Rendered %d sections:\n", len(result.Sections)))
	count := min(len(result.Sections), maxItemsToShow)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", result.Sections[i]))
	}
	if len(result.Sections) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(result.Sections)-maxItemsToShow))
	}

	if len(result.Skipped) > 0 {
		sb.WriteString(fmt.Sprintf("\nSkipped %d sections:\n", len(result.Skipped)))
		for _, skipped := range result.Skipped {
			sb.WriteString(fmt.Sprintf("  ⚠ %s (%s)\n", skipped.Tag, skipped.Reason))
		}
	}

	p.printBox("RENDERED DOCUMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintReport outputs the issues found while compiling a rendered document.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintReport(report *validation.Report) {
	if report == nil {
		return
	}
	if len(report.Issues) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fmt.Sprintf("✅ NO ISSUES FOUND (%d pages)", report.Pages))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Pages: %d\n", report.Pages))
	sb.WriteString(fmt.Sprintf("Found %d issues:\n\n", len(report.Issues)))

	for i, issue := range report.Issues {
		marker := "⚠"
		if issue.Severity == validation.SeverityError {
			marker = "✗"
		}
		sb.WriteString(fmt.Sprintf("%s %s", marker, issue.Kind))
		if issue.Line > 0 {
			sb.WriteString(fmt.Sprintf(" (line %d)", issue.Line))
		}
		sb.WriteString(fmt.Sprintf("\n  %s\n", issue.Message))
		if i < len(report.Issues)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("COMPILATION ISSUES", strings.TrimSuffix(sb.String(), "\n"))
}
