package validation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Options configures a compile check
type Options struct {
	Engine    string // LaTeX engine; DefaultEngine if empty
	MaxPages  int    // Page limit; 0 disables the check
	OutputDir string // When set, the compiled PDF is kept here
}

// Report is the outcome of compiling a rendered document
type Report struct {
	// PDFPath is the kept PDF, set only when Options.OutputDir is used
	PDFPath string  `json:"pdf_path,omitempty"`
	Pages   int     `json:"pages"`
	Issues  []Issue `json:"issues"`
}

// HasErrors reports whether any issue has error severity
func (r *Report) HasErrors() bool {
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Check compiles LaTeX source and reports layout problems.
// The source is written to a temporary directory that is removed afterwards.
func Check(ctx context.Context, latex string, opts Options) (*Report, error) {
	tmpDir, err := os.MkdirTemp("", "resume-check-*")
	if err != nil {
		return nil, &WorkspaceError{Op: "create temp directory", Cause: err}
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	texPath := filepath.Join(tmpDir, "resume.tex")
	if err := os.WriteFile(texPath, []byte(latex), 0644); err != nil {
		return nil, &WorkspaceError{Op: "write", Path: texPath, Cause: err}
	}

	return checkIn(ctx, texPath, tmpDir, opts)
}

// CheckFile compiles a .tex file and reports layout problems.
// Compilation happens in a temporary directory so the source directory stays clean.
func CheckFile(ctx context.Context, texPath string, opts Options) (*Report, error) {
	if _, err := os.Stat(texPath); err != nil {
		return nil, &InputError{Path: texPath, Cause: err}
	}

	tmpDir, err := os.MkdirTemp("", "resume-check-*")
	if err != nil {
		return nil, &WorkspaceError{Op: "create temp directory", Cause: err}
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	return checkIn(ctx, texPath, tmpDir, opts)
}

func checkIn(ctx context.Context, texPath, workDir string, opts Options) (*Report, error) {
	pdfPath, logOutput, err := CompileLaTeX(ctx, opts.Engine, texPath, workDir)
	report := &Report{Issues: ParseLog(logOutput)}

	if err != nil {
		var compErr *CompilationError
		if !errors.As(err, &compErr) || errors.Is(err, exec.ErrNotFound) {
			return nil, err
		}
		if !report.HasErrors() {
			report.Issues = append(report.Issues, Issue{Severity: SeverityError, Kind: KindLaTeXError, Message: compErr.Message})
		}
		if pdfPath == "" {
			return report, nil
		}
	}

	pages, err := CountPDFPages(pdfPath)
	if err != nil {
		report.Issues = append(report.Issues, Issue{
			Severity: SeverityWarning,
			Kind:     KindPageOverflow,
			Message:  fmt.Sprintf("could not determine page count: %v", err),
		})
	} else {
		report.Pages = pages
		if opts.MaxPages > 0 && pages > opts.MaxPages {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityError,
				Kind:     KindPageOverflow,
				Message:  fmt.Sprintf("document has %d pages, maximum allowed is %d", pages, opts.MaxPages),
			})
		}
	}

	if opts.OutputDir != "" {
		kept, err := keepPDF(pdfPath, opts.OutputDir, texPath)
		if err != nil {
			return nil, err
		}
		report.PDFPath = kept
	}

	return report, nil
}

func keepPDF(pdfPath, outputDir, texPath string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", &WorkspaceError{Op: "create output directory", Path: outputDir, Cause: err}
	}
	content, err := os.ReadFile(pdfPath)
	if err != nil {
		return "", &InputError{Path: pdfPath, Cause: err}
	}
	base := filepath.Base(texPath)
	dest := filepath.Join(outputDir, base[:len(base)-len(filepath.Ext(base))]+".pdf")
	if err := os.WriteFile(dest, content, 0644); err != nil {
		return "", &WorkspaceError{Op: "write", Path: dest, Cause: err}
	}
	return dest, nil
}
