package validation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultEngine is the LaTeX engine used when none is configured
	DefaultEngine = "pdflatex"
	// CompilationTimeout is the maximum time to wait for one LaTeX run
	CompilationTimeout = 30 * time.Second
)

// auxExtensions are the files a LaTeX run leaves next to the PDF
var auxExtensions = []string{".aux", ".log", ".out", ".toc", ".lof", ".lot"}

// CompileLaTeX compiles texPath with engine (DefaultEngine if empty) into workDir.
// An empty workDir compiles in a new temporary directory. A PDF produced despite
// errors is returned together with a CompilationError.
func CompileLaTeX(ctx context.Context, engine, texPath, workDir string) (pdfPath string, logOutput string, err error) {
	if engine == "" {
		engine = DefaultEngine
	}
	if _, err := exec.LookPath(engine); err != nil {
		return "", "", &CompilationError{
			Message: fmt.Sprintf("%s not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)", engine),
			Cause:   err,
		}
	}

	if workDir == "" {
		workDir, err = os.MkdirTemp("", "latex-compile-*")
		if err != nil {
			return "", "", &WorkspaceError{Op: "create temp directory", Cause: err}
		}
	} else if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", "", &WorkspaceError{Op: "create directory", Path: workDir, Cause: err}
	}

	texBaseName := filepath.Base(texPath)
	workTexPath := filepath.Join(workDir, texBaseName)
	if filepath.Clean(texPath) != filepath.Clean(workTexPath) {
		content, err := os.ReadFile(texPath)
		if err != nil {
			return "", "", &InputError{Path: texPath, Cause: err}
		}
		if err := os.WriteFile(workTexPath, content, 0644); err != nil {
			return "", "", &WorkspaceError{Op: "copy source to", Path: workDir, Cause: err}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, CompilationTimeout)
	defer cancel()

	// nonstopmode keeps the engine from waiting on stdin after an error
	cmd := exec.CommandContext(ctx, engine, "-interaction=nonstopmode", "-halt-on-error", "-output-directory", workDir, workTexPath)
	cmd.Dir = workDir
	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output

	runErr := cmd.Run()
	logOutput = output.String()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", logOutput, &CompilationError{
			Message:   fmt.Sprintf("LaTeX compilation timed out after %v", CompilationTimeout),
			LogOutput: logOutput,
			Cause:     ctx.Err(),
		}
	}

	pdfPath = filepath.Join(workDir, strings.TrimSuffix(texBaseName, filepath.Ext(texBaseName))+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", logOutput, &CompilationError{
			Message:   "LaTeX compilation failed: PDF was not generated",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	if runErr != nil {
		return pdfPath, logOutput, &CompilationError{
			Message:   "LaTeX compilation completed with errors (PDF may be incomplete)",
			LogOutput: logOutput,
			Cause:     runErr,
		}
	}

	return pdfPath, logOutput, nil
}

// CleanupCompilationArtifacts removes the auxiliary files of texBaseName from workDir.
// A temporary directory created by CompileLaTeX is removed entirely.
func CleanupCompilationArtifacts(workDir, texBaseName string) error {
	if workDir == "" {
		return nil
	}
	if strings.HasPrefix(filepath.Base(workDir), "latex-compile-") {
		return os.RemoveAll(workDir)
	}

	stem := strings.TrimSuffix(texBaseName, filepath.Ext(texBaseName))
	for _, ext := range auxExtensions {
		_ = os.Remove(filepath.Join(workDir, stem+ext))
	}
	return nil
}
