package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/validation"
	"github.com/spf13/cobra"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a rendered .tex file and report layout problems",
	Long: `Compile a LaTeX file with a local TeX installation and report errors,
overfull boxes, missing glyphs and page overflow. Requires pdflatex (or the
engine given with --engine) on PATH.`,
	RunE: runCompile,
}

var (
	compileInput    string
	compileEngine   string
	compileMaxPages int
	compileOutDir   string
	compileJSON     bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileInput, "in", "i", "", "Path to LaTeX file (required)")
	compileCmd.Flags().StringVar(&compileEngine, "engine", validation.DefaultEngine, "LaTeX engine")
	compileCmd.Flags().IntVar(&compileMaxPages, "max-pages", 1, "Maximum page count (0 disables the check)")
	compileCmd.Flags().StringVarP(&compileOutDir, "out-dir", "o", "", "Keep the compiled PDF in this directory")
	compileCmd.Flags().BoolVar(&compileJSON, "json", false, "Print the report as JSON")

	if err := compileCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, _ []string) error {
	report, err := validation.CheckFile(cmd.Context(), compileInput, validation.Options{
		Engine:    compileEngine,
		MaxPages:  compileMaxPages,
		OutputDir: compileOutDir,
	})
	if err != nil {
		return err
	}

	if verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintReport(report)
	}
	if err := printReport(cmd.OutOrStdout(), report, compileJSON); err != nil {
		return err
	}
	if report.HasErrors() {
		return fmt.Errorf("%s has layout errors", compileInput)
	}
	return nil
}

func printReport(w io.Writer, report *validation.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	_, _ = fmt.Fprintf(w, "Pages: %d\n", report.Pages)
	if report.PDFPath != "" {
		_, _ = fmt.Fprintf(w, "PDF: %s\n", report.PDFPath)
	}
	if len(report.Issues) == 0 {
		_, err := fmt.Fprintln(w, "No issues found")
		return err
	}
	for _, issue := range report.Issues {
		location := ""
		if issue.Line > 0 {
			location = fmt.Sprintf(" (line %d)", issue.Line)
		}
		if _, err := fmt.Fprintf(w, "%s [%s]%s: %s\n", issue.Severity, issue.Kind, location, issue.Message); err != nil {
			return err
		}
	}
	return nil
}
