package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-builder/internal/conversion"
	"github.com/jonathan/resume-builder/internal/ingestion"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a resume file to LaTeX using an AI model",
	Long: `Extract the text of a PDF, DOCX or plain text resume, have a model structure it
into a CV document and render the document to LaTeX.

Provider slots are configured with API_<N>_PROVIDER, API_<N>_KEY and
API_<N>_MODEL (N = 1..5). When the requested slot fails, the remaining slots
are tried in order.`,
	RunE: runConvert,
}

var (
	convertInput        string
	convertOutput       string
	convertSlot         string
	convertTemplate     string
	convertSectionOrder string
	convertDocOutput    string
)

func init() {
	convertCmd.Flags().StringVarP(&convertInput, "in", "i", "", "Path to resume file (required)")
	convertCmd.Flags().StringVarP(&convertOutput, "out", "o", "", "Path to output .tex file (default stdout)")
	convertCmd.Flags().StringVarP(&convertSlot, "slot", "s", "", "Provider slot to try first, e.g. api_2 (default from config)")
	convertCmd.Flags().StringVarP(&convertTemplate, "template", "t", "", "Template name (default from config)")
	convertCmd.Flags().StringVar(&convertSectionOrder, "section-order", "", "Comma-separated section order, e.g. summary,experience,skills")
	convertCmd.Flags().StringVar(&convertDocOutput, "doc-out", "", "Also write the structured CV document JSON to this path")

	if err := convertCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Slots) == 0 {
		return fmt.Errorf("no provider slot configured: set API_1_PROVIDER and API_1_KEY, or GEMINI_API_KEY / OPENROUTER_API_KEY")
	}

	slot := convertSlot
	if slot == "" {
		slot = cfg.DefaultSlot
	}

	service := conversion.NewService(
		llm.NewFallbackClient(cfg.Slots, nil, cfg.RetryPolicy()),
		conversion.Options{Template: cfg.Template, Rules: cfg.RenderingRules, Timeout: cfg.Timeout()},
	)

	result, source, err := convertFile(cmd.Context(), service, convertInput, conversion.Request{
		Slot:         slot,
		Template:     convertTemplate,
		SectionOrder: splitOrder(convertSectionOrder),
	})
	if err != nil {
		return err
	}

	stderr := cmd.ErrOrStderr()
	if cfg.Verbose {
		printer := observability.NewPrinter(stderr)
		printer.PrintSource(source)
		printer.PrintConversion(result)
	} else {
		if result.Provider != nil {
			_, _ = fmt.Fprintf(stderr, "Converted with %s via slot %s (%d attempts)\n", result.Provider.Model, result.Provider.Slot, result.Provider.Attempts)
		}
		reportSkipped(stderr, convertInput, result)
	}

	if convertDocOutput != "" {
		if err := writeJSON(convertDocOutput, result.Document); err != nil {
			return err
		}
	}

	if convertOutput == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), result.LaTeX)
		return err
	}
	if err := writeFile(convertOutput, []byte(result.LaTeX)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", convertOutput)
	return nil
}

// convertFile extracts the resume at path and converts it with req's options
func convertFile(ctx context.Context, service *conversion.Service, path string, req conversion.Request) (*conversion.Result, *ingestion.Metadata, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	doc, err := ingestion.ExtractFile(path)
	if err != nil {
		return nil, nil, err
	}
	req.ResumeText = doc.Text
	result, err := service.Convert(ctx, req)
	if err != nil {
		return nil, doc.Metadata, err
	}
	return result, doc.Metadata, nil
}

func splitOrder(value string) []string {
	var order []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			order = append(order, part)
		}
	}
	return order
}

func writeFile(path string, content []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func writeJSON(path string, value any) error {
	content, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return writeFile(path, append(content, '\n'))
}
