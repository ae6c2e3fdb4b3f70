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
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallelRenders bounds the files rendered at once
const maxParallelRenders = 4

var renderCmd = &cobra.Command{
	Use:   "render FILE...",
	Short: "Render CV document JSON files to LaTeX",
	Long: `Render one or more CV document JSON files to LaTeX without calling a model.

With --raw each file is treated as unprocessed model output: code fences and
surrounding prose are stripped before parsing. A single file is written to
stdout unless --out-dir is given; several files require --out-dir.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRender,
}

var (
	renderTemplate string
	renderOutDir   string
	renderRaw      bool
	renderStrict   bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "Template name (default from config)")
	renderCmd.Flags().StringVarP(&renderOutDir, "out-dir", "o", "", "Directory for the .tex files")
	renderCmd.Flags().BoolVar(&renderRaw, "raw", false, "Inputs are raw model output")
	renderCmd.Flags().BoolVar(&renderStrict, "strict", false, "Validate inputs against the CV document schema first")

	rootCmd.AddCommand(renderCmd)
}

type renderOptions struct {
	Template string
	Raw      bool
	Strict   bool
}

// renderedFile is the outcome of rendering one input file
type renderedFile struct {
	Path   string
	Result *conversion.Result
}

func runRender(cmd *cobra.Command, args []string) error {
	if len(args) > 1 && renderOutDir == "" {
		return fmt.Errorf("--out-dir is required when rendering %d files", len(args))
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	service := conversion.NewService(nil, conversion.Options{Template: cfg.Template, Rules: cfg.RenderingRules})

	rendered, err := renderFiles(cmd.Context(), service, args, renderOptions{
		Template: renderTemplate,
		Raw:      renderRaw,
		Strict:   renderStrict,
	})
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(cmd.ErrOrStderr())
	for _, file := range rendered {
		if cfg.Verbose {
			printer.PrintConversion(file.Result)
		} else {
			reportSkipped(cmd.ErrOrStderr(), file.Path, file.Result)
		}
	}

	if renderOutDir == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), rendered[0].Result.LaTeX)
		return err
	}

	written, err := writeRendered(renderOutDir, rendered)
	if err != nil {
		return err
	}
	for _, path := range written {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return nil
}

// renderFiles renders paths concurrently. Results keep the order of paths;
// the first failure cancels the rest.
func renderFiles(ctx context.Context, service *conversion.Service, paths []string, opts renderOptions) ([]renderedFile, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]renderedFile, len(paths))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRenders)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			result, err := renderFile(service, path, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = renderedFile{Path: path, Result: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func renderFile(service *conversion.Service, path string, opts renderOptions) (*conversion.Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if opts.Raw {
		return service.RenderRaw(string(content), opts.Template)
	}

	if opts.Strict {
		if err := schemas.ValidateCVDocument(string(content)); err != nil {
			return nil, err
		}
	}

	var doc types.CVDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse CV document JSON: %w", err)
	}
	return service.Render(&doc, opts.Template)
}

// writeRendered writes each result to dir as <input stem>.tex
func writeRendered(dir string, rendered []renderedFile) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	seen := make(map[string]string, len(rendered))
	written := make([]string, 0, len(rendered))
	for _, file := range rendered {
		out := filepath.Join(dir, texName(file.Path))
		if other, ok := seen[out]; ok {
			return written, fmt.Errorf("%s and %s would both be written to %s", other, file.Path, out)
		}
		seen[out] = file.Path

		if err := os.WriteFile(out, []byte(file.Result.LaTeX), 0644); err != nil {
			return written, fmt.Errorf("failed to write output file: %w", err)
		}
		written = append(written, out)
	}
	return written, nil
}

func texName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".tex"
}

func reportSkipped(w io.Writer, source string, result *conversion.Result) {
	for _, skipped := range result.Skipped {
		_, _ = fmt.Fprintf(w, "Warning: %s: skipped section %q (%s)\n", source, skipped.Tag, skipped.Reason)
	}
}
