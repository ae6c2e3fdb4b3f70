package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check CV document JSON files against the schema",
	Long:  "Validates each CV document JSON file against the schema used by the conversion prompt and reports every violation.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if failed := validateFiles(cmd.OutOrStdout(), args); failed > 0 {
			return fmt.Errorf("%d of %d files failed validation", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// validateFiles reports each file's result to w and returns the number that failed
func validateFiles(w io.Writer, paths []string) int {
	failed := 0
	for _, path := range paths {
		err := schemas.ValidateCVDocumentFile(path)
		if err == nil {
			_, _ = fmt.Fprintf(w, "✓ %s\n", path)
			continue
		}

		failed++
		var valErr *schemas.ValidationError
		if !errors.As(err, &valErr) {
			_, _ = fmt.Fprintf(w, "✗ %s: %v\n", path, err)
			continue
		}
		_, _ = fmt.Fprintf(w, "✗ %s\n", path)
		for _, fieldErr := range valErr.Errors {
			_, _ = fmt.Fprintf(w, "    %s: %s\n", fieldErr.Field, fieldErr.Message)
		}
	}
	return failed
}
