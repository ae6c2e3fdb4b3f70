package main

import (
	"fmt"
	"io"

	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the CV document JSON schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := io.WriteString(cmd.OutOrStdout(), schemas.CVDocumentSchema())
		return err
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available LaTeX templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, name := range rendering.Templates() {
			marker := ""
			if name == rendering.DefaultTemplate {
				marker = " (default)"
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", name, marker); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(templatesCmd)
}
