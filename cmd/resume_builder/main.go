// Package main provides the resume_builder CLI and HTTP server entry point.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resume_builder",
	Short: "Resume Builder CLI and HTTP API server",
	Long:  "Resume Builder turns resumes (PDF, DOCX or text) into LaTeX documents, using an AI model to structure the content into a CV document and a fixed template to typeset it.",

	SilenceUsage: true,
}

var (
	configFile string
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to JSON config file (optional)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print a summary of each step to stderr")
}

// loadConfig reads the --config file, the environment and defaults
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
