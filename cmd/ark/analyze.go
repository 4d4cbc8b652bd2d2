package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	analyzeTier   string
	analyzeFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <directory>",
	Short: "Analyze a codebase for consolidation opportunities",
	Long: `Analyze a directory for duplicated and patterned components.

The directory is protected for the session: nothing under it will ever be
written to. Results are saved as a JSON artifact in the session output
directory; its id feeds into 'ark plan'.

Examples:
  ark analyze src/
  ark analyze --tier quick legacy/
  ark analyze --tier deep --format human services/`,
	Args: cobra.ExactArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeTier, "tier", "",
		"Analysis tier: quick, comprehensive, or deep (default from config)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "json", "Output format (json, human)")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	logger := newLogger(analyzeFormat)
	cfg := mustLoadConfig()

	directory := args[0]
	if !filepath.IsAbs(directory) {
		directory = filepath.Join(cfg.Workspace, directory)
	}
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: directory not found: %s\n", directory)
		os.Exit(1)
	}

	tier := analyzeTier
	if tier == "" {
		tier = cfg.Analysis.DefaultTier
	}

	eng := mustNewEngine(cfg, "", logger)
	defer eng.Close()

	result, location, err := eng.Analyze(newContext(), directory, tier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(result, OutputFormat(analyzeFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
	fmt.Fprintf(os.Stderr, "Analysis saved: %s\n", location)
	fmt.Fprintf(os.Stderr, "Session directory: %s\n", eng.OutputDir())
}
