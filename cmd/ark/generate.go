package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	generateDryRun     bool
	generateSessionDir string
	generateFormat     string
)

var generateCmd = &cobra.Command{
	Use:   "generate <plan-id>",
	Short: "Generate consolidated code from a transformation plan",
	Long: `Execute a transformation plan and write consolidated code into the
session output directory. With --dry-run no files are written; each
operation reports a preview of what it would produce.

Examples:
  ark generate 9a1c... --session-dir .ark_output/v_20260827_101500
  ark generate 9a1c... --dry-run --format human`,
	Args: cobra.ExactArgs(1),
	Run:  runGenerate,
}

func init() {
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false,
		"Preview operations without writing any files")
	generateCmd.Flags().StringVar(&generateSessionDir, "session-dir", "",
		"Existing session output directory holding the plan artifact")
	generateCmd.Flags().StringVar(&generateFormat, "format", "json", "Output format (json, human)")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) {
	logger := newLogger(generateFormat)
	cfg := mustLoadConfig()

	eng := mustNewEngine(cfg, generateSessionDir, logger)
	defer eng.Close()

	result, location, err := eng.Generate(newContext(), args[0], generateDryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(result, OutputFormat(generateFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
	fmt.Fprintf(os.Stderr, "Generation results saved: %s\n", location)
}
