package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	planStrategy   string
	planSessionDir string
	planFormat     string
)

var planCmd = &cobra.Command{
	Use:   "plan <analysis-id>",
	Short: "Create a transformation plan from analysis results",
	Long: `Create a transformation plan from a saved analysis.

The analysis id comes from a prior 'ark analyze' run. Pass --session-dir
to point at that run's output directory so the artifact can be found.

Examples:
  ark plan 3f6e... --session-dir .ark_output/v_20260827_101500
  ark plan 3f6e... --strategy aggressive --format human`,
	Args: cobra.ExactArgs(1),
	Run:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planStrategy, "strategy", "",
		"Transformation strategy: conservative, moderate, or aggressive (default from config)")
	planCmd.Flags().StringVar(&planSessionDir, "session-dir", "",
		"Existing session output directory holding the analysis artifact")
	planCmd.Flags().StringVar(&planFormat, "format", "json", "Output format (json, human)")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) {
	logger := newLogger(planFormat)
	cfg := mustLoadConfig()

	strategy := planStrategy
	if strategy == "" {
		strategy = cfg.Transform.DefaultStrategy
	}

	eng := mustNewEngine(cfg, planSessionDir, logger)
	defer eng.Close()

	plan, location, err := eng.CreatePlan(args[0], strategy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	output, err := FormatResponse(plan, OutputFormat(planFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
	fmt.Fprintf(os.Stderr, "Plan saved: %s\n", location)
}
