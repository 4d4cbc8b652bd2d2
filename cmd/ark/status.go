package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	statusSessionDir string
	statusFormat     string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session and safety status",
	Long: `Show the current session state and the safety system status:
protected paths, active backups, and syntax check availability.

Examples:
  ark status
  ark status --session-dir .ark_output/v_20260827_101500 --format human`,
	Run: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusSessionDir, "session-dir", "",
		"Existing session output directory to report on")
	statusCmd.Flags().StringVar(&statusFormat, "format", "json", "Output format (json, human)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	logger := newLogger(statusFormat)
	cfg := mustLoadConfig()

	eng := mustNewEngine(cfg, statusSessionDir, logger)
	defer eng.Close()

	resp := &statusResponse{
		Session: eng.GetSessionInfo(),
		Safety:  eng.SafetyStatus(),
	}

	output, err := FormatResponse(resp, OutputFormat(statusFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
