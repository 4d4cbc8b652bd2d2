package main

import (
	"arktools/internal/version"

	"github.com/spf13/cobra"
)

var (
	// workspaceFlag is the CLI --workspace flag value
	workspaceFlag string
)

var rootCmd = &cobra.Command{
	Use:   "ark",
	Short: "ARK - Automated Refactoring Kit",
	Long: `ARK analyzes codebases for duplicated and patterned components, plans
consolidation transformations, and generates consolidated code into a quarantined,
versioned output directory. Source files are never modified.`,
	Version: version.Info(),
}

func init() {
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", ".",
		"Workspace root directory")
}
