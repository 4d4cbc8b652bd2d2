package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var backupSessionDir string

var backupCmd = &cobra.Command{
	Use:   "backup <path>",
	Short: "Snapshot a file so it can be restored with 'ark rollback'",
	Long: `Create a compressed backup of a file in the session output directory.

The backup record is persisted with the session, so 'ark rollback' can
restore the file in a later invocation.

Examples:
  ark backup src/util.py
  ark backup src/util.py --session-dir .ark_output/v_20260827_101500`,
	Args: cobra.ExactArgs(1),
	Run:  runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&backupSessionDir, "session-dir", "",
		"Existing session output directory to store the backup in")
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	cfg := mustLoadConfig()

	eng := mustNewEngine(cfg, backupSessionDir, logger)
	defer eng.Close()

	location, err := eng.Backup(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Backed up %s -> %s\n", args[0], location)
	fmt.Fprintf(os.Stderr, "Session directory: %s\n", eng.OutputDir())
}
