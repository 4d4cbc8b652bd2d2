package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rollbackSessionDir string

var rollbackCmd = &cobra.Command{
	Use:   "rollback <path>",
	Short: "Restore a backed-up file to its original content",
	Long: `Restore a file from its session backup. Rollback reports success or
failure; a path with no backup record in the session is a no-op failure,
never an error. Backups are created with 'ark backup'.

Examples:
  ark rollback src/util.py --session-dir .ark_output/v_20260827_101500`,
	Args: cobra.ExactArgs(1),
	Run:  runRollback,
}

func init() {
	rollbackCmd.Flags().StringVar(&rollbackSessionDir, "session-dir", "",
		"Existing session output directory holding the backups")
	rootCmd.AddCommand(rollbackCmd)
}

func runRollback(cmd *cobra.Command, args []string) {
	logger := newLogger("human")
	cfg := mustLoadConfig()

	eng := mustNewEngine(cfg, rollbackSessionDir, logger)
	defer eng.Close()

	if eng.Rollback(args[0]) {
		fmt.Printf("Restored %s\n", args[0])
		return
	}
	fmt.Fprintf(os.Stderr, "Rollback failed for %s (no backup record in this session?)\n", args[0])
	os.Exit(1)
}
