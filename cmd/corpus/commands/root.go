// Package commands implements the corpus CLI's subcommands, following the
// teacher's cmd/substrate/commands layout: one cobra.Command per file,
// wired together in init() against a shared rootCmd.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// dbPath is the path to the SQLite metastore database.
	dbPath string

	// indexID is the index ID operated on by run/status.
	indexID string
)

var rootCmd = &cobra.Command{
	Use:   "corpus",
	Short: "corpus actor-runtime command center CLI",
	Long: `corpus CLI drives and inspects the indexing pipeline built on the
corpus actor runtime: run a batch of documents through a pipeline
supervisor, or inspect the splits staged so far against an index.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&dbPath, "db", "~/.corpus/corpus.db",
		"Path to SQLite metastore database (empty for in-memory)",
	)
	rootCmd.PersistentFlags().StringVar(
		&indexID, "index", "default",
		"Index ID to operate on",
	)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
}
