package cmd

import (
	"apireq-migrate/internal/modules/journal"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

var (
	historyJournal string
	historyLimit   int
	historyOutput  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent submissions recorded in an import journal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHistory(cmd.OutOrStdout(), historyJournal, historyLimit, historyOutput)
	},
}

func init() {
	historyCmd.Flags().StringVar(&historyJournal, "journal", "", "SQLite journal written by import --journal")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "Number of entries to show")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "text", "Output format (text, json, yaml)")
	historyCmd.MarkFlagRequired("journal")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(w io.Writer, path string, limit int, format string) error {
	store, err := journal.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(limit)
	if err != nil {
		return fmt.Errorf("reading journal %s: %w", path, err)
	}
	return journal.Print(w, entries, format)
}
