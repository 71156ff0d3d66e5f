package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"repodoctor/cmd/repodoc/ui"
	"repodoctor/internal/logging"
	"repodoctor/internal/store"
)

var (
	historyLimit int
	historyJSON  bool
)

// historyCmd lists recorded scans
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "📜 Show the health score history of past scans",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of scans to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Output raw JSON instead of formatted text")
}

func runHistory(cmd *cobra.Command, args []string) error {
	term := ui.New(stdout, verbose)
	if !cfg.History.Enabled {
		term.PrintInfo("Scan history is disabled (history.enabled is false)")
		return nil
	}

	entries, err := loadHistory(cmd, historyLimit)
	if err != nil {
		return err
	}

	if historyJSON {
		for i := range entries {
			entries[i].Payload = nil
		}
		if entries == nil {
			entries = []store.Entry{}
		}
		return emitJSON(term, entries, "")
	}
	term.History(entries, time.Now())
	return nil
}

// loadHistory reads the newest entries without creating a database when
// none exists yet.
func loadHistory(cmd *cobra.Command, limit int) ([]store.Entry, error) {
	path := cfg.HistoryPath(repoDir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	s, err := store.Open(path, logger.Category(logging.CategoryStore))
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.List(commandContext(cmd), limit)
}
