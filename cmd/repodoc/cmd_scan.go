package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repodoctor/cmd/repodoc/ui"
	"repodoctor/internal/logging"
	"repodoctor/internal/scan"
	"repodoctor/internal/schemas"
	"repodoctor/internal/store"
	"repodoctor/internal/workspace"
)

var (
	scanJSON         bool
	scanOut          string
	scanSkipDocker   bool
	scanSkipDeadcode bool
)

// scanCmd runs every analysis and aggregates a health score
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "🏥 Run a full repository health check",
	Long: `Runs diet, tour, docker and deadcode analyses and combines them into an
overall health score. Results are cached in .repodoc/last_scan.json for
'repodoc report' and recorded in the scan history.

A module that fails is reported and the scan continues with the others.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Output raw JSON instead of formatted text")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "Save output to the specified file")
	scanCmd.Flags().BoolVar(&scanSkipDocker, "skip-docker", false, "Skip Dockerfile analysis")
	scanCmd.Flags().BoolVar(&scanSkipDeadcode, "skip-deadcode", false, "Skip dead code detection")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	log := logger.Category(logging.CategoryScan)

	root, err := repoRoot()
	if err != nil {
		return err
	}
	term := ui.New(stdout, verbose)

	prompts, err := loadPrompts()
	if err != nil {
		return err
	}
	q, err := newQuerier()
	if err != nil {
		return err
	}

	var progress scan.Progress = scan.NopProgress{}
	if !scanJSON {
		term.Header("RepoDoctor Full Scan", "🏥")
		if verbose {
			term.Dim("Scanning repository: " + root)
			term.Println()
		}
		progress = ui.NewScanProgress(term)
	}

	result, outputs, err := scan.New(q, prompts, log).Run(ctx, root, scan.Options{
		SkipDocker:   scanSkipDocker,
		SkipDeadcode: scanSkipDeadcode,
		Concurrency:  cfg.GetConcurrency(),
		Progress:     progress,
	})
	if err != nil {
		return err
	}

	cachePath, err := workspace.SaveScan(root, result)
	if err != nil {
		log.Warn("Failed to save scan cache", zap.Error(err))
		cachePath = ""
	}
	recordHistory(ctx, root, result)

	if scanJSON {
		return emitJSON(term, result, scanOut)
	}

	summary := scan.BuildOutput(result, outputs)
	render := func(t *ui.Terminal) {
		t.Scan(result)
		if len(summary.TopIssues) > 0 {
			t.Println()
			t.IssuesTable(ui.IssueRows(summary.TopIssues), "Top Issues")
		}
		t.Recommendations(summary.TopRecommendations)
	}
	render(term)

	if scanOut != "" {
		if err := saveText(term, scanOut, render); err != nil {
			return err
		}
	}

	if cachePath != "" {
		term.Println()
		term.Dim("Results cached at: " + cachePath)
	}
	term.SuccessMessage("Full repository scan", summary.NextActions)
	return nil
}

// recordHistory stores the scan in the history database and prunes old
// entries. Failures are logged; history never fails a scan.
func recordHistory(ctx context.Context, root string, result *schemas.ScanResult) {
	if !cfg.History.Enabled {
		return
	}
	log := logger.Category(logging.CategoryStore)

	s, err := store.Open(cfg.HistoryPath(root), log)
	if err != nil {
		log.Warn("Scan history unavailable", zap.Error(err))
		return
	}
	defer s.Close()

	if _, err := s.Record(ctx, result); err != nil {
		log.Warn("Failed to record scan", zap.Error(err))
		return
	}
	if cfg.History.Keep > 0 {
		if _, err := s.Prune(ctx, cfg.History.Keep); err != nil {
			log.Warn("Failed to prune scan history", zap.Error(err))
		}
	}
}
