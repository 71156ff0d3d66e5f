package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repodoctor/cmd/repodoc/ui"
	"repodoctor/internal/doctor"
	"repodoctor/internal/logging"
	"repodoctor/internal/schemas"
	"repodoctor/internal/workspace"
)

var (
	reportOut     string
	reportFormat  string
	reportPublish bool
)

var reportFormats = map[string]string{
	"markdown": "md",
	"html":     "html",
}

// reportCmd writes a report from the cached scan
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "📋 Generate a report from the last scan",
	Long: `Uses the scan results cached in .repodoc/last_scan.json to write a report
with findings, recommendations and health scores.

With --publish (or publish.enabled in .repodoc/config.yaml) the report is also
uploaded to the configured S3-compatible bucket.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "Custom output path (default: REPODOCTOR_REPORT.md)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "markdown", "Report format: markdown or html")
	reportCmd.Flags().BoolVar(&reportPublish, "publish", false, "Upload the report to the configured object storage")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)

	ext, ok := reportFormats[reportFormat]
	if !ok {
		return doctor.Usage("Invalid format. Must be one of: markdown, html")
	}

	root, err := repoRoot()
	if err != nil {
		return err
	}
	if _, err := workspace.EnsureStateDir(root); err != nil {
		return doctor.IO("Failed to create .repodoc directory", err)
	}
	term := ui.New(stdout, verbose)
	if verbose {
		term.Dim("Generating report for: " + root)
	}

	publishing := reportPublish || cfg.Publish.Enabled
	if publishing && (cfg.Publish.Endpoint == "" || cfg.Publish.Bucket == "") {
		return doctor.Usage("Publishing requires publish.endpoint and publish.bucket in %s", filepath.Join(workspace.StateDir(root), "config.yaml"))
	}

	cached, err := workspace.LoadScan(root)
	if err != nil {
		return err
	}
	scanData, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode scan results: %w", err)
	}

	var result schemas.ReportOutput
	err = analyze(ctx, term, root, analysis{
		command: "report",
		status:  "Generating report",
		vars: map[string]string{
			"scan_data": string(scanData),
			"format":    reportFormat,
		},
	}, &result)
	if err != nil {
		return err
	}

	path := reportOut
	if path == "" {
		path = filepath.Join(root, "REPODOCTOR_REPORT."+ext)
	}
	if err := writeOutput(path, result.MarkdownContent, "report"); err != nil {
		return err
	}

	publishedURL := ""
	if publishing {
		p, err := newPublisher(cfg.Publish, root)
		if err != nil {
			return doctor.Config(err)
		}
		err = term.WithSpinner(ctx, "Publishing report", func(ctx context.Context) error {
			u, err := p.Publish(ctx, filepath.Base(path), []byte(result.MarkdownContent), "")
			publishedURL = u
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to publish report: %w", err)
		}
		logger.Category(logging.CategoryPublish).Info("Report published", zap.String("url", publishedURL))
	}

	term.Println()
	term.Report(&result, path, publishedURL)

	term.SuccessMessage("Report generation", []string{
		"Review the full report for detailed findings",
		"Address high-priority issues identified in the report",
		"Share the report with your team for collaborative review",
		"Re-run 'repodoc scan' after making improvements",
	})
	return nil
}
