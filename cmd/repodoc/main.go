package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repodoctor/cmd/repodoc/ui"
	"repodoctor/internal/config"
	"repodoctor/internal/copilot"
	"repodoctor/internal/doctor"
	"repodoctor/internal/logging"
	"repodoctor/internal/publish"
	"repodoctor/internal/scan"
	"repodoctor/internal/workspace"
)

const version = "0.3.0"

var (
	// Global flags
	verbose      bool
	workspaceDir string
	timeout      int

	// Resolved by the root command before any subcommand runs
	repoDir string
	cfg     *config.Config
	logger  *logging.Logger

	stdout io.Writer = os.Stdout

	// newQuerier builds the backend client used by analysis commands.
	newQuerier = func() (scan.Querier, error) {
		opts := copilot.OptionsFromConfig(cfg)
		opts.Logger = logger
		return copilot.New(opts)
	}

	newPublisher = func(pc config.PublishConfig, repo string) (publish.Publisher, error) {
		return publish.NewMinio(pc, repo, logger.Category(logging.CategoryPublish))
	}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "repodoc",
	Short: "RepoDoctor - AI-powered repository health analysis",
	Long: `🏥 RepoDoctor - AI-Powered Repository Health Analysis

RepoDoctor uses the GitHub Copilot CLI (or Claude Code CLI) to analyze your
codebase and provide actionable insights on repository health, code quality,
and best practices.

Quick Start:
  repodoc scan              # Full health check
  repodoc diet              # Find bloat and missing files
  repodoc tour              # Generate TOUR.md for onboarding
  repodoc docker            # Analyze Dockerfiles
  repodoc deadcode          # Detect unused code
  repodoc report            # Write a report from the last scan

Requirements:
  • The backend CLI must be installed and authenticated
  • Run from within a code repository directory`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", "", "Repository directory (default: current)")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 0, "Timeout in seconds for each backend CLI run (default: config, else none)")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return doctor.Usage("%v\n\nRun '%s --help' for usage.", err, cmd.CommandPath())
	})

	rootCmd.AddCommand(dietCmd)
	rootCmd.AddCommand(tourCmd)
	rootCmd.AddCommand(dockerCmd)
	rootCmd.AddCommand(deadcodeCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if logger != nil {
			logger.Category(logging.CategoryCLI).Error("Command failed", zap.Error(err))
		}
		ui.New(os.Stderr, verbose).Error(err)
	}
	if logger != nil {
		_ = logger.Close()
	}
	os.Exit(doctor.ExitCode(err))
}

// setup resolves the repository directory, loads configuration and opens the
// invocation log.
func setup(cmd *cobra.Command, args []string) error {
	dir, err := resolveWorkspace(workspaceDir)
	if err != nil {
		return err
	}
	repoDir = dir

	envErr := config.LoadDotEnv(dir)

	c, err := config.Load(config.Path(dir))
	if err != nil {
		return doctor.Config(err)
	}
	if timeout > 0 {
		c.Timeout = (time.Duration(timeout) * time.Second).String()
	}
	if err := c.Validate(); err != nil {
		return doctor.Config(err)
	}
	cfg = c

	l, logErr := logging.New(logging.Options{Dir: workspace.LogsDir(dir), Verbose: verbose})
	logger = l
	log := logger.Category(logging.CategoryCLI)
	if logErr != nil {
		log.Warn("File logging disabled", zap.Error(logErr))
	}
	if envErr != nil {
		log.Warn("Failed to load .env", zap.Error(envErr))
	}
	log.Info("Command started",
		zap.String("command", cmd.CommandPath()),
		zap.String("workspace", dir),
		zap.String("backend", cfg.Backend),
		zap.String("version", version))
	return nil
}

func resolveWorkspace(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", doctor.IO("Failed to determine working directory", err)
		}
		dir = wd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", doctor.InvalidRepository(dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", doctor.InvalidRepository(abs, err)
	}
	if !info.IsDir() {
		return "", doctor.InvalidRepository(abs, fmt.Errorf("not a directory"))
	}
	return abs, nil
}
