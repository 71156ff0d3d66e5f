package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repodoctor/cmd/repodoc/ui"
	"repodoctor/internal/diff"
	"repodoctor/internal/doctor"
	"repodoctor/internal/logging"
	"repodoctor/internal/schemas"
)

var (
	dockerJSON    bool
	dockerOut     string
	dockerFix     bool
	dockerInPlace bool
	dockerDiff    bool
)

// dockerCmd analyzes the repository Dockerfile
var dockerCmd = &cobra.Command{
	Use:   "docker",
	Short: "🐳 Analyze Dockerfile for security and optimization issues",
	Long: `Identifies security vulnerabilities, performance issues and best practice
violations in the repository Dockerfile.

With --fix a patched copy is written to Dockerfile.repodoc. Add --in-place to
overwrite the original Dockerfile instead, and --show-diff to print the
changes as a unified diff.`,
	Args: cobra.NoArgs,
	RunE: runDocker,
}

func init() {
	dockerCmd.Flags().BoolVar(&dockerJSON, "json", false, "Output raw JSON instead of formatted text")
	dockerCmd.Flags().StringVarP(&dockerOut, "out", "o", "", "Save output to the specified file")
	dockerCmd.Flags().BoolVar(&dockerFix, "fix", false, "Generate an optimized Dockerfile.repodoc with fixes applied")
	dockerCmd.Flags().BoolVar(&dockerInPlace, "in-place", false, "Overwrite the original Dockerfile (requires --fix)")
	dockerCmd.Flags().BoolVar(&dockerDiff, "show-diff", false, "Print the patch as a unified diff (requires --fix)")
}

func runDocker(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	if dockerInPlace && !dockerFix {
		return doctor.Usage("--in-place requires --fix")
	}
	if dockerDiff && !dockerFix {
		return doctor.Usage("--show-diff requires --fix")
	}

	term := ui.New(stdout, verbose)
	if verbose && !dockerJSON {
		term.Dim("Analyzing Dockerfile in: " + root)
	}

	dockerfile := filepath.Join(root, "Dockerfile")
	original, err := os.ReadFile(dockerfile)
	if err != nil {
		return doctor.Usage("No Dockerfile found in repository root")
	}

	var result schemas.DockerOutput
	err = analyze(commandContext(cmd), term, root, analysis{
		command: "docker",
		status:  "Analyzing Dockerfile",
		vars:    map[string]string{"dockerfile_path": dockerfile},
		quiet:   dockerJSON,
	}, &result)
	if err != nil {
		return err
	}
	result.Command = result.CommandName()

	if dockerJSON {
		return emitJSON(term, &result, dockerOut)
	}

	patched := ""
	if dockerFix {
		if result.PatchedDockerfile == nil {
			term.PrintWarning("No patched Dockerfile was produced")
		} else {
			target := filepath.Join(root, "Dockerfile.repodoc")
			if dockerInPlace {
				target = dockerfile
				term.PrintWarning("Warning: Overwriting original Dockerfile")
			}
			if err := writeOutput(target, result.PatchedDockerfile.PatchedContent, "patched Dockerfile"); err != nil {
				return err
			}
			patched = target
			patch := diff.Compare("Dockerfile", filepath.Base(target), string(original), result.PatchedDockerfile.PatchedContent)
			logger.Category(logging.CategoryCLI).Info("Dockerfile patched",
				zap.String("path", target),
				zap.Int("changes", len(result.PatchedDockerfile.ChangesSummary)),
				zap.Int("added", patch.Added),
				zap.Int("removed", patch.Removed))
			switch {
			case !patch.Changed():
				term.Dim("Patched Dockerfile is identical to the original")
			case dockerDiff:
				term.Diff(patch.Unified(3))
			default:
				term.Dim(fmt.Sprintf("+%d -%d lines", patch.Added, patch.Removed))
			}
		}
	}

	term.Docker(&result, patched)

	if dockerOut != "" {
		return saveText(term, dockerOut, func(t *ui.Terminal) { t.Docker(&result, patched) })
	}
	return nil
}
