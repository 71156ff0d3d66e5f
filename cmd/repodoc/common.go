package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repodoctor/cmd/repodoc/ui"
	"repodoctor/internal/doctor"
	"repodoctor/internal/logging"
	"repodoctor/internal/prompt"
	"repodoctor/internal/workspace"
)

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// repoRoot validates that the workspace has analyzable content.
func repoRoot() (string, error) {
	return workspace.RepoRoot(repoDir, logger.Category(logging.CategoryCLI))
}

// loadPrompts returns the configured template set with any repository
// overrides from .repodoc/prompts applied.
func loadPrompts() (*prompt.Loader, error) {
	l, err := prompt.NewLoader(cfg.PromptVersion, logger.Category(logging.CategoryPrompt))
	if err != nil {
		return nil, doctor.Config(err)
	}
	if err := l.Override(workspace.PromptsDir(repoDir)); err != nil {
		return nil, doctor.Config(err)
	}
	return l, nil
}

// analysis describes one backend query made by a command.
type analysis struct {
	command string
	status  string
	vars    map[string]string
	// quiet suppresses the spinner, as JSON output requires.
	quiet bool
}

// analyze renders the command's prompt, sends it to the backend and decodes
// the validated answer into target.
func analyze(ctx context.Context, term *ui.Terminal, root string, a analysis, target any) error {
	prompts, err := loadPrompts()
	if err != nil {
		return err
	}

	vars := map[string]string{"repo_path": root}
	for k, v := range a.vars {
		vars[k] = v
	}
	text, err := prompts.Render(a.command, vars)
	if err != nil {
		return doctor.Config(err)
	}

	q, err := newQuerier()
	if err != nil {
		return err
	}

	log := logger.Category(logging.CategoryCLI)
	log.Info("Running analysis",
		zap.String("command", a.command),
		zap.String("prompt_version", prompts.Version()),
		zap.Int("prompt_bytes", len(text)))

	run := func(ctx context.Context) error {
		retried, err := q.Query(ctx, text, root, target)
		if retried {
			log.Info("Analysis needed a retry", zap.String("command", a.command))
		}
		return err
	}
	if a.quiet {
		return run(ctx)
	}
	return term.WithSpinner(ctx, a.status, run)
}

// emitJSON prints v as indented JSON, or saves it to out when set.
func emitJSON(term *ui.Terminal, v any, out string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	if out == "" {
		fmt.Fprintln(stdout, string(data))
		return nil
	}
	if err := workspace.WriteFileAtomic(out, append(data, '\n'), 0644); err != nil {
		return doctor.IO("Failed to save JSON output to "+out, err)
	}
	term.PrintSuccess("JSON output saved to: " + out)
	logger.Category(logging.CategoryCLI).Info("Saved JSON output", zap.String("path", out))
	return nil
}

// saveText renders into a plain-text terminal and writes the result to out.
func saveText(term *ui.Terminal, out string, render func(t *ui.Terminal)) error {
	var buf bytes.Buffer
	render(ui.New(&buf, verbose))
	if err := workspace.WriteFileAtomic(out, buf.Bytes(), 0644); err != nil {
		return doctor.IO("Failed to save output to "+out, err)
	}
	term.PrintSuccess("Output saved to: " + out)
	logger.Category(logging.CategoryCLI).Info("Saved text output", zap.String("path", out))
	return nil
}

// writeOutput writes a generated document, naming it in any error.
func writeOutput(path, content, what string) error {
	if err := workspace.WriteFileAtomic(path, []byte(content), 0644); err != nil {
		return doctor.IO("Failed to write "+what, err)
	}
	logger.Category(logging.CategoryCLI).Info("Wrote output", zap.String("kind", what), zap.String("path", path))
	return nil
}
