package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"repodoctor/cmd/repodoc/ui"
)

// promptsCmd shows the prompt templates sent to the backend
var promptsCmd = &cobra.Command{
	Use:   "prompts [command]",
	Short: "List prompt templates or print the rendered prompt for one command",
	Long: `Without arguments, lists the prompt templates in use and where each one
was loaded from. Templates placed in .repodoc/prompts/<version>/<command>.yaml
replace the built-in ones.

With a command name, prints the prompt exactly as it would be sent for this
repository.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPrompts,
}

func runPrompts(cmd *cobra.Command, args []string) error {
	prompts, err := loadPrompts()
	if err != nil {
		return err
	}
	term := ui.New(stdout, verbose)

	if len(args) == 1 {
		text, err := prompts.Render(args[0], map[string]string{
			"repo_path":       repoDir,
			"dockerfile_path": filepath.Join(repoDir, "Dockerfile"),
			"format":          "markdown",
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, text)
		return nil
	}

	term.Header(fmt.Sprintf("Prompt templates (%s)", prompts.Version()), "📝")
	rows := make([]ui.KV, 0, len(prompts.Commands()))
	for _, name := range prompts.Commands() {
		tpl, err := prompts.Get(name)
		if err != nil {
			return err
		}
		rows = append(rows, ui.KV{Key: name, Value: tpl.Description + "  [" + tpl.Source + "]"})
	}
	term.SummaryTable(rows, "")
	return nil
}
