package main

import (
	"github.com/spf13/cobra"

	"repodoctor/cmd/repodoc/ui"
	"repodoctor/internal/doctor"
	"repodoctor/internal/schemas"
)

var (
	deadcodeJSON          bool
	deadcodeOut           string
	deadcodeMinConfidence string
)

// deadcodeCmd detects unused code
var deadcodeCmd = &cobra.Command{
	Use:   "deadcode",
	Short: "🔍 Detect unused code with confidence levels",
	Long: `Finds unused functions, classes, imports and files. Every finding carries
a confidence level; only findings at or above --min-confidence are shown.`,
	Args: cobra.NoArgs,
	RunE: runDeadcode,
}

func init() {
	deadcodeCmd.Flags().BoolVar(&deadcodeJSON, "json", false, "Output raw JSON instead of formatted text")
	deadcodeCmd.Flags().StringVarP(&deadcodeOut, "out", "o", "", "Save output to the specified file")
	deadcodeCmd.Flags().StringVar(&deadcodeMinConfidence, "min-confidence", "medium", "Minimum confidence level to report (low, medium, high)")
}

func runDeadcode(cmd *cobra.Command, args []string) error {
	minLevel, ok := schemas.ParseConfidence(deadcodeMinConfidence)
	if !ok {
		return doctor.Usage("Invalid confidence level. Must be one of: low, medium, high")
	}

	root, err := repoRoot()
	if err != nil {
		return err
	}
	term := ui.New(stdout, verbose)
	if verbose && !deadcodeJSON {
		term.Dim("Detecting dead code in: " + root)
	}

	var result schemas.DeadCodeOutput
	err = analyze(commandContext(cmd), term, root, analysis{
		command: "deadcode",
		status:  "Analyzing codebase for dead code",
		quiet:   deadcodeJSON,
	}, &result)
	if err != nil {
		return err
	}
	result.Command = result.CommandName()

	if deadcodeJSON {
		return emitJSON(term, &result, deadcodeOut)
	}

	term.DeadCode(&result, minLevel)

	if deadcodeOut != "" {
		return saveText(term, deadcodeOut, func(t *ui.Terminal) { t.DeadCode(&result, minLevel) })
	}
	return nil
}
