package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"repodoctor/cmd/repodoc/ui"
	"repodoctor/internal/schemas"
)

var (
	dietJSON    bool
	dietOut     string
	dietPreview bool
)

// dietCmd analyzes repository bloat and hygiene
var dietCmd = &cobra.Command{
	Use:   "diet",
	Short: "🍔 Analyze repository bloat and hygiene issues",
	Long: `Generates a diet analysis documenting repository size, the largest
files and directories, suspected build artifacts and missing hygiene files.

By default DIET.md is written to the repository root.

Examples:
  repodoc diet                        # Generate DIET.md
  repodoc diet --out docs/BLOAT.md    # Save to a custom path
  repodoc diet --json                 # Print the analysis as JSON instead`,
	Args: cobra.NoArgs,
	RunE: runDiet,
}

func init() {
	dietCmd.Flags().BoolVar(&dietJSON, "json", false, "Output the analysis as JSON instead of generating DIET.md")
	dietCmd.Flags().StringVarP(&dietOut, "out", "o", "", "Custom output path for DIET.md (default: DIET.md)")
	dietCmd.Flags().BoolVar(&dietPreview, "preview", false, "Render the generated markdown in the terminal")
}

func runDiet(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	term := ui.New(stdout, verbose)
	if verbose && !dietJSON {
		term.Dim("Running diet analysis on: " + root)
	}

	var result schemas.DietOutput
	err = analyze(commandContext(cmd), term, root, analysis{
		command: "diet",
		status:  "🔍 Analyzing repository bloat",
		quiet:   dietJSON,
	}, &result)
	if err != nil {
		return err
	}
	result.Command = result.CommandName()

	if dietJSON {
		return emitJSON(term, result.Analysis, "")
	}

	path := dietOut
	if path == "" {
		path = filepath.Join(root, "DIET.md")
	}
	if err := writeOutput(path, result.DietMarkdown, "diet file"); err != nil {
		return err
	}
	term.PrintSuccess("Generated diet analysis: " + path)

	term.Diet(&result)
	if dietPreview {
		term.Markdown(result.DietMarkdown)
	}

	term.SuccessMessage("Diet analysis", []string{
		"Review identified bloat and consider cleanup",
		"Add missing hygiene files to improve repo health",
		"Run 'repodoc scan' for a full health check",
	})
	return nil
}
