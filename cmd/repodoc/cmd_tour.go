package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"repodoctor/cmd/repodoc/ui"
	"repodoctor/internal/schemas"
)

var (
	tourJSON    bool
	tourOut     string
	tourPreview bool
)

// tourCmd generates an onboarding tour
var tourCmd = &cobra.Command{
	Use:   "tour",
	Short: "🗺️  Generate an onboarding tour of the repository",
	Long: `Identifies the technology stack, entry points and directory layout and
writes a guided tour to TOUR.md for new contributors.

Examples:
  repodoc tour                        # Generate TOUR.md
  repodoc tour --out docs/ONBOARD.md  # Save to a custom path
  repodoc tour --json                 # Print the tour as JSON instead`,
	Args: cobra.NoArgs,
	RunE: runTour,
}

func init() {
	tourCmd.Flags().BoolVar(&tourJSON, "json", false, "Output the tour as JSON instead of generating TOUR.md")
	tourCmd.Flags().StringVarP(&tourOut, "out", "o", "", "Custom output path for TOUR.md (default: TOUR.md)")
	tourCmd.Flags().BoolVar(&tourPreview, "preview", false, "Render the generated markdown in the terminal")
}

func runTour(cmd *cobra.Command, args []string) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	term := ui.New(stdout, verbose)
	if verbose && !tourJSON {
		term.Dim("Generating tour for: " + root)
	}

	var result schemas.TourOutput
	err = analyze(commandContext(cmd), term, root, analysis{
		command: "tour",
		status:  "Generating repository tour",
		quiet:   tourJSON,
	}, &result)
	if err != nil {
		return err
	}
	result.Command = result.CommandName()

	if tourJSON {
		return emitJSON(term, result.Tour, "")
	}

	path := tourOut
	if path == "" {
		path = filepath.Join(root, "TOUR.md")
	}
	if err := writeOutput(path, result.TourMarkdown, "tour file"); err != nil {
		return err
	}

	term.Tour(&result, path)
	if tourPreview {
		term.Markdown(result.TourMarkdown)
	}

	term.SuccessMessage("Tour generation", []string{
		"Read " + filepath.Base(path) + " to get oriented",
		"Share it with new contributors",
		"Run 'repodoc scan' for a full health check",
	})
	return nil
}
