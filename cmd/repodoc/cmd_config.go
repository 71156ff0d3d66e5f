package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"repodoctor/cmd/repodoc/ui"
	"repodoctor/internal/config"
	"repodoctor/internal/doctor"
)

// configCmd manages .repodoc/config.yaml
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage RepoDoctor configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .repodoc/config.yaml",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	term := ui.New(stdout, verbose)
	path := config.Path(repoDir)
	if _, err := os.Stat(path); err == nil {
		term.PrintWarning("Configuration already exists: " + path)
		return nil
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return doctor.IO("Failed to write configuration", err)
	}
	term.PrintSuccess("Wrote default configuration to: " + path)
	return nil
}

// runConfigShow prints the configuration after file, .env and environment
// overrides, with the secret key masked.
func runConfigShow(cmd *cobra.Command, args []string) error {
	shown := *cfg
	if shown.Publish.SecretKey != "" {
		shown.Publish.SecretKey = "********"
	}
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	fmt.Fprint(stdout, string(data))
	return nil
}
