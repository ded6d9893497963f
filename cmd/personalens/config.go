package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"personalens/pkg/config"
	"personalens/pkg/errors"
	"personalens/pkg/ui"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage personalens configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (PERSONALENS_*, also read from .env)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file with the default values",
	Long: `Write a configuration file holding every option at its default value.

The file is written to --config, or to ~/.config/personalens/config.yaml.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = config.DefaultPath()
		}

		if _, err := os.Stat(path); err == nil && !forceInit {
			return errors.New(errors.ErrorTypeInput, "configuration file %s already exists; use --force to replace it", path)
		}

		if err := config.DefaultConfig().Save(path); err != nil {
			return errors.Wrap(errors.ErrorTypeConfig, err, "failed to write configuration")
		}

		ui.PrintSuccess("Configuration file created: %s", path)
		return nil
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show the configuration after merging defaults, the config file, the
environment and flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(errors.ErrorTypeRender, err, "failed to format configuration")
		}

		fmt.Print(string(data))

		if configFile != "" {
			ui.PrintInfo("Config file", configFile)
		}
		ui.PrintInfo("Data directory", config.DataDirectory())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd)

	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "replace an existing file")
}
