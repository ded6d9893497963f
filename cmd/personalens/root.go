package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"personalens/pkg/config"
	"personalens/pkg/errors"
	"personalens/pkg/logger"
	"personalens/pkg/ui"
)

var (
	// Version information
	version   = "0.3.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noColor    bool
	quiet      bool
	verbose    bool

	// cfg is loaded before every command that does not opt out
	cfg *config.Config
)

// skipConfig marks commands that run without loading the configuration.
const skipConfig = "skip-config"

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "personalens",
	Short: "Extract posts and profiles from accessibility snapshots of X timelines",
	Long: `personalens reads accessibility snapshots of X/Twitter account pages
(the indented "- link ... [eN]:" trees produced by browser automation tools)
and turns them into structured posts, profiles and posting patterns.

Features:
  - Anchor based extraction with a fallback for layouts without permalinks
  - Posting time histograms and top post ranking
  - Markdown and HTML account reports
  - Parallel batch extraction with checkpoint resume
  - SQLite archive of every run
  - MCP server exposing the extractor as tools`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if noColor {
			ui.SetColor(false)
		}
		logger.Version = version

		if cmd.Annotations[skipConfig] == "true" {
			return nil
		}
		return loadConfig(cmd)
	},
}

// Execute runs the root command and exits with a status derived from the
// error type.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		os.Exit(errors.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ~/.config/personalens/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logs and per-snapshot progress")

	rootCmd.SetVersionTemplate(`personalens {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig layers defaults, the config file, the environment and the flags
// the command actually set, then initializes logging.
func loadConfig(cmd *cobra.Command) error {
	flags := make(map[string]interface{})
	cmd.Flags().Visit(func(f *pflag.Flag) {
		switch f.Value.Type() {
		case "bool":
			v, _ := cmd.Flags().GetBool(f.Name)
			flags[f.Name] = v
		case "int":
			v, _ := cmd.Flags().GetInt(f.Name)
			flags[f.Name] = v
		case "string":
			flags[f.Name] = f.Value.String()
		}
	})

	switch {
	case quiet:
		flags["log-level"] = "error"
	case verbose:
		flags["log-level"] = "debug"
	}

	loaded, err := config.Load(configFile, flags)
	if err != nil {
		return errors.Wrap(errors.ErrorTypeConfig, err, "failed to load configuration")
	}
	if loaded.Logging.NoColor {
		ui.SetColor(false)
	}

	if err := logger.Initialize(&loaded.Logging); err != nil {
		return errors.Wrap(errors.ErrorTypeConfig, err, "failed to initialize logger")
	}
	logger.WithField("command", cmd.CommandPath()).Debug("personalens starting")

	cfg = loaded
	return nil
}
