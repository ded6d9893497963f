package main

import (
	"strings"

	"github.com/spf13/cobra"

	"personalens/internal/mcp"
	"personalens/pkg/archive"
	"personalens/pkg/logger"
	"personalens/pkg/ui"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extraction tools over MCP on stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing:

  snapshot_extract, snapshot_profile, snapshot_patterns, snapshot_report,
  and archive_runs when the archive is enabled.

Logs go to stderr. Tools can be switched off with mcp.disabled_tools in the
configuration file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if unknown := mcp.ValidateDisabledTools(cfg.MCP.DisabledTools); len(unknown) > 0 {
			ui.PrintWarning("Unknown tools in mcp.disabled_tools: %s", strings.Join(unknown, ", "))
		}

		var runs mcp.RunStore
		if cfg.Archive.Enabled {
			a, err := archive.Open(cfg.Archive.Path)
			if err != nil {
				return err
			}
			defer a.Close()
			runs = a
		}

		logger.WithField("archive", cfg.Archive.Enabled).Info("MCP server listening on stdio")
		return mcp.Run(runs, cfg, version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&archivePath, "archive-path", "", "archive database path")
}
