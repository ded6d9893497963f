package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"personalens/pkg/archive"
	"personalens/pkg/errors"
	"personalens/pkg/ui"
)

var (
	// Archive command flags
	listHandle string
	listLimit  int
)

// archiveCmd represents the archive command
var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Inspect archived extraction runs",
	Long: `Inspect the SQLite archive of extraction runs. Runs are archived by
'extract --archive' and 'batch --archive', or for every run when
archive.enabled is set in the configuration.`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.ListRuns(cmd.Context(), listHandle, listLimit)
		if err != nil {
			return err
		}

		if strings.ToLower(cfg.Output.Format) != "table" {
			return printValue(os.Stdout, cfg.Output.Format, runs)
		}
		if len(runs) == 0 {
			fmt.Println("No archived runs.")
			return nil
		}
		fmt.Println(runsTable(runs))
		return nil
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print an archived run with its posts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		run, ext, err := a.GetRun(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if strings.ToLower(cfg.Output.Format) == "table" {
			fmt.Println(runsTable([]archive.Run{*run}))
			return printExtraction(os.Stdout, "table", ext)
		}
		return printValue(os.Stdout, cfg.Output.Format, map[string]any{
			"run":        run,
			"extraction": ext,
		})
	},
}

var archiveDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteRun(cmd.Context(), args[0]); err != nil {
			return err
		}
		ui.PrintSuccess("Deleted run %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveListCmd, archiveShowCmd, archiveDeleteCmd)

	archiveCmd.PersistentFlags().StringVar(&archivePath, "archive-path", "", "archive database path")
	archiveCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "output format: json, yaml or table")
	archiveListCmd.Flags().StringVar(&listHandle, "handle", "", "only runs for this account")
	archiveListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "maximum runs to list (0 for all)")
}

// openArchive opens the configured archive. The archive subcommands read it
// whether or not archiving new runs is enabled.
func openArchive() (*archive.Archive, error) {
	if cfg.Archive.Path == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "archive path is not configured")
	}
	if _, err := os.Stat(cfg.Archive.Path); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrorTypeInput, "no archive at %s", cfg.Archive.Path)
	}
	return archive.Open(cfg.Archive.Path)
}
