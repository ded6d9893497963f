package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"personalens/pkg/archive"
	"personalens/pkg/errors"
	"personalens/pkg/extractor"
	"personalens/pkg/logger"
	"personalens/pkg/metadata"
	"personalens/pkg/models"
	"personalens/pkg/report"
	"personalens/pkg/retry"
	"personalens/pkg/storage"
	"personalens/pkg/ui"
)

var (
	// Shared snapshot command flags
	handle    string
	ownOnly   bool
	format    string
	outputDir string

	// Extract command flags
	saveResult  bool
	overwrite   bool
	archiveRun  bool
	archivePath string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Extract posts from a snapshot",
	Long: `Extract posts, the profile header and extraction statistics from an
accessibility snapshot. The snapshot is read from the named file, or from stdin
when the file is "-" or omitted. Multi-page snapshots joined with
"--- PAGE BREAK ---" lines are handled as one timeline.`,
	Example: `  # Print posts as JSON
  personalens extract timeline.txt --handle karpathy

  # Only the account's own posts, as a table
  personalens extract timeline.txt --handle karpathy --own-only --format table

  # Save the result with a metadata sidecar and archive the run
  cat timeline.txt | personalens extract --save --archive`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	addSnapshotFlags(extractCmd)
	extractCmd.Flags().StringVarP(&format, "format", "f", "", "output format: json, yaml or table")
	extractCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for saved results")
	extractCmd.Flags().BoolVar(&saveResult, "save", false, "save the result and its metadata to the output directory")
	extractCmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing result")
	extractCmd.Flags().BoolVar(&archiveRun, "archive", false, "record the run in the archive database")
	extractCmd.Flags().StringVar(&archivePath, "archive-path", "", "archive database path")
}

// addSnapshotFlags registers the flags shared by commands reading a snapshot.
func addSnapshotFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&handle, "handle", "", "account handle, with or without @")
	cmd.Flags().BoolVar(&ownOnly, "own-only", false, "drop posts authored by other accounts")
}

// extractSnapshot reads and extracts the snapshot named by args, applying the
// configured handle and own-only filter.
func extractSnapshot(args []string) (ext *models.Extraction, raw, source string, elapsed time.Duration, err error) {
	raw, source, err = readSnapshot(args)
	if err != nil {
		return nil, "", source, 0, err
	}

	start := time.Now()
	ext = extractor.Extract(raw, cfg.Extraction.Handle)
	elapsed = time.Since(start)

	if cfg.Extraction.OwnOnly {
		ext.Records = report.FilterOwn(ext.Records, ext.Profile.Handle)
	}

	logger.LogExtraction(logger.GetLogger(), logger.ExtractionStats{
		Source:            source,
		Strategy:          string(ext.Strategy),
		Records:           len(ext.Records),
		ContentAnchors:    ext.ContentAnchors,
		NavigationAnchors: ext.NavigationAnchors,
		Duplicates:        ext.Duplicates,
		Duration:          elapsed,
	})
	return ext, raw, source, elapsed, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	ext, raw, source, elapsed, err := extractSnapshot(args)
	if err != nil {
		return err
	}
	meta := metadata.FromExtraction(source, raw, cfg.Extraction.Handle, ext, elapsed)

	if saveResult {
		path, err := saveExtraction(storage.ResultName(source), ext, meta)
		if err != nil {
			return err
		}
		if !quiet {
			ui.PrintSuccess("Saved %d posts to %s", len(ext.Records), path)
		}
	}

	if cfg.Archive.Enabled {
		if err := archiveExtraction(cmd.Context(), meta, ext); err != nil {
			return err
		}
		if !quiet {
			ui.PrintInfo("Archived run", meta.RunID)
		}
	}

	return printExtraction(os.Stdout, cfg.Output.Format, ext)
}

// saveExtraction writes ext and its metadata sidecar to the output directory.
func saveExtraction(name string, ext *models.Extraction, meta *metadata.RunMetadata) (string, error) {
	store, err := storage.NewManager(cfg.Output.Directory, cfg.Output.Format)
	if err != nil {
		return "", err
	}
	if store.IsSaved(name) && !cfg.Output.Overwrite {
		return "", errors.New(errors.ErrorTypeInput, "result %s already exists; use --overwrite to replace it", store.PathFor(name))
	}

	path, err := store.Save(name, ext)
	if err != nil {
		return "", err
	}
	if err := meta.Save(path); err != nil {
		return "", errors.Wrap(errors.ErrorTypeStorage, err, "failed to save metadata")
	}
	return path, nil
}

// archiveExtraction records a run in the archive database.
func archiveExtraction(ctx context.Context, meta *metadata.RunMetadata, ext *models.Extraction) error {
	a, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		return err
	}
	defer a.Close()

	return retry.Do(ctx, func() error {
		return a.SaveRun(ctx, meta, ext)
	}, retryConfig())
}

// retryConfig builds the retry policy from the batch settings.
func retryConfig() *retry.Config {
	rc := retry.DefaultConfig()
	if cfg.Batch.RetryAttempts > 0 {
		rc.MaxAttempts = cfg.Batch.RetryAttempts
	}
	rc.Logger = logger.GetLogger()
	return rc
}
