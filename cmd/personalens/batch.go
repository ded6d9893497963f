package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"personalens/internal/worker"
	"personalens/pkg/archive"
	"personalens/pkg/checkpoint"
	"personalens/pkg/config"
	"personalens/pkg/errors"
	"personalens/pkg/logger"
	"personalens/pkg/metadata"
	"personalens/pkg/metrics"
	"personalens/pkg/storage"
	"personalens/pkg/ui"
)

var (
	// Batch command flags
	workers         int
	pattern         string
	resumeBatch     bool
	forceRestart    bool
	notify          bool
	metricsTextfile string
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir|glob>",
	Short: "Extract many snapshots in parallel",
	Long: `Extract every snapshot in a directory (matching --pattern) or matching a
glob. Each result is saved to the output directory with a metadata sidecar.

Progress is checkpointed per snapshot content, so an interrupted batch can be
resumed with --resume; snapshots whose content was already extracted are
skipped even if they were renamed.`,
	Example: `  # Extract all .txt snapshots with 8 workers
  personalens batch ./snapshots --workers 8

  # Resume an interrupted batch
  personalens batch ./snapshots --resume

  # Start over, archive every run and export metrics
  personalens batch './snapshots/*.txt' --force-restart --archive --metrics-textfile /var/lib/node_exporter/personalens.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&handle, "handle", "", "account handle applied to every snapshot")
	batchCmd.Flags().StringVarP(&format, "format", "f", "", "result format: json or yaml")
	batchCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for saved results")
	batchCmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of parallel workers")
	batchCmd.Flags().StringVar(&pattern, "pattern", "", "file pattern when the argument is a directory (default *.txt)")
	batchCmd.Flags().BoolVar(&overwrite, "overwrite", false, "extract snapshots that already have a result")
	batchCmd.Flags().BoolVar(&resumeBatch, "resume", false, "resume from the last checkpoint")
	batchCmd.Flags().BoolVar(&forceRestart, "force-restart", false, "discard an existing checkpoint and start fresh")
	batchCmd.Flags().BoolVar(&archiveRun, "archive", false, "record every run in the archive database")
	batchCmd.Flags().StringVar(&archivePath, "archive-path", "", "archive database path")
	batchCmd.Flags().StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file when done")
	batchCmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when done")
}

// collectSnapshots expands the batch argument into a sorted file list.
func collectSnapshots(arg, pattern string) ([]string, error) {
	glob := arg
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		glob = filepath.Join(arg, pattern)
	}

	matches, err := filepath.Glob(glob)
	if err != nil {
		return nil, errors.Wrap(errors.ErrorTypeInput, err, "invalid pattern %s", glob)
	}

	files := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	slices.Sort(files)

	if len(files) == 0 {
		return nil, errors.New(errors.ErrorTypeInput, "no snapshots match %s", glob)
	}
	return files, nil
}

// openCheckpoint applies the resume rules: --force-restart discards an
// existing checkpoint, --resume continues it, and an existing checkpoint
// without either flag is an error.
func openCheckpoint(batch string, queued int) (*checkpoint.Manager, *checkpoint.Checkpoint, error) {
	mgr, err := checkpoint.NewManager(config.DataDirectory(), batch)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrorTypeStorage, err, "failed to open checkpoints")
	}

	switch {
	case forceRestart && mgr.Exists():
		if err := mgr.BackupCheckpoint(); err != nil {
			logger.WithError(err).Warn("Failed to back up checkpoint")
		}
		if err := mgr.Delete(); err != nil {
			return nil, nil, errors.Wrap(errors.ErrorTypeStorage, err, "failed to discard checkpoint")
		}
		ui.PrintWarning("Discarded previous checkpoint")

	case resumeBatch && mgr.Exists():
		cp, err := mgr.Load()
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrorTypeStorage, err, "failed to load checkpoint")
		}
		cp.TotalQueued = queued
		ui.PrintInfo("Resuming", fmt.Sprintf("%d snapshots already extracted", cp.TotalCompleted))
		return mgr, cp, nil

	case mgr.Exists():
		if info, err := mgr.GetCheckpointInfo(); err == nil && info != nil {
			ui.PrintWarning("Found checkpoint from %v ago with %v snapshots extracted",
				info["age"].(time.Duration).Round(time.Second), info["total_completed"])
		}
		return nil, nil, errors.New(errors.ErrorTypeInput, "checkpoint exists - use --resume to continue or --force-restart to start fresh")
	}

	cp, err := mgr.Create(batch, queued)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrorTypeStorage, err, "failed to create checkpoint")
	}
	return mgr, cp, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	batch := args[0]
	if abs, err := filepath.Abs(batch); err == nil {
		batch = abs
	}

	files, err := collectSnapshots(args[0], cfg.Batch.Pattern)
	if err != nil {
		return err
	}

	store, err := storage.NewManager(cfg.Output.Directory, cfg.Output.Format)
	if err != nil {
		return err
	}

	cpMgr, cp, err := openCheckpoint(batch, len(files))
	if err != nil {
		return err
	}

	m := metrics.New()
	opts := worker.Options{
		Handle:     cfg.Extraction.Handle,
		Overwrite:  cfg.Output.Overwrite,
		Store:      store,
		Checkpoint: cpMgr.Track(cp),
		Observer:   m,
		Retry:      retryConfig(),
	}

	if cfg.Archive.Enabled {
		a, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			return err
		}
		defer a.Close()
		opts.Archive = a
	}

	if !quiet {
		ui.PrintInfo("Snapshots", fmt.Sprint(len(files)))
		ui.PrintInfo("Output", store.GetOutputDir())
	}

	progress := ui.NewBatchProgress(os.Stderr, len(files), verbose, quiet)
	pool := worker.NewPool(ctx, cfg.Batch.Workers, opts, logger.GetLogger())
	pool.Start()

	go func() {
		defer pool.Stop()
		for i, path := range files {
			job := worker.Job{Index: i, Path: path, Name: storage.ResultName(path)}
			if err := pool.Submit(job); err != nil {
				return
			}
		}
	}()

	for r := range pool.Results() {
		progress.Start(r.Job.Name)
		switch {
		case r.Error != nil:
			progress.Fail(r.Job.Name, r.Error)
		case r.Skipped:
			progress.Skip(r.Job.Name)
		default:
			progress.Complete(r.Job.Name, len(r.Extraction.Records))
		}
	}
	progress.Finish()

	done, skipped, failed := progress.Counts()
	logger.LogBatchProgress(logger.GetLogger(), done+skipped, failed, len(files))

	if removed, err := metadata.CleanOrphanedMetadata(store.GetOutputDir()); err != nil {
		logger.WithError(err).Warn("Failed to clean orphaned metadata")
	} else if removed > 0 {
		logger.WithField("removed", removed).Info("Removed orphaned metadata")
	}

	m.MarkRun(time.Now())
	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logger.WithError(err).Warn("Failed to write metrics textfile")
		}
	}

	unfinished := len(files) - done - skipped - failed
	batchErr := batchOutcome(ctx, failed, unfinished)

	if batchErr == nil {
		if err := cpMgr.Delete(); err != nil {
			logger.WithError(err).Warn("Failed to remove checkpoint")
		}
	} else if !quiet {
		ui.PrintWarning("Checkpoint kept at %s; rerun with --resume", cpMgr.Path())
	}

	if notify {
		notifier := ui.NewNotifier()
		if batchErr != nil {
			notifier.SendError("personalens batch", batchErr.Error())
		} else {
			notifier.SendSuccess("personalens batch", fmt.Sprintf("%d snapshots, %d posts", done, progress.Records()))
		}
	}

	return batchErr
}

// batchOutcome turns the final counts into the command error.
func batchOutcome(ctx context.Context, failed, unfinished int) error {
	if ctx.Err() != nil && unfinished > 0 {
		return fmt.Errorf("batch interrupted with %d snapshots left: %w", unfinished, context.Cause(ctx))
	}
	if failed > 0 {
		return fmt.Errorf("%d snapshots failed", failed)
	}
	return nil
}
