package worker

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	apperrors "personalens/pkg/errors"
	"personalens/pkg/extractor"
	"personalens/pkg/logger"
	"personalens/pkg/metadata"
	"personalens/pkg/models"
	"personalens/pkg/retry"
	"personalens/pkg/snapshot"
)

// Job is a single snapshot file to extract
type Job struct {
	Index int
	Path  string
	Name  string
}

// Result represents the result of an extraction job
type Result struct {
	Job        Job
	Extraction *models.Extraction
	Metadata   *metadata.RunMetadata
	OutputPath string
	Skipped    bool
	Error      error
	Duration   time.Duration
}

// ResultStore persists extraction results
type ResultStore interface {
	IsSaved(name string) bool
	Save(name string, v any) (string, error)
}

// RunArchive records extraction runs
type RunArchive interface {
	SaveRun(ctx context.Context, meta *metadata.RunMetadata, ext *models.Extraction) error
}

// Checkpoint remembers which snapshots earlier runs completed
type Checkpoint interface {
	IsCompleted(digest string) bool
	Completed(path, digest, name string) error
	Failed(path string, cause error) error
}

// Observer receives per-snapshot outcomes, e.g. for metrics
type Observer interface {
	ObserveExtraction(ext *models.Extraction, duration time.Duration)
	ObserveFailure()
	ObserveSkip()
}

// Options wires the pool to its collaborators. Nil collaborators are skipped.
type Options struct {
	Handle     string
	Overwrite  bool
	Store      ResultStore
	Archive    RunArchive
	Checkpoint Checkpoint
	Observer   Observer
	Retry      *retry.Config
}

// Pool runs extraction jobs on a fixed number of workers
type Pool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	opts        Options
	logger      logger.Logger
}

// NewPool creates a new worker pool bound to ctx
func NewPool(ctx context.Context, numWorkers int, opts Options, log logger.Logger) *Pool {
	ctx, cancel := context.WithCancel(ctx)

	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	if opts.Retry == nil {
		opts.Retry = retry.DefaultConfig()
		opts.Retry.Logger = log
	}

	return &Pool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		opts:        opts,
		logger:      log,
	}
}

// Start initializes and starts all workers
func (p *Pool) Start() {
	p.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop closes the job queue, waits for workers to drain it and closes the
// result channel
func (p *Pool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.cancel()

	p.logger.Debug("Worker pool stopped")
}

// Submit adds a job to the queue
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", p.ctx.Err())
	}
}

// Results returns the result channel
func (p *Pool) Results() <-chan Result {
	return p.resultQueue
}

// Run extracts every job and returns the results in job order. Jobs not
// started before ctx is cancelled are reported with the context error.
func Run(ctx context.Context, jobs []Job, numWorkers int, opts Options, log logger.Logger) []Result {
	pool := NewPool(ctx, numWorkers, opts, log)
	pool.Start()

	go func() {
		defer pool.Stop()
		for i, job := range jobs {
			job.Index = i
			if err := pool.Submit(job); err != nil {
				return
			}
		}
	}()

	results := make([]Result, len(jobs))
	seen := make([]bool, len(jobs))
	for r := range pool.Results() {
		results[r.Job.Index] = r
		seen[r.Job.Index] = true
	}

	for i, ok := range seen {
		if !ok {
			job := jobs[i]
			job.Index = i
			results[i] = Result{Job: job, Error: fmt.Errorf("not processed: %w", context.Cause(ctx))}
		}
	}
	return results
}

// worker is the main worker routine
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		// Drain without processing once cancelled so Stop can return.
		if p.ctx.Err() != nil {
			continue
		}

		result := p.processJob(job, id)

		select {
		case p.resultQueue <- result:
		case <-p.ctx.Done():
		}
	}
}

// processJob extracts a single snapshot file
func (p *Pool) processJob(job Job, workerID int) Result {
	start := time.Now()
	result := Result{Job: job}
	log := p.logger.WithFields(map[string]interface{}{
		"worker_id": workerID,
		"source":    job.Path,
	})

	data, err := os.ReadFile(job.Path)
	if err != nil {
		return p.fail(result, start, apperrors.Wrap(apperrors.ErrorTypeInput, err, "failed to read snapshot"), log)
	}
	raw := string(data)
	digest := snapshot.Digest(raw)

	if !p.opts.Overwrite && p.alreadyDone(job, digest) {
		log.Debug("Snapshot already extracted")
		result.Skipped = true
		result.Duration = time.Since(start)
		if p.opts.Observer != nil {
			p.opts.Observer.ObserveSkip()
		}
		return result
	}

	began := time.Now()
	ext := extractor.Extract(raw, p.opts.Handle)
	elapsed := time.Since(began)

	result.Extraction = ext
	result.Metadata = metadata.FromExtraction(job.Path, raw, p.opts.Handle, ext, elapsed)

	if p.opts.Store != nil {
		path, err := retry.DoWithResult(p.ctx, func() (string, error) {
			return p.opts.Store.Save(job.Name, ext)
		}, p.opts.Retry)
		if err != nil {
			return p.fail(result, start, fmt.Errorf("save failed: %w", err), log)
		}
		result.OutputPath = path

		if err := retry.Do(p.ctx, func() error {
			return result.Metadata.Save(path)
		}, p.opts.Retry); err != nil {
			return p.fail(result, start, fmt.Errorf("metadata save failed: %w", err), log)
		}
	}

	if p.opts.Archive != nil {
		if err := retry.Do(p.ctx, func() error {
			return p.opts.Archive.SaveRun(p.ctx, result.Metadata, ext)
		}, p.opts.Retry); err != nil {
			return p.fail(result, start, fmt.Errorf("archive failed: %w", err), log)
		}
	}

	if p.opts.Checkpoint != nil {
		if err := p.opts.Checkpoint.Completed(job.Path, digest, job.Name); err != nil {
			log.WithError(err).Warn("Failed to update checkpoint")
		}
	}
	if p.opts.Observer != nil {
		p.opts.Observer.ObserveExtraction(ext, elapsed)
	}

	result.Duration = time.Since(start)
	logger.LogExtraction(log, logger.ExtractionStats{
		Source:            job.Path,
		Strategy:          string(ext.Strategy),
		Records:           len(ext.Records),
		ContentAnchors:    ext.ContentAnchors,
		NavigationAnchors: ext.NavigationAnchors,
		Duplicates:        ext.Duplicates,
		Duration:          elapsed,
	})

	return result
}

func (p *Pool) alreadyDone(job Job, digest string) bool {
	if p.opts.Checkpoint != nil && p.opts.Checkpoint.IsCompleted(digest) {
		return true
	}
	return p.opts.Store != nil && p.opts.Store.IsSaved(job.Name)
}

func (p *Pool) fail(result Result, start time.Time, err error, log logger.Logger) Result {
	result.Error = err
	result.Duration = time.Since(start)

	log.WithError(err).Error("Extraction failed")
	if p.opts.Checkpoint != nil {
		if cpErr := p.opts.Checkpoint.Failed(result.Job.Path, err); cpErr != nil {
			log.WithError(cpErr).Warn("Failed to update checkpoint")
		}
	}
	if p.opts.Observer != nil {
		p.opts.Observer.ObserveFailure()
	}
	return result
}
