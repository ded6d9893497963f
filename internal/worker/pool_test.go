package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "personalens/pkg/errors"
	"personalens/pkg/logger"
	"personalens/pkg/metadata"
	"personalens/pkg/models"
	"personalens/pkg/retry"
	"personalens/pkg/snapshot"
)

var timeline = strings.Join([]string{
	`- text: "Just shipped a new feature"`,
	`- text: "3  12  847"`,
	`- link "status" [e1]:`,
	`  - /url: /adev/status/1750000000000000001#m`,
	`- text: "Second post"`,
	`- text: "1  5  210"`,
	`- link "status" [e2]:`,
	`  - /url: /adev/status/1750000000000000002#m`,
}, "\n")

// MockStore is an in-memory ResultStore
type MockStore struct {
	mu        sync.Mutex
	dir       string
	saved     map[string]any
	failTimes int
	calls     int
}

func NewMockStore(t *testing.T) *MockStore {
	return &MockStore{dir: t.TempDir(), saved: make(map[string]any)}
}

func (m *MockStore) IsSaved(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.saved[name]
	return ok
}

func (m *MockStore) Save(name string, v any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failTimes {
		return "", apperrors.New(apperrors.ErrorTypeStorage, "disk busy")
	}
	m.saved[name] = v
	return filepath.Join(m.dir, name+".json"), nil
}

// MockArchive records saved runs
type MockArchive struct {
	mu   sync.Mutex
	runs []string
	err  error
}

func (m *MockArchive) SaveRun(_ context.Context, meta *metadata.RunMetadata, _ *models.Extraction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, meta.Source)
	return nil
}

// MockCheckpoint is an in-memory Checkpoint
type MockCheckpoint struct {
	mu        sync.Mutex
	completed map[string]string
	failed    map[string]string
}

func NewMockCheckpoint() *MockCheckpoint {
	return &MockCheckpoint{completed: map[string]string{}, failed: map[string]string{}}
}

func (m *MockCheckpoint) IsCompleted(digest string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.completed[digest]
	return ok
}

func (m *MockCheckpoint) Completed(_, digest, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed[digest] = name
	return nil
}

func (m *MockCheckpoint) Failed(path string, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[path] = cause.Error()
	return nil
}

// MockObserver counts outcomes
type MockObserver struct {
	mu                   sync.Mutex
	ok, failed, skipped int
}

func (m *MockObserver) ObserveExtraction(*models.Extraction, time.Duration) {
	m.mu.Lock()
	m.ok++
	m.mu.Unlock()
}

func (m *MockObserver) ObserveFailure() {
	m.mu.Lock()
	m.failed++
	m.mu.Unlock()
}

func (m *MockObserver) ObserveSkip() {
	m.mu.Lock()
	m.skipped++
	m.mu.Unlock()
}

func fastRetry() *retry.Config {
	return &retry.Config{
		MaxAttempts: 3,
		Backoff:     &retry.ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     retry.DefaultRetryIf,
	}
}

// writeSnapshots creates n snapshot files with distinct content
func writeSnapshots(t *testing.T, n int) []Job {
	t.Helper()
	dir := t.TempDir()
	jobs := make([]Job, n)
	for i := range jobs {
		path := filepath.Join(dir, fmt.Sprintf("snap%02d.txt", i))
		content := timeline + fmt.Sprintf("\n- text: \"page %d\"", i)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		jobs[i] = Job{Path: path, Name: fmt.Sprintf("snap%02d", i)}
	}
	return jobs
}

func TestRunExtractsInJobOrder(t *testing.T) {
	jobs := writeSnapshots(t, 12)
	store := NewMockStore(t)
	archive := &MockArchive{}
	cp := NewMockCheckpoint()
	obs := &MockObserver{}
	tl := logger.NewTestLogger()

	results := Run(context.Background(), jobs, 4, Options{
		Handle:     "adev",
		Store:      store,
		Archive:    archive,
		Checkpoint: cp,
		Observer:   obs,
		Retry:      fastRetry(),
	}, tl)

	require.Len(t, results, 12)
	for i, r := range results {
		require.NoError(t, r.Error)
		assert.Equal(t, i, r.Job.Index)
		assert.Equal(t, jobs[i].Path, r.Job.Path)
		assert.False(t, r.Skipped)
		require.NotNil(t, r.Extraction)
		assert.Len(t, r.Extraction.Records, 2)
		assert.Equal(t, models.StrategyFallback, r.Extraction.Strategy)
		assert.Equal(t, "adev", r.Metadata.Handle)
	}

	assert.Len(t, store.saved, 12)
	assert.True(t, metadata.MetadataExists(results[0].OutputPath))
	assert.Len(t, archive.runs, 12)
	assert.Len(t, cp.completed, 12)
	assert.Equal(t, 12, obs.ok)
	assert.Len(t, tl.GetMessagesByLevel("INFO"), 12)
}

func TestRunSkipsCompletedSnapshots(t *testing.T) {
	jobs := writeSnapshots(t, 3)
	cp := NewMockCheckpoint()
	raw, err := os.ReadFile(jobs[1].Path)
	require.NoError(t, err)
	cp.completed[snapshot.Digest(string(raw))] = "snap01"

	store := NewMockStore(t)
	store.saved["snap02"] = struct{}{}
	obs := &MockObserver{}

	results := Run(context.Background(), jobs, 2, Options{
		Store: store, Checkpoint: cp, Observer: obs, Retry: fastRetry(),
	}, logger.NewTestLogger())

	assert.False(t, results[0].Skipped)
	assert.True(t, results[1].Skipped, "checkpoint digest match")
	assert.True(t, results[2].Skipped, "existing result file")
	assert.Nil(t, results[1].Extraction)
	assert.Equal(t, 2, obs.skipped)
	assert.Equal(t, 1, obs.ok)
}

func TestRunOverwriteIgnoresPreviousResults(t *testing.T) {
	jobs := writeSnapshots(t, 1)
	store := NewMockStore(t)
	store.saved["snap00"] = struct{}{}

	results := Run(context.Background(), jobs, 1, Options{
		Store: store, Overwrite: true, Retry: fastRetry(),
	}, logger.NewTestLogger())

	assert.False(t, results[0].Skipped)
	assert.NotNil(t, results[0].Extraction)
}

func TestRunRecordsReadFailures(t *testing.T) {
	jobs := writeSnapshots(t, 2)
	jobs[0].Path = filepath.Join(t.TempDir(), "missing.txt")
	cp := NewMockCheckpoint()
	obs := &MockObserver{}
	tl := logger.NewTestLogger()

	results := Run(context.Background(), jobs, 2, Options{Checkpoint: cp, Observer: obs, Retry: fastRetry()}, tl)

	require.Error(t, results[0].Error)
	assert.Equal(t, apperrors.ErrorTypeInput, apperrors.TypeOf(results[0].Error))
	assert.NoError(t, results[1].Error)
	assert.Contains(t, cp.failed, jobs[0].Path)
	assert.Equal(t, 1, obs.failed)
	assert.True(t, tl.HasError())
}

func TestRunRetriesTransientStoreErrors(t *testing.T) {
	jobs := writeSnapshots(t, 1)
	store := NewMockStore(t)
	store.failTimes = 2

	results := Run(context.Background(), jobs, 1, Options{Store: store, Retry: fastRetry()}, logger.NewTestLogger())

	require.NoError(t, results[0].Error)
	assert.Equal(t, 3, store.calls)
}

func TestRunArchiveFailure(t *testing.T) {
	jobs := writeSnapshots(t, 1)
	archive := &MockArchive{err: errors.New("no such table")}

	results := Run(context.Background(), jobs, 1, Options{Archive: archive, Retry: fastRetry()}, logger.NewTestLogger())

	assert.ErrorContains(t, results[0].Error, "archive failed")
}

func TestRunCancelled(t *testing.T) {
	jobs := writeSnapshots(t, 20)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := Run(ctx, jobs, 2, Options{Retry: fastRetry()}, logger.NewTestLogger())

	require.Len(t, results, 20)
	for i, r := range results {
		assert.Equal(t, i, r.Job.Index)
		if r.Extraction == nil {
			assert.ErrorIs(t, r.Error, context.Canceled)
		}
	}
}

func TestPoolSubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1, Options{}, logger.NewTestLogger())

	// Fill the queue so Submit has to wait.
	for i := 0; i < 2; i++ {
		require.NoError(t, pool.Submit(Job{Path: "x"}))
	}
	assert.Len(t, pool.jobQueue, 2)

	cancel()
	assert.ErrorContains(t, pool.Submit(Job{Path: "y"}), "shutting down")

	pool.Start()
	pool.Stop()
}
