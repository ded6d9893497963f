package checkpoint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"personalens/pkg/logger"
	"personalens/pkg/snapshot"
)

// Checkpoint represents the state of a batch extraction run
type Checkpoint struct {
	Batch          string            `json:"batch"`
	Completed      map[string]string `json:"completed"` // snapshot digest -> result name
	Failed         map[string]string `json:"failed"`    // snapshot path -> last error
	TotalQueued    int               `json:"total_queued"`
	TotalCompleted int               `json:"total_completed"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
	Version        int               `json:"version"`
}

// IsCompleted checks if a snapshot with the given digest was already extracted
func (checkpoint *Checkpoint) IsCompleted(digest string) bool {
	_, exists := checkpoint.Completed[digest]
	return exists
}

// Manager handles checkpoint operations. Record methods are safe for
// concurrent use by batch workers.
type Manager struct {
	checkpointPath string
	logger         logger.Logger
	mu             sync.Mutex
}

// NewManager creates a checkpoint manager for the batch identified by
// batch (a directory or glob). Checkpoints live under dataDir/checkpoints.
func NewManager(dataDir, batch string) (*Manager, error) {
	checkpointsDir := filepath.Join(dataDir, "checkpoints")
	if err := os.MkdirAll(checkpointsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoints directory: %w", err)
	}

	key := snapshot.Digest(batch)
	checkpointPath := filepath.Join(checkpointsDir, fmt.Sprintf("%s.checkpoint.json", key))

	return &Manager{
		checkpointPath: checkpointPath,
		logger:         logger.GetLogger(),
	}, nil
}

// Path returns the checkpoint file location
func (m *Manager) Path() string {
	return m.checkpointPath
}

// Create creates a new checkpoint
func (m *Manager) Create(batch string, queued int) (*Checkpoint, error) {
	checkpoint := &Checkpoint{
		Batch:       batch,
		Completed:   make(map[string]string),
		Failed:      make(map[string]string),
		TotalQueued: queued,
		CreatedAt:   time.Now(),
		Version:     1,
	}

	if err := m.Save(checkpoint); err != nil {
		return nil, fmt.Errorf("failed to save initial checkpoint: %w", err)
	}

	m.logger.InfoWithFields("Checkpoint created", map[string]interface{}{
		"batch": batch,
		"path":  m.checkpointPath,
	})

	return checkpoint, nil
}

// Load loads an existing checkpoint. It returns nil, nil when none exists.
func (m *Manager) Load() (*Checkpoint, error) {
	file, err := os.Open(m.checkpointPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open checkpoint file: %w", err)
	}
	defer file.Close()

	var checkpoint Checkpoint
	if err := json.NewDecoder(file).Decode(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint: %w", err)
	}
	if checkpoint.Completed == nil {
		checkpoint.Completed = make(map[string]string)
	}
	if checkpoint.Failed == nil {
		checkpoint.Failed = make(map[string]string)
	}

	m.logger.InfoWithFields("Checkpoint loaded", map[string]interface{}{
		"batch":           checkpoint.Batch,
		"total_completed": checkpoint.TotalCompleted,
		"failed":          len(checkpoint.Failed),
		"updated_at":      checkpoint.UpdatedAt,
	})

	return &checkpoint, nil
}

// Save saves the checkpoint to disk atomically
func (m *Manager) Save(checkpoint *Checkpoint) error {
	checkpoint.UpdatedAt = time.Now()

	tempPath := m.checkpointPath + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(checkpoint); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	if err := os.Rename(tempPath, m.checkpointPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	m.logger.DebugWithFields("Checkpoint saved", map[string]interface{}{
		"batch":           checkpoint.Batch,
		"total_completed": checkpoint.TotalCompleted,
	})

	return nil
}

// Delete removes the checkpoint file
func (m *Manager) Delete() error {
	if err := os.Remove(m.checkpointPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.Info("Checkpoint deleted")
	return nil
}

// Exists checks if a checkpoint file exists
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.checkpointPath)
	return err == nil
}

// RecordCompleted records a successfully extracted snapshot. A previous
// failure for the same path is cleared.
func (m *Manager) RecordCompleted(checkpoint *Checkpoint, path, digest, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, seen := checkpoint.Completed[digest]; !seen {
		checkpoint.TotalCompleted++
	}
	checkpoint.Completed[digest] = name
	delete(checkpoint.Failed, path)
	return m.Save(checkpoint)
}

// RecordFailure records the last error seen for a snapshot path
func (m *Manager) RecordFailure(checkpoint *Checkpoint, path string, cause error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	checkpoint.Failed[path] = cause.Error()
	return m.Save(checkpoint)
}

// GetCheckpointInfo returns a summary of the checkpoint
func (m *Manager) GetCheckpointInfo() (map[string]interface{}, error) {
	checkpoint, err := m.Load()
	if err != nil {
		return nil, err
	}
	if checkpoint == nil {
		return nil, nil
	}

	return map[string]interface{}{
		"batch":           checkpoint.Batch,
		"total_queued":    checkpoint.TotalQueued,
		"total_completed": checkpoint.TotalCompleted,
		"failed":          len(checkpoint.Failed),
		"created_at":      checkpoint.CreatedAt,
		"updated_at":      checkpoint.UpdatedAt,
		"age":             time.Since(checkpoint.UpdatedAt),
	}, nil
}

// BackupCheckpoint copies the current checkpoint next to itself before a
// forced restart discards it
func (m *Manager) BackupCheckpoint() error {
	if !m.Exists() {
		return nil
	}

	backupPath := m.checkpointPath + ".backup"

	src, err := os.Open(m.checkpointPath)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint for backup: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to copy checkpoint to backup: %w", err)
	}

	m.logger.Debug("Checkpoint backed up")
	return nil
}

// Tracker binds a loaded checkpoint to its manager for use by concurrent
// workers.
type Tracker struct {
	m  *Manager
	cp *Checkpoint
}

// Track returns a Tracker recording into checkpoint
func (m *Manager) Track(checkpoint *Checkpoint) *Tracker {
	return &Tracker{m: m, cp: checkpoint}
}

// IsCompleted checks if the snapshot digest was extracted by an earlier run
func (t *Tracker) IsCompleted(digest string) bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	return t.cp.IsCompleted(digest)
}

// Completed records a successful extraction
func (t *Tracker) Completed(path, digest, name string) error {
	return t.m.RecordCompleted(t.cp, path, digest, name)
}

// Failed records a failed extraction
func (t *Tracker) Failed(path string, cause error) error {
	return t.m.RecordFailure(t.cp, path, cause)
}
