package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "personalens/pkg/errors"
)

// Result file extensions by output format. The table format is terminal-only
// and is stored as JSON.
var extensions = map[string]string{
	"json":  ".json",
	"yaml":  ".yaml",
	"table": ".json",
}

// metadata sidecars live next to results and are not results themselves
const sidecarSuffix = ".meta.json"

// Manager writes extraction results to the output directory and tracks which
// snapshots already have one.
type Manager struct {
	outputDir string
	format    string
	saved     map[string]bool
	mu        sync.RWMutex
}

// NewManager creates a new storage manager writing results in format
func NewManager(outputDir, format string) (*Manager, error) {
	format = strings.ToLower(format)
	if _, ok := extensions[format]; !ok {
		return nil, apperrors.New(apperrors.ErrorTypeConfig, "unsupported output format %q", format)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeStorage, err, "failed to create output directory")
	}

	manager := &Manager{
		outputDir: outputDir,
		format:    format,
		saved:     make(map[string]bool),
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeStorage, err, "failed to scan existing results")
	}

	return manager, nil
}

// ResultName derives the result name from a snapshot path: the base name
// without its extension. Stdin input is named "stdin".
func ResultName(source string) string {
	if source == "" || source == "-" {
		return "stdin"
	}
	base := filepath.Base(source)
	if name := strings.TrimSuffix(base, filepath.Ext(base)); name != "" {
		return name
	}
	return base
}

// scanExistingFiles records results already present in the output directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasSuffix(name, sidecarSuffix) {
			continue
		}
		switch filepath.Ext(name) {
		case ".json", ".yaml":
			m.saved[strings.TrimSuffix(name, filepath.Ext(name))] = true
		}
	}

	return nil
}

// IsSaved checks if a result with the given name already exists
func (m *Manager) IsSaved(name string) bool {
	m.mu.RLock()
	known := m.saved[name]
	m.mu.RUnlock()
	if known {
		return true
	}

	if _, err := os.Stat(m.PathFor(name)); err == nil {
		m.mu.Lock()
		m.saved[name] = true
		m.mu.Unlock()
		return true
	}
	return false
}

// PathFor returns where the result called name is written
func (m *Manager) PathFor(name string) string {
	return filepath.Join(m.outputDir, name+extensions[m.format])
}

// Save encodes v in the manager's format and writes it atomically under name.
// It returns the written path.
func (m *Manager) Save(name string, v any) (string, error) {
	var (
		data []byte
		err  error
	)
	if m.format == "yaml" {
		data, err = yaml.Marshal(v)
	} else {
		data, err = json.MarshalIndent(v, "", "  ")
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrorTypeStorage, err, "failed to encode result %s", name)
	}

	path := m.PathFor(name)
	if err := WriteAtomic(path, data); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.saved[name] = true
	m.mu.Unlock()

	return path, nil
}

// WriteAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a partial file.
func WriteAtomic(path string, data []byte) error {
	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		os.Remove(tempFile)
		return apperrors.Wrap(apperrors.ErrorTypeStorage, err, "failed to write temporary file")
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return apperrors.Wrap(apperrors.ErrorTypeStorage, err, "failed to rename temporary file")
	}
	return nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetSavedCount returns the number of known results
func (m *Manager) GetSavedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.saved)
}
