package metadata

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"personalens/pkg/models"
	"personalens/pkg/snapshot"
	"personalens/pkg/storage"
)

// Suffix is appended to a result path to form its sidecar path.
const Suffix = ".meta.json"

// RunMetadata describes one extraction run and is saved next to its result
type RunMetadata struct {
	// Identifiers
	RunID  string `json:"run_id"`
	Source string `json:"source"`
	Digest string `json:"digest"`
	Handle string `json:"handle,omitempty"`

	// How the records were found
	Strategy          models.Strategy `json:"strategy"`
	Pages             int             `json:"pages"`
	ContentAnchors    int             `json:"content_anchors"`
	NavigationAnchors int             `json:"navigation_anchors"`
	Discarded         int             `json:"discarded"`
	Duplicates        int             `json:"duplicates"`

	// What was found
	Records    int       `json:"records"`
	MediaPosts int       `json:"media_posts"`
	Oldest     time.Time `json:"oldest,omitzero"`
	Newest     time.Time `json:"newest,omitzero"`

	// Timing
	ExtractedAt time.Time     `json:"extracted_at"`
	Duration    time.Duration `json:"duration_ns"`
}

// NewRunID returns a new lexicographically sortable run id
func NewRunID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// FromExtraction builds the metadata for an extraction of raw read from source
func FromExtraction(source, raw, handle string, ext *models.Extraction, duration time.Duration) *RunMetadata {
	meta := &RunMetadata{
		RunID:             NewRunID(),
		Source:            source,
		Digest:            snapshot.Digest(raw),
		Handle:            strings.TrimPrefix(handle, "@"),
		Strategy:          ext.Strategy,
		Pages:             ext.Pages,
		ContentAnchors:    ext.ContentAnchors,
		NavigationAnchors: ext.NavigationAnchors,
		Discarded:         ext.Discarded,
		Duplicates:        ext.Duplicates,
		Records:           len(ext.Records),
		ExtractedAt:       time.Now().UTC(),
		Duration:          duration,
	}

	for _, r := range ext.Records {
		if r.HasMedia() {
			meta.MediaPosts++
		}
		at := r.PostedAt()
		if at.IsZero() {
			continue
		}
		if meta.Oldest.IsZero() || at.Before(meta.Oldest) {
			meta.Oldest = at
		}
		if at.After(meta.Newest) {
			meta.Newest = at
		}
	}

	return meta
}

// Coverage returns the posting date range as "YYYY-MM-DD..YYYY-MM-DD", or
// "unknown" when no record carried a timestamp
func (m *RunMetadata) Coverage() string {
	if m.Oldest.IsZero() {
		return "unknown"
	}
	const day = "2006-01-02"
	return m.Oldest.Format(day) + ".." + m.Newest.Format(day)
}

// Save writes the metadata sidecar for the result at resultPath
func (m *RunMetadata) Save(resultPath string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := storage.WriteAtomic(resultPath+Suffix, data); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}

	return nil
}

// Load reads the metadata sidecar of the result at resultPath
func Load(resultPath string) (*RunMetadata, error) {
	data, err := os.ReadFile(resultPath + Suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}

	return &meta, nil
}

// MetadataExists checks if a sidecar exists for the result at resultPath
func MetadataExists(resultPath string) bool {
	_, err := os.Stat(resultPath + Suffix)
	return err == nil
}

// CleanOrphanedMetadata removes sidecars whose result file is gone and
// returns how many were removed
func CleanOrphanedMetadata(directory string) (int, error) {
	removed := 0
	err := filepath.WalkDir(directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, Suffix) {
			return nil
		}

		resultPath := strings.TrimSuffix(path, Suffix)
		if _, err := os.Stat(resultPath); os.IsNotExist(err) {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("failed to remove orphaned metadata %s: %w", path, err)
			}
			removed++
		}
		return nil
	})
	return removed, err
}
