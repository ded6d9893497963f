package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	apperrors "personalens/pkg/errors"
	"personalens/pkg/models"
)

func sampleExtraction() *models.Extraction {
	return &models.Extraction{
		Records: []models.TweetRecord{{
			ID:           "1750000000000000001",
			Text:         "hello",
			TimestampMS:  1706067488084,
			Likes:        4,
			AuthorHandle: models.Some("adev"),
			Media:        []string{},
		}},
		Strategy: models.StrategyAnchors,
		Pages:    1,
	}
}

func TestManager(t *testing.T) {
	tempDir := t.TempDir()

	manager, err := NewManager(tempDir, "json")
	require.NoError(t, err)
	assert.Equal(t, 0, manager.GetSavedCount())
	assert.False(t, manager.IsSaved("timeline"))

	path, err := manager.Save("timeline", sampleExtraction())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tempDir, "timeline.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded models.Extraction
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "hello", decoded.Records[0].Text)
	assert.Equal(t, models.Some("adev"), decoded.Records[0].AuthorHandle)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temporary file must be renamed away")

	assert.True(t, manager.IsSaved("timeline"))
	assert.Equal(t, 1, manager.GetSavedCount())
}

func TestManagerScansExistingResults(t *testing.T) {
	tempDir := t.TempDir()
	for _, name := range []string{"a.json", "b.yaml", "a.json.meta.json", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte("{}"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(tempDir, "sub.json"), 0755))

	manager, err := NewManager(tempDir, "json")
	require.NoError(t, err)

	assert.Equal(t, 2, manager.GetSavedCount())
	assert.True(t, manager.IsSaved("a"))
	assert.True(t, manager.IsSaved("b"))
	assert.False(t, manager.IsSaved("notes"))
}

func TestManagerDetectsFilesWrittenLater(t *testing.T) {
	tempDir := t.TempDir()
	manager, err := NewManager(tempDir, "yaml")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "late.yaml"), []byte("x: 1"), 0644))
	assert.True(t, manager.IsSaved("late"))
	assert.Equal(t, 1, manager.GetSavedCount())
}

func TestManagerYAML(t *testing.T) {
	manager, err := NewManager(t.TempDir(), "YAML")
	require.NoError(t, err)

	path, err := manager.Save("run", sampleExtraction())
	require.NoError(t, err)
	assert.Equal(t, ".yaml", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded models.Extraction
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Equal(t, models.StrategyAnchors, decoded.Strategy)
	assert.Equal(t, uint64(1706067488084), decoded.Records[0].TimestampMS)
}

func TestNewManagerRejectsUnknownFormat(t *testing.T) {
	_, err := NewManager(t.TempDir(), "xml")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeConfig, apperrors.TypeOf(err))
}

func TestNewManagerCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	_, err := NewManager(dir, "json")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResultName(t *testing.T) {
	assert.Equal(t, "timeline", ResultName("/snaps/timeline.txt"))
	assert.Equal(t, "a.b", ResultName("a.b.txt"))
	assert.Equal(t, "README", ResultName("README"))
	assert.Equal(t, "stdin", ResultName("-"))
	assert.Equal(t, "stdin", ResultName(""))
	assert.Equal(t, ".hidden", ResultName(".hidden"))
}

func TestWriteAtomicFailsForMissingDirectory(t *testing.T) {
	err := WriteAtomic(filepath.Join(t.TempDir(), "missing", "f.json"), []byte("{}"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeStorage, apperrors.TypeOf(err))
}
