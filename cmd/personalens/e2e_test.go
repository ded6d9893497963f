package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personalens/pkg/archive"
	"personalens/pkg/metadata"
	"personalens/pkg/ui"
)

var snapshotLines = []string{
	`- text: "Just shipped a new feature"`,
	`- text: "3  12  847"`,
	`- link "status" [e1]:`,
	`  - /url: /adev/status/1750000000000000001#m`,
	`- text: "Second post"`,
	`- text: "1  5  210"`,
	`- link "status" [e2]:`,
	`  - /url: /adev/status/1750000000000000002#m`,
}

// isolate points HOME, the data directory and the working directory at a
// fresh temp dir so no user configuration leaks into the run.
func isolate(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", root)
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("NO_COLOR", "1")
	t.Chdir(root)
	ui.SetOutput(&strings.Builder{})
	t.Cleanup(func() { ui.SetOutput(os.Stderr) })
	return root
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(context.Background())
}

func TestBatchEndToEnd(t *testing.T) {
	root := isolate(t)

	snapDir := filepath.Join(root, "snapshots")
	require.NoError(t, os.MkdirAll(snapDir, 0755))
	for i := 0; i < 3; i++ {
		content := strings.Join(append(snapshotLines, fmt.Sprintf(`- text: "page %d"`, i)), "\n")
		require.NoError(t, os.WriteFile(filepath.Join(snapDir, fmt.Sprintf("snap%d.txt", i)), []byte(content), 0644))
	}

	outDir := filepath.Join(root, "results")
	dbPath := filepath.Join(root, "archive.db")
	promPath := filepath.Join(root, "personalens.prom")

	err := execute(t, "batch", snapDir,
		"--quiet",
		"--workers", "2",
		"--output-dir", outDir,
		"--archive", "--archive-path", dbPath,
		"--metrics-textfile", promPath,
	)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		result := filepath.Join(outDir, fmt.Sprintf("snap%d.json", i))
		assert.FileExists(t, result)
		meta, err := metadata.Load(result)
		require.NoError(t, err)
		assert.Equal(t, 2, meta.Records)
	}

	prom, err := os.ReadFile(promPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `personalens_snapshots_total{outcome="ok",strategy="fallback"} 3`)

	a, err := archive.Open(dbPath)
	require.NoError(t, err)
	defer a.Close()
	runs, err := a.ListRuns(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	checkpoints, err := filepath.Glob(filepath.Join(root, "data", "personalens", "checkpoints", "*.checkpoint.json"))
	require.NoError(t, err)
	assert.Empty(t, checkpoints, "a clean batch removes its checkpoint")
}

func TestExtractSaveEndToEnd(t *testing.T) {
	root := isolate(t)

	snap := filepath.Join(root, "timeline.txt")
	require.NoError(t, os.WriteFile(snap, []byte(strings.Join(snapshotLines, "\n")), 0644))
	outDir := filepath.Join(root, "out")

	require.NoError(t, execute(t, "extract", snap, "--quiet", "--save", "--format", "yaml", "--output-dir", outDir))

	assert.FileExists(t, filepath.Join(outDir, "timeline.yaml"))
	assert.True(t, metadata.MetadataExists(filepath.Join(outDir, "timeline.yaml")))
}
