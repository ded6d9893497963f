package ui

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"personalens/pkg/report"
)

// capture redirects package output to a buffer with colors off
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevOut, prevColor := output, ColorEnabled()
	SetOutput(&buf)
	SetColor(false)
	t.Cleanup(func() {
		SetOutput(prevOut)
		SetColor(prevColor)
	})
	return &buf
}

func TestColorize(t *testing.T) {
	capture(t)
	assert.Equal(t, "plain", Red("plain"))

	SetColor(true)
	assert.Equal(t, "\033[31mhot\033[0m", Red("hot"))
	assert.Equal(t, "\033[2mdim\033[0m", Dim("dim"))
}

func TestPrintHelpers(t *testing.T) {
	buf := capture(t)

	PrintError("failed to read %s", "a.txt")
	PrintSuccess("saved %d records", 3)
	PrintWarning("no records")
	PrintInfo("Handle", "adev")
	PrintHighlight("batch")

	assert.Equal(t, "✗ failed to read a.txt\n✓ saved 3 records\n⚠ no records\nHandle: adev\nbatch\n", buf.String())
}

func TestIsTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTerminal(f))
}

func TestSummaryPanel(t *testing.T) {
	capture(t)

	panel := SummaryPanel(report.Summary{
		Username:     "adev",
		DisplayName:  "Alice Example",
		Bio:          "Building things.",
		Joined:       "March 2015",
		Followers:    1200,
		Following:    80,
		TweetsCount:  4321,
		TweetsParsed: 3,
		MediaPosts:   1,
		PeakDay:      "Wednesday",
		PeakHourUTC:  "00-04",
		TopPosts: []report.TopPost{
			{ID: "1", Text: "Shipping\nthe new parser today", Likes: 10, Retweets: 2},
		},
	})

	for _, want := range []string{
		"Alice Example @adev", "Building things.", "March 2015", "1200", "4321",
		"3 (1 with media)", "Wednesday", "00-04 UTC", "1. Shipping the new parser today", "(♥ 10, ↻ 2)",
	} {
		assert.Contains(t, panel, want)
	}
	assert.NotContains(t, panel, "\033[")
	assert.True(t, strings.HasPrefix(panel, "╭"), "rounded border")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a b", truncate("a \n b", 10))
	assert.Equal(t, "héllo w…", truncate("héllo world", 8))
}

func TestBatchProgress(t *testing.T) {
	capture(t)

	t.Run("bar mode", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewBatchProgress(&buf, 4, false, false)
		p.Start("a")
		p.Complete("a", 3)
		p.Skip("b")
		p.Fail("c", errors.New("unreadable"))
		p.Complete("d", 2)
		p.Finish()

		done, skipped, failed := p.Counts()
		assert.Equal(t, 2, done)
		assert.Equal(t, 1, skipped)
		assert.Equal(t, 1, failed)
		assert.Equal(t, 5, p.Records())

		out := buf.String()
		assert.Contains(t, out, "4/4 • 5 records")
		assert.Contains(t, out, "1 failed")
		assert.Contains(t, out, "Extracted 5 records from 2 snapshots")
		assert.Contains(t, out, "1 snapshots already extracted")
	})

	t.Run("verbose mode", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewBatchProgress(&buf, 2, true, false)
		p.Complete("a", 1)
		p.Fail("b", errors.New("boom"))

		assert.Equal(t, "✓ a 1 records\n✗ b: boom\n", buf.String())
	})

	t.Run("quiet mode", func(t *testing.T) {
		var buf bytes.Buffer
		p := NewBatchProgress(&buf, 1, false, true)
		p.Start("a")
		p.Complete("a", 1)
		assert.Empty(t, buf.String())
		p.Finish()
		assert.Contains(t, buf.String(), "Extracted 1 records from 1 snapshots")
	})
}

func TestBar(t *testing.T) {
	assert.Equal(t, "["+strings.Repeat(ProgressEmpty, 20)+"]", bar(0, 4))
	assert.Equal(t, "["+strings.Repeat(ProgressBar, 10)+strings.Repeat(ProgressEmpty, 10)+"]", bar(2, 4))
	assert.Equal(t, "["+strings.Repeat(ProgressBar, 20)+"]", bar(4, 4))
	assert.Equal(t, "["+strings.Repeat(ProgressBar, 20)+"]", bar(0, 0))
}

type recordingSender struct{ titles []string }

func (r *recordingSender) Send(title, _ string) error {
	r.titles = append(r.titles, title)
	return errors.New("ignored")
}

func TestNotifier(t *testing.T) {
	buf := capture(t)
	sender := &recordingSender{}
	n := NewNotifierWithSender(sender)

	n.SendSuccess("Batch complete", "12 snapshots")
	n.SendError("Batch finished with failures", "2 failed")

	assert.Equal(t, []string{"Batch complete", "Batch finished with failures"}, sender.titles)
	assert.Contains(t, buf.String(), "Batch complete: 12 snapshots")

	// A notifier without a sender still prints.
	NewNotifierWithSender(nil).SendSuccess("done", "ok")
	assert.Contains(t, buf.String(), "done: ok")
}
