package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "━"
	ProgressEmpty = "─"
	barWidth      = 20
)

// BatchProgress prints a single updating status line for a batch run.
// All methods are safe for concurrent use by workers.
type BatchProgress struct {
	mu        sync.Mutex
	out       io.Writer
	total     int
	done      int
	skipped   int
	failed    int
	records   int
	current   string
	startTime time.Time
	verbose   bool
	quiet     bool
}

// NewBatchProgress creates a tracker for total snapshots. Verbose prints one
// line per snapshot instead of the updating bar; quiet prints nothing but the
// final summary.
func NewBatchProgress(out io.Writer, total int, verbose, quiet bool) *BatchProgress {
	return &BatchProgress{
		out:       out,
		total:     total,
		startTime: time.Now(),
		verbose:   verbose,
		quiet:     quiet,
	}
}

// Start marks a snapshot as being extracted
func (p *BatchProgress) Start(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = name
	p.render()
}

// Complete marks a snapshot as extracted with the given record count
func (p *BatchProgress) Complete(name string, records int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.records += records
	if p.verbose && !p.quiet {
		fmt.Fprintf(p.out, "%s %s %s\n", Green("✓"), name, Dim(fmt.Sprintf("%d records", records)))
		return
	}
	p.render()
}

// Skip marks a snapshot as already extracted by an earlier run
func (p *BatchProgress) Skip(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.skipped++
	if p.verbose && !p.quiet {
		fmt.Fprintf(p.out, "%s %s %s\n", Dim("•"), name, Dim("skipped"))
		return
	}
	p.render()
}

// Fail marks a snapshot as failed
func (p *BatchProgress) Fail(name string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failed++
	if p.verbose && !p.quiet {
		fmt.Fprintf(p.out, "%s %s: %v\n", Red("✗"), name, err)
		return
	}
	p.render()
}

// Counts returns the done, skipped and failed totals
func (p *BatchProgress) Counts() (done, skipped, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done, p.skipped, p.failed
}

// Records returns the number of records extracted so far
func (p *BatchProgress) Records() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.records
}

// Finish prints the closing summary
func (p *BatchProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.quiet && !p.verbose {
		fmt.Fprintln(p.out)
	}
	fmt.Fprintf(p.out, "%s Extracted %d records from %d snapshots in %s\n",
		Green("✓"), p.records, p.done, formatDuration(time.Since(p.startTime)))
	if p.skipped > 0 {
		fmt.Fprintf(p.out, "  %s %d snapshots already extracted\n", Dim("•"), p.skipped)
	}
	if p.failed > 0 {
		fmt.Fprintf(p.out, "  %s %s\n", Dim("•"), Red(fmt.Sprintf("%d snapshots failed", p.failed)))
	}
}

// render redraws the progress line; callers hold p.mu
func (p *BatchProgress) render() {
	if p.quiet || p.verbose {
		return
	}

	processed := p.done + p.skipped + p.failed
	line := fmt.Sprintf("\r%s %d/%d • %d records", bar(processed, p.total), processed, p.total, p.records)
	if p.current != "" && processed < p.total {
		line += " • " + p.current
	}
	if p.failed > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", p.failed))
	}

	fmt.Fprintf(p.out, "\r%s%s", strings.Repeat(" ", 100), line)
}

// bar draws a fixed-width progress bar for done out of total
func bar(done, total int) string {
	filled := barWidth
	if total > 0 && done < total {
		filled = done * barWidth / total
	}
	return "[" + strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled) + "]"
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
