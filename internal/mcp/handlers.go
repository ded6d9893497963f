package mcp

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"personalens/pkg/archive"
	"personalens/pkg/config"
	"personalens/pkg/errors"
	"personalens/pkg/extractor"
	"personalens/pkg/models"
	"personalens/pkg/patterns"
	"personalens/pkg/report"
)

// defaultRunLimit caps archive_runs listings when no limit is given.
const defaultRunLimit = 20

// RunStore is the part of the archive the tools read.
type RunStore interface {
	ListRuns(ctx context.Context, handle string, limit int) ([]archive.Run, error)
	GetRun(ctx context.Context, id string) (*archive.Run, *models.Extraction, error)
}

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	runs RunStore
	cfg  *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(runs RunStore, cfg *config.Config) *Handlers {
	return &Handlers{runs: runs, cfg: cfg}
}

// SnapshotRequest carries the snapshot arguments shared by the snapshot tools.
type SnapshotRequest struct {
	Snapshot string `json:"snapshot,omitempty"`
	Path     string `json:"path,omitempty"`
	Handle   string `json:"handle,omitempty"`
	OwnOnly  bool   `json:"own_only,omitempty"`
}

// ReportRequest represents the arguments for snapshot_report.
type ReportRequest struct {
	SnapshotRequest
	Top    int    `json:"top,omitempty"`
	Format string `json:"format,omitempty"`
}

// ArchiveRunsRequest represents the arguments for archive_runs.
type ArchiveRunsRequest struct {
	RunID  string `json:"run_id,omitempty"`
	Handle string `json:"handle,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// PatternsResult is the snapshot_patterns payload.
type PatternsResult struct {
	Handle      string                `json:"handle"`
	Records     int                   `json:"records"`
	PeakDay     string                `json:"peak_day"`
	PeakHourUTC string                `json:"peak_hour_utc"`
	Patterns    models.PostingPattern `json:"patterns"`
}

// ReportResult is the snapshot_report payload.
type ReportResult struct {
	Format  string         `json:"format"`
	Content string         `json:"content"`
	Summary report.Summary `json:"summary"`
}

// RunResult is the archive_runs payload for a single run.
type RunResult struct {
	Run        *archive.Run       `json:"run"`
	Extraction *models.Extraction `json:"extraction"`
}

// extract resolves the snapshot source and runs the extractor on it.
func (h *Handlers) extract(ctx context.Context, in SnapshotRequest) (*models.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := in.Snapshot
	switch {
	case raw != "":
	case in.Path != "":
		data, err := os.ReadFile(in.Path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrorTypeInput, err, "failed to read snapshot %s", in.Path)
		}
		raw = string(data)
	default:
		return nil, errors.New(errors.ErrorTypeInput, "one of snapshot or path is required")
	}

	handle := in.Handle
	if handle == "" {
		handle = h.cfg.Extraction.Handle
	}
	ext := extractor.Extract(raw, handle)
	if in.OwnOnly || h.cfg.Extraction.OwnOnly {
		ext.Records = report.FilterOwn(ext.Records, ext.Profile.Handle)
	}
	return ext, nil
}

// HandleExtract handles the snapshot_extract tool call.
func (h *Handlers) HandleExtract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnapshotRequest](req)
	if err != nil {
		return errorResult(errors.Wrap(errors.ErrorTypeInput, err, "invalid arguments")), nil
	}

	ext, err := h.extract(ctx, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(ext)
}

// HandleProfile handles the snapshot_profile tool call.
func (h *Handlers) HandleProfile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnapshotRequest](req)
	if err != nil {
		return errorResult(errors.Wrap(errors.ErrorTypeInput, err, "invalid arguments")), nil
	}

	ext, err := h.extract(ctx, input)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(ext.Profile)
}

// HandlePatterns handles the snapshot_patterns tool call.
func (h *Handlers) HandlePatterns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SnapshotRequest](req)
	if err != nil {
		return errorResult(errors.Wrap(errors.ErrorTypeInput, err, "invalid arguments")), nil
	}

	ext, err := h.extract(ctx, input)
	if err != nil {
		return errorResult(err), nil
	}

	p := patterns.Aggregate(ext.Records)
	return successResult(PatternsResult{
		Handle:      ext.Profile.Handle,
		Records:     len(ext.Records),
		PeakDay:     patterns.PeakDay(p),
		PeakHourUTC: patterns.PeakSlot(p),
		Patterns:    p,
	})
}

// HandleReport handles the snapshot_report tool call.
func (h *Handlers) HandleReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReportRequest](req)
	if err != nil {
		return errorResult(errors.Wrap(errors.ErrorTypeInput, err, "invalid arguments")), nil
	}

	format := strings.ToLower(input.Format)
	if format == "" {
		format = "markdown"
	}
	if format != "markdown" && format != "html" {
		return errorResult(errors.New(errors.ErrorTypeInput, "unknown report format %q", input.Format)), nil
	}

	ext, err := h.extract(ctx, input.SnapshotRequest)
	if err != nil {
		return errorResult(err), nil
	}

	top := input.Top
	if top <= 0 {
		top = h.cfg.Extraction.TopPosts
	}
	if top <= 0 {
		top = report.DefaultTopPosts
	}

	summary := report.Summarize(ext.Profile, ext.Records, top)
	content := report.Markdown([]report.Summary{summary}, time.Now())
	if format == "html" {
		if content, err = report.HTML(content, "Account Report"); err != nil {
			return errorResult(err), nil
		}
	}

	return successResult(ReportResult{Format: format, Content: content, Summary: summary})
}

// HandleArchiveRuns handles the archive_runs tool call.
func (h *Handlers) HandleArchiveRuns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ArchiveRunsRequest](req)
	if err != nil {
		return errorResult(errors.Wrap(errors.ErrorTypeInput, err, "invalid arguments")), nil
	}
	if h.runs == nil {
		return errorResult(errors.New(errors.ErrorTypeConfig, "archive is disabled; set archive.enabled in the config")), nil
	}

	if input.RunID != "" {
		run, ext, err := h.runs.GetRun(ctx, input.RunID)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(RunResult{Run: run, Extraction: ext})
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}
	runs, err := h.runs.ListRuns(ctx, input.Handle, limit)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"runs": runs})
}

// Result helpers

// errorResult creates an MCP error result. Only input and config errors carry
// their message, since the others may contain paths or SQL.
func errorResult(err error) *mcp.CallToolResult {
	typ := errors.TypeOf(err)
	message := "an internal error occurred"
	switch typ {
	case errors.ErrorTypeInput, errors.ErrorTypeConfig:
		message = err.Error()
	case errors.ErrorTypeUnknown:
		if err == context.Canceled || err == context.DeadlineExceeded {
			message = err.Error()
		}
	}

	content, _ := json.Marshal(map[string]any{
		"error": map[string]any{
			"type":    string(typ),
			"message": message,
		},
	})
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
