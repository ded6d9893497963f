package mcp

import (
	"context"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"personalens/pkg/config"
	"personalens/pkg/logger"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var snapshotArgs = []mcp.ToolOption{
	mcp.WithString("snapshot", mcp.Description("Accessibility snapshot text. Pages may be joined with \\n---\\n.")),
	mcp.WithString("path", mcp.Description("Path to a snapshot file, used when snapshot is empty")),
	mcp.WithString("handle", mcp.Description("Account handle, with or without @")),
}

func withSnapshotArgs(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(slices.Clone(snapshotArgs), opts...)
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"snapshot_extract": {
		def: mcp.NewTool("snapshot_extract", withSnapshotArgs(
			mcp.WithDescription("Extract posts and the profile from an accessibility snapshot of an account timeline"),
			mcp.WithBoolean("own_only", mcp.Description("Drop records authored by other accounts")),
		)...),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExtract },
	},
	"snapshot_profile": {
		def: mcp.NewTool("snapshot_profile", withSnapshotArgs(
			mcp.WithDescription("Extract the account profile header from a snapshot"),
		)...),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProfile },
	},
	"snapshot_patterns": {
		def: mcp.NewTool("snapshot_patterns", withSnapshotArgs(
			mcp.WithDescription("Weekday and UTC time-of-day posting histograms with their peaks"),
			mcp.WithBoolean("own_only", mcp.Description("Count only the account's own posts")),
		)...),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePatterns },
	},
	"snapshot_report": {
		def: mcp.NewTool("snapshot_report", withSnapshotArgs(
			mcp.WithDescription("Render an account report in Markdown or HTML"),
			mcp.WithBoolean("own_only", mcp.Description("Summarize only the account's own posts")),
			mcp.WithNumber("top", mcp.Description("Number of top posts to rank")),
			mcp.WithString("format", mcp.Description("markdown (default) or html"), mcp.Enum("markdown", "html")),
		)...),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReport },
	},
	"archive_runs": {
		def: mcp.NewTool("archive_runs",
			mcp.WithDescription("List archived extraction runs, or fetch one run with its records"),
			mcp.WithString("run_id", mcp.Description("Fetch this run instead of listing")),
			mcp.WithString("handle", mcp.Description("Only list runs for this account")),
			mcp.WithNumber("limit", mcp.Description("Maximum runs to list (default 20)")),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleArchiveRuns },
	},
}

// AllToolNames returns the registered tool names in sorted order.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ValidateDisabledTools returns the names that match no tool.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates an MCP server with the extraction tools registered.
// Tools listed in cfg.MCP.DisabledTools are left out. runs may be nil when
// the archive is disabled.
func NewServer(runs RunStore, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"personalens",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(runs, cfg)

	disabled := make(map[string]bool, len(cfg.MCP.DisabledTools))
	for _, name := range cfg.MCP.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	logger.GetLogger().DebugWithFields("MCP server ready", map[string]interface{}{
		"disabled_tools": len(disabled),
	})
	return s
}

// Run serves the tools over stdio until stdin closes.
func Run(runs RunStore, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(runs, cfg, version))
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
