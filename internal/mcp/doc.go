// Package mcp serves the snapshot extraction tools over the Model Context
// Protocol on stdio.
//
// Tools:
//
//	snapshot_extract   posts and profile from a snapshot
//	snapshot_profile   profile header only
//	snapshot_patterns  weekday and time-of-day histograms
//	snapshot_report    Markdown or HTML account report
//	archive_runs       list or fetch archived runs
//
// Tools named in mcp.disabled_tools are not registered.
package mcp
