// Package logger provides the structured logging interface used by the
// personalens commands, batch worker and MCP server.
//
// It wraps zerolog. Console output goes to stderr so that stdout can carry
// extraction results; an optional log file receives JSON lines.
//
//	err := logger.Initialize(&cfg.Logging)
//	logger.WithField("source", path).Info("Snapshot loaded")
//
// Tests substitute a TestLogger to assert on emitted messages:
//
//	tl := logger.NewTestLogger()
//	worker.Run(ctx, jobs, tl)
//	assert.True(t, tl.HasMessage("Extraction completed"))
package logger
