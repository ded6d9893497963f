// Package archive keeps a history of extraction runs in SQLite.
//
// Each run stores its metadata, every record in snapshot order and the
// profile header, so earlier extractions can be listed, inspected and
// compared without the original snapshot. The database uses WAL mode and is
// safe to share between a batch run and the MCP server.
package archive
