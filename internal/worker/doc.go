// Package worker extracts many snapshot files in parallel.
//
// A Pool reads each snapshot, runs the extractor, and hands the result to
// the configured store, archive, checkpoint and metrics observer. Writes that
// fail with retryable errors are retried with backoff.
package worker
