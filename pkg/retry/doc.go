// Package retry retries operations that fail with transient errors, such as a
// locked archive database or a result file that cannot be renamed yet.
//
// Only errors typed as retryable by personalens/pkg/errors are retried:
//
//	err := retry.Do(ctx, func() error {
//		return archive.SaveRun(ctx, meta, ext)
//	}, retry.DefaultConfig())
package retry
