// Package checkpoint lets batch extraction resume after an interruption.
//
// A checkpoint records which snapshots of a batch have been extracted, keyed
// by the BLAKE2b digest of their content, so a renamed but unchanged snapshot
// is still skipped and an edited one is processed again. Failures are kept per
// path until a later run succeeds.
//
// Checkpoints are stored under <data dir>/checkpoints/, one file per batch
// source, and are written atomically.
package checkpoint
