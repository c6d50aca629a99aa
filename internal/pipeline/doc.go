// Package pipeline applies one set of entity edits (and optionally one
// metadata patch) to a batch of files, then synchronizes each file with
// disk and reports a summary.
//
// Files are processed sequentially in the order given. A failure on one file
// is logged and counted; the batch continues. When two inputs would land on
// the same output path the first is synced and the second is caught before
// it touches disk.
//
// Layout:
//   - edits.go: key=value edit parsing and application
//   - claims.go: output path ownership within one run
//   - runner.go: the batch loop and per-file steps
//   - stats.go: run counters
package pipeline
