// Package sync implements the external calendar synchronization
// pipeline: the scheduler gate that decides when a run is due, the
// reconciler that converges the persisted event store to the latest
// upstream snapshot, and the configuration and metadata records both
// live by.
//
// Reconciliation is scoped by source tag: only rows the pipeline wrote
// are ever updated or deleted, so internally-authored events are never
// touched. Convergence is at-least-once; a run interrupted mid-pass
// leaves the store partially converged and a later run finishes the
// job.
package sync
