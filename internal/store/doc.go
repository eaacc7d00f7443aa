// Package store defines the generic document store the sync pipeline
// consumes, plus an in-memory implementation.
//
// The surrounding application owns the real event store; fedsync only
// relies on the collection/document operations declared here. The
// SQLite backend lives in the store/sqlite subpackage.
package store
