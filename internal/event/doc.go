// Package event provides the types produced by the external calendar
// scrape and consumed by the sync reconciler.
//
// An ExternalEvent is one upstream listing, possibly spanning several
// days. Before anything is persisted or compared it is expanded into
// DayInstances, one per calendar day, identified across runs by the
// (source URL, day text) natural key.
package event
