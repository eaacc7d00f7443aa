// Package scrape fetches and parses the national body's public event
// calendar.
//
// One Client serves both page types: the month listing pages that
// enumerate events, and the per-event detail pages that carry the
// discipline and location. Fetch failures are soft throughout: a bad
// month degrades to an empty result and a bad detail page to empty
// fields, so a single flaky page never aborts a sync run.
package scrape
