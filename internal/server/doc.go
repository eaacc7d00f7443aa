// Package server exposes the sync pipeline over HTTP: check, run,
// configuration and status endpoints under /api/v1/sync, plus health
// and Prometheus metrics.
package server
