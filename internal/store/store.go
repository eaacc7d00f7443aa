package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a document id does not exist in a
// collection.
var ErrNotFound = errors.New("document not found")

// Document is one record in a collection.
type Document struct {
	ID   string
	Data map[string]any
}

// Store is the document store interface the pipeline runs against.
type Store interface {
	// Get returns the document with the given id, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Add inserts a document under a generated id and returns the id.
	Add(ctx context.Context, collection string, data map[string]any) (string, error)
	// Set writes the full document under id, creating or replacing it.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	// Update merges patch into an existing document, or ErrNotFound.
	Update(ctx context.Context, collection, id string, patch map[string]any) error
	// Delete removes the document, or ErrNotFound.
	Delete(ctx context.Context, collection, id string) error
	// Query returns every document whose field equals value.
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)
}
