// Package sqlite implements store.Store on SQLite using the CGO-free
// modernc.org/sqlite driver. Documents are stored as JSON; field
// queries use json_extract.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mkarlsen/fedsync/internal/store"
)

// DB implements store.Store. Path is a filesystem path to the SQLite
// database file.
type DB struct {
	db *sql.DB
}

// New opens a SQLite database at path.
func New(path string) (*DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return nil, errors.New("empty sqlite path")
	}
	d, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	// busy timeout helps with short concurrent locks
	_, _ = d.Exec("PRAGMA busy_timeout=3000;")
	return &DB{db: d}, nil
}

// EnsureSchema creates the documents table when missing.
func (s *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents(
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY(collection, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *DB) Close() error { return s.db.Close() }

func (s *DB) Get(ctx context.Context, collection, id string) (store.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection=? AND id=?;`,
		collection, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, err
	}
	return decodeDoc(id, raw)
}

func (s *DB) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *DB) Set(ctx context.Context, collection, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents(collection, id, data, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data=excluded.data,
			updated_at=excluded.updated_at;`,
		collection, id, string(raw), time.Now().UTC())
	return err
}

func (s *DB) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	for k, v := range patch {
		doc.Data[k] = v
	}
	return s.Set(ctx, collection, id, doc.Data)
}

func (s *DB) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection=? AND id=?;`, collection, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *DB) Query(ctx context.Context, collection, field string, value any) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, data FROM documents
		WHERE collection=? AND json_extract(data, '$.' || ?) = ?
		ORDER BY id;`,
		collection, field, value)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []store.Document
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		doc, err := decodeDoc(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

func decodeDoc(id, raw string) (store.Document, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return store.Document{}, fmt.Errorf("decoding document %s: %w", id, err)
	}
	return store.Document{ID: id, Data: data}, nil
}
