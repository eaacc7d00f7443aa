package store

import (
	"context"
	"maps"
	"reflect"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Memory is an in-memory Store used in tests and as a stand-in until a
// real backend is wired.
type Memory struct {
	mu   sync.RWMutex
	cols map[string]map[string]map[string]any
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{cols: make(map[string]map[string]map[string]any)}
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.cols[collection][id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Data: maps.Clone(data)}, nil
}

func (m *Memory) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (m *Memory) Set(_ context.Context, collection, id string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs, ok := m.cols[collection]
	if !ok {
		docs = make(map[string]map[string]any)
		m.cols[collection] = docs
	}
	docs[id] = maps.Clone(data)
	return nil
}

func (m *Memory) Update(_ context.Context, collection, id string, patch map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.cols[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range patch {
		data[k] = v
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cols[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.cols[collection], id)
	return nil
}

func (m *Memory) Query(_ context.Context, collection, field string, value any) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Document
	for id, data := range m.cols[collection] {
		if v, ok := data[field]; ok && reflect.DeepEqual(v, value) {
			out = append(out, Document{ID: id, Data: maps.Clone(data)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
