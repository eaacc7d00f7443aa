package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "events", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on missing doc = %v, want ErrNotFound", err)
	}

	if err := m.Set(ctx, "events", "e1", map[string]any{"name": "Show"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	doc, err := m.Get(ctx, "events", "e1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Data["name"] != "Show" {
		t.Errorf("name = %v", doc.Data["name"])
	}

	if err := m.Delete(ctx, "events", "e1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := m.Delete(ctx, "events", "e1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryAddGeneratesIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	id1, err := m.Add(ctx, "events", map[string]any{"name": "A"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	id2, err := m.Add(ctx, "events", map[string]any{"name": "B"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if id1 == "" || id1 == id2 {
		t.Errorf("expected distinct non-empty ids, got %q and %q", id1, id2)
	}
}

func TestMemoryUpdateMergesPatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Set(ctx, "events", "e1", map[string]any{"name": "Old", "tier": "Show"}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := m.Update(ctx, "events", "e1", map[string]any{"name": "New"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	doc, _ := m.Get(ctx, "events", "e1")
	if doc.Data["name"] != "New" || doc.Data["tier"] != "Show" {
		t.Errorf("patch merge wrong: %+v", doc.Data)
	}

	if err := m.Update(ctx, "events", "nope", map[string]any{"x": 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update on missing doc = %v, want ErrNotFound", err)
	}
}

func TestMemoryQueryByField(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_ = m.Set(ctx, "events", "a", map[string]any{"source": "external-calendar", "name": "A"})
	_ = m.Set(ctx, "events", "b", map[string]any{"source": "manual", "name": "B"})
	_ = m.Set(ctx, "events", "c", map[string]any{"source": "external-calendar", "name": "C"})

	docs, err := m.Query(ctx, "events", "source", "external-calendar")
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(docs))
	}
	if docs[0].ID != "a" || docs[1].ID != "c" {
		t.Errorf("expected ids a,c in order, got %s,%s", docs[0].ID, docs[1].ID)
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_ = m.Set(ctx, "events", "e1", map[string]any{"name": "Original"})
	doc, _ := m.Get(ctx, "events", "e1")
	doc.Data["name"] = "Mutated"

	again, _ := m.Get(ctx, "events", "e1")
	if again.Data["name"] != "Original" {
		t.Errorf("store leaked internal map: %v", again.Data["name"])
	}
}
