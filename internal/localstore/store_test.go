package localstore

import (
	"testing"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestStore() *Store {
	return NewStore(NewMemoryKV(), logger.NewNop())
}

func TestMemoryKV_SetThenGet(t *testing.T) {
	kv := NewMemoryKV()
	if _, ok := kv.GetItem("missing"); ok {
		t.Fatalf("expected miss for absent key")
	}
	if err := kv.SetItem("k", "v"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	got, ok := kv.GetItem("k")
	if !ok || got != "v" {
		t.Fatalf("expected (v, true), got (%q, %v)", got, ok)
	}
}

func TestReadCollection_AbsentKeyReadsEmpty(t *testing.T) {
	store := newTestStore()
	items := ReadCollection[item](store, "nothing.here")
	if len(items) != 0 {
		t.Fatalf("expected empty collection, got %d items", len(items))
	}
}

func TestReadCollection_CorruptPayloadReadsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	store := NewStore(kv, logger.NewNop())
	if err := kv.SetItem("broken", "{not json"); err != nil {
		t.Fatalf("SetItem failed: %v", err)
	}
	items := ReadCollection[item](store, "broken")
	if len(items) != 0 {
		t.Fatalf("expected corrupt payload to read as empty, got %d items", len(items))
	}
}

func TestWriteCollection_RoundTrip(t *testing.T) {
	store := newTestStore()
	in := []item{{ID: "1", Name: "a"}, {ID: "2", Name: "b"}}
	if err := WriteCollection(store, "items", in); err != nil {
		t.Fatalf("WriteCollection failed: %v", err)
	}
	out := ReadCollection[item](store, "items")
	if len(out) != 2 || out[0] != in[0] || out[1] != in[1] {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestWriteCollection_OverwritesPreviousValue(t *testing.T) {
	store := newTestStore()
	if err := WriteCollection(store, "items", []item{{ID: "1"}, {ID: "2"}}); err != nil {
		t.Fatalf("WriteCollection failed: %v", err)
	}
	if err := WriteCollection(store, "items", []item{{ID: "3"}}); err != nil {
		t.Fatalf("WriteCollection failed: %v", err)
	}
	out := ReadCollection[item](store, "items")
	if len(out) != 1 || out[0].ID != "3" {
		t.Fatalf("expected replacement write, got %+v", out)
	}
}
