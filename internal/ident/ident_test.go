package ident

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewID_ProducesParseableUUID(t *testing.T) {
	id := NewID()
	if len(id) != 36 {
		t.Fatalf("expected 36-char id, got %d (%q)", len(id), id)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected parseable uuid, got %q: %v", id, err)
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %q after %d generations", id, i)
		}
		seen[id] = true
	}
}

func TestIsRemoteID(t *testing.T) {
	if !IsRemoteID("4f9f24bb-9d3e-4c5a-8a57-6f2f3f0c9d11") {
		t.Fatalf("expected canonical uuid to be remote-shaped")
	}
	for _, id := range []string{
		"",
		"local-1",
		"4f9f24bb-9d3e-4c5a-8a57",
		"4f9f24bb9d3e4c5a8a576f2f3f0c9d11",
		"not-a-uuid-but-36-characters-long!!!",
	} {
		if IsRemoteID(id) {
			t.Fatalf("expected %q to be rejected", id)
		}
	}
}

func TestFormatV4_SetsVersionAndVariantBits(t *testing.T) {
	var raw [16]byte
	id := formatV4(raw)
	parsed, err := uuid.Parse(id)
	if err != nil {
		t.Fatalf("expected parseable uuid, got %q: %v", id, err)
	}
	if parsed.Version() != 4 {
		t.Fatalf("expected version 4, got %d", parsed.Version())
	}
	if parsed.Variant() != uuid.RFC4122 {
		t.Fatalf("expected RFC 4122 variant, got %v", parsed.Variant())
	}
}
