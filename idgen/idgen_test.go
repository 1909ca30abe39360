package idgen

import (
	"strings"
	"testing"
)

func TestUUIDv7_Format(t *testing.T) {
	id := UUIDv7()()
	if len(id) != 36 || len(strings.Split(id, "-")) != 5 {
		t.Fatalf("UUIDv7: malformed %q", id)
	}
	// version nibble
	if id[14] != '7' {
		t.Fatalf("UUIDv7: version %c in %q", id[14], id)
	}
}

func TestNewRunID(t *testing.T) {
	seen := make(map[string]struct{}, 100)
	for i := 0; i < 100; i++ {
		id := NewRunID()
		if !strings.HasPrefix(id, "run_") {
			t.Fatalf("missing prefix: %q", id)
		}
		if !ValidRunID(id) {
			t.Fatalf("ValidRunID(%q) = false", id)
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate at %d: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestValidRunID_Rejects(t *testing.T) {
	for _, id := range []string{"", "run_", "run_nope", "job_0190a3b4-5c6d-7e8f-9a0b-1c2d3e4f5a6b"} {
		if ValidRunID(id) {
			t.Errorf("ValidRunID(%q) = true", id)
		}
	}
}
