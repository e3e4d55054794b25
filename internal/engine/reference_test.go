package engine

import (
	"strings"
	"testing"
)

func TestNewReferenceShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		ref, err := NewReference()
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if !strings.HasPrefix(ref, "MOT-") || len(ref) != 4+referenceBytes*2 {
			t.Fatalf("unexpected reference %q", ref)
		}
		if ref != strings.ToUpper(ref) {
			t.Fatalf("reference not uppercase: %q", ref)
		}
		seen[ref] = true
	}
	// With 200 draws from a 2^32 space duplicates would indicate a broken
	// random source rather than bad luck.
	if len(seen) < 200 {
		t.Fatalf("duplicates among %d references", len(seen))
	}
}
