package random

import (
	"strings"
	"testing"
)

func TestTableCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code := TableCode(6)
		if len(code) != 6 {
			t.Fatalf("expected 6 characters, got %q", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("unexpected character %q in %q", r, code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Fatalf("codes repeat too often: %d distinct of 50", len(seen))
	}
	if TableCode(0) != "" {
		t.Fatalf("expected empty code for zero length")
	}
}
