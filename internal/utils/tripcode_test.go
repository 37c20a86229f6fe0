package utils

import (
	"strings"
	"testing"
)

func TestGenerateTripCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateTripCode()
		if err != nil {
			t.Fatalf("GenerateTripCode: %v", err)
		}
		if len(code) != TripCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), TripCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(tripCodeAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}

	// 200 draws from a 36^8 space colliding would indicate a broken generator.
	if len(seen) < 200 {
		t.Errorf("expected 200 distinct codes, got %d", len(seen))
	}
}
