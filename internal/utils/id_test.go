package utils

import (
	"testing"

	"github.com/google/uuid"
)

// TestGenerateID tests that generated IDs are valid and unique
func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateID()
		if err != nil {
			t.Fatalf("GenerateID() error = %v", err)
		}
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("GenerateID() = %q is not a UUID: %v", id, err)
		}
		if seen[id] {
			t.Errorf("GenerateID() returned duplicate %q", id)
		}
		seen[id] = true
	}
}

// TestShortID tests display truncation
func TestShortID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"uuid", "0f8e2c4a-1b3d-4e5f-8a9b-0c1d2e3f4a5b", "0f8e2c4a"},
		{"exact length", "abcdefgh", "abcdefgh"},
		{"short", "abc", "abc"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortID(tt.id); got != tt.want {
				t.Errorf("ShortID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}
