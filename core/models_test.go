package core

import (
	"testing"
)

func TestFingerprint(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "same content produces same fingerprint",
			content: "Math tutoring Help with calculus homework",
		},
		{
			name:    "empty string",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f1 := Fingerprint(tt.content)
			f2 := Fingerprint(tt.content)

			if f1 != f2 {
				t.Errorf("Fingerprint() produced different values for same content: %d vs %d", f1, f2)
			}
		})
	}
}

func TestFingerprint_Different(t *testing.T) {
	f1 := Fingerprint("dog walking")
	f2 := Fingerprint("dog walking ")

	if f1 == f2 {
		t.Errorf("Fingerprint() produced same value for different content")
	}
}

func TestListing_EmbeddingText(t *testing.T) {
	listing := &Listing{
		Title:       "Guitar lessons",
		Description: "Beginner friendly acoustic guitar lessons",
	}

	want := "Guitar lessons Beginner friendly acoustic guitar lessons"
	if got := listing.EmbeddingText(); got != want {
		t.Errorf("EmbeddingText() = %q, want %q", got, want)
	}
}

func TestListing_HasEmbedding(t *testing.T) {
	listing := &Listing{}
	if listing.HasEmbedding() {
		t.Error("HasEmbedding() = true for listing without embedding")
	}

	listing.Embedding = []float32{0.1, 0.2}
	if !listing.HasEmbedding() {
		t.Error("HasEmbedding() = false for listing with embedding")
	}
}
