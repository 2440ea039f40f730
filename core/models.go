package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// Listing represents a gig offered on the platform. The free-text fields
// come straight from the poster; Price in particular is whatever they
// typed ("$25/hour", "40 flat"); ParsePrice handles the malformed cases.
type Listing struct {
	Id          string
	Title       string
	Description string
	Category    string
	University  string
	Price       string
	Images      []string
	PostedDate  time.Time // zero when the poster gave no date
	Embedding   []float32 // empty until the listing has been embedded
	ContentHash uint64    // fingerprint of the text the embedding was computed from
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// EmbeddingText returns the text a listing's embedding is computed from.
// Ingestion and backfill must agree on this, otherwise backfill would
// consider every listing stale.
func (l *Listing) EmbeddingText() string {
	return l.Title + " " + l.Description
}

// HasEmbedding reports whether the listing can serve as a search candidate.
func (l *Listing) HasEmbedding() bool {
	return len(l.Embedding) > 0
}

// Fingerprint generates a deterministic 64-bit hash of text content using
// BLAKE2b. Identical content always produces the same fingerprint, which is
// how backfill detects listings whose stored embedding is out of date.
func Fingerprint(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// QueryConstraints holds the structured filters derived from a refined
// query. It is built once per request and never mutated afterwards.
type QueryConstraints struct {
	MinPrice    *float64
	MaxPrice    *float64
	TargetPrice *float64
	Exclusions  []string // lowercase substrings; any match drops a listing
}

// IsZero reports whether no constraint was derived from the query.
func (c QueryConstraints) IsZero() bool {
	return c.MinPrice == nil && c.MaxPrice == nil && c.TargetPrice == nil && len(c.Exclusions) == 0
}

// ScoredListing pairs a candidate listing with its similarity to the query
// embedding. It only exists for the duration of a single search request.
type ScoredListing struct {
	Listing    *Listing
	Similarity float64
}
