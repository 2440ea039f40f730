package search

import "math"

// Cosine returns the cosine similarity of two embedding vectors: their dot
// product divided by the product of their magnitudes. The result is in
// [-1, 1] for well-formed inputs.
//
// The mathematically undefined cases fall back to 0: a zero-magnitude
// vector on either side, or vectors of different lengths (which indicates
// a model mismatch, not a near neighbor).
//
// Cosine is pure, deterministic and symmetric.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		magA += av * av
		magB += bv * bv
	}

	denom := math.Sqrt(magA) * math.Sqrt(magB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
