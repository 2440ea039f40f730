package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// ranking. Implementations must be thread-safe for concurrent use.
//
// The same Embedder serves three call sites: search-time query embedding,
// listing embedding at ingestion, and the offline backfill tool.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails; there is no
	// fallback ranking, so callers treat this as fatal for the request.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a batch, in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryRefiner rewrites a raw user query into a more explicit one:
// exclusions surfaced as "not X", numeric constraints spelled out, vague
// queries answered with a clarification request.
// Implementations must be thread-safe for concurrent use.
type QueryRefiner interface {
	// Refine returns the refined form of the query. Callers are expected
	// to fall back to the raw query when Refine fails; refinement is an
	// improvement, never a requirement.
	Refine(ctx context.Context, query string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// QueryRefiner instances, ensuring they share configuration.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// QueryRefiner returns the query refinement service.
	// The returned QueryRefiner is safe for concurrent use.
	QueryRefiner() QueryRefiner

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
