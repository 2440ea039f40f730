package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/gridlyapp/gigsearch/ai"
	"github.com/gridlyapp/gigsearch/core"
	"github.com/gridlyapp/gigsearch/storage"
)

// BatchProcessor embeds the listings in a batch whose stored embedding is
// missing or stale, and writes them back.
type BatchProcessor struct {
	repo           storage.ListingRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.ListingRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// NeedsEmbedding reports whether a listing's stored embedding is missing
// or was computed from text that has since changed.
func NeedsEmbedding(listing *core.Listing) bool {
	if !listing.HasEmbedding() {
		return true
	}
	return listing.ContentHash != core.Fingerprint(listing.EmbeddingText())
}

// Process embeds the stale listings in the batch and updates them in the
// database. Listings whose embedding is current are left untouched.
// Returns the number of listings updated.
func (bp *BatchProcessor) Process(ctx context.Context, listings []*core.Listing) (int, error) {
	stale := make([]*core.Listing, 0, len(listings))
	for _, listing := range listings {
		if NeedsEmbedding(listing) {
			stale = append(stale, listing)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	texts := make([]string, len(stale))
	for i, listing := range stale {
		texts[i] = listing.EmbeddingText()
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(stale) {
		return 0, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(stale), len(embeddings))
	}

	for i, listing := range stale {
		listing.Embedding = embeddings[i]
		listing.ContentHash = core.Fingerprint(texts[i])
	}

	if _, err := bp.repo.UpdateListings(ctx, stale...); err != nil {
		return 0, fmt.Errorf("failed to update listings: %w", err)
	}

	return len(stale), nil
}
