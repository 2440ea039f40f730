package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/gridlyapp/gigsearch/ai"
	"github.com/gridlyapp/gigsearch/core"
	"github.com/gridlyapp/gigsearch/storage"
)

// Ingestor validates, embeds and stores gig listings.
type Ingestor struct {
	listings storage.ListingRepository
	embedder ai.Embedder
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor) error

// WithPoolSize sets the worker pool size for batch embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(g *Ingestor) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if g.pool != nil {
			g.pool.Release()
		}
		g.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(g *Ingestor) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewIngestor creates a new listing ingestor.
// Call Release when done to free the worker pool.
func NewIngestor(listings storage.ListingRepository, provider ai.AIProvider, opts ...Option) (*Ingestor, error) {
	if listings == nil {
		return nil, ErrListingRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	g := &Ingestor{
		listings: listings,
		embedder: provider.Embedder(),
		pool:     pool,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(g); err != nil {
			g.Release()
			return nil, err
		}
	}

	return g, nil
}

// Ingest validates and embeds a single listing, then stores it.
// The embedding is computed synchronously so the listing is searchable as
// soon as Ingest returns. An embedding failure fails the ingestion.
func (g *Ingestor) Ingest(ctx context.Context, listing *core.Listing) (*core.Listing, error) {
	if err := core.ValidateListing(listing); err != nil {
		return nil, err
	}

	text := listing.EmbeddingText()
	embedding, err := g.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	listing.Embedding = embedding
	listing.ContentHash = core.Fingerprint(text)

	added, err := g.listings.AddListings(ctx, listing)
	if err != nil {
		return nil, err
	}
	return added[0], nil
}

// IngestBatch validates all listings up front, embeds them concurrently on
// the worker pool, then stores the batch. A listing whose embedding fails
// is stored without one and logged; the backfill tool will embed it later.
// Only validation and storage failures fail the batch.
func (g *Ingestor) IngestBatch(ctx context.Context, listings []*core.Listing) ([]*core.Listing, error) {
	if len(listings) == 0 {
		return nil, nil
	}

	for _, listing := range listings {
		if err := core.ValidateListing(listing); err != nil {
			return nil, err
		}
	}

	var wg sync.WaitGroup
	for _, listing := range listings {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			g.embed(ctx, listing)
		}
		if err := g.pool.Submit(task); err != nil {
			task()
		}
	}
	wg.Wait()

	return g.listings.AddListings(ctx, listings...)
}

func (g *Ingestor) embed(ctx context.Context, listing *core.Listing) {
	text := listing.EmbeddingText()
	embedding, err := g.embedder.EmbedText(ctx, text)
	if err != nil {
		g.logger.Warn("embedding failed, storing listing unembedded",
			"title", listing.Title, "err", err)
		return
	}
	listing.Embedding = embedding
	listing.ContentHash = core.Fingerprint(text)
}

// Release frees the worker pool.
// The ingestor should not be used after calling Release.
func (g *Ingestor) Release() {
	if g.pool != nil {
		g.pool.Release()
	}
}
