package backfill

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlyapp/gigsearch/ai/mock"
	"github.com/gridlyapp/gigsearch/core"
	"github.com/gridlyapp/gigsearch/storage"
	"github.com/gridlyapp/gigsearch/storage/badger"
)

func newTestRepo(t *testing.T) storage.ListingRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

// seed stores a listing in one of three embedding states: fresh (embedding
// matches content), stale (content changed after embedding) or unembedded.
func seed(t *testing.T, repo storage.ListingRepository, title, state string) *core.Listing {
	t.Helper()
	listing := &core.Listing{
		Title:       title,
		Description: "description of " + title,
		Price:       "$15",
	}

	switch state {
	case "fresh":
		listing.Embedding = []float32{0.1, 0.2, 0.3}
		listing.ContentHash = core.Fingerprint(listing.EmbeddingText())
	case "stale":
		listing.Embedding = []float32{0.1, 0.2, 0.3}
		listing.ContentHash = core.Fingerprint("some earlier text")
	case "unembedded":
	default:
		t.Fatalf("unknown state %q", state)
	}

	added, err := repo.AddListings(context.Background(), listing)
	require.NoError(t, err)
	return added[0]
}

func TestNeedsEmbedding(t *testing.T) {
	listing := &core.Listing{Title: "gig", Description: "desc"}
	assert.True(t, NeedsEmbedding(listing), "no embedding")

	listing.Embedding = []float32{0.1}
	listing.ContentHash = core.Fingerprint(listing.EmbeddingText())
	assert.False(t, NeedsEmbedding(listing), "embedding current")

	listing.Description = "edited desc"
	assert.True(t, NeedsEmbedding(listing), "content changed after embedding")
}

func TestBatchProcessor_Process(t *testing.T) {
	t.Run("embeds only stale and unembedded listings", func(t *testing.T) {
		repo := newTestRepo(t)
		fresh := seed(t, repo, "fresh gig", "fresh")
		stale := seed(t, repo, "stale gig", "stale")
		missing := seed(t, repo, "unembedded gig", "unembedded")

		embedder := mock.NewMockEmbedder()
		bp := NewBatchProcessor(repo, embedder, 3, time.Millisecond)

		all, err := repo.AllListings(context.Background())
		require.NoError(t, err)

		updated, err := bp.Process(context.Background(), all)
		require.NoError(t, err)
		assert.Equal(t, 2, updated)

		for _, id := range []string{stale.Id, missing.Id} {
			got, err := repo.GetListing(context.Background(), id)
			require.NoError(t, err)
			assert.True(t, got.HasEmbedding())
			assert.Equal(t, core.Fingerprint(got.EmbeddingText()), got.ContentHash)
		}

		// The fresh listing keeps its original vector.
		got, err := repo.GetListing(context.Background(), fresh.Id)
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, got.Embedding)
	})

	t.Run("all fresh is a no-op", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "fresh gig", "fresh")

		embedder := mock.NewMockEmbedder()
		bp := NewBatchProcessor(repo, embedder, 3, time.Millisecond)

		all, err := repo.AllListings(context.Background())
		require.NoError(t, err)

		updated, err := bp.Process(context.Background(), all)
		require.NoError(t, err)
		assert.Zero(t, updated)
		assert.Zero(t, embedder.CallCount())
	})

	t.Run("retries transient embedder failures", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "gig", "unembedded")

		failures := 2
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
			if failures > 0 {
				failures--
				return nil, errors.New("transient")
			}
			out := make([][]float32, len(texts))
			for i := range out {
				out[i] = []float32{0.5}
			}
			return out, nil
		}
		bp := NewBatchProcessor(repo, embedder, 3, time.Millisecond)

		all, err := repo.AllListings(context.Background())
		require.NoError(t, err)

		updated, err := bp.Process(context.Background(), all)
		require.NoError(t, err)
		assert.Equal(t, 1, updated)
	})

	t.Run("fails after exhausting retries", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "gig", "unembedded")

		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(_ context.Context, _ []string) ([][]float32, error) {
			return nil, errors.New("provider down")
		}
		bp := NewBatchProcessor(repo, embedder, 2, time.Millisecond)

		all, err := repo.AllListings(context.Background())
		require.NoError(t, err)

		_, err = bp.Process(context.Background(), all)
		assert.Error(t, err)
	})
}

func TestListingIterator(t *testing.T) {
	repo := newTestRepo(t)
	for i := 0; i < 7; i++ {
		seed(t, repo, fmt.Sprintf("gig %d", i), "unembedded")
	}

	t.Run("visits all listings in batches", func(t *testing.T) {
		it := NewListingIterator(repo, 3)

		var sizes []int
		err := it.ForEach(context.Background(), func(batch []*core.Listing) error {
			sizes = append(sizes, len(batch))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 3, 1}, sizes)
	})

	t.Run("stops on callback error", func(t *testing.T) {
		it := NewListingIterator(repo, 3)

		wantErr := errors.New("stop")
		calls := 0
		err := it.ForEach(context.Background(), func(_ []*core.Listing) error {
			calls++
			return wantErr
		})
		assert.Equal(t, wantErr, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("canceled context", func(t *testing.T) {
		it := NewListingIterator(repo, 3)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := it.ForEach(ctx, func(_ []*core.Listing) error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// scanCountingRepo counts full-collection scans.
type scanCountingRepo struct {
	storage.ListingRepository
	scans int
}

func (r *scanCountingRepo) AllListings(ctx context.Context) ([]*core.Listing, error) {
	r.scans++
	return r.ListingRepository.AllListings(ctx)
}

func TestBackfiller_Run(t *testing.T) {
	t.Run("embeds everything that needs it", func(t *testing.T) {
		repo := newTestRepo(t)
		seed(t, repo, "fresh gig", "fresh")
		seed(t, repo, "stale gig", "stale")
		seed(t, repo, "unembedded gig", "unembedded")

		var out bytes.Buffer
		b := NewBackfiller(repo, mock.NewMockEmbedder(), nil, &out)

		err := b.Run(context.Background())
		require.NoError(t, err)
		assert.Contains(t, out.String(), "embedded 2")

		candidates, err := repo.EmbeddedListings(context.Background())
		require.NoError(t, err)
		assert.Len(t, candidates, 3)
	})

	t.Run("empty database", func(t *testing.T) {
		repo := newTestRepo(t)

		var out bytes.Buffer
		b := NewBackfiller(repo, mock.NewMockEmbedder(), nil, &out)

		err := b.Run(context.Background())
		require.NoError(t, err)
		assert.Contains(t, out.String(), "No listings found")
	})

	t.Run("scans the store once per run", func(t *testing.T) {
		repo := &scanCountingRepo{ListingRepository: newTestRepo(t)}
		seed(t, repo, "stale gig", "stale")
		seed(t, repo, "unembedded gig", "unembedded")

		var out bytes.Buffer
		b := NewBackfiller(repo, mock.NewMockEmbedder(), nil, &out)

		err := b.Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, repo.scans)
	})

	t.Run("custom batch size", func(t *testing.T) {
		repo := newTestRepo(t)
		for i := 0; i < 5; i++ {
			seed(t, repo, fmt.Sprintf("gig %d", i), "unembedded")
		}

		config := &Config{BatchSize: 2, ReportInterval: 1, MaxRetries: 3, RetryDelay: time.Millisecond}
		var out bytes.Buffer
		b := NewBackfiller(repo, mock.NewMockEmbedder(), config, &out)

		err := b.Run(context.Background())
		require.NoError(t, err)

		candidates, err := repo.EmbeddedListings(context.Background())
		require.NoError(t, err)
		assert.Len(t, candidates, 5)
	})
}
