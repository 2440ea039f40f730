package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlyapp/gigsearch/ai/mock"
	"github.com/gridlyapp/gigsearch/core"
	"github.com/gridlyapp/gigsearch/storage"
	"github.com/gridlyapp/gigsearch/storage/badger"
)

// queryVector is what the mock embedder returns for every query. Seeding a
// listing with embeddingWithSimilarity(s) makes its cosine against the
// query exactly s.
var queryVector = []float32{1, 0}

func embeddingWithSimilarity(s float64) []float32 {
	return []float32{float32(s), float32(math.Sqrt(1 - s*s))}
}

func newTestProvider() (*mock.MockProvider, *mock.MockEmbedder, *mock.MockRefiner) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return queryVector, nil
	}
	refiner := mock.NewMockRefiner()
	provider := mock.NewMockProviderWithServices(embedder, refiner).(*mock.MockProvider)
	return provider, embedder, refiner
}

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

func seedListing(t *testing.T, repo storage.ListingRepository, title, price string, similarity float64) *core.Listing {
	t.Helper()
	listing := &core.Listing{
		Title:       title,
		Description: title + " description",
		Category:    "General",
		Price:       price,
		Embedding:   embeddingWithSimilarity(similarity),
	}
	added, err := repo.AddListings(context.Background(), listing)
	require.NoError(t, err)
	return added[0]
}

func TestNewPipeline(t *testing.T) {
	repo := newTestRepo(t)
	provider, _, _ := newTestProvider()

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(repo, provider)
		require.NoError(t, err)
		assert.NotNil(t, p)
		p.Close()
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewPipeline(nil, provider)
		assert.Equal(t, ErrListingRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewPipeline(repo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("with options", func(t *testing.T) {
		p, err := NewPipeline(repo, provider,
			WithLogger(nil),
			WithMaxResults(3),
			WithPoolSize(2))
		require.NoError(t, err)
		assert.Equal(t, 3, p.maxResults)
		p.Close()
	})
}

func TestSearch_Greeting(t *testing.T) {
	repo := &countingRepo{}
	provider, embedder, refiner := newTestProvider()

	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	for _, greeting := range []string{"hi", "Hello", "HEY", "howdy", "greetings", "what's up", "  hello  "} {
		resp, err := p.Search(context.Background(), greeting)
		require.NoError(t, err, greeting)
		assert.Equal(t, GreetingReply, resp.Reply)
		assert.Empty(t, resp.Gigs)
		assert.Equal(t, QueryTypeGreeting, resp.Debug.QueryType)
	}

	// A greeting must never reach the refiner, the embedder or the store.
	assert.Zero(t, refiner.CallCount())
	assert.Zero(t, embedder.CallCount())
	assert.Zero(t, repo.scanCalls)
}

func TestSearch_GreetingRequiresExactPhrase(t *testing.T) {
	repo := newTestRepo(t)
	seedListing(t, repo, "greeting card design", "$20", 0.9)
	provider, _, _ := newTestProvider()

	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	resp, err := p.Search(context.Background(), "hello world photography")
	require.NoError(t, err)
	assert.Equal(t, QueryTypeSearch, resp.Debug.QueryType)
	assert.NotEqual(t, GreetingReply, resp.Reply)
}

func TestSearch_EmptyQuery(t *testing.T) {
	repo := newTestRepo(t)
	provider, _, _ := newTestProvider()

	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := p.Search(context.Background(), q)
		var pe *PipelineError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, KindClientInput, pe.Kind)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	}
}

func TestSearch_RankingOrder(t *testing.T) {
	repo := newTestRepo(t)
	high := seedListing(t, repo, "logo design", "$30", 0.9)
	mid := seedListing(t, repo, "poster design", "$30", 0.75)
	low := seedListing(t, repo, "flyer design", "$30", 0.71)
	seedListing(t, repo, "unrelated moving help", "$30", 0.65)
	seedListing(t, repo, "borderline gig", "$30", 0.7) // threshold is strict

	provider, _, _ := newTestProvider()
	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	resp, err := p.Search(context.Background(), "design work")
	require.NoError(t, err)

	require.Len(t, resp.Gigs, 3)
	assert.Equal(t, high.Id, resp.Gigs[0].Listing.Id)
	assert.Equal(t, mid.Id, resp.Gigs[1].Listing.Id)
	assert.Equal(t, low.Id, resp.Gigs[2].Listing.Id)
	for i := 1; i < len(resp.Gigs); i++ {
		assert.GreaterOrEqual(t, resp.Gigs[i-1].Similarity, resp.Gigs[i].Similarity)
	}

	assert.Equal(t, QueryTypeSearch, resp.Debug.QueryType)
	assert.Equal(t, 5, resp.Debug.CandidatesScanned)
	assert.Equal(t, 3, resp.Debug.TotalMatched)
	assert.GreaterOrEqual(t, resp.Debug.ExecutionTime, 0.0)
}

func TestSearch_UnembeddedListingsExcluded(t *testing.T) {
	repo := newTestRepo(t)
	seedListing(t, repo, "embedded gig", "$30", 0.9)
	_, err := repo.AddListings(context.Background(), &core.Listing{
		Title:       "unembedded gig",
		Description: "never embedded",
		Price:       "$30",
	})
	require.NoError(t, err)

	provider, _, _ := newTestProvider()
	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	resp, err := p.Search(context.Background(), "any gig")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Debug.CandidatesScanned)
	require.Len(t, resp.Gigs, 1)
	assert.Equal(t, "embedded gig", resp.Gigs[0].Listing.Title)
}

func TestSearch_PriceFilters(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		matched bool
	}{
		{"min above listing price", "design over $50", false},
		{"min below listing price", "design over $30", true},
		{"max below listing price", "design less than $30", false},
		{"max above listing price", "design less than $50", true},
		{"min and max bracket price", "design more than $30 less than $50", true},
		{"target within tolerance", "design around $45", true},
		{"target at tolerance edge", "design around $50", true},
		{"target outside tolerance", "design around $20", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newTestRepo(t)
			seedListing(t, repo, "design", "$40", 0.9)

			provider, _, _ := newTestProvider()
			p, err := NewPipeline(repo, provider)
			require.NoError(t, err)
			defer p.Close()

			resp, err := p.Search(context.Background(), tt.query)
			require.NoError(t, err)
			if tt.matched {
				assert.Len(t, resp.Gigs, 1)
			} else {
				assert.Empty(t, resp.Gigs)
			}
		})
	}
}

func TestSearch_UnparseablePriceTreatedAsZero(t *testing.T) {
	repo := newTestRepo(t)
	seedListing(t, repo, "design", "negotiable", 0.9)

	provider, _, _ := newTestProvider()
	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	// A zero price passes a max constraint but fails a min constraint.
	resp, err := p.Search(context.Background(), "design less than $50")
	require.NoError(t, err)
	assert.Len(t, resp.Gigs, 1)

	resp, err = p.Search(context.Background(), "design over $10")
	require.NoError(t, err)
	assert.Empty(t, resp.Gigs)
}

func TestSearch_Exclusions(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.AddListings(context.Background(),
		&core.Listing{
			Title:       "math help",
			Description: "one on one tutoring sessions",
			Category:    "Education",
			Price:       "$20",
			Embedding:   embeddingWithSimilarity(0.9),
		},
		&core.Listing{
			Title:       "essay review",
			Description: "detailed feedback on drafts",
			Category:    "Tutoring",
			Price:       "$20",
			Embedding:   embeddingWithSimilarity(0.9),
		},
		&core.Listing{
			Title:       "dog walking",
			Description: "daily walks around campus",
			Category:    "Pets",
			Price:       "$20",
			Embedding:   embeddingWithSimilarity(0.9),
		})
	require.NoError(t, err)

	provider, _, _ := newTestProvider()
	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	// Excluded terms match category and description, case-insensitively.
	resp, err := p.Search(context.Background(), "campus gigs not tutoring")
	require.NoError(t, err)
	require.Len(t, resp.Gigs, 1)
	assert.Equal(t, "dog walking", resp.Gigs[0].Listing.Title)
	assert.Equal(t, []string{"tutoring"}, resp.Debug.Constraints.Exclusions)
}

func TestSearch_RefinementFallback(t *testing.T) {
	repo := newTestRepo(t)
	seedListing(t, repo, "design", "$40", 0.9)

	provider, _, refiner := newTestProvider()
	refiner.RefineFunc = func(_ context.Context, _ string) (string, error) {
		return "", errors.New("model unavailable")
	}

	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	// Refinement failure degrades to the raw query, it never fails the search.
	resp, err := p.Search(context.Background(), "design work")
	require.NoError(t, err)
	assert.Equal(t, "design work", resp.Reply)
	assert.False(t, resp.Debug.QueryRefined)
	assert.Len(t, resp.Gigs, 1)
}

func TestSearch_RefinementRewrite(t *testing.T) {
	repo := newTestRepo(t)
	seedListing(t, repo, "design", "$40", 0.9)

	provider, _, refiner := newTestProvider()
	refiner.RefineFunc = func(_ context.Context, _ string) (string, error) {
		return "graphic design over $30, not tutoring", nil
	}

	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	resp, err := p.Search(context.Background(), "cheap design stuff")
	require.NoError(t, err)
	assert.Equal(t, "graphic design over $30, not tutoring", resp.Reply)
	assert.True(t, resp.Debug.QueryRefined)

	// Constraints come from the refined text, not the raw query.
	require.NotNil(t, resp.Debug.Constraints.MinPrice)
	assert.Equal(t, 30.0, *resp.Debug.Constraints.MinPrice)
	assert.Equal(t, []string{"tutoring"}, resp.Debug.Constraints.Exclusions)
}

func TestSearch_EmbeddingFailureIsFatal(t *testing.T) {
	repo := &countingRepo{}
	provider, embedder, _ := newTestProvider()
	embedder.EmbedTextFunc = func(_ context.Context, _ string) ([]float32, error) {
		return nil, errors.New("connection refused")
	}

	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Search(context.Background(), "design work")
	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindUpstreamEmbedding, pe.Kind)

	// The store must not be scanned when embedding fails.
	assert.Zero(t, repo.scanCalls)
}

func TestSearch_StoreFailure(t *testing.T) {
	repo := &countingRepo{scanErr: errors.New("store offline")}
	provider, _, _ := newTestProvider()

	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Search(context.Background(), "design work")
	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindStoreUnavailable, pe.Kind)
}

func TestSearch_DedupKeepsFirstOccurrence(t *testing.T) {
	dup := &core.Listing{
		Id:          "dup-1",
		Title:       "design",
		Description: "design description",
		Price:       "$40",
		Embedding:   embeddingWithSimilarity(0.9),
	}
	repo := &countingRepo{embedded: []*core.Listing{dup, dup, dup}}

	provider, _, _ := newTestProvider()
	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	resp, err := p.Search(context.Background(), "design work")
	require.NoError(t, err)
	require.Len(t, resp.Gigs, 1)
	assert.Equal(t, "dup-1", resp.Gigs[0].Listing.Id)
	assert.Equal(t, 1, resp.Debug.TotalMatched)
}

func TestSearch_Truncation(t *testing.T) {
	repo := newTestRepo(t)
	for i := 0; i < 15; i++ {
		seedListing(t, repo, fmt.Sprintf("design gig %d", i), "$40", 0.8)
	}

	provider, _, _ := newTestProvider()

	t.Run("default cap", func(t *testing.T) {
		p, err := NewPipeline(repo, provider)
		require.NoError(t, err)
		defer p.Close()

		resp, err := p.Search(context.Background(), "design work")
		require.NoError(t, err)
		assert.Len(t, resp.Gigs, DefaultMaxResults)
		assert.Equal(t, 15, resp.Debug.TotalMatched)
	})

	t.Run("custom cap", func(t *testing.T) {
		p, err := NewPipeline(repo, provider, WithMaxResults(5))
		require.NoError(t, err)
		defer p.Close()

		resp, err := p.Search(context.Background(), "design work")
		require.NoError(t, err)
		assert.Len(t, resp.Gigs, 5)
		assert.Equal(t, 15, resp.Debug.TotalMatched)
	})
}

func TestSearchWithMonitor(t *testing.T) {
	repo := newTestRepo(t)
	seedListing(t, repo, "design", "$40", 0.9)

	provider, _, _ := newTestProvider()
	p, err := NewPipeline(repo, provider)
	require.NoError(t, err)
	defer p.Close()

	mon := &recordingMonitor{}
	resp, err := p.SearchWithMonitor(context.Background(), "design work", mon)
	require.NoError(t, err)

	assert.Equal(t, "design work", mon.started)
	assert.Equal(t, 1, mon.scanned)
	assert.Equal(t, len(queryVector), mon.dimensions)
	assert.Same(t, resp, mon.finished)
}

// countingRepo is a minimal ListingRepository for exercising failure paths
// and call ordering without a real store behind it.
type countingRepo struct {
	embedded  []*core.Listing
	scanErr   error
	scanCalls int
}

var _ storage.ListingRepository = (*countingRepo)(nil)

func (r *countingRepo) AddListings(_ context.Context, listings ...*core.Listing) ([]*core.Listing, error) {
	return listings, nil
}

func (r *countingRepo) UpdateListings(_ context.Context, listings ...*core.Listing) ([]*core.Listing, error) {
	return listings, nil
}

func (r *countingRepo) DeleteListings(_ context.Context, _ ...string) error { return nil }

func (r *countingRepo) GetListing(_ context.Context, _ string) (*core.Listing, error) {
	return nil, storage.ErrNotFound
}

func (r *countingRepo) GetListings(_ context.Context, _ ...string) ([]*core.Listing, error) {
	return nil, nil
}

func (r *countingRepo) EmbeddedListings(_ context.Context) ([]*core.Listing, error) {
	r.scanCalls++
	if r.scanErr != nil {
		return nil, r.scanErr
	}
	return r.embedded, nil
}

func (r *countingRepo) AllListings(_ context.Context) ([]*core.Listing, error) {
	return r.embedded, nil
}

func (r *countingRepo) Close() error { return nil }

type recordingMonitor struct {
	started    string
	refined    string
	dimensions int
	scanned    int
	finished   *Response
}

var _ Monitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(query string)                            { m.started = query }
func (m *recordingMonitor) AfterRefinement(refined string, _ bool)        { m.refined = refined }
func (m *recordingMonitor) AfterConstraintExtraction(core.QueryConstraints) {}
func (m *recordingMonitor) AfterEmbedding(dim int)                        { m.dimensions = dim }
func (m *recordingMonitor) AfterScan(candidates int)                      { m.scanned = candidates }
func (m *recordingMonitor) Finish(resp *Response)                         { m.finished = resp }
