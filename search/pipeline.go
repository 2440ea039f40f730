package search

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/gridlyapp/gigsearch/ai"
	"github.com/gridlyapp/gigsearch/core"
	"github.com/gridlyapp/gigsearch/query"
	"github.com/gridlyapp/gigsearch/storage"
)

const (
	// SimilarityThreshold is the minimum cosine similarity a listing must
	// exceed (strictly) to appear in results.
	SimilarityThreshold = 0.7

	// TargetPriceTolerance is the maximum absolute distance from a
	// target price ("around $N") that still counts as a match.
	TargetPriceTolerance = 10.0

	// DefaultMaxResults caps the number of ranked listings returned.
	DefaultMaxResults = 10

	// DefaultScanTimeout bounds the full candidate scan of the store.
	DefaultScanTimeout = 5 * time.Second

	// GreetingReply is the canned response for bare greetings.
	GreetingReply = "Hi! How can I assist you today?"
)

// QueryType values reported in DebugInfo.
const (
	QueryTypeGreeting = "greeting"
	QueryTypeSearch   = "search"
)

var greetings = map[string]bool{
	"hi":        true,
	"hello":     true,
	"hey":       true,
	"howdy":     true,
	"greetings": true,
	"what's up": true,
}

// IsGreeting reports whether the query is a bare greeting after trimming
// whitespace and lowercasing. Greetings short-circuit the pipeline.
func IsGreeting(q string) bool {
	return greetings[strings.ToLower(strings.TrimSpace(q))]
}

// Response is the result of one pipeline run.
type Response struct {
	// Reply is the refined query for searches, or a canned reply for greetings.
	Reply string               `json:"reply"`
	Gigs  []core.ScoredListing `json:"gigs"`
	Debug DebugInfo            `json:"debug_info"`
}

// DebugInfo carries per-request diagnostics alongside the results.
type DebugInfo struct {
	QueryType         string                `json:"query_type"`
	ExecutionTime     float64               `json:"execution_time"`
	CandidatesScanned int                   `json:"candidates_scanned"`
	TotalMatched      int                   `json:"total_gigs_matched"`
	Constraints       core.QueryConstraints `json:"price_constraints"`
	QueryRefined      bool                  `json:"query_refinement"`
}

// Pipeline ranks stored listings against natural-language queries.
type Pipeline struct {
	listings    storage.ListingRepository
	embedder    ai.Embedder
	refiner     ai.QueryRefiner
	pool        *ants.Pool
	maxResults  int
	scanTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithMaxResults caps the number of ranked listings returned.
// Default is DefaultMaxResults. Values below 1 are ignored.
func WithMaxResults(n int) Option {
	return func(p *Pipeline) error {
		if n >= 1 {
			p.maxResults = n
		}
		return nil
	}
}

// WithScanTimeout bounds the candidate scan of the store.
// Default is DefaultScanTimeout.
func WithScanTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d > 0 {
			p.scanTimeout = d
		}
		return nil
	}
}

// WithPoolSize sets the number of workers scoring candidates.
// Default is half the CPU count, minimum 1.
func WithPoolSize(n int) Option {
	return func(p *Pipeline) error {
		if n < 1 {
			return nil
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		return nil
	}
}

// NewPipeline creates a search pipeline over the given repository and
// AI provider. Call Close when done to release the worker pool.
func NewPipeline(listings storage.ListingRepository, provider ai.AIProvider, opts ...Option) (*Pipeline, error) {
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

	p := &Pipeline{
		listings:    listings,
		embedder:    provider.Embedder(),
		refiner:     provider.QueryRefiner(),
		pool:        pool,
		maxResults:  DefaultMaxResults,
		scanTimeout: DefaultScanTimeout,
		logger:      slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(p); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return p, nil
}

// Close releases the worker pool.
func (p *Pipeline) Close() {
	p.pool.Release()
}

// Search runs the full pipeline for a raw user query.
// Failures are returned as *PipelineError so callers can map them to a
// transport-appropriate surface.
func (p *Pipeline) Search(ctx context.Context, rawQuery string) (*Response, error) {
	return p.SearchWithMonitor(ctx, rawQuery, nil)
}

// SearchWithMonitor runs the full pipeline with monitoring.
// The monitor receives callbacks at each stage of the pipeline.
func (p *Pipeline) SearchWithMonitor(ctx context.Context, rawQuery string, monitor Monitor) (*Response, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	start := time.Now()

	if strings.TrimSpace(rawQuery) == "" {
		return nil, clientError(ErrEmptyQuery)
	}

	monitor.Start(rawQuery)

	// Greetings never reach the refiner, the embedder or the store.
	if IsGreeting(rawQuery) {
		resp := &Response{
			Reply: GreetingReply,
			Gigs:  []core.ScoredListing{},
			Debug: DebugInfo{
				QueryType:     QueryTypeGreeting,
				ExecutionTime: time.Since(start).Seconds(),
			},
		}
		monitor.Finish(resp)
		return resp, nil
	}

	refined := p.refine(ctx, rawQuery)
	monitor.AfterRefinement(refined, refined != rawQuery)

	constraints := query.Extract(refined)
	monitor.AfterConstraintExtraction(constraints)

	embedding, err := p.embedder.EmbedText(ctx, refined)
	if err != nil {
		p.logger.Error("error generating embedding for query", "query", refined, "err", err)
		return nil, embeddingError(err)
	}
	monitor.AfterEmbedding(len(embedding))

	scanCtx, cancel := context.WithTimeout(ctx, p.scanTimeout)
	candidates, err := p.listings.EmbeddedListings(scanCtx)
	cancel()
	if err != nil {
		p.logger.Error("error scanning listings", "err", err)
		return nil, storeError(err)
	}
	monitor.AfterScan(len(candidates))

	scored := p.evaluate(ctx, embedding, constraints, candidates)
	scored = dedupe(scored)

	// Ties keep their scan order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	totalMatched := len(scored)
	if len(scored) > p.maxResults {
		scored = scored[:p.maxResults]
	}

	resp := &Response{
		Reply: refined,
		Gigs:  scored,
		Debug: DebugInfo{
			QueryType:         QueryTypeSearch,
			ExecutionTime:     time.Since(start).Seconds(),
			CandidatesScanned: len(candidates),
			TotalMatched:      totalMatched,
			Constraints:       constraints,
			QueryRefined:      refined != rawQuery,
		},
	}
	monitor.Finish(resp)
	return resp, nil
}

// refine asks the refiner to rewrite the query. Refinement is best-effort:
// on failure or an empty rewrite the raw query is used unchanged.
func (p *Pipeline) refine(ctx context.Context, rawQuery string) string {
	refined, err := p.refiner.Refine(ctx, rawQuery)
	if err != nil {
		p.logger.Warn("query refinement failed, using raw query", "err", err)
		return rawQuery
	}
	if strings.TrimSpace(refined) == "" {
		return rawQuery
	}
	return refined
}

// evaluate scores every candidate against the query vector and constraints.
// Candidates are independent, so they are scored on the worker pool; results
// land in per-candidate slots so that scan order survives the fan-out.
func (p *Pipeline) evaluate(ctx context.Context, queryVec []float32, constraints core.QueryConstraints, candidates []*core.Listing) []core.ScoredListing {
	slots := make([]*core.ScoredListing, len(candidates))

	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			slots[i] = p.evaluateCandidate(queryVec, constraints, candidate)
		}
		if err := p.pool.Submit(task); err != nil {
			// Pool is released or saturated; score inline rather than drop.
			task()
		}
	}
	wg.Wait()

	scored := make([]core.ScoredListing, 0, len(candidates))
	for _, s := range slots {
		if s != nil {
			scored = append(scored, *s)
		}
	}
	return scored
}

// evaluateCandidate applies the price and exclusion filters, then the
// similarity threshold. Returns nil when the listing is filtered out.
func (p *Pipeline) evaluateCandidate(queryVec []float32, c core.QueryConstraints, listing *core.Listing) *core.ScoredListing {
	if listing == nil {
		return nil
	}

	price, ok := core.ParsePrice(listing.Price)
	if !ok {
		// Unparseable prices count as 0 so the listing stays in play.
		p.logger.Debug("listing price not parseable, treating as zero",
			"id", listing.Id, "price", listing.Price)
		price = 0
	}
	if c.MinPrice != nil && price < *c.MinPrice {
		return nil
	}
	if c.MaxPrice != nil && price > *c.MaxPrice {
		return nil
	}
	if c.TargetPrice != nil && math.Abs(price-*c.TargetPrice) > TargetPriceTolerance {
		return nil
	}
	if matchesExclusion(listing, c.Exclusions) {
		return nil
	}

	similarity := Cosine(queryVec, listing.Embedding)
	if similarity <= SimilarityThreshold {
		return nil
	}

	return &core.ScoredListing{Listing: listing, Similarity: similarity}
}

// matchesExclusion reports whether any excluded term appears as a substring
// of the listing's category or description, case-insensitively.
func matchesExclusion(listing *core.Listing, exclusions []string) bool {
	if len(exclusions) == 0 {
		return false
	}
	category := strings.ToLower(listing.Category)
	description := strings.ToLower(listing.Description)
	for _, term := range exclusions {
		if strings.Contains(category, term) || strings.Contains(description, term) {
			return true
		}
	}
	return false
}

// dedupe drops repeated listing IDs, keeping the first occurrence.
func dedupe(scored []core.ScoredListing) []core.ScoredListing {
	if len(scored) < 2 {
		return scored
	}
	seen := make(map[string]bool, len(scored))
	out := scored[:0]
	for _, s := range scored {
		if seen[s.Listing.Id] {
			continue
		}
		seen[s.Listing.Id] = true
		out = append(out, s)
	}
	return out
}
