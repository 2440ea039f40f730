// Copyright 2025 Gridly Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package backfill

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gridlyapp/gigsearch/ai"
	"github.com/gridlyapp/gigsearch/core"
	"github.com/gridlyapp/gigsearch/storage"
)

// Config holds configuration for the backfill operation.
type Config struct {
	// BatchSize is the number of listings to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of listings)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Backfiller embeds every stored listing whose embedding is missing or
// stale. Listings ingested while the embedding provider was down, and
// listings whose text was edited after embedding, both get picked up.
type Backfiller struct {
	repo      storage.ListingRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ListingIterator
}

// NewBackfiller creates a new backfiller.
// progress: where to write progress output (typically os.Stderr)
func NewBackfiller(repo storage.ListingRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Backfiller {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewListingIterator(repo, config.BatchSize)

	return &Backfiller{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the backfill operation. Every listing in the database is
// checked; stale and unembedded ones are reembedded. Progress is reported
// to the configured writer.
func (b *Backfiller) Run(ctx context.Context) error {
	all, err := b.repo.AllListings(ctx)
	if err != nil {
		return fmt.Errorf("failed to query listings: %w", err)
	}

	total := len(all)
	if total == 0 {
		fmt.Fprintf(b.progress, "No listings found in database (0 listings)\n")
		return nil
	}

	fmt.Fprintf(b.progress, "Starting backfill of %d listings (batch size: %d)\n",
		total, b.config.BatchSize)

	tracker := NewProgressTracker(b.progress, total, b.config.ReportInterval)
	tracker.Start()

	checked := 0
	updated := 0

	err = b.iterator.ForEachOf(ctx, all, func(listings []*core.Listing) error {
		n, err := b.processor.Process(ctx, listings)
		if err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		checked += len(listings)
		updated += n
		tracker.Update(checked)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(b.progress, "Backfill complete. Checked %d listings, embedded %d in %v (%.1f listings/sec)\n",
		total, updated, elapsed.Round(time.Second), float64(total)/elapsed.Seconds())

	return nil
}
