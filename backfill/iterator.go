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

	"github.com/gridlyapp/gigsearch/core"
	"github.com/gridlyapp/gigsearch/storage"
)

const (
	// DefaultBatchSize is the default number of listings to process in each batch
	DefaultBatchSize = 100
)

// ListingIterator iterates over all stored listings in batches.
type ListingIterator struct {
	repo      storage.ListingRepository
	batchSize int
}

// NewListingIterator creates a new listing iterator.
// batchSize: number of listings in each batch (must be > 0)
func NewListingIterator(repo storage.ListingRepository, batchSize int) *ListingIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ListingIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach loads every stored listing and passes them to fn in batches.
// Iteration stops on the first error from fn or when all listings are
// processed. Context cancellation is checked between batches.
func (it *ListingIterator) ForEach(ctx context.Context, fn func([]*core.Listing) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	listings, err := it.repo.AllListings(ctx)
	if err != nil {
		return err
	}

	return it.ForEachOf(ctx, listings, fn)
}

// ForEachOf batches an already loaded slice through fn, with the same
// stop and cancellation behavior as ForEach. Callers that have just
// scanned the store can pass the result here instead of scanning again.
func (it *ListingIterator) ForEachOf(ctx context.Context, listings []*core.Listing, fn func([]*core.Listing) error) error {
	for i := 0; i < len(listings); i += it.batchSize {
		end := i + it.batchSize
		if end > len(listings) {
			end = len(listings)
		}

		if err := fn(listings[i:end]); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
