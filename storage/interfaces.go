package storage

import (
	"context"

	"github.com/gridlyapp/gigsearch/core"
)

// ListingRepository provides operations for managing gig listings.
// Implementations must be thread-safe and support concurrent access.
type ListingRepository interface {
	// AddListings adds one or more listings to storage.
	// For listings with an empty Id, generates a new UUID.
	// Sets InsertedAt/UpdatedAt timestamps.
	// Returns the listings with generated IDs and timestamps populated.
	AddListings(ctx context.Context, listings ...*core.Listing) ([]*core.Listing, error)

	// UpdateListings updates existing listings.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any listing doesn't exist.
	UpdateListings(ctx context.Context, listings ...*core.Listing) ([]*core.Listing, error)

	// DeleteListings removes listings by their IDs.
	// Returns ErrNotFound if any listing doesn't exist.
	DeleteListings(ctx context.Context, ids ...string) error

	// GetListing retrieves a single listing by ID.
	// Returns ErrNotFound if the listing doesn't exist.
	GetListing(ctx context.Context, id string) (*core.Listing, error)

	// GetListings retrieves multiple listings by their IDs.
	// Returns only the listings that exist (no error for missing listings).
	GetListings(ctx context.Context, ids ...string) ([]*core.Listing, error)

	// EmbeddedListings returns every listing that has an embedding, in
	// stable key order. This is the candidate-store contract for search:
	// a full scan, no index, and listings without an embedding never
	// appear. Honors ctx cancellation between records.
	EmbeddedListings(ctx context.Context) ([]*core.Listing, error)

	// AllListings returns every listing regardless of embedding state, in
	// stable key order. Used by the backfill tool.
	AllListings(ctx context.Context) ([]*core.Listing, error)

	// Close closes the repository and releases resources.
	Close() error
}
