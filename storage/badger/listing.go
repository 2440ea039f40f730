package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/gridlyapp/gigsearch/core"
	"github.com/gridlyapp/gigsearch/storage"
)

// ListingRepository implements storage.ListingRepository for BadgerDB.
type ListingRepository struct {
	backend *Backend
}

var _ storage.ListingRepository = (*ListingRepository)(nil)

// NewListingRepository creates a new ListingRepository.
func NewListingRepository(backend *Backend) (*ListingRepository, error) {
	return &ListingRepository{backend: backend}, nil
}

// Close releases repository resources.
func (r *ListingRepository) Close() error {
	return nil
}

// AddListings adds one or more listings to storage.
func (r *ListingRepository) AddListings(ctx context.Context, listings ...*core.Listing) ([]*core.Listing, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, listing := range listings {
			if listing.Id == "" {
				listing.Id = uuid.NewString()
			}

			listing.InsertedAt = time.Now().UTC()
			listing.UpdatedAt = listing.InsertedAt

			key := makeListingKey(listing.Id)
			if err := tx.Set(key, storage.MarshalListing(listing)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return listings, err
}

// UpdateListings updates existing listings.
func (r *ListingRepository) UpdateListings(ctx context.Context, listings ...*core.Listing) ([]*core.Listing, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, listing := range listings {
			key := makeListingKey(listing.Id)

			old, err := r.readListing(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			listing.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalListing(listing)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return listings, err
}

// DeleteListings removes listings by their IDs.
func (r *ListingRepository) DeleteListings(ctx context.Context, ids ...string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeListingKey(id)

			listing, err := r.readListing(tx, key)
			if err != nil {
				return err
			}
			if listing == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetListing retrieves a single listing by ID.
func (r *ListingRepository) GetListing(ctx context.Context, id string) (*core.Listing, error) {
	var result *core.Listing
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readListing(tx, makeListingKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetListings retrieves multiple listings by their IDs.
// Missing listings are skipped, not reported as errors.
func (r *ListingRepository) GetListings(ctx context.Context, ids ...string) ([]*core.Listing, error) {
	results := make([]*core.Listing, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			listing, err := r.readListing(tx, makeListingKey(id))
			if err != nil {
				return err
			}
			if listing != nil {
				results = append(results, listing)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// EmbeddedListings returns every listing that has an embedding, in key
// order. Full scan by contract: the search pipeline ranks against the
// whole candidate set on every query.
func (r *ListingRepository) EmbeddedListings(ctx context.Context) ([]*core.Listing, error) {
	return r.scan(ctx, func(l *core.Listing) bool { return l.HasEmbedding() })
}

// AllListings returns every listing in key order.
func (r *ListingRepository) AllListings(ctx context.Context) ([]*core.Listing, error) {
	return r.scan(ctx, func(l *core.Listing) bool { return true })
}

// scan iterates the listing keyspace and collects listings accepted by
// keep. Context cancellation is honored between records so a scan-wide
// deadline cuts a slow scan short.
func (r *ListingRepository) scan(ctx context.Context, keep func(*core.Listing) bool) ([]*core.Listing, error) {
	var results []*core.Listing

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(listingPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var listing *core.Listing
			err := iter.Item().Value(func(val []byte) error {
				var err error
				listing, err = storage.UnmarshalListing(val)
				return err
			})
			if err != nil {
				return err
			}

			if listing != nil && keep(listing) {
				results = append(results, listing)
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return results, nil
}

// readListing reads and deserializes a listing inside a transaction.
// Returns nil (no error) when the key is absent.
func (r *ListingRepository) readListing(tx *badger.Txn, key []byte) (*core.Listing, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var listing *core.Listing
	err = item.Value(func(val []byte) error {
		var err error
		listing, err = storage.UnmarshalListing(val)
		return err
	})
	return listing, err
}
