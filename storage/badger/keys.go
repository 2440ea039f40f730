package badger

// Key prefix for listing records. IDs are UUID strings, so plain string
// concatenation gives a stable lexical scan order.
const listingPrefix = "gig:"

// makeListingKey generates a key for a listing by ID.
func makeListingKey(id string) []byte {
	return []byte(listingPrefix + id)
}
