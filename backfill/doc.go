// Package backfill embeds stored listings whose embedding is missing or
// out of date.
//
// A listing needs embedding when it has no vector at all, or when its
// content fingerprint no longer matches the text the stored embedding was
// computed from. The package supports batch processing, progress tracking
// and retry logic with exponential backoff.
package backfill
