// Package ingestion provides validation, embedding and storage of gig listings.
//
// The Ingestor type manages the ingestion workflow:
//   - Validating required listing fields
//   - Generating an embedding from the listing's title and description
//   - Fingerprinting the embedded text for later staleness checks
//   - Persisting the listing
//
// Single-listing ingestion embeds synchronously so the listing is
// immediately searchable. Batch ingestion embeds concurrently on a worker
// pool and tolerates per-listing embedding failures, leaving those
// listings for the backfill tool.
package ingestion
