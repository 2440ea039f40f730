// Package httpapi exposes gig search and ingestion over HTTP.
//
// Endpoints:
//   - POST /search  runs the search pipeline for a natural-language query
//   - POST /ingest  validates, embeds and stores a new listing
//   - GET  /health  liveness check
//
// Pipeline failures are mapped by their classification: client input
// problems become 400 responses, upstream and store failures become 500
// responses carrying a debug_info block with the failure type.
package httpapi
