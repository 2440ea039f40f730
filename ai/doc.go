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


// Package ai provides abstractions for the AI services used by gigsearch.
//
// Two interfaces carry the whole external AI surface:
//
//   - Embedder: turns text into a fixed-length vector
//   - QueryRefiner: rewrites a raw user query into a more explicit one
//
// AIProvider aggregates both for convenient initialization. The search
// pipeline, ingestion, and backfill all depend on these interfaces rather
// than any concrete client, so tests can substitute fakes and the service
// can point at any OpenAI-compatible endpoint.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//     (via langchaingo)
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors in ai/openai return interface types to enforce
// abstraction; the mock constructors return concrete types so tests can
// inject behavior and assert call counts.
package ai
