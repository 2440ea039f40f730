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


// Package search ranks stored gig listings against natural-language queries.
//
// The Pipeline type implements the full request flow:
//   - Greeting detection with a canned short-circuit reply
//   - Best-effort query refinement through a chat model
//   - Price and exclusion constraint extraction from the refined text
//   - Query embedding and a full scan of embedded listings
//   - Cosine-similarity ranking with price and exclusion filters
//
// Refinement failures degrade to the raw query; embedding and store
// failures are fatal and surface as classified PipelineError values.
package search
