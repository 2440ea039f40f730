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


// Package query extracts structured search constraints from free text.
//
// Extraction is pure pattern matching over the (usually LLM-refined) query
// text: price bounds from phrases like "over $30", "less than $50" and
// "around $40", and exclusion terms from "not <words>" phrases. Extraction
// never fails; absent patterns simply leave the corresponding constraint
// unset.
package query
