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


// Package storage defines the persistence interfaces for gig listings.
//
// The ListingRepository is the candidate store of the search pipeline:
// EmbeddedListings is by contract a full scan over every embedded listing.
// The deliberate absence of an index is isolated behind this interface so
// an approximate-nearest-neighbor backend could replace the scan without
// touching the pipeline.
//
// The storage/badger sub-package provides the embedded BadgerDB
// implementation.
package storage
