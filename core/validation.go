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


package core

import (
	"fmt"
	"time"
)

// ValidateListing validates a Listing according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Description must not be empty
//   - PostedDate, when set, must not be in the future
//
// NOT validated (populated by processors):
//   - Embedding (can be empty until the listing is embedded)
//   - ContentHash (set together with Embedding)
//   - Id ("" is valid; storage assigns one on insert)
func ValidateListing(listing *Listing) error {
	if listing == nil {
		return fmt.Errorf("%w: listing is nil", ErrInvalidListing)
	}

	if listing.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidListing, ErrEmptyTitle)
	}

	if listing.Description == "" {
		return fmt.Errorf("%w: %w", ErrInvalidListing, ErrEmptyDescription)
	}

	if !listing.PostedDate.IsZero() && !IsValidTimestamp(listing.PostedDate) {
		return fmt.Errorf("%w: %w", ErrInvalidListing, ErrInvalidPostedDate)
	}

	return nil
}

// IsValidTimestamp checks if a timestamp is valid (not in the future).
func IsValidTimestamp(ts time.Time) bool {
	return !ts.After(time.Now())
}
