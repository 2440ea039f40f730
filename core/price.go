package core

import (
	"regexp"
	"strconv"
)

// Listing prices are free text, so "the price" is the first decimal number
// that appears anywhere in the field. Up to two fractional digits, matching
// how people write currency amounts.
var priceRe = regexp.MustCompile(`\d+(?:\.\d{1,2})?`)

// ParsePrice extracts the first decimal number from a raw price string.
// The second return value reports whether a number was found; callers
// choose their own fallback policy for listings with no parseable price.
func ParsePrice(raw string) (float64, bool) {
	match := priceRe.FindString(raw)
	if match == "" {
		return 0, false
	}

	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}

	return value, true
}
