package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gridlyapp/gigsearch/core"
)

// maxExclusionWords bounds how many words an exclusion term may capture
// after "not". Without a bound, "not too expensive please and thanks"
// would swallow the rest of the sentence.
const maxExclusionWords = 3

var (
	minPriceRe    = regexp.MustCompile(`(?i)\b(?:over|more than)\s*\$(\d+)`)
	maxPriceRe    = regexp.MustCompile(`(?i)\bless than\s*\$(\d+)`)
	targetPriceRe = regexp.MustCompile(`(?i)\baround\s*\$(\d+)`)

	// Capture stops at sentence-like boundaries; the word cap above
	// trims what the regex lets through.
	exclusionRe = regexp.MustCompile(`(?i)\bnot\s+([^.,;:!?\n]+)`)
)

// Extract derives structured constraints from refined query text.
// It never fails: text that matches no pattern yields zero constraints.
//
// When a price pattern appears more than once, the FIRST match wins.
func Extract(text string) core.QueryConstraints {
	var constraints core.QueryConstraints

	constraints.MinPrice = firstPrice(minPriceRe, text)
	constraints.MaxPrice = firstPrice(maxPriceRe, text)
	constraints.TargetPrice = firstPrice(targetPriceRe, text)
	constraints.Exclusions = exclusions(text)

	return constraints
}

// firstPrice returns the first captured integer as a float, or nil when the
// pattern does not match or the capture fails to parse.
func firstPrice(re *regexp.Regexp, text string) *float64 {
	match := re.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil
	}

	return &value
}

// exclusions collects every "not <words>" phrase as a lowercase exclusion
// term, capped at maxExclusionWords words. Duplicate terms are dropped,
// first occurrence order is kept.
func exclusions(text string) []string {
	matches := exclusionRe.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	terms := make([]string, 0, len(matches))
	for _, match := range matches {
		words := strings.Fields(strings.ToLower(match[1]))
		if len(words) == 0 {
			continue
		}
		if len(words) > maxExclusionWords {
			words = words[:maxExclusionWords]
		}

		term := strings.Join(words, " ")
		if seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}

	if len(terms) == 0 {
		return nil
	}
	return terms
}
