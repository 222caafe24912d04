// Package query defines the enhanced query produced upstream of retrieval.
package query

import (
	"strings"
	"time"
)

// Complexity classifies enhanced-query structure for ranking alignment.
type Complexity string

// Complexity constants.
const (
	Simple   Complexity = "simple"
	Moderate Complexity = "moderate"
	Complex  Complexity = "complex"
)

// SuggestedFilters are optional structural constraints extracted from the
// query text, applied on top of the caller-supplied filters.
type SuggestedFilters struct {
	ContentTypes []string
	Categories   []string
	DateFrom     *time.Time
	DateTo       *time.Time
}

// HasDateRange reports whether a temporal constraint was extracted.
func (f SuggestedFilters) HasDateRange() bool {
	return f.DateFrom != nil && f.DateTo != nil
}

// Enhanced is the enhancement output: the original text, an expanded
// superset of it, extracted intents, and suggested structural filters.
type Enhanced struct {
	original   string
	enhanced   string
	intents    []string
	filters    SuggestedFilters
	confidence float64
}

// MinEnhancedLength is the shortest enhanced text accepted in place of the
// original query.
const MinEnhancedLength = 3

// New builds an Enhanced query. Enhanced text shorter than MinEnhancedLength
// or still carrying structural markup is rejected in favor of the original.
func New(original, enhanced string, intents []string, filters SuggestedFilters, confidence float64) Enhanced {
	enhanced = strings.TrimSpace(enhanced)
	if len(enhanced) < MinEnhancedLength || containsMarkup(enhanced) {
		enhanced = original
	}
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Enhanced{
		original:   original,
		enhanced:   enhanced,
		intents:    append([]string(nil), intents...),
		filters:    filters,
		confidence: confidence,
	}
}

// Passthrough wraps a raw query without any enhancement.
func Passthrough(original string) Enhanced {
	return New(original, original, nil, SuggestedFilters{}, 1)
}

// Original returns the raw query text.
func (e Enhanced) Original() string { return e.original }

// Text returns the enhanced query text used by the retrievers.
func (e Enhanced) Text() string { return e.enhanced }

// Intents returns the extracted intent tags.
func (e Enhanced) Intents() []string { return append([]string(nil), e.intents...) }

// Filters returns the suggested structural filters.
func (e Enhanced) Filters() SuggestedFilters { return e.filters }

// Confidence returns the enhancement confidence (0-1).
func (e Enhanced) Confidence() float64 { return e.confidence }

// Complexity derives the query complexity from the enhanced text structure.
// Single short tokens are simple, short phrases moderate, anything longer
// or multi-clause complex.
func (e Enhanced) Complexity() Complexity {
	words := strings.Fields(e.enhanced)
	switch {
	case len(words) <= 2:
		return Simple
	case len(words) <= 6 && !strings.ContainsAny(e.enhanced, ",;?"):
		return Moderate
	default:
		return Complex
	}
}

// containsMarkup detects unparsed structural markup left over from a
// language-service response.
func containsMarkup(s string) bool {
	for _, marker := range []string{"{", "}", "```", "[", "]"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
