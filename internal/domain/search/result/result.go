// Package result defines the search hit produced by retrieval and ranking.
package result

import (
	"sort"

	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/match"
)

// Result is a single search hit. The score is clamped to [0,1] at
// construction and on every update, so no pipeline stage can leak an
// out-of-range value.
type Result struct {
	rec         record.Record
	score       float64
	matchType   match.Type
	fields      map[string]struct{}
	highlight   string
	explanation string
}

// New creates a search result for the given record.
func New(rec record.Record, score float64, matchType match.Type, matchedFields []string) Result {
	fields := make(map[string]struct{}, len(matchedFields))
	for _, f := range matchedFields {
		fields[f] = struct{}{}
	}
	return Result{
		rec:       rec,
		score:     clamp01(score),
		matchType: matchType,
		fields:    fields,
	}
}

// Record returns the underlying content record.
func (r *Result) Record() *record.Record { return &r.rec }

// ID returns the record identifier.
func (r *Result) ID() string { return r.rec.ID() }

// Score returns the relevance score in [0,1].
func (r *Result) Score() float64 { return r.score }

// MatchType returns which strategy (or fusion) produced the result.
func (r *Result) MatchType() match.Type { return r.matchType }

// MatchedFields returns the sorted matched field names.
func (r *Result) MatchedFields() []string {
	out := make([]string, 0, len(r.fields))
	for f := range r.fields {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Highlight returns the highlighted snippet, empty when none was built.
func (r *Result) Highlight() string { return r.highlight }

// Explanation returns the human-readable scoring explanation.
func (r *Result) Explanation() string { return r.explanation }

// WithScore returns a copy with the score replaced (clamped to [0,1]).
func (r Result) WithScore(score float64) Result {
	r.score = clamp01(score)
	return r
}

// WithHighlight returns a copy with the highlight set.
func (r Result) WithHighlight(snippet string) Result {
	r.highlight = snippet
	return r
}

// WithExplanation returns a copy with the explanation set.
func (r Result) WithExplanation(text string) Result {
	r.explanation = text
	return r
}

// MergeAsHybrid folds another strategy's hit for the same record into the
// receiver: the score is replaced (clamped), the match type becomes hybrid,
// matched fields are unioned, and the other hit's highlight is adopted when
// the receiver has none.
func (r Result) MergeAsHybrid(other Result, score float64) Result {
	merged := make(map[string]struct{}, len(r.fields)+len(other.fields))
	for f := range r.fields {
		merged[f] = struct{}{}
	}
	for f := range other.fields {
		merged[f] = struct{}{}
	}
	r.fields = merged
	r.score = clamp01(score)
	r.matchType = match.Hybrid
	if r.highlight == "" {
		r.highlight = other.highlight
	}
	return r
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
