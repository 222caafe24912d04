package retrieve

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/recall-vault/recall/internal/domain/search/filter"
	"github.com/recall-vault/recall/internal/domain/search/match"
	"github.com/recall-vault/recall/internal/domain/search/result"
)

// Exact term weights and limits.
const (
	exactTextWeight    = 1.0
	exactSummaryWeight = 0.8
	minTermLength      = 3
)

// Exact retrieves records containing the literal query terms. Terms shorter
// than three characters are dropped; matching is case-insensitive OR.
type Exact struct {
	store RecordStore
}

// NewExact creates the exact retriever.
func NewExact(store RecordStore) *Exact {
	return &Exact{store: store}
}

// Retrieve scans candidates for literal term occurrences. The score is the
// matched-term weight sum over the term count, capped at 1.0.
func (r *Exact) Retrieve(
	ctx context.Context, text string, spec filter.Spec, limit int,
) ([]result.Result, error) {
	terms := exactTerms(text)
	if len(terms) == 0 {
		return nil, nil
	}

	candidates, err := r.store.FindCandidates(ctx, spec, false)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	results := make([]result.Result, 0, len(candidates))
	for i := range candidates {
		rec := candidates[i]
		lowerText := strings.ToLower(rec.Text())
		lowerSummary := strings.ToLower(rec.Summary())

		weight := 0.0
		matchedTerms := make([]string, 0, len(terms))
		fields := make([]string, 0, 2)
		textHit, summaryHit := false, false
		for _, term := range terms {
			hit := false
			if strings.Contains(lowerText, term) {
				weight += exactTextWeight
				hit = true
				textHit = true
			} else if strings.Contains(lowerSummary, term) {
				weight += exactSummaryWeight
				hit = true
				summaryHit = true
			}
			if hit {
				matchedTerms = append(matchedTerms, term)
			}
		}
		if len(matchedTerms) == 0 {
			continue
		}
		if textHit {
			fields = append(fields, "text")
		}
		if summaryHit {
			fields = append(fields, "summary")
		}

		score := weight / float64(len(terms))
		if score > 1.0 {
			score = 1.0
		}

		res := result.New(rec, score, match.Exact, fields)
		if hl := boldHighlight(rec.Text(), matchedTerms); hl != "" {
			res = res.WithHighlight(hl)
		}
		results = append(results, res)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// exactTerms extracts lowercase query terms longer than two characters,
// deduplicated in first-seen order.
func exactTerms(text string) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0, 4)
	for _, tok := range tokenize(text) {
		if len([]rune(tok)) < minTermLength {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		terms = append(terms, tok)
	}
	return terms
}

// boldHighlight wraps the first occurrence of every matched term in bold
// markers and truncates the result.
func boldHighlight(text string, terms []string) string {
	if text == "" {
		return ""
	}
	lt := newLoweredText(text)

	// Collect non-overlapping first occurrences, then rebuild left to right.
	hits := make([]span, 0, len(terms))
	for _, term := range terms {
		sp := lt.index(term)
		if sp.start < 0 {
			continue
		}
		hits = append(hits, sp)
	}
	if len(hits) == 0 {
		return ""
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })

	var b strings.Builder
	pos := 0
	for _, h := range hits {
		if h.start < pos {
			continue
		}
		b.WriteString(text[pos:h.start])
		b.WriteString("**")
		b.WriteString(text[h.start:h.end])
		b.WriteString("**")
		pos = h.end
	}
	b.WriteString(text[pos:])

	out := truncateRunes(b.String(), snippetMaxChars)
	// The cut can split a marker or land inside a bold region; drop the
	// dangling half and close the region so marker pairs stay balanced.
	if strings.HasSuffix(out, "*") && !strings.HasSuffix(out, "**") {
		out = strings.TrimSuffix(out, "*")
	}
	if strings.Count(out, "**")%2 == 1 {
		out += "**"
	}
	return out
}
