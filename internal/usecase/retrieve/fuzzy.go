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

// Fuzzy token scoring.
const (
	exactTokenScore    = 1.0
	partialTokenScore  = 0.85
	minTokenSimilarity = 0.6

	textFieldWeight    = 1.0
	summaryFieldWeight = 0.9
	entityFieldWeight  = 0.7
)

// DefaultFuzzyMinScore is the record-level score floor for fuzzy hits.
const DefaultFuzzyMinScore = 0.6

// Fuzzy retrieves records by approximate token matching, tolerating typos
// and partial words.
type Fuzzy struct {
	store RecordStore
}

// NewFuzzy creates the fuzzy retriever.
func NewFuzzy(store RecordStore) *Fuzzy {
	return &Fuzzy{store: store}
}

// Retrieve scores every candidate field by token similarity to the query
// and returns the top results at or above minScore.
func (r *Fuzzy) Retrieve(
	ctx context.Context, text string, spec filter.Spec, limit int, minScore float64,
) ([]result.Result, error) {
	queryTokens := tokenize(text)
	if len(queryTokens) == 0 {
		return nil, nil
	}

	candidates, err := r.store.FindCandidates(ctx, spec, false)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	results := make([]result.Result, 0, len(candidates))
	for i := range candidates {
		rec := candidates[i]

		fields := []struct {
			name   string
			text   string
			weight float64
		}{
			{"text", rec.Text(), textFieldWeight},
			{"summary", rec.Summary(), summaryFieldWeight},
			{"entities", flattenEntities(rec.Entities()), entityFieldWeight},
		}

		best := 0.0
		bestField := ""
		matched := make([]string, 0, len(fields))
		for _, f := range fields {
			if f.text == "" {
				continue
			}
			score := scoreTokens(queryTokens, tokenize(f.text)) * f.weight
			if score >= minScore {
				matched = append(matched, f.name)
			}
			if score > best {
				best = score
				bestField = f.name
			}
		}
		if best < minScore {
			continue
		}

		res := result.New(rec, best, match.Fuzzy, matched)
		if bestField == "text" {
			if snip := buildSnippet(rec.Text(), bestSpan(rec.Text(), queryTokens)); snip != "" {
				res = res.WithHighlight(snip)
			}
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

// scoreTokens returns the mean over query tokens of each token's best
// similarity against the candidate tokens.
func scoreTokens(queryTokens, candidateTokens []string) float64 {
	if len(candidateTokens) == 0 {
		return 0
	}
	total := 0.0
	for _, qt := range queryTokens {
		best := 0.0
		for _, ct := range candidateTokens {
			s := tokenSimilarity(qt, ct)
			if s > best {
				best = s
			}
			if best == exactTokenScore {
				break
			}
		}
		total += best
	}
	return total / float64(len(queryTokens))
}

// tokenSimilarity scores a single query token against a candidate token:
// exact match, then prefix/containment, then edit-distance similarity.
func tokenSimilarity(query, candidate string) float64 {
	if query == candidate {
		return exactTokenScore
	}
	if strings.HasPrefix(candidate, query) || strings.Contains(candidate, query) {
		return partialTokenScore
	}
	sim := levenshteinSimilarity(query, candidate)
	if sim < minTokenSimilarity {
		return 0
	}
	return sim
}

// levenshteinSimilarity normalizes edit distance to [0,1] against the
// longer token.
func levenshteinSimilarity(a, b string) float64 {
	longer := len([]rune(a))
	if lb := len([]rune(b)); lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longer)
}

// levenshtein computes edit distance over runes with two rolling rows.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// flattenEntities serializes the entity map into one searchable string.
func flattenEntities(entities map[string][]string) string {
	if len(entities) == 0 {
		return ""
	}
	parts := make([]string, 0, len(entities))
	for _, vals := range entities {
		parts = append(parts, strings.Join(vals, " "))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
