package rank

import (
	"strings"

	"github.com/recall-vault/recall/internal/domain/search/result"
)

// Diversity reranking limits.
const (
	diversityMinResults = 4
	diversityMaxKept    = 15
	diversityTarget     = 20
	diversityMinWordLen = 4

	// DefaultDiversityThreshold is the Jaccard similarity above which two
	// results count as near duplicates.
	DefaultDiversityThreshold = 0.85
)

// Diversify greedily filters near-duplicate results while preserving rank
// order. The top result is always kept. Skipped duplicates backfill the
// tail so the page is not starved when the set is homogeneous.
func Diversify(results []result.Result, threshold float64) []result.Result {
	if len(results) < diversityMinResults {
		return results
	}

	kept := make([]result.Result, 0, diversityTarget)
	keptWords := make([]map[string]struct{}, 0, diversityTarget)
	var leftovers []result.Result

	for _, res := range results {
		if len(kept) >= diversityMaxKept {
			leftovers = append(leftovers, res)
			continue
		}
		words := contentWords(res.Record().Text())
		duplicate := false
		for _, kw := range keptWords {
			if jaccard(words, kw) > threshold {
				duplicate = true
				break
			}
		}
		if duplicate {
			leftovers = append(leftovers, res)
			continue
		}
		kept = append(kept, res)
		keptWords = append(keptWords, words)
	}

	for _, res := range leftovers {
		if len(kept) >= diversityTarget {
			break
		}
		kept = append(kept, res)
	}
	return kept
}

// contentWords collects lowercase words longer than three characters.
func contentWords(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,;:!?\"'()")
		if len([]rune(w)) >= diversityMinWordLen {
			words[w] = struct{}{}
		}
	}
	return words
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
