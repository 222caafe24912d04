// Package retrieve implements the three retrieval strategies: semantic
// (embedding similarity), fuzzy (approximate token matching) and exact
// (literal substring matching). Each strategy is independent and reads the
// shared filter spec without mutating it.
package retrieve

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/recall-vault/recall/internal/domain"
	"github.com/recall-vault/recall/internal/domain/search/filter"
	"github.com/recall-vault/recall/internal/domain/search/match"
	"github.com/recall-vault/recall/internal/domain/search/result"
)

// Semantic confidence adjustments.
const (
	summaryBoost      = 0.1
	summaryBoostChars = 50
	recencyBoost      = 0.05
	recencyWindow     = 7 * 24 * time.Hour
)

// Semantic retrieves records by embedding similarity to the query.
type Semantic struct {
	store RecordStore
	embed domain.Embedder
	now   func() time.Time
}

// NewSemantic creates the semantic retriever.
func NewSemantic(store RecordStore, embed domain.Embedder) *Semantic {
	return &Semantic{store: store, embed: embed, now: time.Now}
}

// WithClock overrides the time source for recency adjustments.
func (r *Semantic) WithClock(now func() time.Time) *Semantic {
	r.now = now
	return r
}

// Retrieve embeds the query once, scores all embedded candidates by cosine
// similarity, applies small confidence adjustments and returns the top
// results at or above minSimilarity.
func (r *Semantic) Retrieve(
	ctx context.Context, text string, spec filter.Spec, limit int, minSimilarity float64,
) ([]result.Result, error) {
	embRes, err := r.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := r.store.FindCandidates(ctx, spec, true)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	now := r.now()
	results := make([]result.Result, 0, len(candidates))
	for i := range candidates {
		rec := candidates[i]
		sim := domain.CosineSimilarity(embRes.Embedding, rec.Embedding())
		if sim < minSimilarity {
			continue
		}

		adjusted := sim
		if len(rec.Summary()) > summaryBoostChars {
			adjusted += summaryBoost
		}
		if now.Sub(rec.CreatedAt()) <= recencyWindow {
			adjusted += recencyBoost
		}

		results = append(results, result.New(rec, adjusted, match.Semantic, []string{"text"}))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}
