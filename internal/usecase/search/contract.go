package search

import (
	"context"

	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/filter"
	"github.com/recall-vault/recall/internal/domain/search/query"
	"github.com/recall-vault/recall/internal/domain/search/request"
	"github.com/recall-vault/recall/internal/domain/search/result"
)

// Enhancer rewrites the raw query before retrieval. It never fails: on any
// internal error it degrades to a passthrough enhancement.
type Enhancer interface {
	Enhance(ctx context.Context, rawQuery string) query.Enhanced
}

// SemanticRetriever retrieves by embedding similarity.
type SemanticRetriever interface {
	Retrieve(ctx context.Context, text string, spec filter.Spec, limit int, minSimilarity float64) ([]result.Result, error)
}

// FuzzyRetriever retrieves by approximate token matching.
type FuzzyRetriever interface {
	Retrieve(ctx context.Context, text string, spec filter.Spec, limit int, minScore float64) ([]result.Result, error)
}

// ExactRetriever retrieves by literal term matching.
type ExactRetriever interface {
	Retrieve(ctx context.Context, text string, spec filter.Spec, limit int) ([]result.Result, error)
}

// Ranker orders fused results by contextual boosts.
type Ranker interface {
	Rank(results []result.Result, q query.Enhanced, prefs request.Preferences) []result.Result
}

// RecordStore is the scan surface shared with the retrievers plus the
// single-record lookup used by find-similar.
type RecordStore interface {
	Get(ctx context.Context, owner, id string) (record.Record, error)
	FindCandidates(ctx context.Context, spec filter.Spec, requireEmbedding bool) ([]record.Record, error)
}
