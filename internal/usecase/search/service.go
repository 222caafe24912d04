// Package search coordinates the full retrieval pipeline: query
// enhancement, concurrent multi-strategy retrieval, fusion, ranking and
// pagination.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/recall-vault/recall/internal/domain"
	"github.com/recall-vault/recall/internal/domain/search/filter"
	"github.com/recall-vault/recall/internal/domain/search/match"
	"github.com/recall-vault/recall/internal/domain/search/query"
	"github.com/recall-vault/recall/internal/domain/search/request"
	"github.com/recall-vault/recall/internal/domain/search/result"
	"github.com/recall-vault/recall/internal/metrics"
	"github.com/recall-vault/recall/internal/usecase/rank"
)

// Tuning defaults.
const (
	DefaultMinSimilarity        = 0.7
	DefaultSimilarMinSimilarity = 0.3
	DefaultFuzzyMinScore        = 0.6
	DefaultFetchLimit           = 50
)

// Quick-search scoring.
const (
	quickPrefixScore    = 1.0
	quickSubstringScore = 0.7
)

// Config tunes the retrieval pipeline. Zero values fall back to defaults.
type Config struct {
	// MinSimilarity gates semantic results inside the hybrid pipeline.
	MinSimilarity float64
	// SimilarMinSimilarity gates semantic results in standalone
	// find-similar, where no other strategy backs the result up.
	SimilarMinSimilarity float64
	FuzzyMinScore        float64
	DiversityThreshold   float64
	// FetchLimit is the per-strategy result cap before fusion.
	FetchLimit int
}

func (c Config) withDefaults() Config {
	if c.MinSimilarity == 0 {
		c.MinSimilarity = DefaultMinSimilarity
	}
	if c.SimilarMinSimilarity == 0 {
		c.SimilarMinSimilarity = DefaultSimilarMinSimilarity
	}
	if c.FuzzyMinScore == 0 {
		c.FuzzyMinScore = DefaultFuzzyMinScore
	}
	if c.DiversityThreshold == 0 {
		c.DiversityThreshold = rank.DefaultDiversityThreshold
	}
	if c.FetchLimit == 0 {
		c.FetchLimit = DefaultFetchLimit
	}
	return c
}

// Service is the search coordinator.
type Service struct {
	enhancer Enhancer
	semantic SemanticRetriever
	fuzzy    FuzzyRetriever
	exact    ExactRetriever
	ranker   Ranker
	store    RecordStore
	cfg      Config
	logger   *zap.Logger
}

// New creates the search coordinator.
func New(
	enhancer Enhancer,
	semantic SemanticRetriever,
	fuzzy FuzzyRetriever,
	exact ExactRetriever,
	ranker Ranker,
	store RecordStore,
	cfg Config,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		enhancer: enhancer,
		semantic: semantic,
		fuzzy:    fuzzy,
		exact:    exact,
		ranker:   ranker,
		store:    store,
		cfg:      cfg.withDefaults(),
		logger:   logger,
	}
}

// Search runs the full pipeline and returns one page of ranked results,
// the total match count and the enhanced query text. Individual strategy
// failures degrade to empty contributions; only invalid input fails the
// whole search, and a vector dimension mismatch panics because the stored
// data is corrupt.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, int, string, error) {
	enhanced := s.enhancer.Enhance(ctx, req.RawQuery())

	spec, err := s.buildSpec(req, enhanced.Filters())
	if err != nil {
		return nil, 0, "", fmt.Errorf("build filters: %w", err)
	}

	var (
		wg       sync.WaitGroup
		semHits  []result.Result
		fuzzHits []result.Result
		exHits   []result.Result
		fatals   [3]any
	)
	wg.Add(3)
	go s.runStrategy(ctx, &wg, "semantic", &semHits, &fatals[0], func(ctx context.Context) ([]result.Result, error) {
		return s.semantic.Retrieve(ctx, enhanced.Text(), spec, s.cfg.FetchLimit, s.cfg.MinSimilarity)
	})
	go s.runStrategy(ctx, &wg, "fuzzy", &fuzzHits, &fatals[1], func(ctx context.Context) ([]result.Result, error) {
		return s.fuzzy.Retrieve(ctx, enhanced.Text(), spec, s.cfg.FetchLimit, s.cfg.FuzzyMinScore)
	})
	go s.runStrategy(ctx, &wg, "exact", &exHits, &fatals[2], func(ctx context.Context) ([]result.Result, error) {
		return s.exact.Retrieve(ctx, enhanced.Text(), spec, s.cfg.FetchLimit)
	})
	wg.Wait()
	for _, f := range fatals {
		if f != nil {
			panic(f)
		}
	}

	fused := fuse(semHits, fuzzHits, exHits)
	ranked := s.ranker.Rank(fused, enhanced, req.Preferences())
	if req.Diversify() {
		ranked = rank.Diversify(ranked, s.cfg.DiversityThreshold)
	}

	total := len(ranked)
	page := paginate(ranked, req.Offset(), req.Limit())

	s.logger.Debug("search completed",
		zap.String("owner", req.Owner()),
		zap.Int("semantic", len(semHits)),
		zap.Int("fuzzy", len(fuzzHits)),
		zap.Int("exact", len(exHits)),
		zap.Int("total", total),
	)
	return page, total, enhanced.Text(), nil
}

// runStrategy executes one retrieval strategy, isolating its failures:
// errors and panics are logged and counted, never propagated, so a broken
// strategy cannot take down its siblings. The one exception is a vector
// dimension mismatch, which marks corrupted stored data and must not be
// demoted to an empty contribution; it is handed back through fatal for
// the caller to re-panic on its own goroutine.
func (s *Service) runStrategy(
	ctx context.Context, wg *sync.WaitGroup, name string,
	out *[]result.Result, fatal *any, retrieve func(context.Context) ([]result.Result, error),
) {
	defer wg.Done()
	defer func() {
		if r := recover(); r != nil {
			if err, ok := r.(error); ok && errors.Is(err, domain.ErrVectorDimMismatch) {
				*out = nil
				*fatal = r
				return
			}
			metrics.StrategyFailuresTotal.WithLabelValues(name).Inc()
			s.logger.Warn("retrieval strategy panicked",
				zap.String("strategy", name), zap.Any("panic", r))
			*out = nil
		}
	}()

	start := time.Now()
	hits, err := retrieve(ctx)
	metrics.StrategyDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StrategyFailuresTotal.WithLabelValues(name).Inc()
		s.logger.Warn("retrieval strategy failed",
			zap.String("strategy", name), zap.Error(err))
		return
	}
	metrics.StrategyResults.WithLabelValues(name).Observe(float64(len(hits)))
	*out = hits
}

// buildSpec converts the request filters into a Spec, backfilling gaps
// with the filters the enhancer extracted from the query text.
func (s *Service) buildSpec(req *request.Request, suggested query.SuggestedFilters) (filter.Spec, error) {
	params := req.Filters()
	if len(params.ContentTypes) == 0 {
		params.ContentTypes = suggested.ContentTypes
	}
	if len(params.Categories) == 0 {
		params.Categories = suggested.Categories
	}
	if params.DateFrom == nil && params.DateTo == nil && suggested.HasDateRange() {
		params.DateFrom = suggested.DateFrom
		params.DateTo = suggested.DateTo
	}
	return filter.New(req.Owner(), params)
}

// QuickSearch is the autocomplete path: a case-insensitive prefix and
// substring scan over text and summary, bypassing enhancement and fusion.
func (s *Service) QuickSearch(ctx context.Context, owner, prefix string, limit int) ([]result.Result, error) {
	needle := strings.ToLower(strings.TrimSpace(prefix))
	if needle == "" {
		return nil, nil
	}

	spec, err := filter.New(owner, filter.Params{})
	if err != nil {
		return nil, fmt.Errorf("build filters: %w", err)
	}
	candidates, err := s.store.FindCandidates(ctx, spec, false)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	results := make([]result.Result, 0, limit)
	for i := range candidates {
		rec := candidates[i]
		score, field := quickScore(needle, strings.ToLower(rec.Text()), strings.ToLower(rec.Summary()))
		if score == 0 {
			continue
		}
		results = append(results, result.New(rec, score, match.Exact, []string{field}))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// FindSimilar retrieves records semantically close to an existing record,
// using its text as the query under the standalone similarity threshold.
// The record itself is excluded from the results.
func (s *Service) FindSimilar(ctx context.Context, owner, recordID string, limit int) ([]result.Result, error) {
	rec, err := s.store.Get(ctx, owner, recordID)
	if err != nil {
		return nil, fmt.Errorf("load record: %w", err)
	}

	spec, err := filter.New(owner, filter.Params{})
	if err != nil {
		return nil, fmt.Errorf("build filters: %w", err)
	}

	hits, err := s.semantic.Retrieve(ctx, rec.Text(), spec, limit+1, s.cfg.SimilarMinSimilarity)
	if err != nil {
		return nil, fmt.Errorf("semantic retrieval: %w", err)
	}

	out := make([]result.Result, 0, limit)
	for _, hit := range hits {
		if hit.ID() == recordID {
			continue
		}
		out = append(out, hit)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func quickScore(needle, text, summary string) (float64, string) {
	switch {
	case strings.HasPrefix(text, needle):
		return quickPrefixScore, "text"
	case strings.HasPrefix(summary, needle):
		return quickPrefixScore, "summary"
	case strings.Contains(text, needle):
		return quickSubstringScore, "text"
	case strings.Contains(summary, needle):
		return quickSubstringScore, "summary"
	}
	return 0, ""
}

func paginate(results []result.Result, offset, limit int) []result.Result {
	if offset >= len(results) {
		return nil
	}
	end := offset + limit
	if end > len(results) {
		end = len(results)
	}
	return results[offset:end]
}
