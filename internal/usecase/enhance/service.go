// Package enhance turns raw queries into enhanced queries: expanded text,
// extracted intents and suggested structural filters.
package enhance

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/recall-vault/recall/internal/domain/search/query"
	"github.com/recall-vault/recall/internal/metrics"
)

// DefaultCacheSize bounds the enhancement cache; least recently used
// queries are evicted first.
const DefaultCacheSize = 512

// simpleConfidence is assigned to locally expanded queries.
const simpleConfidence = 0.6

// Service enhances search queries. It never fails: every path degrades to a
// usable query.
type Service struct {
	lang   LanguageService
	cache  *lru.Cache[string, query.Enhanced]
	logger *zap.Logger
	now    func() time.Time
}

// New creates the query enhancer. lang may be nil, in which case every
// query takes the built-in expansion path.
func New(lang LanguageService, cacheSize int, logger *zap.Logger) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, query.Enhanced](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create enhancement cache: %w", err)
	}
	return &Service{
		lang:   lang,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}, nil
}

// WithClock overrides the time source. Used by tests and the temporal
// keyword resolution.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Enhance produces an enhanced query for the raw text. Cached results are
// served directly; temporal filters are always re-derived from the raw text
// so a cached "today" query does not carry yesterday's range.
func (s *Service) Enhance(ctx context.Context, rawQuery string) query.Enhanced {
	rawQuery = strings.TrimSpace(rawQuery)
	if rawQuery == "" {
		return query.Passthrough(rawQuery)
	}

	if cached, ok := s.cache.Get(rawQuery); ok {
		metrics.EnhancerCacheTotal.WithLabelValues("hit").Inc()
		return s.withTemporalFilters(rawQuery, cached)
	}
	metrics.EnhancerCacheTotal.WithLabelValues("miss").Inc()

	var enhanced query.Enhanced
	if s.isSimple(rawQuery) || s.lang == nil {
		enhanced = s.enhanceSimple(rawQuery)
	} else {
		enhanced = s.enhanceWithLanguageService(ctx, rawQuery)
	}

	s.cache.Add(rawQuery, enhanced)
	return s.withTemporalFilters(rawQuery, enhanced)
}

// isSimple reports whether the query is a single short token with no
// linguistic markers that would benefit from model enhancement.
func (s *Service) isSimple(rawQuery string) bool {
	tokens := strings.Fields(rawQuery)
	if len(tokens) != 1 {
		return false
	}
	if utf8.RuneCountInString(tokens[0]) > 4 {
		return false
	}
	return !hasLinguisticMarkers(strings.ToLower(tokens[0]))
}

// enhanceSimple expands the query via the built-in synonym table.
func (s *Service) enhanceSimple(rawQuery string) query.Enhanced {
	expanded := expandSynonyms(rawQuery)
	return query.New(rawQuery, expanded, nil, query.SuggestedFilters{}, simpleConfidence)
}

// enhanceWithLanguageService delegates to the model and falls back to the
// simple path on any transport or parse failure.
func (s *Service) enhanceWithLanguageService(ctx context.Context, rawQuery string) query.Enhanced {
	raw, err := s.lang.Enhance(ctx, buildPrompt(rawQuery))
	if err != nil {
		s.logger.Warn("Language service unavailable, using built-in expansion",
			zap.String("query", rawQuery), zap.Error(err))
		metrics.EnhancerFallbacksTotal.Inc()
		return s.enhanceSimple(rawQuery)
	}

	parsed, err := parseResponse(raw)
	if err != nil {
		s.logger.Warn("Unparseable enhancement response, using built-in expansion",
			zap.String("query", rawQuery), zap.Error(err))
		metrics.EnhancerFallbacksTotal.Inc()
		return s.enhanceSimple(rawQuery)
	}

	return query.New(rawQuery, parsed.Enhanced, parsed.Intents, parsed.suggestedFilters(), parsed.Confidence)
}

// withTemporalFilters overlays a locally derived date range when the query
// names one and the enhancement did not already supply it.
func (s *Service) withTemporalFilters(rawQuery string, e query.Enhanced) query.Enhanced {
	if e.Filters().HasDateRange() {
		return e
	}
	derived, ok := extractDateRange(rawQuery, s.now())
	if !ok {
		return e
	}
	merged := e.Filters()
	merged.DateFrom = derived.DateFrom
	merged.DateTo = derived.DateTo

	intents := e.Intents()
	if !containsString(intents, "temporal_search") {
		intents = append(intents, "temporal_search")
	}
	return query.New(e.Original(), e.Text(), intents, merged, e.Confidence())
}

// hasLinguisticMarkers detects question words, temporal relators, intent
// verbs and common entity nouns that disqualify the simple path.
func hasLinguisticMarkers(token string) bool {
	markers := []string{
		// question words
		"what", "how", "why", "when", "who", "que", "como",
		// temporal relators
		"today", "hoje", "hoy", "week", "ayer",
		// intent verbs
		"find", "show", "pay", "get",
		// common entity nouns
		"bill", "nota", "cita",
	}
	for _, m := range markers {
		if token == m {
			return true
		}
	}
	return false
}

// buildPrompt requests a strict JSON block from the language service.
func buildPrompt(rawQuery string) string {
	return fmt.Sprintf(`Rewrite the personal-vault search query below for retrieval.
Respond with a single JSON object and nothing else:
{"enhanced": "<expanded query, include synonyms and translations>",
 "intents": ["<intent tags like temporal_search, content_type_filter>"],
 "filters": {"content_types": [], "categories": [], "date_from": "", "date_to": ""},
 "confidence": <0..1>}

Query: %q`, rawQuery)
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
