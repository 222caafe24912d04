// Package rank orders fused search results by layering contextual boosts
// over the retrieval score, then optionally spreads near-duplicate results.
package rank

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/recall-vault/recall/internal/domain/search/match"
	"github.com/recall-vault/recall/internal/domain/search/query"
	"github.com/recall-vault/recall/internal/domain/search/request"
	"github.com/recall-vault/recall/internal/domain/search/result"
)

// Recency boosts by record age.
const (
	recencyDayBoost   = 0.15
	recencyWeekBoost  = 0.10
	recencyMonthBoost = 0.05
)

// Urgency boosts.
const (
	urgencyLevelStep    = 0.05
	urgencyKeywordBoost = 0.10
	urgentLevel         = 3
)

// Match type boosts.
const (
	exactMatchBoost    = 0.20
	hybridMatchBoost   = 0.15
	semanticMatchBoost = 0.10
	fuzzyMatchBoost    = 0.05
)

// Quality boosts.
const (
	highConfidenceBoost = 0.10
	midConfidenceBoost  = 0.05
	richSummaryBoost    = 0.05
	richEntitiesBoost   = 0.05
	richSummaryChars    = 50
	richEntitiesCount   = 3
)

// Preference boosts.
const (
	preferRecentBoost   = 0.08
	preferUrgentBoost   = 0.08
	categoryWeightScale = 0.10
)

// Complexity alignment adjustments.
const (
	alignedBoost        = 0.05
	complexAlignedBoost = 0.08
	misalignedPenalty   = 0.02
)

// Category relevance.
const (
	categoryKeywordBoost = 0.10
	categoryBoostCap     = 0.20
)

// urgencyKeywords mark queries looking for time-sensitive content.
var urgencyKeywords = []string{
	"urgent", "asap", "immediately", "deadline", "overdue", "due",
	"urgente", "vencimento", "vencida", "prazo", "atrasada",
}

// categoryKeywords maps a record category to query words that signal the
// caller is looking for that category.
var categoryKeywords = map[string][]string{
	"bills":     {"bill", "invoice", "payment", "conta", "fatura", "boleto", "factura", "luz", "energia", "electricity", "water", "agua"},
	"health":    {"doctor", "appointment", "medical", "prescription", "medico", "consulta", "receita"},
	"finance":   {"tax", "bank", "rent", "salary", "imposto", "banco", "aluguel"},
	"work":      {"meeting", "project", "report", "reuniao", "projeto"},
	"personal":  {"birthday", "family", "trip", "aniversario", "viagem"},
	"documents": {"contract", "document", "certificate", "contrato", "documento"},
}

// Service applies the ranking boosts.
type Service struct {
	now func() time.Time
}

// New creates a ranking service using the wall clock.
func New() *Service {
	return &Service{now: time.Now}
}

// WithClock overrides the time source for recency boosts.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Rank rescores every result against the query context and returns them
// sorted by final score, descending. Ties keep fusion order.
func (s *Service) Rank(results []result.Result, q query.Enhanced, prefs request.Preferences) []result.Result {
	now := s.now()
	queryTokens := queryTokenSet(q.Original() + " " + q.Text())
	complexity := q.Complexity()

	ranked := make([]result.Result, 0, len(results))
	for _, res := range results {
		score, explanation := s.score(&res, now, queryTokens, complexity, prefs)
		ranked = append(ranked, res.WithScore(score).WithExplanation(explanation))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score() > ranked[j].Score()
	})
	return ranked
}

func (s *Service) score(
	res *result.Result, now time.Time, queryTokens map[string]struct{},
	complexity query.Complexity, prefs request.Preferences,
) (float64, string) {
	rec := res.Record()
	score := res.Score()
	var reasons []string

	// Recency.
	age := now.Sub(rec.CreatedAt())
	switch {
	case age <= 24*time.Hour:
		score += recencyDayBoost
		reasons = append(reasons, "created today")
	case age <= 7*24*time.Hour:
		score += recencyWeekBoost
		reasons = append(reasons, "created this week")
	case age <= 30*24*time.Hour:
		score += recencyMonthBoost
		reasons = append(reasons, "created this month")
	}

	// Urgency.
	if lvl := rec.Urgency(); lvl > 1 {
		score += float64(lvl-1) * urgencyLevelStep
		reasons = append(reasons, fmt.Sprintf("urgency level %d", lvl))
		if lvl >= urgentLevel && hasAnyToken(queryTokens, urgencyKeywords) {
			score += urgencyKeywordBoost
			reasons = append(reasons, "urgency requested")
		}
	}

	// Match type.
	switch res.MatchType() {
	case match.Exact:
		score += exactMatchBoost
		reasons = append(reasons, "exact match")
	case match.Hybrid:
		score += hybridMatchBoost
		reasons = append(reasons, "multiple strategies agree")
	case match.Semantic:
		score += semanticMatchBoost
		reasons = append(reasons, "semantic match")
	case match.Fuzzy:
		score += fuzzyMatchBoost
		reasons = append(reasons, "fuzzy match")
	}

	// Content quality.
	switch conf := rec.Confidence(); {
	case conf >= 0.8:
		score += highConfidenceBoost
		reasons = append(reasons, "high analysis confidence")
	case conf >= 0.5:
		score += midConfidenceBoost
	}
	if len(rec.Summary()) > richSummaryChars {
		score += richSummaryBoost
		reasons = append(reasons, "summarized")
	}
	if rec.EntityCount() > richEntitiesCount {
		score += richEntitiesBoost
		reasons = append(reasons, "entity rich")
	}

	// Caller preferences.
	if w, ok := prefs.CategoryWeights[rec.Category()]; ok && w != 1 {
		score += (w - 1) * categoryWeightScale
		reasons = append(reasons, fmt.Sprintf("category weight %.2f", w))
	}
	if prefs.PreferRecent && age <= 7*24*time.Hour {
		score += preferRecentBoost
		reasons = append(reasons, "recent preferred")
	}
	if prefs.PreferUrgent && rec.Urgency() >= urgentLevel {
		score += preferUrgentBoost
		reasons = append(reasons, "urgent preferred")
	}

	// Complexity alignment between the query and the record.
	score += complexityAlignment(complexity, rec.EntityCount())

	// Category relevance against query keywords.
	if boost := categoryRelevance(queryTokens, rec.Category()); boost > 0 {
		score += boost
		reasons = append(reasons, "category matches query")
	}

	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score, strings.Join(reasons, ", ")
}

// complexityAlignment rewards records whose information density fits the
// query: simple lookups favor lean records, complex queries favor records
// with many extracted entities.
func complexityAlignment(c query.Complexity, entityCount int) float64 {
	switch c {
	case query.Simple:
		if entityCount <= 1 {
			return alignedBoost
		}
		return -misalignedPenalty
	case query.Moderate:
		if entityCount >= 1 && entityCount <= richEntitiesCount {
			return alignedBoost
		}
		return 0
	case query.Complex:
		if entityCount >= richEntitiesCount {
			return complexAlignedBoost
		}
		return -misalignedPenalty
	}
	return 0
}

func categoryRelevance(queryTokens map[string]struct{}, category string) float64 {
	keywords, ok := categoryKeywords[strings.ToLower(category)]
	if !ok {
		return 0
	}
	boost := 0.0
	for _, kw := range keywords {
		if _, hit := queryTokens[kw]; hit {
			boost += categoryKeywordBoost
			if boost >= categoryBoostCap {
				return categoryBoostCap
			}
		}
	}
	return boost
}

func hasAnyToken(tokens map[string]struct{}, words []string) bool {
	for _, w := range words {
		if _, ok := tokens[w]; ok {
			return true
		}
	}
	return false
}

func queryTokenSet(text string) map[string]struct{} {
	tokens := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[strings.Trim(t, ".,;:!?\"'")] = struct{}{}
	}
	return set
}
