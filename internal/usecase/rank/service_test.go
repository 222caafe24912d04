package rank

import (
	"strings"
	"testing"
	"time"

	"github.com/recall-vault/recall/internal/domain/search/match"
	"github.com/recall-vault/recall/internal/domain/search/query"
	"github.com/recall-vault/recall/internal/domain/search/request"
	"github.com/recall-vault/recall/internal/domain/search/result"
)

func newTestService() *Service {
	return New().WithClock(func() time.Time { return testNow })
}

func rankOne(t *testing.T, s *Service, hit result.Result, q query.Enhanced, prefs request.Preferences) result.Result {
	t.Helper()
	ranked := s.Rank([]result.Result{hit}, q, prefs)
	if len(ranked) != 1 {
		t.Fatalf("expected 1 ranked result, got %d", len(ranked))
	}
	return ranked[0]
}

func TestRankRecencyBoost(t *testing.T) {
	s := newTestService()
	q := query.Passthrough("find something")

	tests := []struct {
		name      string
		createdAt time.Time
		want      float64
	}{
		{"within a day", testNow.Add(-2 * time.Hour), recencyDayBoost},
		{"within a week", testNow.Add(-3 * 24 * time.Hour), recencyWeekBoost},
		{"within a month", testNow.Add(-20 * 24 * time.Hour), recencyMonthBoost},
		{"older", testNow.Add(-90 * 24 * time.Hour), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := makeHit(hitOpts{id: "r", score: 0.5, createdAt: tt.createdAt, matchType: match.Fuzzy})
			got := rankOne(t, s, base, q, request.Preferences{})
			// Fuzzy match adds a constant on top of the recency boost.
			want := 0.5 + tt.want + fuzzyMatchBoost + alignedBoost
			if diff := got.Score() - want; diff > 0.001 || diff < -0.001 {
				t.Errorf("score = %v, want %v", got.Score(), want)
			}
		})
	}
}

func TestRankMatchTypeBoost(t *testing.T) {
	s := newTestService()
	q := query.Passthrough("find something")

	tests := []struct {
		matchType match.Type
		boost     float64
	}{
		{match.Exact, exactMatchBoost},
		{match.Hybrid, hybridMatchBoost},
		{match.Semantic, semanticMatchBoost},
		{match.Fuzzy, fuzzyMatchBoost},
	}
	for _, tt := range tests {
		t.Run(string(tt.matchType), func(t *testing.T) {
			hit := makeHit(hitOpts{id: "r", score: 0.4, matchType: tt.matchType})
			got := rankOne(t, s, hit, q, request.Preferences{})
			want := 0.4 + tt.boost + alignedBoost
			if diff := got.Score() - want; diff > 0.001 || diff < -0.001 {
				t.Errorf("score = %v, want %v", got.Score(), want)
			}
		})
	}
}

func TestRankUrgencyBoost(t *testing.T) {
	s := newTestService()

	t.Run("level scales the boost", func(t *testing.T) {
		q := query.Passthrough("find something")
		low := rankOne(t, s, makeHit(hitOpts{id: "l", score: 0.5, urgency: 2}), q, request.Preferences{})
		high := rankOne(t, s, makeHit(hitOpts{id: "h", score: 0.5, urgency: 4}), q, request.Preferences{})
		if !(high.Score() > low.Score()) {
			t.Errorf("urgency 4 (%v) should outscore urgency 2 (%v)", high.Score(), low.Score())
		}
	})

	t.Run("urgency keywords add on top for urgent records", func(t *testing.T) {
		plain := query.Passthrough("recent electricity conta")
		urgent := query.Passthrough("urgent electricity conta")
		hit := makeHit(hitOpts{id: "r", score: 0.5, urgency: 3})
		without := rankOne(t, s, hit, plain, request.Preferences{})
		with := rankOne(t, s, hit, urgent, request.Preferences{})
		if diff := with.Score() - without.Score() - urgencyKeywordBoost; diff > 0.001 || diff < -0.001 {
			t.Errorf("keyword boost = %v, want %v", with.Score()-without.Score(), urgencyKeywordBoost)
		}
	})
}

func TestRankQualityBoosts(t *testing.T) {
	s := newTestService()
	q := query.Passthrough("find something")

	plain := rankOne(t, s, makeHit(hitOpts{id: "p", score: 0.5, confidence: 0.3}), q, request.Preferences{})
	confident := rankOne(t, s, makeHit(hitOpts{id: "c", score: 0.5, confidence: 0.9}), q, request.Preferences{})
	if diff := confident.Score() - plain.Score() - highConfidenceBoost; diff > 0.001 || diff < -0.001 {
		t.Errorf("confidence boost = %v, want %v", confident.Score()-plain.Score(), highConfidenceBoost)
	}

	summarized := rankOne(t, s, makeHit(hitOpts{
		id: "s", score: 0.5, confidence: 0.3,
		summary: "a generated summary that is comfortably longer than fifty characters",
	}), q, request.Preferences{})
	if diff := summarized.Score() - plain.Score() - richSummaryBoost; diff > 0.001 || diff < -0.001 {
		t.Errorf("summary boost = %v, want %v", summarized.Score()-plain.Score(), richSummaryBoost)
	}
}

func TestRankPreferences(t *testing.T) {
	s := newTestService()
	q := query.Passthrough("find something")

	t.Run("category weights shift scores both ways", func(t *testing.T) {
		hit := makeHit(hitOpts{id: "r", score: 0.5, category: "bills"})
		neutral := rankOne(t, s, hit, q, request.Preferences{})
		up := rankOne(t, s, hit, q, request.Preferences{CategoryWeights: map[string]float64{"bills": 2.0}})
		down := rankOne(t, s, hit, q, request.Preferences{CategoryWeights: map[string]float64{"bills": 0.5}})
		if !(up.Score() > neutral.Score()) {
			t.Errorf("weight 2.0 should raise the score: %v vs %v", up.Score(), neutral.Score())
		}
		if !(down.Score() < neutral.Score()) {
			t.Errorf("weight 0.5 should lower the score: %v vs %v", down.Score(), neutral.Score())
		}
	})

	t.Run("prefer recent", func(t *testing.T) {
		hit := makeHit(hitOpts{id: "r", score: 0.5, createdAt: testNow.Add(-48 * time.Hour)})
		without := rankOne(t, s, hit, q, request.Preferences{})
		with := rankOne(t, s, hit, q, request.Preferences{PreferRecent: true})
		if diff := with.Score() - without.Score() - preferRecentBoost; diff > 0.001 || diff < -0.001 {
			t.Errorf("recent preference boost = %v, want %v", with.Score()-without.Score(), preferRecentBoost)
		}
	})

	t.Run("prefer urgent", func(t *testing.T) {
		hit := makeHit(hitOpts{id: "r", score: 0.5, urgency: 3})
		without := rankOne(t, s, hit, q, request.Preferences{})
		with := rankOne(t, s, hit, q, request.Preferences{PreferUrgent: true})
		if diff := with.Score() - without.Score() - preferUrgentBoost; diff > 0.001 || diff < -0.001 {
			t.Errorf("urgent preference boost = %v, want %v", with.Score()-without.Score(), preferUrgentBoost)
		}
	})
}

func TestRankCategoryRelevance(t *testing.T) {
	s := newTestService()

	hit := makeHit(hitOpts{id: "r", score: 0.5, category: "bills"})
	neutral := rankOne(t, s, hit, query.Passthrough("random words"), request.Preferences{})
	relevant := rankOne(t, s, hit, query.Passthrough("electricity invoice"), request.Preferences{})
	if !(relevant.Score() > neutral.Score()) {
		t.Errorf("billing query should boost a bills record: %v vs %v", relevant.Score(), neutral.Score())
	}
	if relevant.Score()-neutral.Score() > categoryBoostCap+0.001 {
		t.Errorf("category boost exceeds cap: %v", relevant.Score()-neutral.Score())
	}
}

func TestRankOrderingAndExplanation(t *testing.T) {
	s := newTestService()
	q := query.Passthrough("electricity bill")

	results := []result.Result{
		makeHit(hitOpts{id: "old-fuzzy", score: 0.6, matchType: match.Fuzzy}),
		makeHit(hitOpts{id: "fresh-exact", score: 0.6, matchType: match.Exact, createdAt: testNow.Add(-1 * time.Hour)}),
	}
	ranked := s.Rank(results, q, request.Preferences{})
	if ranked[0].ID() != "fresh-exact" {
		t.Fatalf("expected boosted record first, got %s", ranked[0].ID())
	}
	expl := ranked[0].Explanation()
	if !strings.Contains(expl, "created today") || !strings.Contains(expl, "exact match") {
		t.Errorf("explanation missing contributing boosts: %q", expl)
	}
}

func TestRankScoreStaysClamped(t *testing.T) {
	s := newTestService()
	q := query.Passthrough("urgent electricity invoice conta")

	hit := makeHit(hitOpts{
		id: "max", score: 0.95, matchType: match.Exact, category: "bills",
		createdAt: testNow.Add(-1 * time.Hour), urgency: 4, confidence: 0.95,
		summary:  "a generated summary that is comfortably longer than fifty characters",
		entities: map[string][]string{"company": {"enel"}, "amount": {"120", "BRL"}, "date": {"2026-08-29"}},
	})
	got := rankOne(t, s, hit, q, request.Preferences{PreferRecent: true, PreferUrgent: true})
	if got.Score() != 1.0 {
		t.Errorf("expected clamped score 1.0, got %v", got.Score())
	}
}
