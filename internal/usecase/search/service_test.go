package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/recall-vault/recall/internal/domain"
	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/match"
	"github.com/recall-vault/recall/internal/domain/search/result"
	"github.com/recall-vault/recall/internal/usecase/enhance"
	"github.com/recall-vault/recall/internal/usecase/retrieve"
)

type testDeps struct {
	enhancer *mockEnhancer
	semantic *mockSemantic
	fuzzy    *mockFuzzy
	exact    *mockExact
	ranker   *passthroughRanker
	store    *mockRecordStore
}

func newTestService(d *testDeps) *Service {
	if d.enhancer == nil {
		d.enhancer = &mockEnhancer{}
	}
	if d.semantic == nil {
		d.semantic = &mockSemantic{}
	}
	if d.fuzzy == nil {
		d.fuzzy = &mockFuzzy{}
	}
	if d.exact == nil {
		d.exact = &mockExact{}
	}
	if d.ranker == nil {
		d.ranker = &passthroughRanker{}
	}
	if d.store == nil {
		d.store = &mockRecordStore{records: map[string]record.Record{}}
	}
	return New(d.enhancer, d.semantic, d.fuzzy, d.exact, d.ranker, d.store, Config{}, zap.NewNop())
}

func TestSearch(t *testing.T) {
	t.Run("runs all strategies and returns the fused page", func(t *testing.T) {
		d := &testDeps{
			semantic: &mockSemantic{results: []result.Result{makeResult("s1", 0.9, match.Semantic)}},
			fuzzy:    &mockFuzzy{results: []result.Result{makeResult("f1", 0.7, match.Fuzzy)}},
			exact:    &mockExact{results: []result.Result{makeResult("e1", 0.8, match.Exact)}},
		}
		s := newTestService(d)

		page, total, enhanced, err := s.Search(context.Background(), mustRequest("electricity bill", false))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if total != 3 || len(page) != 3 {
			t.Fatalf("expected 3 results, got page=%d total=%d", len(page), total)
		}
		if enhanced != "electricity bill" {
			t.Errorf("expected passthrough enhanced text, got %q", enhanced)
		}
		if d.semantic.calls != 1 || d.fuzzy.calls != 1 || d.exact.calls != 1 {
			t.Errorf("expected one call per strategy, got %d/%d/%d",
				d.semantic.calls, d.fuzzy.calls, d.exact.calls)
		}
		if d.ranker.calls != 1 {
			t.Errorf("expected one ranking pass, got %d", d.ranker.calls)
		}
	})

	t.Run("agreement across strategies promotes to hybrid with a boost", func(t *testing.T) {
		d := &testDeps{
			semantic: &mockSemantic{results: []result.Result{makeResult("r", 0.6, match.Semantic)}},
			exact:    &mockExact{results: []result.Result{makeResult("r", 0.9, match.Exact)}},
		}
		s := newTestService(d)

		page, _, _, err := s.Search(context.Background(), mustRequest("electricity bill", false))
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		if len(page) != 1 {
			t.Fatalf("expected 1 fused result, got %d", len(page))
		}
		if diff := page[0].Score() - 0.8; diff > 0.001 || diff < -0.001 {
			t.Errorf("expected 0.6 + 0.2 agreement boost, got %v", page[0].Score())
		}
		if page[0].MatchType() != match.Hybrid {
			t.Errorf("expected hybrid, got %s", page[0].MatchType())
		}
	})

	t.Run("failed strategy degrades without aborting the search", func(t *testing.T) {
		d := &testDeps{
			semantic: &mockSemantic{err: errors.New("embedding provider down")},
			fuzzy:    &mockFuzzy{results: []result.Result{makeResult("f1", 0.7, match.Fuzzy)}},
			exact:    &mockExact{results: []result.Result{makeResult("e1", 0.8, match.Exact)}},
		}
		s := newTestService(d)

		page, total, _, err := s.Search(context.Background(), mustRequest("electricity bill", false))
		if err != nil {
			t.Fatalf("expected degraded search to succeed, got %v", err)
		}
		if total != 2 || len(page) != 2 {
			t.Errorf("expected 2 surviving results, got page=%d total=%d", len(page), total)
		}
	})

	t.Run("panicking strategy is recovered", func(t *testing.T) {
		d := &testDeps{
			semantic: &mockSemantic{panics: true},
			exact:    &mockExact{results: []result.Result{makeResult("e1", 0.8, match.Exact)}},
		}
		s := newTestService(d)

		page, _, _, err := s.Search(context.Background(), mustRequest("electricity bill", false))
		if err != nil {
			t.Fatalf("expected recovered search to succeed, got %v", err)
		}
		if len(page) != 1 || page[0].ID() != "e1" {
			t.Errorf("expected the surviving strategy's result, got %v", page)
		}
	})

	t.Run("dimension mismatch panic is not swallowed", func(t *testing.T) {
		d := &testDeps{
			semantic: &mockSemantic{panicVal: fmt.Errorf("%w: 3 vs 2", domain.ErrVectorDimMismatch)},
			exact:    &mockExact{results: []result.Result{makeResult("e1", 0.8, match.Exact)}},
		}
		s := newTestService(d)

		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected Search to panic on corrupted stored vectors")
			}
			err, ok := r.(error)
			if !ok || !errors.Is(err, domain.ErrVectorDimMismatch) {
				t.Fatalf("expected ErrVectorDimMismatch panic, got %v", r)
			}
		}()
		s.Search(context.Background(), mustRequest("electricity bill", false))
	})

	t.Run("all strategies empty yields empty success", func(t *testing.T) {
		d := &testDeps{
			semantic: &mockSemantic{err: errors.New("down")},
			fuzzy:    &mockFuzzy{err: errors.New("down")},
			exact:    &mockExact{err: errors.New("down")},
		}
		s := newTestService(d)

		page, total, _, err := s.Search(context.Background(), mustRequest("electricity bill", false))
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if total != 0 || len(page) != 0 {
			t.Errorf("expected empty results, got page=%d total=%d", len(page), total)
		}
	})

	t.Run("hybrid pipeline uses the strict similarity threshold", func(t *testing.T) {
		d := &testDeps{semantic: &mockSemantic{}}
		s := newTestService(d)

		if _, _, _, err := s.Search(context.Background(), mustRequest("electricity bill", false)); err != nil {
			t.Fatalf("Search: %v", err)
		}
		if d.semantic.lastMin != DefaultMinSimilarity {
			t.Errorf("expected threshold %v, got %v", DefaultMinSimilarity, d.semantic.lastMin)
		}
	})
}

// TestSearchCrossLanguageExactMatch wires the real enhancer and literal
// matcher together: a Portuguese record must be reachable from an English
// query through the built-in synonym expansion alone.
func TestSearchCrossLanguageExactMatch(t *testing.T) {
	enh, err := enhance.New(nil, 0, zap.NewNop())
	if err != nil {
		t.Fatalf("enhance.New: %v", err)
	}
	store := &mockRecordStore{records: map[string]record.Record{
		"pt": makeRecord("pt", "conta de luz vencendo amanha", ""),
	}}
	s := New(enh, &mockSemantic{}, &mockFuzzy{}, retrieve.NewExact(store),
		&passthroughRanker{}, store, Config{}, zap.NewNop())

	page, total, enhanced, err := s.Search(context.Background(), mustRequest("electricity bill", false))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if !strings.Contains(enhanced, "luz") || !strings.Contains(enhanced, "conta") {
		t.Fatalf("expected synonym-expanded query text, got %q", enhanced)
	}
	if total != 1 || len(page) != 1 || page[0].ID() != "pt" {
		t.Fatalf("expected the Portuguese record, got page=%v total=%d", page, total)
	}
	if page[0].MatchType() != match.Exact {
		t.Errorf("expected exact match type, got %s", page[0].MatchType())
	}
	if hl := page[0].Highlight(); !strings.Contains(hl, "**luz**") || !strings.Contains(hl, "**conta**") {
		t.Errorf("expected expanded terms marked in highlight, got %q", hl)
	}
}

func TestQuickSearch(t *testing.T) {
	store := &mockRecordStore{records: map[string]record.Record{
		"prefix":    makeRecord("prefix", "electricity invoice for march", ""),
		"substring": makeRecord("substring", "the electricity meter reading", ""),
		"summary":   makeRecord("summary", "scanned document", "electricity contract"),
		"unrelated": makeRecord("unrelated", "vacation photos", ""),
	}}
	s := newTestService(&testDeps{store: store})

	t.Run("prefix outranks substring", func(t *testing.T) {
		results, err := s.QuickSearch(context.Background(), "user-1", "electricity", 10)
		if err != nil {
			t.Fatalf("QuickSearch: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		if results[0].Score() != quickPrefixScore {
			t.Errorf("expected a prefix match first, got score %v", results[0].Score())
		}
		for _, res := range results {
			if res.ID() == "unrelated" {
				t.Errorf("unrelated record leaked into results")
			}
		}
	})

	t.Run("blank prefix returns nothing", func(t *testing.T) {
		results, err := s.QuickSearch(context.Background(), "user-1", "  ", 10)
		if err != nil {
			t.Fatalf("QuickSearch: %v", err)
		}
		if len(results) != 0 {
			t.Errorf("expected no results, got %d", len(results))
		}
	})

	t.Run("respects the limit", func(t *testing.T) {
		results, err := s.QuickSearch(context.Background(), "user-1", "electricity", 1)
		if err != nil {
			t.Fatalf("QuickSearch: %v", err)
		}
		if len(results) != 1 {
			t.Errorf("expected 1 result, got %d", len(results))
		}
	})
}

func TestFindSimilar(t *testing.T) {
	source := makeRecord("source", "electricity invoice from enel", "")

	t.Run("excludes the source record and uses the standalone threshold", func(t *testing.T) {
		sem := &mockSemantic{results: []result.Result{
			result.New(source, 1.0, match.Semantic, []string{"text"}),
			makeResult("similar", 0.5, match.Semantic),
		}}
		store := &mockRecordStore{records: map[string]record.Record{"source": source}}
		s := newTestService(&testDeps{semantic: sem, store: store})

		results, err := s.FindSimilar(context.Background(), "user-1", "source", 10)
		if err != nil {
			t.Fatalf("FindSimilar: %v", err)
		}
		if len(results) != 1 || results[0].ID() != "similar" {
			t.Fatalf("expected only the similar record, got %v", results)
		}
		if sem.lastMin != DefaultSimilarMinSimilarity {
			t.Errorf("expected standalone threshold %v, got %v", DefaultSimilarMinSimilarity, sem.lastMin)
		}
	})

	t.Run("unknown record fails with not found", func(t *testing.T) {
		store := &mockRecordStore{records: map[string]record.Record{}}
		s := newTestService(&testDeps{store: store})

		if _, err := s.FindSimilar(context.Background(), "user-1", "ghost", 10); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("other owners cannot reach the record", func(t *testing.T) {
		store := &mockRecordStore{records: map[string]record.Record{"source": source}}
		s := newTestService(&testDeps{store: store})

		if _, err := s.FindSimilar(context.Background(), "intruder", "source", 10); !errors.Is(err, domain.ErrRecordNotFound) {
			t.Fatalf("expected ErrRecordNotFound for foreign owner, got %v", err)
		}
	})
}

func TestPaginate(t *testing.T) {
	results := []result.Result{
		makeResult("a", 0.9, match.Semantic),
		makeResult("b", 0.8, match.Semantic),
		makeResult("c", 0.7, match.Semantic),
	}
	tests := []struct {
		name    string
		offset  int
		limit   int
		wantIDs []string
	}{
		{"first page", 0, 2, []string{"a", "b"}},
		{"second page", 2, 2, []string{"c"}},
		{"past the end", 5, 2, nil},
		{"full page", 0, 10, []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := paginate(results, tt.offset, tt.limit)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected %d results, got %d", len(tt.wantIDs), len(got))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID() != id {
					t.Errorf("position %d: got %s, want %s", i, got[i].ID(), id)
				}
			}
		})
	}
}
