package search

import (
	"context"
	"time"

	"github.com/recall-vault/recall/internal/domain"
	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/filter"
	"github.com/recall-vault/recall/internal/domain/search/match"
	"github.com/recall-vault/recall/internal/domain/search/query"
	"github.com/recall-vault/recall/internal/domain/search/request"
	"github.com/recall-vault/recall/internal/domain/search/result"
)

type mockEnhancer struct {
	enhanced query.Enhanced
	calls    int
}

func (m *mockEnhancer) Enhance(_ context.Context, rawQuery string) query.Enhanced {
	m.calls++
	if m.enhanced.Original() == "" {
		return query.Passthrough(rawQuery)
	}
	return m.enhanced
}

type mockSemantic struct {
	results  []result.Result
	err      error
	panics   bool
	panicVal any
	calls    int
	lastMin  float64
}

func (m *mockSemantic) Retrieve(_ context.Context, _ string, _ filter.Spec, _ int, minSimilarity float64) ([]result.Result, error) {
	m.calls++
	m.lastMin = minSimilarity
	if m.panics {
		panic("semantic exploded")
	}
	if m.panicVal != nil {
		panic(m.panicVal)
	}
	return m.results, m.err
}

type mockFuzzy struct {
	results []result.Result
	err     error
	calls   int
}

func (m *mockFuzzy) Retrieve(_ context.Context, _ string, _ filter.Spec, _ int, _ float64) ([]result.Result, error) {
	m.calls++
	return m.results, m.err
}

type mockExact struct {
	results []result.Result
	err     error
	calls   int
}

func (m *mockExact) Retrieve(_ context.Context, _ string, _ filter.Spec, _ int) ([]result.Result, error) {
	m.calls++
	return m.results, m.err
}

// passthroughRanker keeps fusion order and scores so pipeline tests can
// assert on them directly.
type passthroughRanker struct{ calls int }

func (m *passthroughRanker) Rank(results []result.Result, _ query.Enhanced, _ request.Preferences) []result.Result {
	m.calls++
	return results
}

type mockRecordStore struct {
	records map[string]record.Record
	getErr  error
	findErr error
}

func (m *mockRecordStore) Get(_ context.Context, owner, id string) (record.Record, error) {
	if m.getErr != nil {
		return record.Record{}, m.getErr
	}
	rec, ok := m.records[id]
	if !ok || rec.Owner() != owner {
		return record.Record{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

func (m *mockRecordStore) FindCandidates(_ context.Context, spec filter.Spec, requireEmbedding bool) ([]record.Record, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	out := make([]record.Record, 0, len(m.records))
	for _, rec := range m.records {
		if requireEmbedding && !rec.HasEmbedding() {
			continue
		}
		if !spec.Matches(&rec) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func makeRecord(id, text, summary string) record.Record {
	return record.Reconstruct(
		id, "user-1", "message", "bills",
		text, summary, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		2, 0.9, nil, nil,
	)
}

func makeResult(id string, score float64, mt match.Type) result.Result {
	return result.New(makeRecord(id, "text for "+id, ""), score, mt, []string{"text"})
}

func mustRequest(rawQuery string, diversify bool) *request.Request {
	req, err := request.New(rawQuery, "user-1", filter.Params{}, 20, 0, request.Preferences{}, diversify)
	if err != nil {
		panic(err)
	}
	return &req
}
