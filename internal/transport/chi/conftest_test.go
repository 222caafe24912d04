package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/recall-vault/recall/internal/domain"
	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/match"
	"github.com/recall-vault/recall/internal/domain/search/request"
	"github.com/recall-vault/recall/internal/domain/search/result"
)

type mockSearch struct {
	results  []result.Result
	total    int
	enhanced string
	err      error
	lastReq  *request.Request
}

func (m *mockSearch) Search(_ context.Context, req *request.Request) ([]result.Result, int, string, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, 0, "", m.err
	}
	return m.results, m.total, m.enhanced, nil
}

func (m *mockSearch) QuickSearch(_ context.Context, _, _ string, _ int) ([]result.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockSearch) FindSimilar(_ context.Context, _, _ string, _ int) ([]result.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

type mockRecords struct {
	records map[string]record.Record
	err     error
}

func (m *mockRecords) Put(_ context.Context, rec *record.Record) error {
	if m.err != nil {
		return m.err
	}
	m.records[rec.ID()] = *rec
	return nil
}

func (m *mockRecords) Get(_ context.Context, owner, id string) (record.Record, error) {
	if m.err != nil {
		return record.Record{}, m.err
	}
	rec, ok := m.records[id]
	if !ok || rec.Owner() != owner {
		return record.Record{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

func (m *mockRecords) Delete(_ context.Context, owner, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, err := m.Get(context.Background(), owner, id); err != nil {
		return err
	}
	delete(m.records, id)
	return nil
}

type mockPinger struct{ err error }

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

func newTestHandler(search *mockSearch, records *mockRecords, pinger *mockPinger) http.Handler {
	if search == nil {
		search = &mockSearch{}
	}
	if records == nil {
		records = &mockRecords{records: map[string]record.Record{}}
	}
	if pinger == nil {
		pinger = &mockPinger{}
	}
	server := NewServer(search, records, pinger, zap.NewNop())
	r := chi.NewRouter()
	server.Register(r)
	return r
}

func makeHit(id string, score float64) result.Result {
	rec := record.Reconstruct(
		id, "user-1", "message", "bills",
		"text of "+id, "", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		2, 0.9, nil, nil,
	)
	return result.New(rec, score, match.Semantic, []string{"text"})
}
