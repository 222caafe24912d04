package retrieve

import (
	"context"
	"time"

	"github.com/recall-vault/recall/internal/domain"
	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/filter"
)

type mockStore struct {
	records []record.Record
	err     error
	calls   int
}

func (m *mockStore) FindCandidates(_ context.Context, spec filter.Spec, requireEmbedding bool) ([]record.Record, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]record.Record, 0, len(m.records))
	for i := range m.records {
		rec := m.records[i]
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

type mockEmbedder struct {
	embedding []float32
	err       error
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.embedding}, nil
}

type recordOpts struct {
	id        string
	text      string
	summary   string
	createdAt time.Time
	entities  map[string][]string
	embedding []float32
}

func makeRecord(o recordOpts) record.Record {
	if o.createdAt.IsZero() {
		o.createdAt = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	}
	return record.Reconstruct(
		o.id, "user-1", "message", "bills",
		o.text, o.summary, o.createdAt, 2, 0.9,
		o.entities, o.embedding,
	)
}

func emptySpec() filter.Spec {
	spec, err := filter.New("user-1", filter.Params{})
	if err != nil {
		panic(err)
	}
	return spec
}
