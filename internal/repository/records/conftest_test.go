package records

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/recall-vault/recall/internal/db"
	"github.com/recall-vault/recall/internal/domain/record"
)

// mockStore implements the consumer interface for tests with an in-memory map.
type mockStore struct {
	docs map[string][]byte
	sets map[string]map[string]struct{}

	jsonGetMultiErr error
	sMembersErr     error
}

func newMockStore() *mockStore {
	return &mockStore{
		docs: make(map[string][]byte),
		sets: make(map[string]map[string]struct{}),
	}
}

func (m *mockStore) JSONSet(_ context.Context, key, _ string, data []byte) error {
	m.docs[key] = data
	return nil
}

func (m *mockStore) JSONGet(_ context.Context, key string, _ ...string) ([]byte, error) {
	data, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return data, nil
}

func (m *mockStore) JSONGetMulti(_ context.Context, keys []string) ([][]byte, error) {
	if m.jsonGetMultiErr != nil {
		return nil, m.jsonGetMultiErr
	}
	out := make([][]byte, len(keys))
	for i, key := range keys {
		out[i] = m.docs[key]
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, key string) error {
	delete(m.docs, key)
	return nil
}

func (m *mockStore) SAdd(_ context.Context, key string, members ...string) error {
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]struct{})
		m.sets[key] = set
	}
	for _, member := range members {
		set[member] = struct{}{}
	}
	return nil
}

func (m *mockStore) SRem(_ context.Context, key string, members ...string) error {
	for _, member := range members {
		delete(m.sets[key], member)
	}
	return nil
}

func (m *mockStore) SMembers(_ context.Context, key string) ([]string, error) {
	if m.sMembersErr != nil {
		return nil, m.sMembersErr
	}
	out := make([]string, 0, len(m.sets[key]))
	for member := range m.sets[key] {
		out = append(out, member)
	}
	return out, nil
}

func newTestRepo(_ *testing.T) (*Repo, *mockStore) {
	ms := newMockStore()
	return New(ms, zap.NewNop()), ms
}

func sampleRecord(id, owner string, embedding []float32) record.Record {
	return record.Reconstruct(
		id, owner, "message", "finance",
		"electricity bill due friday", "monthly utility bill",
		time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		2, 0.9,
		map[string][]string{"amount": {"120.50"}},
		embedding,
	)
}
