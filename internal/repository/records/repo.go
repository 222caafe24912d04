// Package records stores content records as JSON documents with a per-owner
// set index, and serves filtered candidate retrieval for the search core.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/recall-vault/recall/internal/db"
	"github.com/recall-vault/recall/internal/domain"
	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/filter"
)

const (
	recordKeyPrefix = domain.KeyPrefix + "record:"
	ownerKeyPrefix  = domain.KeyPrefix + "owner:"
)

// store is the consumer interface for the record repository (ISP).
type store interface {
	db.JSONStore
	db.SetStore
}

// Repo implements record storage and candidate retrieval over a JSON store.
type Repo struct {
	store  store
	logger *zap.Logger
}

// New creates a record repository.
func New(s store, logger *zap.Logger) *Repo {
	return &Repo{store: s, logger: logger}
}

func recordKey(id string) string   { return recordKeyPrefix + id }
func ownerKey(owner string) string { return ownerKeyPrefix + owner + ":records" }

// Put stores a record and indexes it under its owner.
func (r *Repo) Put(ctx context.Context, rec *record.Record) error {
	data, err := json.Marshal(toDTO(rec))
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", rec.ID(), err)
	}
	if err := r.store.JSONSet(ctx, recordKey(rec.ID()), "$", data); err != nil {
		return fmt.Errorf("store record %s: %w", rec.ID(), err)
	}
	if err := r.store.SAdd(ctx, ownerKey(rec.Owner()), rec.ID()); err != nil {
		return fmt.Errorf("index record %s: %w", rec.ID(), err)
	}
	return nil
}

// Get loads a single record by id, scoped to the owner.
func (r *Repo) Get(ctx context.Context, owner, id string) (record.Record, error) {
	data, err := r.store.JSONGet(ctx, recordKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return record.Record{}, domain.ErrRecordNotFound
		}
		return record.Record{}, fmt.Errorf("load record %s: %w", id, err)
	}

	rec, err := fromJSON(data)
	if err != nil {
		return record.Record{}, err
	}
	if rec.Owner() != owner {
		return record.Record{}, domain.ErrRecordNotFound
	}
	return rec, nil
}

// Delete removes a record and its owner-index entry.
func (r *Repo) Delete(ctx context.Context, owner, id string) error {
	if err := r.store.Del(ctx, recordKey(id)); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	if err := r.store.SRem(ctx, ownerKey(owner), id); err != nil {
		return fmt.Errorf("unindex record %s: %w", id, err)
	}
	return nil
}

// FindCandidates returns the owner's records matching the filter spec.
// When requireEmbedding is set, records without a computed embedding are
// skipped. Individual records that fail to decode are logged and skipped so
// one corrupt document cannot poison a whole search.
func (r *Repo) FindCandidates(
	ctx context.Context, spec filter.Spec, requireEmbedding bool,
) ([]record.Record, error) {
	ids, err := r.store.SMembers(ctx, ownerKey(spec.Owner()))
	if err != nil {
		return nil, fmt.Errorf("list owner records: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	// Set member order is unspecified; sort so candidate order, and the
	// equal-score tie-breaks downstream of it, stays reproducible.
	sort.Strings(ids)

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(id)
	}

	docs, err := r.store.JSONGetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load candidate records: %w", err)
	}

	out := make([]record.Record, 0, len(docs))
	for i, data := range docs {
		if data == nil {
			continue
		}
		rec, err := fromJSON(data)
		if err != nil {
			r.logger.Warn("Skipping undecodable record",
				zap.String("id", ids[i]), zap.Error(err))
			continue
		}
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
