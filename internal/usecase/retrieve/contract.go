package retrieve

import (
	"context"

	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/filter"
)

// RecordStore serves filtered candidate retrieval. When requireEmbedding is
// set, only records with a computed embedding are returned.
type RecordStore interface {
	FindCandidates(ctx context.Context, spec filter.Spec, requireEmbedding bool) ([]record.Record, error)
}
