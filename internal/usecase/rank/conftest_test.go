package rank

import (
	"time"

	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/match"
	"github.com/recall-vault/recall/internal/domain/search/result"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

type hitOpts struct {
	id         string
	text       string
	summary    string
	category   string
	createdAt  time.Time
	urgency    int
	confidence float64
	entities   map[string][]string
	score      float64
	matchType  match.Type
}

func makeHit(o hitOpts) result.Result {
	if o.createdAt.IsZero() {
		o.createdAt = testNow.Add(-90 * 24 * time.Hour)
	}
	if o.urgency == 0 {
		o.urgency = 1
	}
	if o.category == "" {
		o.category = "other"
	}
	if o.matchType == "" {
		o.matchType = match.Semantic
	}
	rec := record.Reconstruct(
		o.id, "user-1", "message", o.category,
		o.text, o.summary, o.createdAt, o.urgency, o.confidence,
		o.entities, nil,
	)
	return result.New(rec, o.score, o.matchType, []string{"text"})
}
