package search

import (
	"github.com/recall-vault/recall/internal/domain/search/result"
	"github.com/recall-vault/recall/internal/metrics"
)

// exactAgreementBoost rewards records where a literal match confirms a
// semantic or fuzzy hit.
const exactAgreementBoost = 0.2

// fuse merges the three strategy result lists into one deduplicated list.
// Semantic results seed the order; fuzzy and exact hits on the same record
// promote it to a hybrid match. Insertion order is preserved so downstream
// ranking breaks ties deterministically.
func fuse(semantic, fuzzy, exact []result.Result) []result.Result {
	order := make([]string, 0, len(semantic)+len(fuzzy)+len(exact))
	merged := make(map[string]result.Result, len(semantic)+len(fuzzy)+len(exact))

	for _, res := range semantic {
		merged[res.ID()] = res
		order = append(order, res.ID())
	}

	for _, res := range fuzzy {
		existing, ok := merged[res.ID()]
		if !ok {
			merged[res.ID()] = res
			order = append(order, res.ID())
			continue
		}
		score := existing.Score()
		if res.Score() > score {
			score = res.Score()
		}
		merged[res.ID()] = existing.MergeAsHybrid(res, score)
		metrics.FusionHybridTotal.Inc()
	}

	for _, res := range exact {
		existing, ok := merged[res.ID()]
		if !ok {
			merged[res.ID()] = res
			order = append(order, res.ID())
			continue
		}
		merged[res.ID()] = existing.MergeAsHybrid(res, existing.Score()+exactAgreementBoost)
		metrics.FusionHybridTotal.Inc()
	}

	out := make([]result.Result, 0, len(order))
	for _, id := range order {
		out = append(out, merged[id])
	}
	return out
}
