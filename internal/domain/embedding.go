package domain

import (
	"context"
	"fmt"
	"math"
)

// EmbeddingResult holds a computed embedding with provider token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// CosineSimilarity returns the cosine similarity of two vectors, clamped to
// [0,1]. Unequal dimensions indicate corrupted data upstream and panic
// wrapping ErrVectorDimMismatch rather than degrading silently.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		panic(fmt.Errorf("%w: %d vs %d", ErrVectorDimMismatch, len(a), len(b)))
	}
	if len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}
