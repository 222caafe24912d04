package domain

import "errors"

var (
	// ErrRecordNotFound signals a missing content record.
	ErrRecordNotFound = errors.New("record not found")
	// ErrVectorDimMismatch signals an embedding dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLanguageServiceError signals a query-enhancement service failure.
	ErrLanguageServiceError = errors.New("language service error")
	// ErrSearchFailed signals a structural failure in the search pipeline itself.
	ErrSearchFailed = errors.New("search failed")
)
