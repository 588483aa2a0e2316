package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
//
// Degraded-result conditions (zero retrieval matches, dimension
// mismatches, unparsable verification output) are values, not errors:
// they resolve to an explicit lower-confidence result instead.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyText indicates empty or whitespace-only text was passed
	// where content is required (e.g. to the embedding service).
	ErrEmptyText = errors.New("empty text")

	// ErrInvalidChunking indicates a misconfigured chunker, such as an
	// overlap that meets or exceeds the target chunk size.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrEmbeddingFailed indicates embedding generation failed after all
	// retries. Callers must not substitute zero vectors silently.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not
	// configured.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded and
	// bounded retries were exhausted.
	ErrRateLimited = errors.New("rate limited")

	// ErrDimensionMismatch indicates a vector whose length differs from
	// the store's configured dimension where no shim applies.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
