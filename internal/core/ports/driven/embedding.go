package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Empty or whitespace-only input is a caller error (domain.ErrEmptyText),
// not a silent zero vector: an all-zero vector is indistinguishable from a
// legitimate zero-similarity match downstream. On persistent provider
// failure the call fails rather than returning zero vectors.
//
// Implementations may include:
//   - OpenRouter (any provider-routed embedding model)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts. Batches are
	// split into provider-sized sub-batches internally. The returned
	// slice is ordered to match the input.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 1536).
	// This must match the VectorStore configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
