package driven

import (
	"context"

	"github.com/custodia-labs/lexirag/internal/core/domain"
)

// VectorMetadata is the typed metadata stored alongside each vector. The
// vector store is the system of record for chunk text, so everything needed
// to hydrate a chunk at query time lives here.
type VectorMetadata struct {
	FileID       string
	Filename     string
	Text         string
	ChunkIndex   int
	CharCount    int
	Page         int
	SectionTitle string
	ClauseTags   []string
}

// Vector is one entry in the similarity index.
type Vector struct {
	// ID is the vector identifier, "{docID}_chunk_{index}".
	ID string

	// Values is the embedding, matching the store's configured dimension.
	Values []float32

	// Metadata is the chunk payload stored with the vector.
	Metadata VectorMetadata
}

// VectorMatch is one similarity search result.
type VectorMatch struct {
	ID string

	// Score is the cosine similarity in [0,1].
	Score float64

	Metadata VectorMetadata
}

// VectorFilter restricts a query to specific files. A single ID maps to an
// equality filter, multiple IDs to an in-list filter.
type VectorFilter struct {
	FileIDs []string
}

// Matches reports whether the given file ID passes the filter.
func (f *VectorFilter) Matches(fileID string) bool {
	if f == nil || len(f.FileIDs) == 0 {
		return true
	}
	for _, id := range f.FileIDs {
		if id == fileID {
			return true
		}
	}
	return false
}

// VectorStore is the durable similarity index. The vector dimension is
// fixed for the lifetime of an index; a mismatch is a configuration error,
// not a runtime branch to silently resolve.
//
// Implementations may include:
//   - Pinecone (serverless, cosine metric)
//   - SQLite (local, brute-force cosine)
//   - In-memory (tests, offline runs)
type VectorStore interface {
	// Upsert inserts or updates vectors, batching internally as needed.
	Upsert(ctx context.Context, vectors []Vector) error

	// Query returns the topK nearest vectors to the query vector,
	// optionally restricted by filter. Scores are cosine similarity.
	Query(ctx context.Context, vector []float32, topK int, filter *VectorFilter) ([]VectorMatch, error)

	// Delete removes vectors by ID. Unknown IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Stats returns index statistics.
	Stats(ctx context.Context) (*domain.IndexStats, error)

	// Dimensions returns the configured vector dimension.
	Dimensions() int

	// Close releases resources.
	Close() error
}
