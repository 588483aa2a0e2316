package driving

import (
	"context"

	"github.com/custodia-labs/lexirag/internal/core/domain"
)

// AskRequest is the caller's question plus its retrieval scope. The
// conversation layer owns history persistence; this core only consumes the
// turns it is handed.
type AskRequest struct {
	// Query is the natural-language question.
	Query string

	// FileIDs optionally restricts retrieval to specific documents.
	FileIDs []string

	// History holds prior conversation turns for continuity. Only the
	// most recent turns are attached to the model call.
	History []domain.ChatMessage

	// TopK is the number of context chunks to retrieve. Zero selects the
	// configured default.
	TopK int
}

// AnswerService answers questions against the indexed corpus.
type AnswerService interface {
	// Ask runs the full pipeline: rewrite, retrieve, rerank, assemble,
	// generate, verify. Degraded conditions (no matches, failed
	// verification) resolve to a low-confidence result, not an error.
	Ask(ctx context.Context, req AskRequest) (*domain.AnswerResult, error)
}

// IndexService maintains the vector index for uploaded documents.
type IndexService interface {
	// Index chunks, embeds, and upserts a document. Returns the number
	// of vectors written.
	Index(ctx context.Context, doc *domain.Document) (int, error)

	// Remove deletes all vectors belonging to a document.
	Remove(ctx context.Context, docID string) error

	// Stats reports vector index statistics.
	Stats(ctx context.Context) (*domain.IndexStats, error)
}
