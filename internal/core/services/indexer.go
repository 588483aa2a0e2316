package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
	"github.com/custodia-labs/lexirag/internal/core/ports/driving"
	"github.com/custodia-labs/lexirag/internal/logger"
	"github.com/custodia-labs/lexirag/internal/postprocessors"
)

// metadataTextLimit caps the chunk text stored in vector metadata.
const metadataTextLimit = 1000

// maxChunksPerDocument bounds the ID range enumerated on delete.
const maxChunksPerDocument = 1000

// Indexer turns documents into vectors: run the processing pipeline, embed
// the chunks, and upsert them into the store.
type Indexer struct {
	pipeline *postprocessors.Pipeline
	embedder driven.EmbeddingService
	store    driven.VectorStore
}

var _ driving.IndexService = (*Indexer)(nil)

// NewIndexer creates an indexing service.
func NewIndexer(
	pipeline *postprocessors.Pipeline,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
) *Indexer {
	return &Indexer{pipeline: pipeline, embedder: embedder, store: store}
}

// Index chunks, embeds, and upserts the document. Chunks whose embedding is
// missing or all-zero are skipped with a warning so they can never match
// every query with identical similarity. Returns the number of vectors
// written.
func (ix *Indexer) Index(ctx context.Context, doc *domain.Document) (int, error) {
	if doc == nil || doc.ID == "" {
		return 0, fmt.Errorf("%w: document missing ID", domain.ErrInvalidInput)
	}
	if ix.embedder == nil {
		return 0, domain.ErrEmbeddingUnavailable
	}
	if ix.store == nil {
		return 0, domain.ErrVectorStoreUnavailable
	}

	logger.Section("Indexing")
	logger.Debug("Document %s (%s)", doc.ID, doc.Filename)

	chunks, err := ix.pipeline.Process(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("process document %s: %w", doc.ID, err)
	}
	if len(chunks) == 0 {
		logger.Info("Document %s produced no chunks", doc.ID)
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	embeddings, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed document %s: %w", doc.ID, err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingFailed, len(embeddings), len(chunks))
	}

	dim := ix.store.Dimensions()
	vectors := make([]driven.Vector, 0, len(chunks))
	for i, chunk := range chunks {
		embedding := embeddings[i]
		if len(embedding) == 0 || isZeroVector(embedding) {
			logger.Warn("Skipping chunk %d of %s: unusable embedding", chunk.Index, doc.ID)
			continue
		}
		vectors = append(vectors, driven.Vector{
			ID:     vectorID(doc.ID, chunk.Index),
			Values: NormalizeDimension(embedding, dim),
			Metadata: driven.VectorMetadata{
				FileID:       chunk.DocumentID,
				Filename:     chunk.Filename,
				Text:         truncate(chunk.Text, metadataTextLimit),
				ChunkIndex:   chunk.Index,
				CharCount:    chunk.CharCount,
				Page:         chunk.Page,
				SectionTitle: chunk.SectionTitle,
				ClauseTags:   chunk.ClauseTags,
			},
		})
	}
	if len(vectors) == 0 {
		logger.Warn("Document %s: no usable embeddings, nothing indexed", doc.ID)
		return 0, nil
	}

	if err := ix.store.Upsert(ctx, vectors); err != nil {
		return 0, fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	logger.Info("Indexed %d vectors for document %s", len(vectors), doc.ID)
	return len(vectors), nil
}

// Remove deletes all vectors belonging to the document. The store ignores
// IDs that do not exist, so the full candidate range is enumerated.
func (ix *Indexer) Remove(ctx context.Context, docID string) error {
	if strings.TrimSpace(docID) == "" {
		return fmt.Errorf("%w: empty document ID", domain.ErrInvalidInput)
	}
	if ix.store == nil {
		return domain.ErrVectorStoreUnavailable
	}

	ids := make([]string, 0, maxChunksPerDocument)
	for i := 0; i < maxChunksPerDocument; i++ {
		ids = append(ids, vectorID(docID, i))
	}
	if err := ix.store.Delete(ctx, ids); err != nil {
		return fmt.Errorf("delete document %s: %w", docID, err)
	}
	logger.Info("Removed vectors for document %s", docID)
	return nil
}

// Stats reports vector index statistics.
func (ix *Indexer) Stats(ctx context.Context) (*domain.IndexStats, error) {
	if ix.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}
	return ix.store.Stats(ctx)
}

func vectorID(docID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", docID, index)
}

func isZeroVector(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

// truncate bounds s to at most limit bytes, backing up so a multi-byte
// rune is never split.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
