// Package memory provides an in-memory vector store for tests and offline
// runs.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// DefaultDimensions matches the standard embedding size.
const DefaultDimensions = 1536

// Store is an in-memory implementation of driven.VectorStore using
// brute-force cosine similarity.
type Store struct {
	mu         sync.RWMutex
	vectors    map[string]driven.Vector
	dimensions int
}

// NewStore creates an in-memory vector store with the given dimension.
// Zero selects the default.
func NewStore(dimensions int) *Store {
	if dimensions <= 0 {
		dimensions = DefaultDimensions
	}
	return &Store{
		vectors:    make(map[string]driven.Vector),
		dimensions: dimensions,
	}
}

// Upsert inserts or updates vectors.
func (s *Store) Upsert(_ context.Context, vectors []driven.Vector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v.Values) != s.dimensions {
			return fmt.Errorf("%w: vector %s has %d values, store expects %d",
				domain.ErrDimensionMismatch, v.ID, len(v.Values), s.dimensions)
		}
		s.vectors[v.ID] = v
	}
	return nil
}

// Query returns the topK nearest vectors by cosine similarity.
func (s *Store) Query(
	_ context.Context,
	vector []float32,
	topK int,
	filter *driven.VectorFilter,
) ([]driven.VectorMatch, error) {
	if len(vector) != s.dimensions {
		return nil, fmt.Errorf("%w: query vector has %d values, store expects %d",
			domain.ErrDimensionMismatch, len(vector), s.dimensions)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]driven.VectorMatch, 0, len(s.vectors))
	for _, v := range s.vectors {
		if !filter.Matches(v.Metadata.FileID) {
			continue
		}
		matches = append(matches, driven.VectorMatch{
			ID:       v.ID,
			Score:    cosineSimilarity(vector, v.Values),
			Metadata: v.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Delete removes vectors by ID. Unknown IDs are ignored.
func (s *Store) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.vectors, id)
	}
	return nil
}

// Stats returns index statistics.
func (s *Store) Stats(_ context.Context) (*domain.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &domain.IndexStats{
		TotalVectors: len(s.vectors),
		Namespaces:   map[string]int{"": len(s.vectors)},
	}, nil
}

// Dimensions returns the configured vector dimension.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
