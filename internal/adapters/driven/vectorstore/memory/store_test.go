package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
)

func vec(values ...float32) []float32 { return values }

func storeWithVectors(t *testing.T) *Store {
	t.Helper()
	s := NewStore(3)
	err := s.Upsert(context.Background(), []driven.Vector{
		{ID: "a_chunk_0", Values: vec(1, 0, 0), Metadata: driven.VectorMetadata{FileID: "a", Text: "alpha"}},
		{ID: "a_chunk_1", Values: vec(0.9, 0.1, 0), Metadata: driven.VectorMetadata{FileID: "a", Text: "beta"}},
		{ID: "b_chunk_0", Values: vec(0, 1, 0), Metadata: driven.VectorMetadata{FileID: "b", Text: "gamma"}},
	})
	require.NoError(t, err)
	return s
}

func TestQuery_RanksByCosineSimilarity(t *testing.T) {
	s := storeWithVectors(t)

	matches, err := s.Query(context.Background(), vec(1, 0, 0), 2, nil)

	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "a_chunk_0", matches[0].ID)
	assert.InDelta(t, 1.0, matches[0].Score, 0.001)
	assert.Equal(t, "a_chunk_1", matches[1].ID)
}

func TestQuery_FilterRestrictsToFiles(t *testing.T) {
	s := storeWithVectors(t)

	matches, err := s.Query(context.Background(), vec(1, 0, 0), 10, &driven.VectorFilter{FileIDs: []string{"b"}})

	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b_chunk_0", matches[0].ID)
}

func TestQuery_DimensionMismatchRejected(t *testing.T) {
	s := storeWithVectors(t)

	_, err := s.Query(context.Background(), vec(1, 0), 10, nil)

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestUpsert_DimensionMismatchRejected(t *testing.T) {
	s := NewStore(3)

	err := s.Upsert(context.Background(), []driven.Vector{{ID: "x", Values: vec(1)}})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestUpsert_OverwritesExistingID(t *testing.T) {
	s := storeWithVectors(t)
	err := s.Upsert(context.Background(), []driven.Vector{
		{ID: "a_chunk_0", Values: vec(0, 0, 1), Metadata: driven.VectorMetadata{FileID: "a", Text: "updated"}},
	})
	require.NoError(t, err)

	matches, err := s.Query(context.Background(), vec(0, 0, 1), 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "updated", matches[0].Metadata.Text)
}

func TestDelete_IgnoresUnknownIDs(t *testing.T) {
	s := storeWithVectors(t)

	err := s.Delete(context.Background(), []string{"a_chunk_0", "does-not-exist"})
	require.NoError(t, err)

	stats, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalVectors)
}

func TestStats_CountsVectors(t *testing.T) {
	s := storeWithVectors(t)

	stats, err := s.Stats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalVectors)
}
