package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
)

// setupTestStore creates a 3-dimensional store in a temp directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "vectors.db"), 3)
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func testVector(id, fileID, text string, index int, values []float32) driven.Vector {
	return driven.Vector{
		ID:     id,
		Values: values,
		Metadata: driven.VectorMetadata{
			FileID:       fileID,
			Filename:     fileID + ".pdf",
			Text:         text,
			ChunkIndex:   index,
			CharCount:    len(text),
			Page:         1,
			SectionTitle: "SECTION 1: PAYMENT TERMS",
			ClauseTags:   []string{"payment"},
		},
	}
}

func TestStore_UpsertAndQuery_RanksByCosineSimilarity(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	err := store.Upsert(ctx, []driven.Vector{
		testVector("a_chunk_0", "a", "monthly fee", 0, []float32{1, 0, 0}),
		testVector("a_chunk_1", "a", "late payment", 1, []float32{0.9, 0.1, 0}),
		testVector("b_chunk_0", "b", "termination", 0, []float32{0, 1, 0}),
	})
	require.NoError(t, err)

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 2, nil)
	require.NoError(t, err)

	require.Len(t, matches, 2)
	assert.Equal(t, "a_chunk_0", matches[0].ID)
	assert.Equal(t, "a_chunk_1", matches[1].ID)
	assert.Greater(t, matches[0].Score, matches[1].Score)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestStore_Query_MetadataRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []driven.Vector{
		testVector("a_chunk_0", "a", "monthly fee of $500", 0, []float32{1, 0, 0}),
	}))

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	meta := matches[0].Metadata
	assert.Equal(t, "a", meta.FileID)
	assert.Equal(t, "a.pdf", meta.Filename)
	assert.Equal(t, "monthly fee of $500", meta.Text)
	assert.Equal(t, 0, meta.ChunkIndex)
	assert.Equal(t, len("monthly fee of $500"), meta.CharCount)
	assert.Equal(t, 1, meta.Page)
	assert.Equal(t, "SECTION 1: PAYMENT TERMS", meta.SectionTitle)
	assert.Equal(t, []string{"payment"}, meta.ClauseTags)
}

func TestStore_Query_FilterRestrictsToFiles(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []driven.Vector{
		testVector("a_chunk_0", "a", "fee", 0, []float32{1, 0, 0}),
		testVector("b_chunk_0", "b", "termination", 0, []float32{1, 0, 0}),
	}))

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 10,
		&driven.VectorFilter{FileIDs: []string{"b"}})
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "b_chunk_0", matches[0].ID)
}

func TestStore_Upsert_OverwritesExistingID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []driven.Vector{
		testVector("a_chunk_0", "a", "old text", 0, []float32{1, 0, 0}),
	}))
	require.NoError(t, store.Upsert(ctx, []driven.Vector{
		testVector("a_chunk_0", "a", "new text", 0, []float32{0, 1, 0}),
	}))

	matches, err := store.Query(ctx, []float32{0, 1, 0}, 10, nil)
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "new text", matches[0].Metadata.Text)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-6)
}

func TestStore_Upsert_DimensionMismatchRejected(t *testing.T) {
	store := setupTestStore(t)

	err := store.Upsert(context.Background(), []driven.Vector{
		testVector("a_chunk_0", "a", "fee", 0, []float32{1, 0}),
	})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_Query_DimensionMismatchRejected(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Query(context.Background(), []float32{1, 0}, 10, nil)

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_Delete_IgnoresUnknownIDs(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []driven.Vector{
		testVector("a_chunk_0", "a", "fee", 0, []float32{1, 0, 0}),
	}))

	err := store.Delete(ctx, []string{"a_chunk_0", "a_chunk_999"})
	require.NoError(t, err)

	matches, err := store.Query(ctx, []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStore_Stats_GroupsByFile(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []driven.Vector{
		testVector("a_chunk_0", "a", "fee", 0, []float32{1, 0, 0}),
		testVector("a_chunk_1", "a", "late fee", 1, []float32{0, 1, 0}),
		testVector("b_chunk_0", "b", "termination", 0, []float32{0, 0, 1}),
	}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalVectors)
	assert.Equal(t, 2, stats.Namespaces["a"])
	assert.Equal(t, 1, stats.Namespaces["b"])
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")
	ctx := context.Background()

	store, err := NewStore(path, 3)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, []driven.Vector{
		testVector("a_chunk_0", "a", "fee", 0, []float32{1, 0, 0}),
	}))
	require.NoError(t, store.Close())

	reopened, err := NewStore(path, 3)
	require.NoError(t, err)
	defer reopened.Close()

	matches, err := reopened.Query(ctx, []float32{1, 0, 0}, 10, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "fee", matches[0].Metadata.Text)
}

func TestFloat32BytesRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.75}

	out := bytesToFloat32Slice(float32SliceToBytes(in))

	assert.Equal(t, in, out)
}
