package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
)

// mockEmbedder returns a fixed vector for every input.
type mockEmbedder struct {
	dims      int
	vector    []float32
	err       error
	batchErr  error
	batchFunc func(texts []string) ([][]float32, error)
}

func newMockEmbedder(dims int) *mockEmbedder {
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = 0.1
	}
	return &mockEmbedder{dims: dims, vector: vec}
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vector, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	if m.batchFunc != nil {
		return m.batchFunc(texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vector
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int   { return m.dims }
func (m *mockEmbedder) ModelName() string { return "mock-embedder" }
func (m *mockEmbedder) Close() error      { return nil }

// mockStore replays scripted matches and records calls.
type mockStore struct {
	dims     int
	matches  []driven.VectorMatch
	queryErr error

	upserted     []driven.Vector
	deleted      []string
	queries      []*driven.VectorFilter
	statsResult  *domain.IndexStats
	filteredOnly bool
}

func newMockStore(dims int) *mockStore {
	return &mockStore{dims: dims, statsResult: &domain.IndexStats{}}
}

func (m *mockStore) Upsert(_ context.Context, vectors []driven.Vector) error {
	m.upserted = append(m.upserted, vectors...)
	return nil
}

func (m *mockStore) Query(_ context.Context, _ []float32, _ int, filter *driven.VectorFilter) ([]driven.VectorMatch, error) {
	m.queries = append(m.queries, filter)
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	// filteredOnly simulates a store whose filtered queries return nothing
	// while unfiltered queries find data.
	if m.filteredOnly && filter != nil {
		return nil, nil
	}
	return m.matches, nil
}

func (m *mockStore) Delete(_ context.Context, ids []string) error {
	m.deleted = append(m.deleted, ids...)
	return nil
}

func (m *mockStore) Stats(_ context.Context) (*domain.IndexStats, error) {
	if m.statsResult == nil {
		return nil, errors.New("stats unavailable")
	}
	return m.statsResult, nil
}

func (m *mockStore) Dimensions() int { return m.dims }
func (m *mockStore) Close() error    { return nil }

// mockLLM replays scripted chat responses in order. A nil entry produces
// an error for that call.
type mockLLM struct {
	responses []*driven.ChatResult
	calls     [][]domain.ChatMessage
	call      int
}

func (m *mockLLM) Chat(_ context.Context, messages []domain.ChatMessage, _ driven.ChatOptions) (*driven.ChatResult, error) {
	m.calls = append(m.calls, messages)
	if m.call >= len(m.responses) {
		return nil, errors.New("unscripted llm call")
	}
	resp := m.responses[m.call]
	m.call++
	if resp == nil {
		return nil, errors.New("llm failure")
	}
	return resp, nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Close() error      { return nil }

func matchFor(fileID, section, text string, index int, score float64) driven.VectorMatch {
	return driven.VectorMatch{
		ID:    fileID,
		Score: score,
		Metadata: driven.VectorMetadata{
			FileID:       fileID,
			Filename:     fileID + ".pdf",
			Text:         text,
			ChunkIndex:   index,
			CharCount:    len(text),
			SectionTitle: section,
		},
	}
}
