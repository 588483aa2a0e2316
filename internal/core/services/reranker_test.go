package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexirag/internal/core/domain"
)

func TestRerank_BoostsAreMonotonicNonDecreasing(t *testing.T) {
	r := NewReranker()
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{Text: "The payment terms require invoices monthly.", Index: 2}, Score: 0.5},
		{Chunk: domain.Chunk{Text: "Unrelated boilerplate text.", Index: 50}, Score: 0.4},
	}

	reranked := r.Rerank("what are the payment terms", results)

	require.Len(t, reranked, 2)
	for _, res := range reranked {
		assert.GreaterOrEqual(t, res.RerankedScore, res.Score)
		assert.LessOrEqual(t, res.RerankedScore, 1.0)
	}
}

func TestRerank_TermOverlapOutranksPosition(t *testing.T) {
	r := NewReranker()
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{Text: "General introduction with no relevant terms.", Index: 0}, Score: 0.5},
		{Chunk: domain.Chunk{Text: "The termination clause allows cancellation with thirty days notice.", Index: 40}, Score: 0.5},
	}

	reranked := r.Rerank("termination clause notice", results)

	assert.Contains(t, reranked[0].Chunk.Text, "termination")
}

func TestRerank_SectionTitleOverlapCounts(t *testing.T) {
	r := NewReranker()
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{Text: "Clause body A.", SectionTitle: "SECTION 1: PAYMENT TERMS", Index: 30}, Score: 0.5},
		{Chunk: domain.Chunk{Text: "Clause body B.", SectionTitle: "SECTION 9: NOTICES", Index: 30}, Score: 0.5},
	}

	reranked := r.Rerank("payment terms", results)

	assert.Equal(t, "SECTION 1: PAYMENT TERMS", reranked[0].Chunk.SectionTitle)
}

func TestRerank_EarlyChunkBonus(t *testing.T) {
	r := NewReranker()
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{Text: "same text", Index: 50}, Score: 0.5},
		{Chunk: domain.Chunk{Text: "same text", Index: 3}, Score: 0.5},
	}

	reranked := r.Rerank("unrelated query", results)

	assert.Equal(t, 3, reranked[0].Chunk.Index)
	assert.InDelta(t, 0.05, reranked[0].RerankedScore-reranked[1].RerankedScore, 0.001)
}

func TestRerank_CapAtOne(t *testing.T) {
	r := NewReranker()
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{
			Text:         "payment terms liability indemnification confidentiality scope of work termination clause",
			SectionTitle: "payment terms liability",
			Index:        0,
		}, Score: 0.98},
	}

	reranked := r.Rerank("payment terms liability indemnification confidentiality", results)

	assert.Equal(t, 1.0, reranked[0].RerankedScore)
}

func TestRerank_EmptyInput(t *testing.T) {
	r := NewReranker()

	assert.Empty(t, r.Rerank("anything", nil))
}
