package domain

// BoostBreakdown records the additive boosts applied on top of the raw
// similarity score, so scoring stays explainable.
type BoostBreakdown struct {
	// Keyword is the exact-term overlap boost.
	Keyword float64

	// Intent is the clause-tag/intent match boost.
	Intent float64

	// Section is the section-title token overlap boost.
	Section float64
}

// RetrievalResult is one retrieved chunk with its scores. Each pipeline
// stage produces new values rather than mutating shared state.
type RetrievalResult struct {
	// Chunk is the retrieved chunk, hydrated from vector store metadata.
	Chunk Chunk

	// BaseScore is the raw similarity score from the vector store, in [0,1].
	BaseScore float64

	// Score is BaseScore plus keyword boosts, capped at 1.0.
	Score float64

	// RerankedScore is the final combined score after reranking.
	// Zero until the reranker has run.
	RerankedScore float64

	// Boosts is the keyword boost breakdown.
	Boosts BoostBreakdown
}

// FinalScore returns the reranked score when present, otherwise the
// boosted score.
func (r RetrievalResult) FinalScore() float64 {
	if r.RerankedScore > 0 {
		return r.RerankedScore
	}
	return r.Score
}
