package services

import (
	"sort"
	"strings"

	"github.com/custodia-labs/lexirag/internal/core/domain"
)

// legalPhrases is a small curated list of phrases whose presence in both
// query and chunk signals strong topical relevance.
var legalPhrases = []string{
	"payment terms", "termination clause", "scope of work",
	"liability", "indemnification", "confidentiality",
}

// earlyChunkCutoff marks chunks near the start of a document, which get a
// small positional bonus for general queries.
const earlyChunkCutoff = 10

// Reranker combines multiple relevance signals into a final ranking. This
// is a linear, explainable scoring model rather than a trained reranker, to
// keep behavior auditable for a legal-accuracy-sensitive domain.
type Reranker struct{}

// NewReranker creates a reranker.
func NewReranker() *Reranker {
	return &Reranker{}
}

// Rerank returns the results sorted descending by a combined score: the
// boosted base score plus query-term overlap, legal phrase matches,
// section-title overlap, and a positional bonus. The combined score is
// capped at 1.0 and never falls below the base score, so boosts are a
// monotonic non-decreasing transform.
func (r *Reranker) Rerank(query string, results []domain.RetrievalResult) []domain.RetrievalResult {
	queryLower := strings.ToLower(query)
	queryTerms := termSet(queryLower)

	reranked := make([]domain.RetrievalResult, len(results))
	for i, res := range results {
		textLower := strings.ToLower(res.Chunk.Text)

		termMatches := 0
		for term := range queryTerms {
			if strings.Contains(textLower, term) {
				termMatches++
			}
		}
		termScore := float64(termMatches) / float64(maxInt(len(queryTerms), 1)) * 0.2

		phraseMatches := 0
		for _, phrase := range legalPhrases {
			if strings.Contains(queryLower, phrase) && strings.Contains(textLower, phrase) {
				phraseMatches++
			}
		}
		phraseScore := float64(phraseMatches) * 0.1

		sectionScore := 0.0
		if title := strings.ToLower(res.Chunk.SectionTitle); title != "" {
			sectionWords := termSet(title)
			overlap := 0
			for term := range queryTerms {
				if sectionWords[term] {
					overlap++
				}
			}
			sectionScore = float64(overlap) / float64(maxInt(len(queryTerms), 1)) * 0.15
		}

		positionScore := 0.0
		if res.Chunk.Index < earlyChunkCutoff {
			positionScore = 0.05
		}

		score := res.Score + termScore + phraseScore + sectionScore + positionScore
		if score > 1.0 {
			score = 1.0
		}

		res.RerankedScore = score
		reranked[i] = res
	}

	sort.SliceStable(reranked, func(i, j int) bool {
		return reranked[i].FinalScore() > reranked[j].FinalScore()
	})

	return reranked
}

// termSet extracts the unique word tokens of a lower-cased string.
func termSet(lower string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range wordRe.FindAllString(lower, -1) {
		set[w] = true
	}
	return set
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
