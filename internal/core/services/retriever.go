package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
	"github.com/custodia-labs/lexirag/internal/logger"
)

// Keyword boost weights. Each boost is additive on top of the raw
// similarity score; the final score is capped at 1.0.
const (
	keywordBoostPerTerm = 0.03
	intentBoost         = 0.05
	sectionBoost        = 0.04
)

// RetrieverConfig holds the retrieval tuning knobs. The fallback ladder
// thresholds are configuration, not hard-coded: only the shape is fixed
// (never return empty when candidates exist).
type RetrieverConfig struct {
	// TopK is the default number of chunks to return.
	TopK int

	// MinScore is the primary similarity threshold.
	MinScore float64

	// FallbackThresholds are tried in order when no candidate clears
	// MinScore. After the ladder is exhausted, the top TopK candidates
	// are returned regardless of score.
	FallbackThresholds []float64

	// Hybrid enables keyword boosting on top of vector similarity.
	Hybrid bool

	// EnforceDiversity enables the per-file/per-section caps.
	EnforceDiversity bool
}

// DefaultRetrieverConfig returns the tuning used by the answer pipeline.
func DefaultRetrieverConfig() RetrieverConfig {
	return RetrieverConfig{
		TopK:               10,
		MinScore:           0.20,
		FallbackThresholds: []float64{0.10},
		Hybrid:             true,
		EnforceDiversity:   true,
	}
}

// HybridRetriever orchestrates query rewriting, embedding, vector search,
// keyword boosting, diversity enforcement, and reranking.
type HybridRetriever struct {
	store     driven.VectorStore
	embedder  driven.EmbeddingService
	rewriter  *QueryRewriter
	diversity *DiversityFilter
	reranker  *Reranker
	cfg       RetrieverConfig
}

// NewHybridRetriever creates a retriever over the given store and
// embedding service.
func NewHybridRetriever(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	cfg RetrieverConfig,
) *HybridRetriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultRetrieverConfig().TopK
	}
	return &HybridRetriever{
		store:     store,
		embedder:  embedder,
		rewriter:  NewQueryRewriter(),
		diversity: NewDiversityFilter(),
		reranker:  NewReranker(),
		cfg:       cfg,
	}
}

// Retrieve returns the topK most relevant chunks for the query, optionally
// restricted to the given file IDs. An empty result means the corpus
// genuinely has no candidates; a too-strict threshold alone never produces
// an empty result.
func (r *HybridRetriever) Retrieve(
	ctx context.Context, query string, fileIDs []string, topK int,
) ([]domain.RetrievalResult, error) {
	if r.store == nil {
		return nil, domain.ErrVectorStoreUnavailable
	}
	if r.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = r.cfg.TopK
	}

	logger.Section("Retrieval")
	logger.Debug("Query: %q, topK: %d, files: %v", query, topK, fileIDs)
	defer logger.Timing("retrieve", time.Now())

	rewritten := r.rewriter.Rewrite(query)

	embedding, err := r.embedder.Embed(ctx, rewritten.Rewritten)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	embedding = NormalizeDimension(embedding, r.store.Dimensions())

	var filter *driven.VectorFilter
	if len(fileIDs) > 0 {
		filter = &driven.VectorFilter{FileIDs: fileIDs}
	}

	// Over-fetch to leave room for diversity filtering and reranking.
	initialK := topK * 2
	if r.cfg.EnforceDiversity {
		initialK = topK * 3
	}

	matches, err := r.store.Query(ctx, embedding, initialK, filter)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	logger.Debug("Vector store returned %d candidates", len(matches))

	// A filter bug must never silently produce zero answers when
	// unfiltered data exists: retry once without the filter.
	if len(matches) == 0 && filter != nil {
		logger.Warn("Filtered query returned nothing (filter: %v), retrying unfiltered", fileIDs)
		matches, err = r.store.Query(ctx, embedding, initialK, nil)
		if err != nil {
			return nil, fmt.Errorf("unfiltered vector query: %w", err)
		}
		logger.Warn("Unfiltered retry returned %d candidates", len(matches))
	}

	if len(matches) == 0 {
		if stats, statsErr := r.store.Stats(ctx); statsErr == nil {
			logger.Warn("Empty retrieval; index holds %d vectors", stats.TotalVectors)
		}
		return nil, nil
	}

	candidates := make([]domain.RetrievalResult, len(matches))
	for i, m := range matches {
		candidates[i] = domain.RetrievalResult{
			Chunk:     chunkFromMetadata(m.Metadata),
			BaseScore: m.Score,
			Score:     m.Score,
		}
	}

	if r.cfg.Hybrid {
		candidates = r.applyKeywordBoosts(query, rewritten.Intent, candidates)
	}

	results := r.filterByScore(candidates, topK)

	if r.cfg.EnforceDiversity && len(results) > 0 {
		results = r.diversity.Enforce(results, topK)
	}

	// Reranking is fail-open: an empty rerank keeps the prior ordering.
	if len(results) > 0 {
		if reranked := r.reranker.Rerank(query, results); len(reranked) > 0 {
			results = reranked
		}
	}

	if len(results) > topK {
		results = results[:topK]
	}

	logger.Info("Retrieval: %d chunks", len(results))
	return results, nil
}

// applyKeywordBoosts adds the exact-term, intent, and section-title boosts
// to each candidate and re-sorts by the boosted score. Only the query's key
// terms count toward matches; stop words and very short words never boost.
func (r *HybridRetriever) applyKeywordBoosts(
	query string, intent domain.Intent, candidates []domain.RetrievalResult,
) []domain.RetrievalResult {
	queryTerms := r.rewriter.KeyTerms(query)

	boosted := make([]domain.RetrievalResult, len(candidates))
	for i, c := range candidates {
		textLower := strings.ToLower(c.Chunk.Text)

		keywordMatches := 0
		for _, term := range queryTerms {
			if strings.Contains(textLower, term) {
				keywordMatches++
			}
		}
		c.Boosts.Keyword = float64(keywordMatches) * keywordBoostPerTerm

		if intent != domain.IntentNone && c.Chunk.HasClauseTag(string(intent)) {
			c.Boosts.Intent = intentBoost
		}

		if title := strings.ToLower(c.Chunk.SectionTitle); title != "" {
			for _, term := range queryTerms {
				if strings.Contains(title, term) {
					c.Boosts.Section = sectionBoost
					break
				}
			}
		}

		score := c.BaseScore + c.Boosts.Keyword + c.Boosts.Intent + c.Boosts.Section
		if score > 1.0 {
			score = 1.0
		}
		c.Score = score
		boosted[i] = c
	}

	sortByScore(boosted)
	return boosted
}

// filterByScore applies the minimum-score threshold with the adaptive
// fallback ladder: the configured thresholds are tried in order, and when
// every rung fails the top topK candidates are returned regardless of
// score. The caller decides whether low-confidence results are acceptable;
// this component never manufactures false negatives.
func (r *HybridRetriever) filterByScore(
	candidates []domain.RetrievalResult, topK int,
) []domain.RetrievalResult {
	thresholds := append([]float64{r.cfg.MinScore}, r.cfg.FallbackThresholds...)

	for rung, threshold := range thresholds {
		var kept []domain.RetrievalResult
		for _, c := range candidates {
			if c.Score >= threshold {
				kept = append(kept, c)
				if len(kept) >= topK && rung > 0 {
					break
				}
			}
		}
		if len(kept) > 0 {
			if rung > 0 {
				logger.Warn("No candidate cleared min score %.2f; using fallback threshold %.2f (%d chunks)",
					r.cfg.MinScore, threshold, len(kept))
			}
			return kept
		}
	}

	logger.Warn("All thresholds failed; returning top %d candidates regardless of score", topK)
	if len(candidates) > topK {
		return candidates[:topK]
	}
	return candidates
}

// sortByScore orders results descending by boosted score, keeping the
// store's ordering for ties.
func sortByScore(results []domain.RetrievalResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
}

// chunkFromMetadata hydrates a chunk from vector store metadata.
func chunkFromMetadata(m driven.VectorMetadata) domain.Chunk {
	return domain.Chunk{
		DocumentID:   m.FileID,
		Filename:     m.Filename,
		Index:        m.ChunkIndex,
		Text:         m.Text,
		CharCount:    m.CharCount,
		Page:         m.Page,
		SectionTitle: m.SectionTitle,
		ClauseTags:   m.ClauseTags,
	}
}

// NormalizeDimension truncates or zero-pads a vector to the given
// dimension, logging a warning. This is a lossy compatibility shim for
// model/index mismatches, not a correctness guarantee.
func NormalizeDimension(vec []float32, dim int) []float32 {
	if dim <= 0 || len(vec) == dim {
		return vec
	}
	logger.Warn("Embedding dimension %d does not match index dimension %d; adjusting", len(vec), dim)
	if len(vec) > dim {
		return vec[:dim]
	}
	padded := make([]float32, dim)
	copy(padded, vec)
	return padded
}
