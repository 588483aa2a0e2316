package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
	"github.com/custodia-labs/lexirag/internal/core/ports/driving"
	"github.com/custodia-labs/lexirag/internal/logger"
)

// sourceSnippetLimit bounds the text carried on each returned source.
const sourceSnippetLimit = 300

// fallbackAnswer is returned when the generator itself fails.
const fallbackAnswer = "I encountered an error while generating the answer. Please try again."

// noContextFollowUps are suggested when retrieval finds nothing.
var noContextFollowUps = []string{
	"Which documents have been uploaded?",
	"Could you rephrase the question using terms from the documents?",
}

// AnswerConfig tunes the answering pipeline.
type AnswerConfig struct {
	// TopK is the default number of context chunks per answer.
	TopK int

	// Verify enables the post-answer fact-checking pass.
	Verify bool

	// SuggestFollowUps enables best-effort follow-up question generation.
	SuggestFollowUps bool
}

// DefaultAnswerConfig returns the standard answering configuration.
func DefaultAnswerConfig() AnswerConfig {
	return AnswerConfig{TopK: 10, Verify: true, SuggestFollowUps: true}
}

// AnswerService orchestrates the full question-answering pipeline:
// retrieve, assemble, generate, verify. Degraded conditions resolve to a
// low-confidence result rather than an error; only invalid input and
// retrieval infrastructure failures surface as errors.
type AnswerService struct {
	retriever *HybridRetriever
	assembler *ContextAssembler
	generator *AnswerGenerator
	verifier  *AnswerVerifier
	llm       driven.LLMService
	cfg       AnswerConfig
}

var _ driving.AnswerService = (*AnswerService)(nil)

// NewAnswerService wires the answering pipeline.
func NewAnswerService(
	retriever *HybridRetriever,
	llm driven.LLMService,
	cfg AnswerConfig,
) *AnswerService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultAnswerConfig().TopK
	}
	return &AnswerService{
		retriever: retriever,
		assembler: NewContextAssembler(),
		generator: NewAnswerGenerator(llm),
		verifier:  NewAnswerVerifier(llm),
		llm:       llm,
		cfg:       cfg,
	}
}

// Ask answers the question in req against the indexed corpus.
func (s *AnswerService) Ask(ctx context.Context, req driving.AskRequest) (*domain.AnswerResult, error) {
	start := time.Now()
	requestID := uuid.NewString()
	logger.Section("Ask")
	logger.Debug("Request %s: %q", requestID, req.Query)
	defer logger.Timing("ask", start)

	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	results, err := s.retriever.Retrieve(ctx, req.Query, req.FileIDs, topK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	if len(results) == 0 {
		logger.Info("Request %s: no relevant context found", requestID)
		return s.noContextResult(start), nil
	}

	bundle := s.assembler.Assemble(results)

	draft, err := s.generator.Generate(ctx, req.Query, bundle, req.History)
	if err != nil {
		logger.Warn("Request %s: generation failed: %v", requestID, err)
		return s.errorResult(results, bundle, start), nil
	}

	answer := draft.Text
	verification := domain.Verification{Status: domain.VerificationSkipped}
	if s.cfg.Verify {
		answer, verification = s.verifier.Verify(ctx, req.Query, draft.Text, bundle.Text)
	}

	result := &domain.AnswerResult{
		Answer:          answer,
		Sources:         extractSources(results),
		Confidence:      ConfidenceFromScores(results),
		Verification:    verification,
		ModelUsed:       draft.ModelUsed,
		TokensUsed:      draft.TokensUsed,
		RetrievedChunks: len(results),
		MissingExhibits: bundle.MissingExhibits,
	}
	if s.cfg.SuggestFollowUps {
		result.FollowUps = s.suggestFollowUps(ctx, req.Query, answer)
	}
	result.ResponseTime = time.Since(start)

	logger.Info("Request %s: answered with %d sources, confidence %s",
		requestID, len(result.Sources), result.Confidence)
	return result, nil
}

// noContextResult is the fixed answer returned when retrieval finds no
// relevant chunks.
func (s *AnswerService) noContextResult(start time.Time) *domain.AnswerResult {
	return &domain.AnswerResult{
		Answer:       NotFoundMessage,
		Sources:      []domain.Source{},
		Confidence:   domain.ConfidenceLow,
		Verification: domain.Verification{Status: domain.VerificationSkipped},
		ResponseTime: time.Since(start),
		FollowUps:    noContextFollowUps,
	}
}

// errorResult is the safe answer returned when generation fails. The error
// confidence marks a pipeline failure, never a low retrieval score.
func (s *AnswerService) errorResult(
	results []domain.RetrievalResult,
	bundle domain.ContextBundle,
	start time.Time,
) *domain.AnswerResult {
	return &domain.AnswerResult{
		Answer:          fallbackAnswer,
		Sources:         extractSources(results),
		Confidence:      domain.ConfidenceError,
		Verification:    domain.Verification{Status: domain.VerificationSkipped},
		RetrievedChunks: len(results),
		MissingExhibits: bundle.MissingExhibits,
		ResponseTime:    time.Since(start),
	}
}

// suggestFollowUps asks the model for follow-up questions. Failures are
// swallowed: follow-ups are decoration, never worth failing an answer over.
func (s *AnswerService) suggestFollowUps(ctx context.Context, query, answer string) []string {
	if s.llm == nil {
		return nil
	}
	prompt := fmt.Sprintf(
		"Based on this Q&A about legal documents, suggest 3 short follow-up questions the user might ask next. Return one question per line with no numbering.\n\nQ: %s\nA: %s",
		query, answer)
	result, err := s.llm.Chat(ctx, []domain.ChatMessage{
		{Role: "user", Content: prompt},
	}, driven.ChatOptions{MaxTokens: 200, Temperature: 0.7})
	if err != nil {
		logger.Debug("Follow-up suggestion failed: %v", err)
		return nil
	}

	var followUps []string
	for _, line := range strings.Split(result.Text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•0123456789. "))
		if line == "" {
			continue
		}
		followUps = append(followUps, line)
		if len(followUps) == 3 {
			break
		}
	}
	return followUps
}

// extractSources converts retrieval results into deduplicated answer
// sources. Duplicates by (file, page, chunk) keep their first occurrence.
func extractSources(results []domain.RetrievalResult) []domain.Source {
	seen := make(map[string]bool, len(results))
	sources := make([]domain.Source, 0, len(results))
	for _, res := range results {
		key := fmt.Sprintf("%s:%d:%d", res.Chunk.DocumentID, res.Chunk.Page, res.Chunk.Index)
		if seen[key] {
			continue
		}
		seen[key] = true

		text := truncate(res.Chunk.Text, sourceSnippetLimit)
		sources = append(sources, domain.Source{
			Text:         text,
			Score:        res.FinalScore(),
			FileID:       res.Chunk.DocumentID,
			Filename:     res.Chunk.Filename,
			Page:         res.Chunk.Page,
			ChunkIndex:   res.Chunk.Index,
			SectionTitle: res.Chunk.SectionTitle,
		})
	}
	return sources
}
