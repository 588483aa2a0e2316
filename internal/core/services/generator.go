package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
)

// NotFoundMessage is the fixed sentence the model must use when the
// requested information is absent from the context.
const NotFoundMessage = "This information is not present in the provided documents."

// generatorMaxTokens bounds the generated answer length.
const generatorMaxTokens = 2000

// historyLimit is the number of prior conversation turns attached to the
// model call for continuity.
const historyLimit = 6

// Confidence thresholds over the mean final score of the context chunks.
const (
	highConfidenceFloor   = 0.75
	mediumConfidenceFloor = 0.55
)

// groundingPrompt is the strict system prompt template. The context text
// and the missing-exhibit warning are interpolated.
const groundingPrompt = `You are an expert legal document analyst. Your responses MUST be 100%% grounded in the provided context.

CRITICAL RULES - VIOLATION CAUSES HALLUCINATION:

1. ONLY use information EXPLICITLY present in the context below
2. ALWAYS cite sources using [Source X] format for EVERY factual claim
3. If information is NOT in the context, you MUST say: "%s"
4. NEVER invent, assume, or infer information not in the context
5. NEVER make up section numbers, clause numbers, or page references
6. NEVER invent payment terms, termination conditions, or other contract details
7. If asked about something not in context, explicitly state it's not found
8. Quote relevant text using "quotation marks" when helpful
9. Distinguish between what IS stated vs what might be implied (only state what IS stated)

CITATION REQUIREMENTS:
- Every factual statement MUST have [Source X] citation
- If you cannot cite a source, the statement is likely hallucinated - DO NOT INCLUDE IT
- Section/page references must match exactly what's in the context

RESPONSE STRUCTURE:
1. Direct answer to the question (with citations)
2. Supporting evidence from context (quoted when helpful)
3. Any limitations or missing information
%s
CONTEXT DOCUMENTS:
%s

Remember: If it's not in the context, it doesn't exist. State that the information is not found rather than inventing.`

// AnswerGenerator drives the language model with a strict grounding prompt
// at zero temperature for deterministic legal tone.
type AnswerGenerator struct {
	llm driven.LLMService
}

// NewAnswerGenerator creates an answer generator.
func NewAnswerGenerator(llm driven.LLMService) *AnswerGenerator {
	return &AnswerGenerator{llm: llm}
}

// Generate produces a draft answer for the query over the assembled
// context, attaching at most the last six history turns.
func (g *AnswerGenerator) Generate(
	ctx context.Context,
	query string,
	bundle domain.ContextBundle,
	history []domain.ChatMessage,
) (*driven.ChatResult, error) {
	if g.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	messages := []domain.ChatMessage{
		{Role: "system", Content: g.systemPrompt(bundle)},
	}
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}
	messages = append(messages, history...)
	messages = append(messages, domain.ChatMessage{Role: "user", Content: query})

	result, err := g.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   generatorMaxTokens,
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	return result, nil
}

func (g *AnswerGenerator) systemPrompt(bundle domain.ContextBundle) string {
	warning := "\n"
	if len(bundle.MissingExhibits) > 0 {
		warning = fmt.Sprintf(
			"\nIMPORTANT: The following exhibits are referenced but may be missing from the provided context: %s. Do NOT invent their contents.\n",
			strings.Join(bundle.MissingExhibits, ", "))
	}
	return fmt.Sprintf(groundingPrompt, NotFoundMessage, warning, bundle.Text)
}

// ConfidenceFromScores derives the answer confidence label from the mean
// final score of the context chunks.
func ConfidenceFromScores(results []domain.RetrievalResult) domain.Confidence {
	if len(results) == 0 {
		return domain.ConfidenceLow
	}
	sum := 0.0
	for _, r := range results {
		sum += r.FinalScore()
	}
	avg := sum / float64(len(results))

	switch {
	case avg >= highConfidenceFloor:
		return domain.ConfidenceHigh
	case avg >= mediumConfidenceFloor:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}
