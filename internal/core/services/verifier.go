package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
	"github.com/custodia-labs/lexirag/internal/logger"
)

// verifierContextLimit caps the context excerpt sent with the verification
// call so the second request stays cheap.
const verifierContextLimit = 4000

const verifierMaxTokens = 1000

const verifierPrompt = `You are a meticulous fact-checker for legal document analysis.

Compare the ANSWER against the CONTEXT and classify every factual claim in the answer as grounded (supported by the context) or ungrounded (not supported by the context).

CONTEXT:
%s

QUESTION:
%s

ANSWER:
%s

Respond with ONLY a JSON object in this exact shape:
{
  "grounded_claims": ["claim 1", "claim 2"],
  "ungrounded_claims": ["claim 3"],
  "verification_status": "all_grounded" | "some_ungrounded" | "mostly_ungrounded",
  "revised_answer": "the answer with ungrounded claims removed, or the original answer if all claims are grounded"
}`

// AnswerVerifier runs a second model pass that checks the draft answer
// against the retrieved context and strips ungrounded claims.
type AnswerVerifier struct {
	llm driven.LLMService
}

// NewAnswerVerifier creates a verifier backed by the given model.
func NewAnswerVerifier(llm driven.LLMService) *AnswerVerifier {
	return &AnswerVerifier{llm: llm}
}

type verifierResponse struct {
	GroundedClaims     []string `json:"grounded_claims"`
	UngroundedClaims   []string `json:"ungrounded_claims"`
	VerificationStatus string   `json:"verification_status"`
	RevisedAnswer      string   `json:"revised_answer"`
}

// Verify checks the draft against the context and returns the answer to
// present plus the verification record. The draft is never discarded: if
// the verification call fails or its output cannot be parsed, the draft is
// returned unchanged with a status flagging it for manual review.
func (v *AnswerVerifier) Verify(
	ctx context.Context,
	query string,
	draft string,
	contextText string,
) (string, domain.Verification) {
	if v.llm == nil {
		return draft, domain.Verification{Status: domain.VerificationSkipped}
	}

	excerpt := truncate(contextText, verifierContextLimit)

	prompt := fmt.Sprintf(verifierPrompt, excerpt, query, draft)
	result, err := v.llm.Chat(ctx, []domain.ChatMessage{
		{Role: "user", Content: prompt},
	}, driven.ChatOptions{
		MaxTokens:   verifierMaxTokens,
		Temperature: 0.0,
	})
	if err != nil {
		logger.Warn("Verification call failed: %v", err)
		return draft, domain.Verification{Status: domain.VerificationFailed}
	}

	parsed, ok := parseVerifierJSON(result.Text)
	if !ok {
		logger.Warn("Verification response was not parseable JSON")
		return draft, domain.Verification{Status: domain.VerificationManualReview}
	}

	verification := domain.Verification{
		GroundedClaims:   parsed.GroundedClaims,
		UngroundedClaims: parsed.UngroundedClaims,
		Status:           statusFromString(parsed.VerificationStatus),
	}

	answer := draft
	if len(parsed.UngroundedClaims) > 0 && strings.TrimSpace(parsed.RevisedAnswer) != "" {
		answer = parsed.RevisedAnswer
		logger.Info("Removed %d ungrounded claim(s) from answer", len(parsed.UngroundedClaims))
	}
	return answer, verification
}

// parseVerifierJSON extracts the JSON object between the first '{' and the
// last '}' of the model output, tolerating surrounding prose or fences.
func parseVerifierJSON(text string) (*verifierResponse, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var parsed verifierResponse
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, false
	}
	if parsed.VerificationStatus == "" {
		return nil, false
	}
	return &parsed, true
}

func statusFromString(s string) domain.VerificationStatus {
	switch domain.VerificationStatus(s) {
	case domain.VerificationAllGrounded,
		domain.VerificationSomeUngrounded,
		domain.VerificationMostlyUngrounded:
		return domain.VerificationStatus(s)
	default:
		return domain.VerificationManualReview
	}
}
