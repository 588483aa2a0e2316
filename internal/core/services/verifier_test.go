package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
)

func TestVerify_JSONWrappedInProse(t *testing.T) {
	llm := &mockLLM{responses: []*driven.ChatResult{
		{Text: "Here is my assessment:\n```json\n" +
			`{"grounded_claims":["a"],"ungrounded_claims":[],"verification_status":"all_grounded","revised_answer":""}` +
			"\n```"},
	}}
	v := NewAnswerVerifier(llm)

	answer, verification := v.Verify(context.Background(), "q", "draft", "context")

	assert.Equal(t, "draft", answer)
	assert.Equal(t, domain.VerificationAllGrounded, verification.Status)
	assert.Equal(t, []string{"a"}, verification.GroundedClaims)
}

func TestVerify_UnknownStatusFlagsManualReview(t *testing.T) {
	llm := &mockLLM{responses: []*driven.ChatResult{
		{Text: `{"grounded_claims":[],"ungrounded_claims":[],"verification_status":"something_else","revised_answer":""}`},
	}}
	v := NewAnswerVerifier(llm)

	answer, verification := v.Verify(context.Background(), "q", "draft", "context")

	assert.Equal(t, "draft", answer)
	assert.Equal(t, domain.VerificationManualReview, verification.Status)
}

func TestVerify_CallFailureKeepsDraft(t *testing.T) {
	llm := &mockLLM{responses: []*driven.ChatResult{nil}}
	v := NewAnswerVerifier(llm)

	answer, verification := v.Verify(context.Background(), "q", "draft", "context")

	assert.Equal(t, "draft", answer)
	assert.Equal(t, domain.VerificationFailed, verification.Status)
}

func TestVerify_ContextExcerptBounded(t *testing.T) {
	llm := &mockLLM{responses: []*driven.ChatResult{
		{Text: `{"grounded_claims":[],"ungrounded_claims":[],"verification_status":"all_grounded","revised_answer":""}`},
	}}
	v := NewAnswerVerifier(llm)

	// Three-byte runes land the byte limit mid-rune, exercising the
	// rune-safe excerpt boundary.
	longContext := strings.Repeat("€", 10000)
	_, _ = v.Verify(context.Background(), "q", "draft", longContext)

	require.Len(t, llm.calls, 1)
	prompt := llm.calls[0][0].Content
	assert.Less(t, len(prompt), 6000)
	assert.True(t, utf8.ValidString(prompt))
}

func TestVerify_RevisedAnswerOnlyWhenUngroundedClaimsExist(t *testing.T) {
	// A revised answer without ungrounded claims is ignored.
	llm := &mockLLM{responses: []*driven.ChatResult{
		{Text: `{"grounded_claims":["a"],"ungrounded_claims":[],"verification_status":"all_grounded","revised_answer":"rewritten"}`},
	}}
	v := NewAnswerVerifier(llm)

	answer, _ := v.Verify(context.Background(), "q", "draft", "context")

	assert.Equal(t, "draft", answer)
}

func TestParseVerifierJSON_NoBraces(t *testing.T) {
	_, ok := parseVerifierJSON("no json here")

	assert.False(t, ok)
}
