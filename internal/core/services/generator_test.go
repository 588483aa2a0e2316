package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driven"
)

func TestGenerate_PromptCarriesContextAndRules(t *testing.T) {
	llm := &mockLLM{responses: []*driven.ChatResult{{Text: "answer"}}}
	g := NewAnswerGenerator(llm)
	bundle := domain.ContextBundle{Text: "[Source 1] msa.pdf\nThe fee is $500."}

	_, err := g.Generate(context.Background(), "What is the fee?", bundle, nil)

	require.NoError(t, err)
	require.Len(t, llm.calls, 1)
	system := llm.calls[0][0]
	assert.Equal(t, "system", system.Role)
	assert.Contains(t, system.Content, "The fee is $500.")
	assert.Contains(t, system.Content, NotFoundMessage)
	assert.Contains(t, system.Content, "[Source X]")

	last := llm.calls[0][len(llm.calls[0])-1]
	assert.Equal(t, "user", last.Role)
	assert.Equal(t, "What is the fee?", last.Content)
}

func TestGenerate_MissingExhibitWarningInPrompt(t *testing.T) {
	llm := &mockLLM{responses: []*driven.ChatResult{{Text: "answer"}}}
	g := NewAnswerGenerator(llm)
	bundle := domain.ContextBundle{
		Text:            "Fees are described in Exhibit B.",
		MissingExhibits: []string{"Exhibit B"},
	}

	_, err := g.Generate(context.Background(), "q", bundle, nil)

	require.NoError(t, err)
	assert.Contains(t, llm.calls[0][0].Content, "Exhibit B")
	assert.Contains(t, llm.calls[0][0].Content, "may be missing")
}

func TestGenerate_NilLLM(t *testing.T) {
	g := NewAnswerGenerator(nil)

	_, err := g.Generate(context.Background(), "q", domain.ContextBundle{}, nil)

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}
