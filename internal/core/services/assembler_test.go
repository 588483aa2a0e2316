package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexirag/internal/core/domain"
)

func TestAssemble_GroupsBySectionWithCitations(t *testing.T) {
	a := NewContextAssembler()
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{Filename: "msa.pdf", Page: 2, SectionTitle: "SECTION 1: PAYMENT TERMS", Text: "The fee is $500 per month.", Index: 0}},
		{Chunk: domain.Chunk{Filename: "msa.pdf", Page: 5, SectionTitle: "SECTION 2: TERMINATION", Text: "Thirty days written notice.", Index: 4}},
		{Chunk: domain.Chunk{Filename: "sow.pdf", Page: 1, SectionTitle: "SECTION 1: PAYMENT TERMS", Text: "Invoices are due on receipt.", Index: 1}},
	}

	bundle := a.Assemble(results)

	assert.Equal(t, []string{"SECTION 1: PAYMENT TERMS", "SECTION 2: TERMINATION"}, bundle.Sections)
	assert.Contains(t, bundle.Text, "=== SECTION 1: PAYMENT TERMS ===")
	assert.Contains(t, bundle.Text, "[Source 1] msa.pdf, Page 2")
	assert.Contains(t, bundle.Text, "[Source 3] msa.pdf, Page 5")

	require.Len(t, bundle.Citations, 3)
	assert.Equal(t, 1, bundle.Citations[0].Number)
	assert.Equal(t, "sow.pdf", bundle.Citations[1].Filename)
	assert.Equal(t, "SECTION 2: TERMINATION", bundle.Citations[2].SectionTitle)
}

func TestAssemble_CitationNumbersUniqueAndSequential(t *testing.T) {
	a := NewContextAssembler()
	var results []domain.RetrievalResult
	for i := 0; i < 5; i++ {
		results = append(results, domain.RetrievalResult{
			Chunk: domain.Chunk{Filename: "doc.pdf", Text: "Body text.", Index: i},
		})
	}

	bundle := a.Assemble(results)

	require.Len(t, bundle.Citations, 5)
	for i, c := range bundle.Citations {
		assert.Equal(t, i+1, c.Number)
	}
}

func TestAssemble_UntitledChunksGroupUnderGeneral(t *testing.T) {
	a := NewContextAssembler()
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{Filename: "doc.pdf", Text: "Untitled body."}},
	}

	bundle := a.Assemble(results)

	assert.Equal(t, []string{"General"}, bundle.Sections)
	// The implicit group gets no section header.
	assert.NotContains(t, bundle.Text, "=== General ===")
}

func TestAssemble_EmptyResults(t *testing.T) {
	a := NewContextAssembler()

	bundle := a.Assemble(nil)

	assert.Empty(t, bundle.Text)
	assert.Empty(t, bundle.Citations)
}

func TestAssemble_FlagsMissingExhibit(t *testing.T) {
	a := NewContextAssembler()
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{Filename: "msa.pdf", Text: "Fees are listed in Exhibit B."}},
	}

	bundle := a.Assemble(results)

	assert.Equal(t, []string{"Exhibit B"}, bundle.MissingExhibits)
}

func TestAssemble_ExhibitWithBodyNotFlagged(t *testing.T) {
	a := NewContextAssembler()
	body := "Exhibit A\n" + strings.Repeat("Detailed fee schedule line item with amounts and dates. ", 4)
	results := []domain.RetrievalResult{
		{Chunk: domain.Chunk{Filename: "msa.pdf", Text: body}},
	}

	bundle := a.Assemble(results)

	assert.Empty(t, bundle.MissingExhibits)
}
