package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/core/ports/driving"
)

// stubAnswerService returns a fixed result and records the request.
type stubAnswerService struct {
	result  *domain.AnswerResult
	lastReq driving.AskRequest
}

func (s *stubAnswerService) Ask(_ context.Context, req driving.AskRequest) (*domain.AnswerResult, error) {
	s.lastReq = req
	return s.result, nil
}

// stubIndexService records calls.
type stubIndexService struct {
	indexed []string
	removed []string
	stats   *domain.IndexStats
}

func (s *stubIndexService) Index(_ context.Context, doc *domain.Document) (int, error) {
	s.indexed = append(s.indexed, doc.Filename)
	return 3, nil
}

func (s *stubIndexService) Remove(_ context.Context, docID string) error {
	s.removed = append(s.removed, docID)
	return nil
}

func (s *stubIndexService) Stats(_ context.Context) (*domain.IndexStats, error) {
	return s.stats, nil
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	require.NoError(t, err)
	return buf.String()
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	SetVersion("1.2.3")
	defer func() { version = originalVersion }()

	out := execute(t, "version")

	assert.Contains(t, out, "lexirag version 1.2.3")
}

func TestAskCmd_PrintsAnswerAndSources(t *testing.T) {
	stub := &stubAnswerService{result: &domain.AnswerResult{
		Answer:     "The fee is $500 per month [Source 1].",
		Confidence: domain.ConfidenceHigh,
		Verification: domain.Verification{
			Status: domain.VerificationAllGrounded,
		},
		Sources: []domain.Source{
			{Filename: "msa.pdf", Page: 2, SectionTitle: "SECTION 1: PAYMENT TERMS", Score: 0.91},
		},
		RetrievedChunks: 1,
		ModelUsed:       "stub-model",
	}}
	SetAnswerService(stub)
	defer SetAnswerService(nil)

	out := execute(t, "ask", "What is the fee?", "--files", "msa", "--top-k", "3")

	assert.Contains(t, out, "$500 per month")
	assert.Contains(t, out, "Confidence: high")
	assert.Contains(t, out, "msa.pdf, page 2")
	assert.Equal(t, "What is the fee?", stub.lastReq.Query)
	assert.Equal(t, []string{"msa"}, stub.lastReq.FileIDs)
	assert.Equal(t, 3, stub.lastReq.TopK)
}

func TestAskCmd_WithoutServiceFails(t *testing.T) {
	SetAnswerService(nil)
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"ask", "anything"})
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestDeleteCmd_RemovesEachDocument(t *testing.T) {
	stub := &stubIndexService{}
	SetIndexService(stub)
	defer SetIndexService(nil)

	out := execute(t, "delete", "doc-1", "doc-2")

	assert.Equal(t, []string{"doc-1", "doc-2"}, stub.removed)
	assert.Contains(t, out, "Removed doc-1")
}

func TestStatsCmd_PrintsCounts(t *testing.T) {
	stub := &stubIndexService{stats: &domain.IndexStats{
		TotalVectors: 12,
		Namespaces:   map[string]int{"doc-1": 12},
	}}
	SetIndexService(stub)
	defer SetIndexService(nil)

	out := execute(t, "stats")

	assert.Contains(t, out, "Total vectors: 12")
	assert.Contains(t, out, "doc-1: 12")
}
