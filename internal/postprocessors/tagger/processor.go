// Package tagger labels chunks with the legal clause types they mention,
// using a fixed keyword-to-tag dictionary. Tags feed intent-aware score
// boosting at retrieval time.
package tagger

import (
	"context"
	"strings"

	"github.com/custodia-labs/lexirag/internal/core/domain"
)

// clauseKeywords maps each clause tag to the keywords that trigger it.
// Matching is case-insensitive substring search over the chunk text.
var clauseKeywords = []struct {
	tag      string
	keywords []string
}{
	{"payment", []string{"payment", "compensation", "fee", "invoice", "billing", "price"}},
	{"termination", []string{"termination", "terminate", "cancel", "expire", "end of agreement"}},
	{"liability", []string{"liability", "liable", "damage", "loss"}},
	{"indemnification", []string{"indemnif", "hold harmless", "defend"}},
	{"confidentiality", []string{"confidential", "non-disclosure", "nda", "proprietary"}},
	{"scope", []string{"scope of work", "services", "deliverables", "work to be performed"}},
	{"warranty", []string{"warranty", "warrant", "guarantee"}},
	{"insurance", []string{"insurance", "coverage", "policy"}},
	{"dispute", []string{"dispute", "arbitration", "mediation", "jurisdiction"}},
}

// Processor adds clause-type tags to chunks.
// It implements the postprocessors.Processor interface.
type Processor struct{}

// New creates a clause tagger processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "tagger"
}

// Process scans each chunk's text and records the matching clause tags.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	for i := range chunks {
		chunks[i].ClauseTags = DetectClauseTags(chunks[i].Text)
	}
	return chunks, nil
}

// DetectClauseTags returns the clause tags present in the given text, in
// dictionary order.
func DetectClauseTags(text string) []string {
	lower := strings.ToLower(text)
	var tags []string
	for _, entry := range clauseKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				tags = append(tags, entry.tag)
				break
			}
		}
	}
	return tags
}
