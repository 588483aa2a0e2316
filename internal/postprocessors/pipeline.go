// Package postprocessors provides the document processing pipeline that
// turns extracted text into tagged, retrieval-ready chunks.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/lexirag/internal/core/domain"
)

// Processor is one stage of the chunk production pipeline.
type Processor interface {
	// Name returns the processor name for error reporting.
	Name() string

	// Process transforms the chunk list for the given document. The
	// first processor receives nil chunks and should create them.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// Pipeline chains multiple Processors and runs them in order.
type Pipeline struct {
	processors []Processor
}

// NewPipeline creates a processing pipeline. Processors are executed in the
// order provided.
func NewPipeline(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Process runs the document through all processors in order.
func (p *Pipeline) Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	var chunks []domain.Chunk
	for _, processor := range p.processors {
		var err error
		chunks, err = processor.Process(ctx, doc, chunks)
		if err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
	}
	return chunks, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor Processor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
