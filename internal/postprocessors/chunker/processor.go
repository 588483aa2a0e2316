// Package chunker provides structure-aware hierarchical chunking for legal
// documents. Text is split by detected section, then by paragraph, then by
// sentence, packed greedily into bounded, overlapping chunks.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/lexirag/internal/core/domain"
	"github.com/custodia-labs/lexirag/internal/structure"
)

// DefaultChunkSize is the default target chunk size in characters.
// Smaller chunks give better retrieval precision on clause-level questions.
const DefaultChunkSize = 800

// DefaultOverlap is the default number of characters seeded from the end of
// a flushed chunk into the next, preserving cross-boundary context.
const DefaultOverlap = 150

// DefaultMinChunkSize is the minimum chunk size; undersized tails are
// merged into the preceding chunk of the same section.
const DefaultMinChunkSize = 100

// Processor splits document content into section-tagged chunks.
// It implements the postprocessors.Processor interface.
type Processor struct {
	chunkSize    int
	overlap      int
	minChunkSize int
	analyzer     *structure.Analyzer
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the target chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMinChunkSize sets the minimum chunk size in characters.
func WithMinChunkSize(size int) Option {
	return func(p *Processor) {
		if size >= 0 {
			p.minChunkSize = size
		}
	}
}

// WithAnalyzer sets the structure analyzer.
func WithAnalyzer(a *structure.Analyzer) Option {
	return func(p *Processor) {
		if a != nil {
			p.analyzer = a
		}
	}
}

// New creates a chunker processor. An overlap that meets or exceeds the
// chunk size is a configuration error.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize:    DefaultChunkSize,
		overlap:      DefaultOverlap,
		minChunkSize: DefaultMinChunkSize,
		analyzer:     structure.NewAnalyzer(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidChunking, p.overlap, p.chunkSize)
	}
	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits the document into chunks. Page-oriented documents chunk
// each page independently with the page number stamped into every chunk;
// chunk indices run 0-based across the whole document.
// Input chunks are ignored; this processor creates new chunks.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	index := 0

	if len(doc.Pages) > 0 {
		for _, page := range doc.Pages {
			if strings.TrimSpace(page.Text) == "" {
				continue
			}
			chunks = append(chunks, p.chunkText(doc, page.Text, page.Number, &index)...)
		}
		return chunks, nil
	}

	if strings.TrimSpace(doc.Content) == "" {
		// Empty content produces no chunks
		return nil, nil
	}
	return p.chunkText(doc, doc.Content, 0, &index), nil
}

// chunkText splits one text blob (a whole document or a single page) by its
// detected sections.
func (p *Processor) chunkText(doc *domain.Document, text string, page int, index *int) []domain.Chunk {
	var chunks []domain.Chunk
	for _, sec := range p.analyzer.Split(text) {
		chunks = append(chunks, p.chunkSection(doc, sec, page, index)...)
	}
	return chunks
}

// chunkSection packs a section's paragraphs (and, for oversized paragraphs,
// sentences) greedily into chunks of at most chunkSize characters, seeding
// each new chunk with the trailing overlap of the previous one.
func (p *Processor) chunkSection(doc *domain.Document, sec structure.Section, page int, index *int) []domain.Chunk {
	var chunks []domain.Chunk
	buf := ""

	flush := func() {
		text := strings.TrimSpace(buf)
		buf = ""
		if text == "" {
			return
		}
		// Undersized pieces merge into the preceding chunk of the same
		// section; only the first chunk may stand alone short.
		if len(text) < p.minChunkSize && len(chunks) > 0 {
			last := &chunks[len(chunks)-1]
			last.Text = last.Text + "\n\n" + text
			last.CharCount = len(last.Text)
			return
		}
		chunks = append(chunks, domain.Chunk{
			DocumentID:   doc.ID,
			Filename:     doc.Filename,
			Index:        *index,
			Text:         text,
			CharCount:    len(text),
			Page:         page,
			SectionTitle: sec.Title,
		})
		*index++
	}

	add := func(unit, sep string) {
		if buf == "" {
			buf = unit
			return
		}
		if len(buf)+len(sep)+len(unit) > p.chunkSize {
			flushed := buf
			flush()
			if p.overlap > 0 {
				buf = tail(flushed, p.overlap) + sep + unit
			} else {
				buf = unit
			}
			return
		}
		buf += sep + unit
	}

	// The heading line opens the section's first chunk so its words stay
	// visible to clause tagging and keyword matching, not just metadata.
	if sec.Title != "" {
		add(sec.Title, "\n\n")
	}

	for _, para := range splitParagraphs(sec.Text) {
		if len(para) > p.chunkSize {
			for _, sentence := range splitSentences(para) {
				add(sentence, " ")
			}
		} else {
			add(para, "\n\n")
		}
	}
	flush()

	return chunks
}

// splitParagraphs splits text on blank lines, dropping empty paragraphs.
func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, para := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(para); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// splitSentences splits text at sentence terminators followed by whitespace
// and an upper-case letter, preserving legal numbering like "1.1" which is
// never followed by whitespace-then-capital inside a reference.
func splitSentences(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		j := i + 1
		for j < len(text) && (text[j] == ' ' || text[j] == '\t' || text[j] == '\n' || text[j] == '\r') {
			j++
		}
		if j > i+1 && j < len(text) && text[j] >= 'A' && text[j] <= 'Z' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				sentences = append(sentences, s)
			}
			start = j
			i = j - 1
		}
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// tail returns the last n bytes of s, advanced to a valid rune boundary.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	t := s[len(s)-n:]
	for len(t) > 0 && !utf8.RuneStart(t[0]) {
		t = t[1:]
	}
	return strings.TrimSpace(t)
}
