package domain

// Document is the unit of indexing. The upstream extraction service supplies
// either the full text as a single blob or an ordered list of pages; this
// core never parses PDF/DOCX itself.
type Document struct {
	// ID is the unique identifier assigned by the upload pipeline.
	ID string

	// Filename is the human-readable name used in citations.
	Filename string

	// Content is the full extracted text. Empty when Pages is set.
	Content string

	// Pages holds per-page text for page-oriented documents.
	Pages []Page
}

// Page is one page of an extracted document.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the raw extracted text of the page.
	Text string
}

// Chunk is the unit of retrieval: a bounded span of document text with its
// structural metadata. Chunks are ephemeral per indexing run; the vector
// store is the system of record for chunk text.
type Chunk struct {
	// DocumentID links to the source document.
	DocumentID string

	// Filename is carried from the document for citation rendering.
	Filename string

	// Index is the 0-based position within the document.
	Index int

	// Text is the chunk content.
	Text string

	// CharCount is len(Text), stored alongside the vector.
	CharCount int

	// Page is the 1-based page number, 0 when unknown.
	Page int

	// SectionTitle is the detected heading this chunk falls under.
	// Empty when the document has no detected structure.
	SectionTitle string

	// ClauseTags are the detected clause-type labels (payment,
	// termination, ...) used for intent-aware boosting.
	ClauseTags []string
}

// HasClauseTag reports whether the chunk carries the given clause tag.
func (c Chunk) HasClauseTag(tag string) bool {
	for _, t := range c.ClauseTags {
		if t == tag {
			return true
		}
	}
	return false
}

// IndexStats summarises the state of the vector index.
type IndexStats struct {
	// TotalVectors is the number of vectors stored across all namespaces.
	TotalVectors int

	// Namespaces maps namespace name to its vector count.
	Namespaces map[string]int
}
