package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/lexirag/internal/core/domain"
)

// generalSection is the implicit group for chunks without a section title.
const generalSection = "General"

// exhibitRefRe finds exhibit/attachment/appendix/schedule references with a
// capital-letter suffix in the rendered context.
var exhibitRefRe = regexp.MustCompile(`(?i)(Exhibit|Attachment|Appendix|Schedule)\s+([A-Z])\b`)

// ContextAssembler groups ranked chunks by section and renders the
// citation-numbered context text fed to the generator.
type ContextAssembler struct{}

// NewContextAssembler creates a context assembler.
func NewContextAssembler() *ContextAssembler {
	return &ContextAssembler{}
}

// Assemble groups the results by section title (first-seen order, untitled
// chunks under "General"), assigns sequential citation numbers in group
// order, and renders section headers with [Source N] citation lines above
// each chunk. Citation numbers are unique and stable for the duration of
// one answer generation.
func (a *ContextAssembler) Assemble(results []domain.RetrievalResult) domain.ContextBundle {
	if len(results) == 0 {
		return domain.ContextBundle{}
	}

	var sectionOrder []string
	grouped := make(map[string][]domain.RetrievalResult)
	for _, r := range results {
		title := r.Chunk.SectionTitle
		if title == "" {
			title = generalSection
		}
		if _, seen := grouped[title]; !seen {
			sectionOrder = append(sectionOrder, title)
		}
		grouped[title] = append(grouped[title], r)
	}

	var parts []string
	var citations []domain.Citation
	sourceNum := 1

	for _, title := range sectionOrder {
		if title != generalSection {
			parts = append(parts, fmt.Sprintf("\n=== %s ===\n", title))
		}

		for _, r := range grouped[title] {
			citation := fmt.Sprintf("[Source %d] %s", sourceNum, r.Chunk.Filename)
			if r.Chunk.Page > 0 {
				citation += fmt.Sprintf(", Page %d", r.Chunk.Page)
			}

			citations = append(citations, domain.Citation{
				Number:       sourceNum,
				Filename:     r.Chunk.Filename,
				Page:         r.Chunk.Page,
				SectionTitle: title,
				ChunkIndex:   r.Chunk.Index,
			})

			parts = append(parts, citation+"\n"+r.Chunk.Text+"\n")
			sourceNum++
		}
	}

	text := strings.Join(parts, "\n")

	return domain.ContextBundle{
		Text:            text,
		Citations:       citations,
		Sections:        sectionOrder,
		MissingExhibits: detectMissingExhibits(text),
	}
}

// detectMissingExhibits flags exhibit references that are not followed by
// substantial body text within a short window, signaling to the generator
// that the exhibit is referenced but not actually available.
func detectMissingExhibits(text string) []string {
	matches := exhibitRefRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	// Track the best (longest) following text per exhibit letter: any one
	// mention with real content means the exhibit is present.
	type ref struct {
		label   string
		present bool
	}
	var order []string
	refs := make(map[string]*ref)

	for _, m := range matches {
		letter := strings.ToUpper(text[m[4]:m[5]])
		label := "Exhibit " + letter
		if _, seen := refs[letter]; !seen {
			refs[letter] = &ref{label: label}
			order = append(order, letter)
		}

		end := m[1] + 500
		if end > len(text) {
			end = len(text)
		}
		if len(strings.TrimSpace(text[m[1]:end])) >= 100 {
			refs[letter].present = true
		}
	}

	var missing []string
	for _, letter := range order {
		if !refs[letter].present {
			missing = append(missing, refs[letter].label)
		}
	}
	return missing
}
