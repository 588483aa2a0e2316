package services

import "github.com/custodia-labs/lexirag/internal/core/domain"

// DiversityFilter caps how many chunks a single file or section may
// contribute, so one document cannot dominate the assembled context.
type DiversityFilter struct{}

// NewDiversityFilter creates a diversity filter.
func NewDiversityFilter() *DiversityFilter {
	return &DiversityFilter{}
}

// Enforce greedily walks the ranked results, admitting each one unless its
// (file, section) key has already contributed and the result set is at
// capacity, or its file already holds half the slots. The result never
// exceeds maxChunks, and no single file contributes more than
// max(1, maxChunks/2) chunks.
func (f *DiversityFilter) Enforce(results []domain.RetrievalResult, maxChunks int) []domain.RetrievalResult {
	if maxChunks <= 0 || len(results) == 0 {
		return nil
	}

	maxPerFile := maxChunks / 2
	if maxPerFile < 1 {
		maxPerFile = 1
	}

	selected := make([]domain.RetrievalResult, 0, maxChunks)
	seenSections := make(map[string]bool)
	perFile := make(map[string]int)

	for _, r := range results {
		fileID := r.Chunk.DocumentID
		sectionKey := fileID + ":" + r.Chunk.SectionTitle

		if seenSections[sectionKey] && len(selected) >= maxChunks {
			continue
		}
		if fileID != "" && perFile[fileID] >= maxPerFile {
			continue
		}

		selected = append(selected, r)
		seenSections[sectionKey] = true
		if fileID != "" {
			perFile[fileID]++
		}

		if len(selected) >= maxChunks {
			break
		}
	}

	return selected
}
