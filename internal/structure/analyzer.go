// Package structure scans raw legal text for section, clause, and exhibit
// markers. It is a heuristic, not a parser: ambiguous or malformed headings
// are treated as body text.
package structure

import "strings"

// Heading is one detected heading line.
type Heading struct {
	// Title is the trimmed heading line.
	Title string

	// Line is the 0-based line offset in the input.
	Line int

	// Level is the hierarchy level (1-3).
	Level int
}

// Clause is a detected clause heading with its enclosing section.
type Clause struct {
	Heading

	// ParentSection is the title of the most recent section heading,
	// empty when the clause precedes any section.
	ParentSection string
}

// Descriptor is the structure found in a document: ordered sections,
// clause headings, and exhibit markers.
type Descriptor struct {
	Sections []Heading
	Clauses  []Clause
	Exhibits []Heading
}

// HasStructure reports whether any section or clause heading was found.
func (d Descriptor) HasStructure() bool {
	return len(d.Sections) > 0 || len(d.Clauses) > 0
}

// Section is a contiguous span of the document bounded by a detected
// heading. Sections are derived, never persisted.
type Section struct {
	// Title is the heading text, empty for the implicit section of an
	// unstructured document or for text preceding the first heading.
	Title string

	// Level is the heading hierarchy level, 0 for untitled sections.
	Level int

	// Text is the section body, heading line excluded.
	Text string
}

// Analyzer detects document structure using an ordered, injectable list of
// heading patterns.
type Analyzer struct {
	sections []HeadingPattern
	clauses  []HeadingPattern
}

// Option configures the analyzer.
type Option func(*Analyzer)

// WithSectionPatterns replaces the section heading patterns.
func WithSectionPatterns(patterns []HeadingPattern) Option {
	return func(a *Analyzer) {
		if len(patterns) > 0 {
			a.sections = patterns
		}
	}
}

// WithClausePatterns replaces the clause heading patterns.
func WithClausePatterns(patterns []HeadingPattern) Option {
	return func(a *Analyzer) {
		if len(patterns) > 0 {
			a.clauses = patterns
		}
	}
}

// NewAnalyzer creates an analyzer with the default legal heading patterns.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		sections: DefaultSectionPatterns(),
		clauses:  DefaultClausePatterns(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scans the text line by line and returns the detected structure.
// Lines inherit the most recent section heading as their context.
func (a *Analyzer) Analyze(text string) Descriptor {
	var desc Descriptor
	currentSection := ""

	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if level, ok := matchFirst(a.sections, trimmed); ok {
			desc.Sections = append(desc.Sections, Heading{Title: trimmed, Line: i, Level: level})
			currentSection = trimmed
		} else if level, ok := matchFirst(a.clauses, trimmed); ok {
			desc.Clauses = append(desc.Clauses, Clause{
				Heading:       Heading{Title: trimmed, Line: i, Level: level},
				ParentSection: currentSection,
			})
		}

		if exhibitRe.MatchString(trimmed) {
			desc.Exhibits = append(desc.Exhibits, Heading{Title: trimmed, Line: i, Level: 1})
		}
	}

	return desc
}

// Split divides the text into sections at the detected section and clause
// headings. Text before the first heading becomes an untitled section so no
// body content is lost. No heading at all yields one untitled section
// holding the whole text.
func (a *Analyzer) Split(text string) []Section {
	desc := a.Analyze(text)
	if !desc.HasStructure() {
		return []Section{{Text: text}}
	}

	headingAt := make(map[int]Heading)
	for _, s := range desc.Sections {
		headingAt[s.Line] = s
	}
	for _, c := range desc.Clauses {
		if _, taken := headingAt[c.Line]; !taken {
			headingAt[c.Line] = c.Heading
		}
	}

	var sections []Section
	current := Section{}
	var body []string

	flush := func() {
		current.Text = strings.Join(body, "\n")
		if strings.TrimSpace(current.Text) != "" || current.Title != "" {
			sections = append(sections, current)
		}
	}

	for i, line := range strings.Split(text, "\n") {
		if h, ok := headingAt[i]; ok {
			flush()
			current = Section{Title: h.Title, Level: h.Level}
			body = body[:0]
			continue
		}
		body = append(body, line)
	}
	flush()

	if len(sections) == 0 {
		return []Section{{Text: text}}
	}
	return sections
}

func matchFirst(patterns []HeadingPattern, line string) (int, bool) {
	for _, p := range patterns {
		if level, ok := p.Match(line); ok {
			return level, true
		}
	}
	return 0, false
}
