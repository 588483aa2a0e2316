package structure

import "regexp"

// HeadingPattern decides whether a line is a heading. Patterns are applied
// in order; the first match wins.
type HeadingPattern interface {
	// Match returns the hierarchy level (1-3) when the line is a heading.
	Match(line string) (level int, ok bool)
}

// regexPattern is a HeadingPattern backed by a compiled regular expression
// with a fixed hierarchy level.
type regexPattern struct {
	re    *regexp.Regexp
	level int
}

func (p regexPattern) Match(line string) (int, bool) {
	if p.re.MatchString(line) {
		return p.level, true
	}
	return 0, false
}

// Pattern builds a HeadingPattern from a regular expression and a level.
// The expression is matched against the trimmed line.
func Pattern(expr string, level int) HeadingPattern {
	return regexPattern{re: regexp.MustCompile(expr), level: level}
}

// DefaultSectionPatterns is the ordered set of legal section heading
// patterns: "SECTION n:", "Article n:", numbered all-caps titles, bare
// all-caps lines above a length threshold, and title-case headings ending
// with a colon.
func DefaultSectionPatterns() []HeadingPattern {
	return []HeadingPattern{
		Pattern(`(?i)^SECTION\s+\d+[.:]?\s*[A-Za-z]`, 1),
		Pattern(`(?i)^Article\s+\d+[.:]?\s*[A-Za-z]`, 1),
		Pattern(`^\d+\.\s+[A-Z][A-Z\s]{10,}`, 2),
		Pattern(`^[A-Z][A-Z\s]{15,}$`, 2),
		Pattern(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*:\s*$`, 2),
	}
}

// DefaultClausePatterns matches numbered clauses ("1.1."), lettered
// sub-clauses ("(a)"), and roman-numeral sub-clauses ("(iv)").
func DefaultClausePatterns() []HeadingPattern {
	return []HeadingPattern{
		Pattern(`^\d+\.\d+\.?\s+[A-Z]`, 3),
		Pattern(`^\([a-z]\)\s+[A-Z]`, 3),
		Pattern(`^\([ivx]+\)\s+[A-Z]`, 3),
	}
}

// exhibitRe matches exhibit/attachment/appendix/schedule references
// anywhere in a line.
var exhibitRe = regexp.MustCompile(`(?i)(EXHIBIT|ATTACHMENT|APPENDIX|SCHEDULE)\s+[A-Z]\b`)
