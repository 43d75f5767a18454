// Package match locates whole-word, case-insensitive occurrences of spam
// terms in a text.
package match

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"
)

// Match is one occurrence of Term in the scanned text. Start and End are byte
// offsets into that text; Surface is the text as it appeared there.
type Match struct {
	Term    string
	Surface string
	Start   int
	End     int
}

// Scan is the outcome of scanning one text.
type Scan struct {
	// Matches are non-overlapping and sorted by Start.
	Matches []Match
	// Found holds every term with at least one whole-word occurrence, in
	// engine order, including terms whose occurrences were claimed by a
	// longer term.
	Found []string
}

type pattern struct {
	term string
	re   *regexp.Regexp
}

// Engine matches a fixed, ordered set of terms. It is immutable after New
// and safe for concurrent use.
type Engine struct {
	patterns []pattern
}

// New compiles one pattern per term. Terms are tested in the given order, so
// callers pass them longest first.
func New(terms []string) *Engine {
	e := Engine{patterns: make([]pattern, 0, len(terms))}
	for _, t := range terms {
		if t == "" {
			continue
		}
		e.patterns = append(e.patterns, pattern{
			term: t,
			re:   regexp.MustCompile(`(?i)` + regexp.QuoteMeta(t)),
		})
	}

	return &e
}

// Terms returns the terms in the order they are tested.
func (e *Engine) Terms() []string {
	out := make([]string, len(e.patterns))
	for i, p := range e.patterns {
		out[i] = p.term
	}
	return out
}

// Scan finds every term occurrence in text. Each term is evaluated against
// the original text. A span already claimed by an earlier term is not
// claimed again, which gives longer terms precedence over their substrings.
func (e *Engine) Scan(text string) Scan {
	var s Scan
	if text == "" {
		return s
	}

	for _, p := range e.patterns {
		occ := occurrences(text, p.re)
		if len(occ) == 0 {
			continue
		}
		s.Found = append(s.Found, p.term)

		for _, loc := range occ {
			if overlaps(s.Matches, loc[0], loc[1]) {
				continue
			}
			s.Matches = append(s.Matches, Match{
				Term:    p.term,
				Surface: text[loc[0]:loc[1]],
				Start:   loc[0],
				End:     loc[1],
			})
		}
	}

	sort.Slice(s.Matches, func(i, j int) bool {
		return s.Matches[i].Start < s.Matches[j].Start
	})

	return s
}

// FindMatches returns the selected, non-overlapping matches in text.
func (e *Engine) FindMatches(text string) []Match {
	return e.Scan(text).Matches
}

// occurrences returns the [start, end) spans of re in text that are bounded
// by non-word characters on both sides. A candidate rejected for its
// boundaries does not hide a later candidate starting inside it.
func occurrences(text string, re *regexp.Regexp) [][2]int {
	var out [][2]int
	for pos := 0; pos < len(text); {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end == start {
			break
		}

		if isBoundary(text, start, end) {
			out = append(out, [2]int{start, end})
			pos = end
			continue
		}

		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + size
	}

	return out
}

func isBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func overlaps(ms []Match, start, end int) bool {
	for _, m := range ms {
		if start < m.End && m.Start < end {
			return true
		}
	}
	return false
}
