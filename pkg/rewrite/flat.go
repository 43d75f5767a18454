package rewrite

import (
	"html"
	"strings"

	"spamguard/pkg/match"
)

const (
	MarkOpen  = "<mark>"
	MarkClose = "</mark>"

	// Inline highlight used by the HTML rendering of a flat document.
	HighlightOpen  = `<span style="background-color: yellow;">`
	HighlightClose = "</span>"
	LineBreak      = "<br>"
)

// FlatDocument is plain text.
type FlatDocument struct {
	text string
}

func (d *FlatDocument) Kind() Kind {
	return KindFlat
}

// Rewrite scans the text once and derives every output from the same
// matches against the original text.
func (d *FlatDocument) Rewrite(e *match.Engine, synonyms map[string]string) (*Result, error) {
	scan := e.Scan(d.text)

	return &Result{
		Kind:            KindFlat,
		Highlighted:     Highlight(d.text, scan.Matches),
		HighlightedHTML: HighlightHTML(d.text, scan.Matches),
		Replaced:        Replace(d.text, scan.Matches, synonyms),
		Found:           nonNil(scan.Found),
	}, nil
}

// Highlight wraps every matched span of text in MarkOpen/MarkClose. The
// marked text keeps its original case. Matches must be sorted and
// non-overlapping, as match.Engine returns them.
func Highlight(text string, matches []match.Match) string {
	return splice(text, matches, func(m match.Match) string {
		return MarkOpen + m.Surface + MarkClose
	}, identity)
}

// Replace substitutes every matched span with its synonym conformed to the
// span's case. Terms missing from synonyms are their own synonym.
func Replace(text string, matches []match.Match, synonyms map[string]string) string {
	return splice(text, matches, func(m match.Match) string {
		return ConformCase(m.Surface, synonymFor(synonyms, m.Term))
	}, identity)
}

// HighlightHTML renders the highlighted text as HTML: unmatched text is
// escaped, marks become inline highlights and line breaks become <br>.
func HighlightHTML(text string, matches []match.Match) string {
	out := splice(text, matches, func(m match.Match) string {
		return HighlightOpen + html.EscapeString(m.Surface) + HighlightClose
	}, html.EscapeString)

	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "\n")
	return strings.ReplaceAll(out, "\n", LineBreak)
}

// splice rebuilds text in a single pass, copying the gaps between matches
// through gap and replacing each match with sub.
func splice(text string, matches []match.Match, sub func(match.Match) string, gap func(string) string) string {
	if len(matches) == 0 {
		return gap(text)
	}

	var sb strings.Builder
	sb.Grow(len(text) + len(matches)*len(MarkOpen+MarkClose))

	pos := 0
	for _, m := range matches {
		sb.WriteString(gap(text[pos:m.Start]))
		sb.WriteString(sub(m))
		pos = m.End
	}
	sb.WriteString(gap(text[pos:]))

	return sb.String()
}

func synonymFor(synonyms map[string]string, term string) string {
	if s, ok := synonyms[term]; ok && s != "" {
		return s
	}
	return term
}

func identity(s string) string {
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
