package rewrite

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"spamguard/pkg/match"
)

// StructuredDocument is HTML markup. Inputs with a doctype or an html, head
// or body tag are handled as complete documents, anything else as the
// content of a <body>.
type StructuredDocument struct {
	src string
}

func (d *StructuredDocument) Kind() Kind {
	return KindStructured
}

// Rewrite parses the markup into two separate trees. Text leaves of the
// first get mark elements around matched spans; text leaves of the second
// get their matched spans replaced in place. Element structure outside text
// leaves is untouched in both.
func (d *StructuredDocument) Rewrite(e *match.Engine, synonyms map[string]string) (*Result, error) {
	full := isFullDocument(d.src)

	hlRoot, err := parseTree(d.src, full)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document for highlighting: %w", err)
	}
	rpRoot, err := parseTree(d.src, full)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document for replacement: %w", err)
	}

	found := make(map[string]struct{})

	for _, n := range textLeaves(hlRoot) {
		scan := e.Scan(n.Data)
		addFound(found, scan.Found)
		if len(scan.Matches) == 0 || !canHoldElements(n.Parent) {
			continue
		}
		markLeaf(n, scan.Matches)
	}

	for _, n := range textLeaves(rpRoot) {
		scan := e.Scan(n.Data)
		addFound(found, scan.Found)
		if len(scan.Matches) == 0 {
			continue
		}
		n.Data = Replace(n.Data, scan.Matches, synonyms)
	}

	hlMarkup, err := renderTree(hlRoot, full)
	if err != nil {
		return nil, fmt.Errorf("failed to render highlighted document: %w", err)
	}
	rpMarkup, err := renderTree(rpRoot, full)
	if err != nil {
		return nil, fmt.Errorf("failed to render replaced document: %w", err)
	}

	return &Result{
		Kind:             KindStructured,
		Highlighted:      hlMarkup,
		Replaced:         rpMarkup,
		HighlightedPlain: textContent(hlRoot, full),
		ReplacedPlain:    textContent(rpRoot, full),
		Found:            orderFound(e.Terms(), found),
	}, nil
}

var documentTag = regexp.MustCompile(`(?i)<!doctype|<(html|head|body)[\s/>]`)

func isFullDocument(src string) bool {
	return documentTag.MatchString(src)
}

// parseTree returns the document node for full documents and a detached
// <body> holding the fragment otherwise.
func parseTree(src string, full bool) (*html.Node, error) {
	if full {
		return html.Parse(strings.NewReader(src))
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), body)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		body.AppendChild(n)
	}

	return body, nil
}

func renderTree(root *html.Node, full bool) (string, error) {
	var buf bytes.Buffer
	if full {
		if err := html.Render(&buf, root); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

// textLeaves collects text nodes in document order. Text of scripts and
// styles is code, not content.
func textLeaves(root *html.Node) []*html.Node {
	var leaves []*html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if !isRawText(n.Parent) {
				leaves = append(leaves, n)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return leaves
}

func isRawText(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Template:
		return true
	}
	return false
}

// canHoldElements is false for elements whose content is always text.
func canHoldElements(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return true
	}
	switch n.DataAtom {
	case atom.Title, atom.Textarea:
		return false
	}
	return true
}

// markLeaf replaces the text node n with the unmatched text around the
// matches and a <mark> element per match, in place among n's siblings.
func markLeaf(n *html.Node, matches []match.Match) {
	parent := n.Parent
	text := n.Data

	pos := 0
	for _, m := range matches {
		if m.Start > pos {
			parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[pos:m.Start]}, n)
		}
		mark := &html.Node{Type: html.ElementNode, Data: "mark", DataAtom: atom.Mark}
		mark.AppendChild(&html.Node{Type: html.TextNode, Data: m.Surface})
		parent.InsertBefore(mark, n)
		pos = m.End
	}
	if pos < len(text) {
		parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text[pos:]}, n)
	}

	parent.RemoveChild(n)
}

// textContent returns the visible text of a tree. It runs after rendering
// because it strips scripts and styles from the tree.
func textContent(root *html.Node, full bool) string {
	doc := goquery.NewDocumentFromNode(root)
	doc.Find("script, style, noscript, template").Remove()
	if full {
		return doc.Find("body").Text()
	}
	return doc.Text()
}

func addFound(found map[string]struct{}, terms []string) {
	for _, t := range terms {
		found[t] = struct{}{}
	}
}

func orderFound(order []string, found map[string]struct{}) []string {
	out := make([]string, 0, len(found))
	for _, t := range order {
		if _, ok := found[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
