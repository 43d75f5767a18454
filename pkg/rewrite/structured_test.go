package rewrite

import (
	"reflect"
	"sort"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"spamguard/pkg/match"
)

func rewriteStructured(t *testing.T, terms []string, src string, synonyms map[string]string) *Result {
	t.Helper()

	doc, err := NewDocument(KindStructured, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res, err := doc.Rewrite(match.New(terms), synonyms)
	if err != nil {
		t.Fatalf("failed to rewrite %q: %v", src, err)
	}
	return res
}

func TestStructuredDocument_Rewrite(t *testing.T) {
	src := `<p class="intro">You are a <b>WINNER</b> of a free offer!</p><p>plain</p>`

	res := rewriteStructured(t, testTerms, src, testSynonyms)

	wantHighlighted := `<p class="intro">You are a <b><mark>WINNER</mark></b> of a <mark>free offer</mark>!</p><p>plain</p>`
	if res.Highlighted != wantHighlighted {
		t.Errorf("want highlighted\n%s\ngot\n%s", wantHighlighted, res.Highlighted)
	}

	wantReplaced := `<p class="intro">You are a <b>VICTOR</b> of a complimentary offer!</p><p>plain</p>`
	if res.Replaced != wantReplaced {
		t.Errorf("want replaced\n%s\ngot\n%s", wantReplaced, res.Replaced)
	}

	if want := "You are a WINNER of a free offer!plain"; res.HighlightedPlain != want {
		t.Errorf("want highlighted text %q, got %q", want, res.HighlightedPlain)
	}
	if want := "You are a VICTOR of a complimentary offer!plain"; res.ReplacedPlain != want {
		t.Errorf("want replaced text %q, got %q", want, res.ReplacedPlain)
	}

	wantFound := []string{"free offer", "winner", "free"}
	if !reflect.DeepEqual(res.Found, wantFound) {
		t.Errorf("want found %q, got %q", wantFound, res.Found)
	}
}

func TestStructuredDocument_MatchesDoNotCrossElements(t *testing.T) {
	res := rewriteStructured(t, []string{"free offer"}, `<p>free <i>offer</i></p>`, testSynonyms)

	if len(res.Found) != 0 {
		t.Errorf("want no terms found, got %q", res.Found)
	}
	if want := `<p>free <i>offer</i></p>`; res.Highlighted != want {
		t.Errorf("want highlighted %q, got %q", want, res.Highlighted)
	}
}

func TestStructuredDocument_Escaping(t *testing.T) {
	res := rewriteStructured(t, []string{"free"}, `<p>Tom &amp; Jerry get free cash</p>`, map[string]string{"free": "gratis"})

	if want := `<p>Tom &amp; Jerry get <mark>free</mark> cash</p>`; res.Highlighted != want {
		t.Errorf("want highlighted %q, got %q", want, res.Highlighted)
	}
	if want := `<p>Tom &amp; Jerry get gratis cash</p>`; res.Replaced != want {
		t.Errorf("want replaced %q, got %q", want, res.Replaced)
	}
}

func TestStructuredDocument_FullDocument(t *testing.T) {
	src := `<html><head><title>Free stuff</title></head><body><p>free</p><script>var free = 1;</script></body></html>`

	res := rewriteStructured(t, []string{"free"}, src, map[string]string{"free": "gratis"})

	wantHighlighted := `<html><head><title>Free stuff</title></head><body><p><mark>free</mark></p><script>var free = 1;</script></body></html>`
	if res.Highlighted != wantHighlighted {
		t.Errorf("want highlighted\n%s\ngot\n%s", wantHighlighted, res.Highlighted)
	}
	wantReplaced := `<html><head><title>Gratis stuff</title></head><body><p>gratis</p><script>var free = 1;</script></body></html>`
	if res.Replaced != wantReplaced {
		t.Errorf("want replaced\n%s\ngot\n%s", wantReplaced, res.Replaced)
	}
	if res.HighlightedPlain != "free" {
		t.Errorf("want highlighted text %q, got %q", "free", res.HighlightedPlain)
	}
	if res.ReplacedPlain != "gratis" {
		t.Errorf("want replaced text %q, got %q", "gratis", res.ReplacedPlain)
	}
}

func TestStructuredDocument_DocumentWithoutHTMLTag(t *testing.T) {
	synonyms := map[string]string{"free": "gratis"}

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"Body with attributes",
			`<body class="mail"><p>free</p></body>`,
			`<html><head></head><body class="mail"><p>gratis</p></body></html>`,
		},
		{
			"Doctype and head",
			`<!DOCTYPE html><head><title>t</title></head><body style="x"><p>free</p></body>`,
			`<!DOCTYPE html><html><head><title>t</title></head><body style="x"><p>gratis</p></body></html>`,
		},
		{
			"Header is not head",
			`<header><p>free</p></header>`,
			`<header><p>gratis</p></header>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := rewriteStructured(t, []string{"free"}, tt.src, synonyms)
			if res.Replaced != tt.want {
				t.Errorf("want replaced\n%s\ngot\n%s", tt.want, res.Replaced)
			}
			if res.ReplacedPlain != "gratis" {
				t.Errorf("want replaced text %q, got %q", "gratis", res.ReplacedPlain)
			}
		})
	}
}

func TestStructuredDocument_Empty(t *testing.T) {
	res := rewriteStructured(t, testTerms, "", testSynonyms)
	if res.Highlighted != "" || res.Replaced != "" || len(res.Found) != 0 {
		t.Errorf("want empty result, got %+v", res)
	}

	src := `<div><p>free offer</p></div>`
	res = rewriteStructured(t, nil, src, nil)
	if res.Highlighted != src || res.Replaced != src || len(res.Found) != 0 {
		t.Errorf("want unchanged output for empty word list, got %+v", res)
	}
}

func TestStructuredDocument_PreservesStructure(t *testing.T) {
	src := `<div id="main"><h1 class="t">Free offer</h1><ul><li>winner</li><li><a href="/x">free</a> and more</li></ul><img src="a.png" alt="free"></div>`

	res := rewriteStructured(t, testTerms, src, testSynonyms)

	want := structure(t, src, false)
	if got := structure(t, res.Replaced, false); !reflect.DeepEqual(got, want) {
		t.Errorf("replaced structure differs\nwant %q\ngot  %q", want, got)
	}
	if got := structure(t, res.Highlighted, true); !reflect.DeepEqual(got, want) {
		t.Errorf("highlighted structure differs\nwant %q\ngot  %q", want, got)
	}
	if !strings.Contains(res.Replaced, `alt="free"`) {
		t.Errorf("attributes must not be rewritten: %s", res.Replaced)
	}
}

// structure lists elements with their attributes in document order,
// optionally ignoring mark elements.
func structure(t *testing.T, markup string, skipMark bool) []string {
	t.Helper()

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", markup, err)
	}

	var out []string
	var walk func(n *html.Node, depth int)
	walk = func(n *html.Node, depth int) {
		if n.Type == html.ElementNode && !(skipMark && n.DataAtom == atom.Mark) {
			attrs := make([]string, 0, len(n.Attr))
			for _, a := range n.Attr {
				attrs = append(attrs, a.Key+"="+a.Val)
			}
			sort.Strings(attrs)
			out = append(out, strings.Repeat(">", depth)+n.Data+"["+strings.Join(attrs, ",")+"]")
			depth++
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, depth)
		}
	}
	for _, n := range nodes {
		walk(n, 0)
	}

	return out
}
