// Package rewrite produces the highlighted and the synonym-replaced versions
// of a document.
//
// A document is either flat text or an HTML tree. Both variants are scanned
// with the same match.Engine and report found terms the same way; they
// differ only in which parts of the input are text and how the results are
// put back together.
package rewrite

import (
	"errors"
	"fmt"

	"spamguard/pkg/match"
)

var ErrUnknownKind = errors.New("unknown document kind")

type Kind int

const (
	KindFlat Kind = iota
	KindStructured
)

func (k Kind) String() string {
	switch k {
	case KindFlat:
		return "flat"
	case KindStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// KindOf maps the request's HTML flag to a document kind.
func KindOf(isHTML bool) Kind {
	if isHTML {
		return KindStructured
	}
	return KindFlat
}

type Document interface {
	Kind() Kind
	Rewrite(e *match.Engine, synonyms map[string]string) (*Result, error)
}

// Result holds both derived documents. HighlightedHTML is set for flat
// documents only; HighlightedPlain and ReplacedPlain are the text content
// of the two trees and are set for structured documents only.
type Result struct {
	Kind        Kind
	Highlighted string
	Replaced    string
	Found       []string

	HighlightedHTML string

	HighlightedPlain string
	ReplacedPlain    string
}

func NewDocument(kind Kind, src string) (Document, error) {
	switch kind {
	case KindFlat:
		return &FlatDocument{text: src}, nil
	case KindStructured:
		return &StructuredDocument{src: src}, nil
	}

	return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
}
