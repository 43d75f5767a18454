// Package wordlist holds the normalized set of spam terms a document is
// checked against.
//
// A List is built once at startup and never modified afterwards, so it is
// safe to share between concurrently running requests.
package wordlist

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported word list format")

type List struct {
	terms []string
	set   map[string]struct{}
}

// Normalize lowercases raw terms, drops empty ones and duplicates and orders
// the result by descending length. Terms of equal length keep their input
// order.
func Normalize(raw []string) *List {
	l := List{set: make(map[string]struct{}, len(raw))}
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := l.set[t]; ok {
			continue
		}
		l.set[t] = struct{}{}
		l.terms = append(l.terms, t)
	}

	sort.SliceStable(l.terms, func(i, j int) bool {
		return len(l.terms[i]) > len(l.terms[j])
	})

	return &l
}

// Contains reports whether term is on the list, ignoring case.
func (l *List) Contains(term string) bool {
	if l == nil {
		return false
	}
	_, ok := l.set[strings.ToLower(term)]
	return ok
}

// Terms returns a copy of the terms, longest first.
func (l *List) Terms() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.terms))
	copy(out, l.terms)
	return out
}

func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.terms)
}

// Load reads a word list file. Files ending in .json must contain an array of
// strings; .csv and .txt files are read as CSV.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".csv", ".txt":
		return ReadCSV(f)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// ReadCSV takes the first field of every record. The first record is the
// header row and is not a term.
func ReadCSV(r io.Reader) (*List, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var raw []string
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv record: %w", err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) > 0 {
			raw = append(raw, rec[0])
		}
	}

	return Normalize(raw), nil
}

func ReadJSON(r io.Reader) (*List, error) {
	var raw []string
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode json word list: %w", err)
	}

	return Normalize(raw), nil
}
