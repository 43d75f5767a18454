package wordlist

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  []string
		want []string
	}{
		{"Empty", nil, []string{}},
		{"Lowercase", []string{"FREE", "Winner"}, []string{"winner", "free"}},
		{"Drop empty", []string{"", "  ", "cash"}, []string{"cash"}},
		{"Drop duplicates", []string{"free", "FREE", "Free "}, []string{"free"}},
		{"Longest first", []string{"free", "free offer", "winner"}, []string{"free offer", "winner", "free"}},
		{"Stable ties", []string{"bbb", "aaa", "ccc"}, []string{"bbb", "aaa", "ccc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw).Terms()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %q; want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestList_Contains(t *testing.T) {
	l := Normalize([]string{"Free Offer", "cash"})

	tests := []struct {
		term string
		want bool
	}{
		{"free offer", true},
		{"FREE OFFER", true},
		{"Cash", true},
		{"free", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := l.Contains(tt.term); got != tt.want {
			t.Errorf("Contains(%q) = %v; want %v", tt.term, got, tt.want)
		}
	}

	var empty *List
	if empty.Contains("cash") {
		t.Error("nil list must not contain anything")
	}
}

func TestList_TermsIsCopy(t *testing.T) {
	l := Normalize([]string{"cash", "prize"})
	terms := l.Terms()
	terms[0] = "changed"

	if l.Terms()[0] == "changed" {
		t.Error("Terms() must not expose internal storage")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		file string
		want []string
	}{
		{"words.csv", []string{"act now, limited", "free offer", "winner", "free"}},
		{"words.json", []string{"free offer", "winner", "free"}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			l, err := Load(filepath.Join("test_data", tt.file))
			if err != nil {
				t.Fatalf("failed to load %s: %v", tt.file, err)
			}
			if got := l.Terms(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("want terms %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(filepath.Join("test_data", "words.csv.gz"))
	if err == nil {
		t.Fatal("want error for missing file")
	}

	_, err = Load("wordlist.go")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("want ErrUnsupportedFormat, got %v", err)
	}
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	l, err := ReadCSV(strings.NewReader("word\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("want empty list, got %q", l.Terms())
	}
}
