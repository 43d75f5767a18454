// Package synonym picks replacement words for spam terms.
//
// Lookups go to an external Source. The Resolver wraps every outcome of a
// lookup, including errors and empty answers, so that it always returns a
// word: the first candidate that is not itself a spam term, or the term
// itself when there is none.
package synonym

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"spamguard/pkg/metrics"
	"spamguard/pkg/wordlist"
)

const DefaultMaxCandidates = 5

// Source returns up to max candidate synonyms for term, best first.
type Source interface {
	Synonyms(ctx context.Context, term string, max int) ([]string, error)
}

type Config struct {
	// MaxCandidates is the number of candidates requested per term.
	MaxCandidates int
	// Concurrency bounds the number of lookups ResolveAll runs at once.
	// Zero or less means no bound.
	Concurrency int
}

type Resolver struct {
	src   Source
	words *wordlist.List
	cfg   Config
}

func New(src Source, words *wordlist.List, cfg Config) *Resolver {
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = DefaultMaxCandidates
	}

	return &Resolver{src: src, words: words, cfg: cfg}
}

// Resolve returns the lowercase replacement for term. It never fails: lookup
// errors are logged and resolve to term.
func (r *Resolver) Resolve(ctx context.Context, term string) string {
	if r.src == nil {
		return term
	}

	candidates, err := r.src.Synonyms(ctx, term, r.cfg.MaxCandidates)
	if err != nil {
		metrics.SynonymLookupsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		log.Warnf("[synonym] lookup for %q failed, keeping the term: %v", term, err)
		return term
	}

	if len(candidates) > r.cfg.MaxCandidates {
		candidates = candidates[:r.cfg.MaxCandidates]
	}
	for _, c := range candidates {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || r.words.Contains(c) {
			continue
		}
		metrics.SynonymLookupsTotal.WithLabelValues(metrics.OutcomeSynonym).Inc()
		return c
	}

	metrics.SynonymLookupsTotal.WithLabelValues(metrics.OutcomeFallback).Inc()
	log.Debugf("[synonym] no usable synonym for %q among %d candidates", term, len(candidates))
	return term
}

// ResolveAll resolves every term concurrently and returns once all lookups
// have settled.
func (r *Resolver) ResolveAll(ctx context.Context, terms []string) map[string]string {
	results := make([]string, len(terms))

	var g errgroup.Group
	if r.cfg.Concurrency > 0 {
		g.SetLimit(r.cfg.Concurrency)
	}
	for i, term := range terms {
		g.Go(func() error {
			results[i] = r.Resolve(ctx, term)
			return nil
		})
	}
	_ = g.Wait()

	synonyms := make(map[string]string, len(terms))
	for i, term := range terms {
		synonyms[term] = results[i]
	}

	return synonyms
}
