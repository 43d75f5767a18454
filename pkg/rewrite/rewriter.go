package rewrite

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"spamguard/pkg/match"
	"spamguard/pkg/metrics"
)

// SynonymResolver resolves replacements for a set of terms. It never fails;
// a term without a usable synonym maps to itself.
type SynonymResolver interface {
	ResolveAll(ctx context.Context, terms []string) map[string]string
}

// Rewriter runs the whole transformation for one document.
type Rewriter struct {
	engine   *match.Engine
	resolver SynonymResolver
}

func New(engine *match.Engine, resolver SynonymResolver) *Rewriter {
	return &Rewriter{engine: engine, resolver: resolver}
}

// Rewrite resolves synonyms for every term of the engine, then scans and
// rewrites src as a document of the given kind.
func (rw *Rewriter) Rewrite(ctx context.Context, kind Kind, src string) (*Result, error) {
	doc, err := NewDocument(kind, src)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		metrics.RewriteDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())
	}()

	terms := rw.engine.Terms()
	synonyms := map[string]string{}
	if rw.resolver != nil && len(terms) > 0 {
		synonyms = rw.resolver.ResolveAll(ctx, terms)
	}
	log.Debugf("[rewrite] resolved %d synonyms in %v", len(synonyms), time.Since(start))

	res, err := doc.Rewrite(rw.engine, synonyms)
	if err != nil {
		return nil, err
	}
	metrics.TermsFoundTotal.WithLabelValues(kind.String()).Add(float64(len(res.Found)))

	return res, nil
}
