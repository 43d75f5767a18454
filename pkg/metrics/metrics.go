package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spamguard_requests_total",
		Help: "Total highlight requests by document kind and outcome.",
	}, []string{"kind", "outcome"})

	TermsFoundTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spamguard_terms_found_total",
		Help: "Total spam terms found in submitted documents.",
	}, []string{"kind"})

	SynonymLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spamguard_synonym_lookups_total",
		Help: "Total synonym lookups by outcome.",
	}, []string{"outcome"})

	RewriteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spamguard_rewrite_duration_seconds",
		Help:    "Time spent resolving synonyms and rewriting one document.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
)

const (
	OutcomeSynonym  = "synonym"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"

	OutcomeOK          = "ok"
	OutcomeBadRequest  = "bad_request"
	OutcomeServerError = "server_error"
)
