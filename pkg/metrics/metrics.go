// Package metrics defines the Prometheus collectors recorded while building
// indexes and generating runs, and serves them for scraping while a batch runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Query outcomes recorded in QueriesScoredTotal.
const (
	OutcomeScored = "scored"
	OutcomeEmpty  = "empty"
	OutcomeError  = "error"
)

// Metrics holds all collectors of a batch.
type Metrics struct {
	DocsIndexedTotal   *prometheus.CounterVec
	IndexBuildDuration *prometheus.HistogramVec
	VocabularySize     *prometheus.GaugeVec
	WeightsDerived     *prometheus.CounterVec
	QueriesScoredTotal *prometheus.CounterVec
	ScoringLatency     *prometheus.HistogramVec
	RunLinesTotal      *prometheus.CounterVec
	IncompleteRuns     prometheus.Counter
	RunsPublished      *prometheus.CounterVec
	StemCacheHits      prometheus.Counter
	StemCacheMisses    prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg falls
// back to the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ri_docs_indexed_total",
				Help: "Documents indexed, by configuration.",
			},
			[]string{"config"},
		),
		IndexBuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ri_index_build_duration_seconds",
				Help:    "Index build time per configuration in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"config"},
		),
		VocabularySize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ri_vocabulary_size",
				Help: "Distinct terms in the index of a configuration.",
			},
			[]string{"config"},
		),
		WeightsDerived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ri_weights_derived_total",
				Help: "Weighted posting derivations by scheme.",
			},
			[]string{"scheme"},
		),
		QueriesScoredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ri_queries_scored_total",
				Help: "Queries scored by scheme and outcome (scored, empty, error).",
			},
			[]string{"scheme", "outcome"},
		),
		ScoringLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ri_scoring_latency_seconds",
				Help:    "Per-query score and rank latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"scheme"},
		),
		RunLinesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ri_run_lines_total",
				Help: "Lines written to run files by scheme.",
			},
			[]string{"scheme"},
		),
		IncompleteRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ri_incomplete_runs_total",
				Help: "Run files whose line count differs from queries times K.",
			},
		),
		RunsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ri_runs_published_total",
				Help: "Run publications to Kafka by status.",
			},
			[]string{"status"},
		),
		StemCacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ri_stem_cache_hits_total",
				Help: "Stem cache hits across configurations.",
			},
		),
		StemCacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ri_stem_cache_misses_total",
				Help: "Stem cache misses across configurations.",
			},
		),
	}

	reg.MustRegister(
		m.DocsIndexedTotal,
		m.IndexBuildDuration,
		m.VocabularySize,
		m.WeightsDerived,
		m.QueriesScoredTotal,
		m.ScoringLatency,
		m.RunLinesTotal,
		m.IncompleteRuns,
		m.RunsPublished,
		m.StemCacheHits,
		m.StemCacheMisses,
	)

	return m
}
