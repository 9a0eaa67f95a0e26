// Package batch generates the full set of runs: every stop-word and stemmer
// configuration crossed with every weighting scheme. Each configuration
// builds its own index and stem cache; weights are derived at most once per
// configuration and scheme.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/adri-41/Recherche-Information/internal/collection"
	"github.com/adri-41/Recherche-Information/internal/indexer/index"
	"github.com/adri-41/Recherche-Information/internal/indexer/tokenizer"
	"github.com/adri-41/Recherche-Information/internal/run"
	"github.com/adri-41/Recherche-Information/internal/searcher/executor"
	"github.com/adri-41/Recherche-Information/internal/searcher/parser"
	"github.com/adri-41/Recherche-Information/internal/searcher/scorer"
	"github.com/adri-41/Recherche-Information/internal/weighting"
	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
	"github.com/adri-41/Recherche-Information/pkg/config"
	"github.com/adri-41/Recherche-Information/pkg/logger"
	"github.com/adri-41/Recherche-Information/pkg/metrics"
	"github.com/adri-41/Recherche-Information/pkg/tracing"
)

// Configuration is one (stop-word, stemmer) setting.
type Configuration struct {
	Stopwords bool
	Porter    bool
}

// Configurations lists the settings in run numbering order.
var Configurations = []Configuration{
	{Stopwords: false, Porter: false},
	{Stopwords: false, Porter: true},
	{Stopwords: true, Porter: false},
	{Stopwords: true, Porter: true},
}

func (c Configuration) Name() string {
	stop, stem := "nostop", "nostem"
	if c.Stopwords {
		stop = "stop"
	}
	if c.Porter {
		stem = "porter"
	}
	return stop + "_" + stem
}

func (c Configuration) stemmer() tokenizer.Stemmer {
	if c.Porter {
		return tokenizer.SnowballStemmer{}
	}
	return tokenizer.IdentityStemmer{}
}

// Inputs are the files every configuration shares.
type Inputs struct {
	Documents []index.Document
	Stopwords map[string]struct{}
	Queries   []collection.Query
}

// Result lists the written runs in run-ID order.
type Result struct {
	Reports []run.Report
	Archive string
}

type built struct {
	conf       Configuration
	normalizer *tokenizer.Normalizer
	idx        *index.Index
}

type Runner struct {
	cfg        *config.Config
	metrics    *metrics.Metrics
	publisher  run.Publisher
	explainDoc string
	logger     *slog.Logger

	group   singleflight.Group
	mu      sync.Mutex
	weights map[string]*weighting.Weights
	opts    weighting.Options
	schemes map[weighting.Scheme]bool
}

type Option func(*Runner)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

func WithPublisher(p run.Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// WithExplainDoc logs per-term score contributions of docID for every
// query of every run.
func WithExplainDoc(docID string) Option {
	return func(r *Runner) { r.explainDoc = docID }
}

// New validates cfg and returns a Runner for it.
func New(cfg *config.Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.New(apperrors.ErrInvalidInput, err.Error())
	}
	mode, err := weighting.ParseQueryMode(cfg.Weighting.LtcQueryMode)
	if err != nil {
		return nil, err
	}
	schemes, err := selectSchemes(cfg.Run.Schemes)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:     cfg,
		schemes: schemes,
		logger:  logger.WithComponent("batch"),
		weights: make(map[string]*weighting.Weights),
		opts: weighting.Options{
			QueryMode: mode,
			BM25:      weighting.BM25Params{K1: cfg.Weighting.BM25K1, B: cfg.Weighting.BM25B},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// selectSchemes parses names into a set; no names selects every scheme.
func selectSchemes(names []string) (map[weighting.Scheme]bool, error) {
	set := make(map[weighting.Scheme]bool, len(weighting.Schemes))
	if len(names) == 0 {
		for _, s := range weighting.Schemes {
			set[s] = true
		}
		return set, nil
	}
	for _, name := range names {
		s, err := weighting.ParseScheme(name)
		if err != nil {
			return nil, err
		}
		set[s] = true
	}
	return set, nil
}

// LoadInputs reads the collection, the stop-word list and the queries. It
// fails before any index is built if a required file is missing.
func (r *Runner) LoadInputs() (*Inputs, error) {
	cc := r.cfg.Collection
	stop, err := collection.LoadStopwords(cc.StopwordsPath, cc.AllowComments)
	if err != nil {
		return nil, err
	}
	docs, err := collection.Load(cc.Path)
	if err != nil {
		return nil, err
	}
	queries, err := r.loadQueries()
	if err != nil {
		return nil, err
	}
	r.logger.Info("inputs loaded",
		"documents", len(docs),
		"stopwords", len(stop),
		"queries", len(queries),
	)
	return &Inputs{Documents: docs, Stopwords: stop, Queries: queries}, nil
}

func (r *Runner) loadQueries() ([]collection.Query, error) {
	if path := r.cfg.Collection.QueriesPath; path != "" {
		return collection.LoadQueries(path)
	}
	src := r.cfg.Queries
	if len(src) == 0 {
		src = config.DefaultQueries
	}
	queries := make([]collection.Query, len(src))
	for i, q := range src {
		queries[i] = collection.Query{ID: q.ID, Text: q.Text}
	}
	return queries, nil
}

// Run loads the inputs and generates every run.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	in, err := r.LoadInputs()
	if err != nil {
		return nil, err
	}
	return r.Generate(ctx, in)
}

// Generate builds the configurations concurrently, writes the runs of every
// selected scheme and packs them into the archive when enabled.
func (r *Runner) Generate(ctx context.Context, in *Inputs) (*Result, error) {
	start := time.Now()
	r.mu.Lock()
	r.weights = make(map[string]*weighting.Weights)
	r.mu.Unlock()
	writer := run.NewWriter(r.cfg.Run.OutputDir, r.cfg.Run.Team, r.cfg.Run.TopK, r.writerOptions()...)
	reports := make([]run.Report, len(Configurations)*len(weighting.Schemes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Run.ParallelBuilds, 1))
	for ci, conf := range Configurations {
		g.Go(func() error {
			return r.generateConfiguration(gctx, ci, conf, in, writer, reports)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	written := reports[:0]
	for _, rep := range reports {
		if rep.Name != "" {
			written = append(written, rep)
		}
	}
	reports = written

	res := &Result{Reports: reports}
	if r.cfg.Run.Archive {
		path, err := run.Archive(r.cfg.Run.OutputDir, r.cfg.Run.Team, reports)
		if err != nil {
			return nil, err
		}
		res.Archive = path
		r.logger.Info("archive written", "path", path, "runs", len(reports))
	}
	r.logger.Info("batch complete", "runs", len(reports), "duration", time.Since(start))
	return res, nil
}

func (r *Runner) writerOptions() []run.WriterOption {
	opts := []run.WriterOption{run.WithLogger(r.logger)}
	if r.metrics != nil {
		opts = append(opts, run.WithMetrics(r.metrics))
	}
	if r.publisher != nil {
		opts = append(opts, run.WithPublisher(r.publisher))
	}
	return opts
}

func (r *Runner) generateConfiguration(ctx context.Context, ci int, conf Configuration, in *Inputs, writer *run.Writer, reports []run.Report) error {
	ctx, root := tracing.StartSpan(ctx, "configuration", conf.Name())
	defer func() {
		root.End()
		root.Log(r.logger)
	}()

	b, err := r.build(ctx, conf, in)
	if err != nil {
		return err
	}
	plans := make([]*parser.QueryPlan, len(in.Queries))
	for i, q := range in.Queries {
		plans[i] = parser.Parse(q.ID, q.Text, b.normalizer)
	}

	for si, scheme := range weighting.Schemes {
		if !r.schemes[scheme] {
			continue
		}
		desc := run.Descriptor{
			ID:        ci*len(weighting.Schemes) + si + 1,
			Scheme:    scheme,
			Stopwords: b.normalizer.StopwordCount(),
			Stemmer:   b.normalizer.Stemmer().Name(),
		}
		report, err := r.generateRun(ctx, b, desc, plans, writer)
		if err != nil {
			return err
		}
		reports[desc.ID-1] = report
	}

	if r.metrics != nil {
		hits, misses := b.normalizer.Cache().Stats()
		r.metrics.StemCacheHits.Add(float64(hits))
		r.metrics.StemCacheMisses.Add(float64(misses))
	}
	return nil
}

func (r *Runner) build(ctx context.Context, conf Configuration, in *Inputs) (*built, error) {
	_, span := tracing.StartChildSpan(ctx, "index.build")
	defer span.End()

	var stop map[string]struct{}
	if conf.Stopwords {
		stop = in.Stopwords
	}
	n := tokenizer.NewNormalizer(stop, conf.stemmer())
	start := time.Now()
	idx, err := index.Build(in.Documents, n)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", conf.Name(), err)
	}
	cs := idx.CorpusStats()
	fp := idx.Fingerprint()
	span.SetAttr("documents", cs.Documents)
	span.SetAttr("vocabulary", cs.VocabularySize)
	span.SetAttr("fingerprint", fp[:16])
	r.logger.Info("index built",
		"config", conf.Name(),
		"documents", cs.Documents,
		"total_terms", cs.TotalTerms,
		"vocabulary", cs.VocabularySize,
		"avdl", cs.AvgDocLength,
		"avg_term_length", cs.AvgTermLength,
		"fingerprint", fp,
	)
	if r.metrics != nil {
		r.metrics.DocsIndexedTotal.WithLabelValues(conf.Name()).Add(float64(cs.Documents))
		r.metrics.IndexBuildDuration.WithLabelValues(conf.Name()).Observe(time.Since(start).Seconds())
		r.metrics.VocabularySize.WithLabelValues(conf.Name()).Set(float64(cs.VocabularySize))
	}
	b := &built{conf: conf, normalizer: n, idx: idx}
	return b, nil
}

func (r *Runner) generateRun(ctx context.Context, b *built, desc run.Descriptor, plans []*parser.QueryPlan, writer *run.Writer) (run.Report, error) {
	name := desc.FileName(r.cfg.Run.Team)
	ctx = logger.WithRun(ctx, logger.Run{Name: name, Config: b.conf.Name(), Scheme: desc.Scheme.String()})
	log := logger.FromContext(ctx)

	w, err := r.Weights(ctx, b.conf, desc.Scheme, b.idx)
	if err != nil {
		return run.Report{}, err
	}

	ctx, span := tracing.StartChildSpan(ctx, "run."+desc.Scheme.String())
	defer span.End()
	exec := executor.New(w, executor.Options{
		TopK:     r.cfg.Run.TopK,
		Pad:      r.cfg.Run.Pad,
		Parallel: r.cfg.Run.ParallelQueries,
		Metrics:  r.metrics,
		Logger:   log,
	})
	results, err := exec.ExecuteAll(ctx, plans)
	if err != nil {
		return run.Report{}, err
	}
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
		if r.explainDoc != "" {
			r.explain(log, w, res, r.explainDoc)
		}
	}
	span.SetAttr("queries", len(results))
	span.SetAttr("failed", failed)

	report, err := writer.Write(ctx, desc, results)
	if err != nil {
		return run.Report{}, err
	}
	span.SetAttr("lines", report.Lines)
	return report, nil
}

func (r *Runner) explain(log *slog.Logger, w *weighting.Weights, res executor.SearchResult, docID string) {
	parts := scorer.Explain(w, res.Terms, docID)
	var total float64
	for _, c := range parts {
		total += c.Contribution
		log.Info("explain term",
			"query_id", res.QueryID,
			"doc_id", docID,
			"term", c.Term,
			"query_weight", c.QueryWeight,
			"doc_weight", c.DocWeight,
			"contribution", c.Contribution,
		)
	}
	log.Info("explain", "query_id", res.QueryID, "doc_id", docID, "score", total, "terms", len(parts))
}

// Weights returns the weights of scheme for conf, deriving them on first
// use. Concurrent callers for the same key share one derivation.
func (r *Runner) Weights(ctx context.Context, conf Configuration, scheme weighting.Scheme, idx *index.Index) (*weighting.Weights, error) {
	key := conf.Name() + "/" + scheme.String()
	r.mu.Lock()
	if w, ok := r.weights[key]; ok {
		r.mu.Unlock()
		return w, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(key, func() (any, error) {
		r.mu.Lock()
		if w, ok := r.weights[key]; ok {
			r.mu.Unlock()
			return w, nil
		}
		r.mu.Unlock()

		_, span := tracing.StartChildSpan(ctx, "weights."+scheme.String())
		defer span.End()
		w, err := weighting.Compute(scheme, idx, r.opts)
		if err != nil {
			return nil, fmt.Errorf("deriving %s weights: %w", key, err)
		}
		span.SetAttr("terms", w.WeightedTerms())
		if r.metrics != nil {
			r.metrics.WeightsDerived.WithLabelValues(scheme.String()).Inc()
		}
		r.mu.Lock()
		r.weights[key] = w
		r.mu.Unlock()
		return w, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*weighting.Weights), nil
}
