// Package executor scores and ranks a batch of queries against the weights
// of one configuration and scheme.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adri-41/Recherche-Information/internal/searcher/parser"
	"github.com/adri-41/Recherche-Information/internal/searcher/ranker"
	"github.com/adri-41/Recherche-Information/internal/searcher/scorer"
	"github.com/adri-41/Recherche-Information/internal/weighting"
	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
	"github.com/adri-41/Recherche-Information/pkg/metrics"
)

// SearchResult is the ranked list of one query. Err is set when scoring
// failed; Results is then empty.
type SearchResult struct {
	QueryID string          `json:"query_id"`
	Query   string          `json:"query"`
	Terms   []string        `json:"terms"`
	Results []ranker.Result `json:"results"`
	Err     error           `json:"-"`
}

type Options struct {
	TopK     int
	Pad      bool
	Parallel int
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

type scoreFunc func(weighting.Scheme, *weighting.Weights, []string) (scorer.Scores, error)

type Executor struct {
	weights  *weighting.Weights
	registry []string
	opts     Options
	score    scoreFunc
	logger   *slog.Logger
}

func New(w *weighting.Weights, opts Options) *Executor {
	if opts.Parallel <= 0 {
		opts.Parallel = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		weights:  w,
		registry: w.Index().DocIDs(),
		opts:     opts,
		score:    scorer.Score,
		logger:   logger.With("component", "query-executor", "scheme", w.Scheme().String()),
	}
}

// Execute scores and ranks a single plan. A scoring error or panic is
// returned in the result as a *ScoringError, as is a context that is already
// done. A plan without terms is not scored and ranks by padding only.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan) SearchResult {
	start := time.Now()
	res := SearchResult{
		QueryID: plan.ID,
		Query:   plan.RawQuery,
		Terms:   plan.Terms,
		Results: []ranker.Result{},
	}
	scheme := e.weights.Scheme().String()
	if err := ctx.Err(); err != nil {
		res.Err = &apperrors.ScoringError{QueryID: plan.ID, Err: err}
		e.observe(scheme, metrics.OutcomeError, start)
		return res
	}
	if plan.Empty() {
		e.logger.Warn("query has no terms after normalization",
			"query_id", plan.ID,
			"query", plan.RawQuery,
		)
		res.Results = ranker.Rank(nil, e.registry, e.opts.TopK, e.opts.Pad)
		e.observe(scheme, metrics.OutcomeEmpty, start)
		return res
	}

	scores, err := e.safeScore(plan)
	if err != nil {
		res.Err = &apperrors.ScoringError{QueryID: plan.ID, Err: err}
		e.logger.Error("query scoring failed", "query_id", plan.ID, "error", err)
		e.observe(scheme, metrics.OutcomeError, start)
		return res
	}
	res.Results = ranker.Rank(scores, e.registry, e.opts.TopK, e.opts.Pad)

	outcome := metrics.OutcomeScored
	if len(scores) == 0 {
		outcome = metrics.OutcomeEmpty
		e.logger.Warn("query matched no document",
			"query_id", plan.ID,
			"terms", plan.Terms,
		)
	}
	e.observe(scheme, outcome, start)
	e.logger.Debug("query executed",
		"query_id", plan.ID,
		"terms", len(plan.Terms),
		"matched", len(scores),
		"results", len(res.Results),
		"duration", time.Since(start),
	)
	return res
}

// ExecuteAll runs plans with at most Options.Parallel queries in flight.
// Results keep the order of plans. Only context cancellation is returned
// as an error; per-query failures stay inside their SearchResult.
func (e *Executor) ExecuteAll(ctx context.Context, plans []*parser.QueryPlan) ([]SearchResult, error) {
	results := make([]SearchResult, len(plans))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Parallel)
	for i, plan := range plans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.Execute(gctx, plan)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("executing queries: %w", err)
	}
	return results, nil
}

func (e *Executor) safeScore(plan *parser.QueryPlan) (scores scorer.Scores, err error) {
	defer func() {
		if r := recover(); r != nil {
			scores = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.score(e.weights.Scheme(), e.weights, plan.Terms)
}

func (e *Executor) observe(scheme, outcome string, start time.Time) {
	if e.opts.Metrics == nil {
		return
	}
	e.opts.Metrics.QueriesScoredTotal.WithLabelValues(scheme, outcome).Inc()
	e.opts.Metrics.ScoringLatency.WithLabelValues(scheme).Observe(time.Since(start).Seconds())
}
