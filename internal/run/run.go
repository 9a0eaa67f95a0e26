// Package run writes ranked results as run files, verifies their length,
// packages them into an archive and optionally publishes them.
package run

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adri-41/Recherche-Information/internal/searcher/executor"
	"github.com/adri-41/Recherche-Information/internal/searcher/ranker"
	"github.com/adri-41/Recherche-Information/internal/weighting"
	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
	"github.com/adri-41/Recherche-Information/pkg/kafka"
	"github.com/adri-41/Recherche-Information/pkg/metrics"
)

const (
	iteration = "Q0"
	element   = "/article[1]"
)

// Descriptor identifies one run of the batch.
type Descriptor struct {
	ID        int
	Scheme    weighting.Scheme
	Stopwords int // 0 disables stop-word removal
	Stemmer   string
}

// StopLabel is "nostop" or "stop<count>".
func (d Descriptor) StopLabel() string {
	if d.Stopwords <= 0 {
		return "nostop"
	}
	return fmt.Sprintf("stop%d", d.Stopwords)
}

// FileName returns <team>_<id>_<scheme>_article_<stop>_<stem>.txt.
func (d Descriptor) FileName(team string) string {
	return fmt.Sprintf("%s_%d_%s_article_%s_%s.txt", team, d.ID, d.Scheme, d.StopLabel(), d.Stemmer)
}

// Report describes a written run file.
type Report struct {
	Name     string
	Path     string
	Lines    int
	Expected int
}

// Complete reports whether every query produced exactly K lines.
func (r Report) Complete() bool {
	return r.Lines == r.Expected
}

// FormatLine renders one ranked entry.
func FormatLine(queryID string, r ranker.Result, team string) string {
	return fmt.Sprintf("%s %s %s %d %.5f %s %s", queryID, iteration, r.DocID, r.Rank, r.Score, team, element)
}

// Publisher receives the lines of each written run.
type Publisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
}

// LineEvent is the payload of a published run line.
type LineEvent struct {
	Run     string  `json:"run"`
	QueryID string  `json:"query_id"`
	DocID   string  `json:"doc_id"`
	Rank    int     `json:"rank"`
	Score   float64 `json:"score"`
	Team    string  `json:"team"`
}

type Writer struct {
	dir       string
	team      string
	topK      int
	metrics   *metrics.Metrics
	publisher Publisher
	logger    *slog.Logger
}

type WriterOption func(*Writer)

func WithMetrics(m *metrics.Metrics) WriterOption {
	return func(w *Writer) { w.metrics = m }
}

func WithPublisher(p Publisher) WriterOption {
	return func(w *Writer) { w.publisher = p }
}

func WithLogger(l *slog.Logger) WriterOption {
	return func(w *Writer) { w.logger = l }
}

func NewWriter(dir, team string, topK int, opts ...WriterOption) *Writer {
	w := &Writer{
		dir:    dir,
		team:   team,
		topK:   topK,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "run-writer")
	return w
}

// Write stores results as the run file of desc. A line count other than
// len(results)*K is logged and counted but the file is kept.
func (w *Writer) Write(ctx context.Context, desc Descriptor, results []executor.SearchResult) (Report, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Report{}, fmt.Errorf("creating output dir: %w", err)
	}
	name := desc.FileName(w.team)
	path := filepath.Join(w.dir, name)
	report := Report{
		Name:     name,
		Path:     path,
		Expected: len(results) * w.topK,
	}

	f, err := os.Create(path)
	if err != nil {
		return report, fmt.Errorf("creating run file: %w", err)
	}
	buf := bufio.NewWriter(f)
	for _, res := range results {
		for _, r := range res.Results {
			if _, err := fmt.Fprintln(buf, FormatLine(res.QueryID, r, w.team)); err != nil {
				f.Close()
				return report, fmt.Errorf("writing %s: %w", name, err)
			}
			report.Lines++
		}
	}
	if err := buf.Flush(); err != nil {
		f.Close()
		return report, fmt.Errorf("flushing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return report, fmt.Errorf("closing %s: %w", name, err)
	}

	if w.metrics != nil {
		w.metrics.RunLinesTotal.WithLabelValues(desc.Scheme.String()).Add(float64(report.Lines))
	}
	if !report.Complete() {
		w.logger.Warn("incomplete run",
			"run", name,
			"lines", report.Lines,
			"expected", report.Expected,
			"error", apperrors.ErrIncompleteRun,
		)
		if w.metrics != nil {
			w.metrics.IncompleteRuns.Inc()
		}
	}
	w.logger.Info("run written", "run", name, "lines", report.Lines)

	w.publish(ctx, name, results)
	return report, nil
}

// publish failures are logged and counted; the run file is authoritative.
func (w *Writer) publish(ctx context.Context, name string, results []executor.SearchResult) {
	if w.publisher == nil {
		return
	}
	events := make([]kafka.Event, 0, len(results)*w.topK)
	for _, res := range results {
		for _, r := range res.Results {
			events = append(events, kafka.Event{
				Key: res.QueryID,
				Value: LineEvent{
					Run:     name,
					QueryID: res.QueryID,
					DocID:   r.DocID,
					Rank:    r.Rank,
					Score:   r.Score,
					Team:    w.team,
				},
			})
		}
	}
	status := "ok"
	if err := w.publisher.PublishBatch(ctx, events); err != nil {
		status = "error"
		w.logger.Error("publishing run failed", "run", name, "error", err)
	}
	if w.metrics != nil {
		w.metrics.RunsPublished.WithLabelValues(status).Inc()
	}
}
