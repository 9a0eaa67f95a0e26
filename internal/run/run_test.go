package run

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/adri-41/Recherche-Information/internal/searcher/executor"
	"github.com/adri-41/Recherche-Information/internal/searcher/ranker"
	"github.com/adri-41/Recherche-Information/internal/weighting"
	"github.com/adri-41/Recherche-Information/pkg/kafka"
	"github.com/adri-41/Recherche-Information/pkg/metrics"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		desc Descriptor
		want string
	}{
		{Descriptor{ID: 1, Scheme: weighting.Ltn, Stemmer: "nostem"}, "Team_1_ltn_article_nostop_nostem.txt"},
		{Descriptor{ID: 12, Scheme: weighting.BM25, Stopwords: 571, Stemmer: "porter"}, "Team_12_bm25_article_stop571_porter.txt"},
	}
	for _, tt := range tests {
		if got := tt.desc.FileName("Team"); got != tt.want {
			t.Errorf("FileName() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatLine(t *testing.T) {
	got := FormatLine("2009011", ranker.Result{DocID: "12345", Rank: 1, Score: 3.141592}, "Team")
	want := "2009011 Q0 12345 1 3.14159 Team /article[1]"
	if got != want {
		t.Errorf("FormatLine() = %q, want %q", got, want)
	}
	if got := FormatLine("q", ranker.Result{DocID: "d", Rank: 1500}, "T"); got != "q Q0 d 1500 0.00000 T /article[1]" {
		t.Errorf("zero score line = %q", got)
	}
}

func results(k int, ids ...string) []executor.SearchResult {
	out := make([]executor.SearchResult, len(ids))
	for i, id := range ids {
		rs := make([]ranker.Result, k)
		for j := range rs {
			rs[j] = ranker.Result{DocID: string(rune('a' + j)), Rank: j + 1, Score: float64(k - j)}
		}
		out[i] = executor.SearchResult{QueryID: id, Results: rs}
	}
	return out
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	return lines
}

func TestWriteCompleteRun(t *testing.T) {
	dir := t.TempDir()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	w := NewWriter(dir, "Team", 3, WithMetrics(m))
	desc := Descriptor{ID: 2, Scheme: weighting.Ltc, Stemmer: "porter"}

	report, err := w.Write(context.Background(), desc, results(3, "q1", "q2"))
	if err != nil {
		t.Fatal(err)
	}
	if !report.Complete() || report.Lines != 6 || report.Expected != 6 {
		t.Errorf("report = %+v", report)
	}
	lines := readLines(t, report.Path)
	if len(lines) != 6 {
		t.Fatalf("file has %d lines", len(lines))
	}
	if lines[0] != "q1 Q0 a 1 3.00000 Team /article[1]" || !strings.HasPrefix(lines[3], "q2 Q0 a 1 ") {
		t.Errorf("lines = %q", lines)
	}
	for _, l := range lines {
		if len(strings.Fields(l)) != 7 {
			t.Errorf("line %q does not have 7 fields", l)
		}
	}
	if got := testutil.ToFloat64(m.RunLinesTotal.WithLabelValues("ltc")); got != 6 {
		t.Errorf("run lines metric = %g", got)
	}
	if got := testutil.ToFloat64(m.IncompleteRuns); got != 0 {
		t.Errorf("incomplete runs = %g", got)
	}
}

func TestWriteIncompleteRunKeepsFile(t *testing.T) {
	dir := t.TempDir()
	m := metrics.New(prometheus.NewRegistry())
	w := NewWriter(dir, "Team", 3, WithMetrics(m))
	rs := results(3, "q1", "q2")
	rs[1].Results = nil

	report, err := w.Write(context.Background(), Descriptor{ID: 1, Scheme: weighting.Ltn, Stemmer: "nostem"}, rs)
	if err != nil {
		t.Fatal(err)
	}
	if report.Complete() || report.Lines != 3 || report.Expected != 6 {
		t.Errorf("report = %+v", report)
	}
	if _, err := os.Stat(report.Path); err != nil {
		t.Errorf("run file removed: %v", err)
	}
	if got := testutil.ToFloat64(m.IncompleteRuns); got != 1 {
		t.Errorf("incomplete runs = %g, want 1", got)
	}
}

type fakePublisher struct {
	events []kafka.Event
	err    error
}

func (f *fakePublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	f.events = append(f.events, events...)
	return f.err
}

func TestWritePublishes(t *testing.T) {
	pub := &fakePublisher{}
	m := metrics.New(prometheus.NewRegistry())
	w := NewWriter(t.TempDir(), "Team", 2, WithPublisher(pub), WithMetrics(m))
	if _, err := w.Write(context.Background(), Descriptor{ID: 3, Scheme: weighting.BM25, Stemmer: "nostem"}, results(2, "q1")); err != nil {
		t.Fatal(err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("events = %d", len(pub.events))
	}
	ev, ok := pub.events[1].Value.(LineEvent)
	if !ok || pub.events[1].Key != "q1" || ev.Rank != 2 || ev.Run != "Team_3_bm25_article_nostop_nostem.txt" {
		t.Errorf("event = %+v", pub.events[1])
	}
	if got := testutil.ToFloat64(m.RunsPublished.WithLabelValues("ok")); got != 1 {
		t.Errorf("published ok = %g", got)
	}
}

func TestWritePublishFailureKeepsRun(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	m := metrics.New(prometheus.NewRegistry())
	w := NewWriter(t.TempDir(), "Team", 1, WithPublisher(pub), WithMetrics(m))
	report, err := w.Write(context.Background(), Descriptor{ID: 1, Scheme: weighting.Ltn, Stemmer: "nostem"}, results(1, "q1"))
	if err != nil || report.Lines != 1 {
		t.Fatalf("report = %+v, err = %v", report, err)
	}
	if got := testutil.ToFloat64(m.RunsPublished.WithLabelValues("error")); got != 1 {
		t.Errorf("published error = %g", got)
	}
}

func TestArchive(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "Team", 2)
	var reports []Report
	for i, scheme := range weighting.Schemes {
		r, err := w.Write(context.Background(), Descriptor{ID: i + 1, Scheme: scheme, Stemmer: "nostem"}, results(2, "q1"))
		if err != nil {
			t.Fatal(err)
		}
		reports = append(reports, r)
	}

	path, err := Archive(dir, "Team", reports)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "Team_ALL_RUNS.zip" {
		t.Errorf("archive name = %s", path)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	if len(zr.File) != 3 {
		t.Fatalf("entries = %d, want 3", len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != reports[i].Name {
			t.Errorf("entry %d = %s, want %s", i, f.Name, reports[i].Name)
		}
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatal(err)
	}
	want, _ := os.ReadFile(reports[0].Path)
	if string(data) != string(want) {
		t.Error("archived content differs from run file")
	}
}

func TestArchiveMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := Archive(dir, "Team", []Report{{Path: filepath.Join(dir, "missing.txt")}})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
}
