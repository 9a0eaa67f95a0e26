package scorer

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/adri-41/Recherche-Information/internal/indexer/index"
	"github.com/adri-41/Recherche-Information/internal/indexer/tokenizer"
	"github.com/adri-41/Recherche-Information/internal/searcher/ranker"
	"github.com/adri-41/Recherche-Information/internal/weighting"
	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
)

const tolerance = 1e-9

func weightsFor(t *testing.T, scheme weighting.Scheme, opts weighting.Options, docs ...index.Document) *weighting.Weights {
	t.Helper()
	idx, err := index.Build(docs, tokenizer.NewNormalizer(nil, nil))
	if err != nil {
		t.Fatal(err)
	}
	w, err := weighting.Compute(scheme, idx, opts)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

var corpus = []index.Document{
	{ID: "1", Text: "web ranking scoring algorithm web"},
	{ID: "2", Text: "olive oil health benefit"},
	{ID: "3", Text: "web link network analysis"},
	{ID: "4", Text: "supervised machine learning algorithm"},
	{ID: "5", Text: "notting hill film actors"},
}

func TestScoreLtnTwoDocumentExample(t *testing.T) {
	w := weightsFor(t, weighting.Ltn, weighting.DefaultOptions(),
		index.Document{ID: "D1", Text: "cat sat"},
		index.Document{ID: "D2", Text: "cat ran"},
	)
	scores, err := Score(weighting.Ltn, w, []string{"cat", "sat"})
	if err != nil {
		t.Fatal(err)
	}
	if len(scores) != 1 {
		t.Fatalf("scores = %v, want only D1", scores)
	}
	if math.Abs(scores["D1"]-math.Log10(2)) > tolerance {
		t.Errorf("score(D1) = %g, want log10(2)", scores["D1"])
	}
}

func TestScoreLtnQueryTF(t *testing.T) {
	w := weightsFor(t, weighting.Ltn, weighting.DefaultOptions(), corpus...)
	once, _ := Score(weighting.Ltn, w, []string{"web"})
	twice, _ := Score(weighting.Ltn, w, []string{"web", "web"})
	ratio := twice["1"] / once["1"]
	if math.Abs(ratio-(1+math.Log10(2))) > tolerance {
		t.Errorf("query tf ratio = %g, want 1+log10(2)", ratio)
	}
}

func TestScoreLtcIsDotProduct(t *testing.T) {
	w := weightsFor(t, weighting.Ltc, weighting.DefaultOptions(), corpus...)
	scores, err := Score(weighting.Ltc, w, []string{"web", "algorithm"})
	if err != nil {
		t.Fatal(err)
	}
	want := w.Weight("web", "1") + w.Weight("algorithm", "1")
	if math.Abs(scores["1"]-want) > tolerance {
		t.Errorf("score(1) = %g, want %g", scores["1"], want)
	}
	if _, ok := scores["2"]; ok {
		t.Error("document 2 shares no term with the query")
	}
}

func TestScoreLtcQueryModeChangesScores(t *testing.T) {
	lnn := weightsFor(t, weighting.Ltc, weighting.DefaultOptions(), corpus...)
	opts := weighting.DefaultOptions()
	opts.QueryMode = weighting.QueryLtc
	ltc := weightsFor(t, weighting.Ltc, opts, corpus...)
	q := []string{"web", "algorithm", "olive"}
	a, _ := Score(weighting.Ltc, lnn, q)
	b, _ := Score(weighting.Ltc, ltc, q)
	if math.Abs(a["1"]-b["1"]) < tolerance {
		t.Error("query modes produced identical scores")
	}
	for docID, s := range b {
		if s > 1+tolerance {
			t.Errorf("cosine score of %s = %g exceeds 1", docID, s)
		}
	}
}

func TestScoreBM25(t *testing.T) {
	w := weightsFor(t, weighting.BM25, weighting.DefaultOptions(), corpus...)
	scores, err := Score(weighting.BM25, w, []string{"olive", "olive", "zebra"})
	if err != nil {
		t.Fatal(err)
	}
	idx := w.Index()
	st := idx.Stats()
	want := weighting.BM25IDF(5, 1) * weighting.BM25TF(1, 4, st.Avdl, weighting.DefaultBM25Params())
	if len(scores) != 1 || math.Abs(scores["2"]-want) > tolerance {
		t.Errorf("scores = %v, want {2: %g}", scores, want)
	}
}

func TestScoreUnknownTermsOnly(t *testing.T) {
	for _, scheme := range weighting.Schemes {
		w := weightsFor(t, scheme, weighting.DefaultOptions(), corpus...)
		scores, err := Score(scheme, w, []string{"zebra", "unicorn"})
		if err != nil {
			t.Fatalf("%s: %v", scheme, err)
		}
		if len(scores) != 0 {
			t.Errorf("%s: scores = %v, want empty", scheme, scores)
		}
	}
}

func TestScoreEmptyCollection(t *testing.T) {
	for _, scheme := range weighting.Schemes {
		w := weightsFor(t, scheme, weighting.DefaultOptions())
		scores, err := Score(scheme, w, []string{"web"})
		if err != nil || len(scores) != 0 {
			t.Errorf("%s: scores = %v, err = %v", scheme, scores, err)
		}
	}
}

func TestScoreSchemeMismatch(t *testing.T) {
	w := weightsFor(t, weighting.Ltn, weighting.DefaultOptions(), corpus...)
	if _, err := Score(weighting.BM25, w, []string{"web"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
	if _, err := Score(weighting.Ltn, nil, nil); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestExplainSumsToScore(t *testing.T) {
	for _, scheme := range weighting.Schemes {
		w := weightsFor(t, scheme, weighting.DefaultOptions(), corpus...)
		q := []string{"web", "ranking", "algorithm"}
		scores, err := Score(scheme, w, q)
		if err != nil {
			t.Fatal(err)
		}
		var sum float64
		parts := Explain(w, q, "1")
		for _, c := range parts {
			sum += c.Contribution
		}
		if math.Abs(sum-scores["1"]) > tolerance {
			t.Errorf("%s: explain sum %g != score %g", scheme, sum, scores["1"])
		}
		for i := 1; i < len(parts); i++ {
			if parts[i-1].Term > parts[i].Term {
				t.Errorf("%s: contributions not ordered by term", scheme)
			}
		}
	}
}

// BenchmarkScore measures scoring of a three-term query for every scheme
// over collections of increasing size.
func TestLtcTiesBreakByDocID(t *testing.T) {
	// A, B and C differ in vocabulary but share the same tf profile, so
	// their ltc scores for "q" are equal.
	docs := []index.Document{
		{ID: "C", Text: "q g g g h i i"},
		{ID: "B", Text: "q d d d e f f"},
		{ID: "A", Text: "q a a a b c c"},
		{ID: "Z", Text: "z"},
	}
	for run := 0; run < 100; run++ {
		w := weightsFor(t, weighting.Ltc, weighting.DefaultOptions(), docs...)
		scores, err := Score(weighting.Ltc, w, []string{"q"})
		if err != nil {
			t.Fatal(err)
		}
		if scores["A"] != scores["B"] || scores["B"] != scores["C"] {
			t.Fatalf("run %d: tied scores differ: %v", run, scores)
		}
		got := ranker.Rank(scores, w.Index().DocIDs(), 3, false)
		if len(got) != 3 || got[0].DocID != "A" || got[1].DocID != "B" || got[2].DocID != "C" {
			t.Fatalf("run %d: ranking = %+v, want A B C", run, got)
		}
	}
}

func BenchmarkScore(b *testing.B) {
	words := []string{"search", "ranking", "index", "web", "oil", "film", "network", "learning", "system", "query"}
	for _, numDocs := range []int{1000, 10000} {
		docs := make([]index.Document, numDocs)
		for i := range docs {
			text := ""
			for j := 0; j < 20; j++ {
				text += words[(i*7+j*3)%len(words)] + " "
			}
			docs[i] = index.Document{ID: fmt.Sprintf("doc-%d", i), Text: text + fmt.Sprintf("unique%c", 'a'+i%26)}
		}
		idx, err := index.Build(docs, tokenizer.NewNormalizer(nil, nil))
		if err != nil {
			b.Fatal(err)
		}
		for _, scheme := range weighting.Schemes {
			w, err := weighting.Compute(scheme, idx, weighting.DefaultOptions())
			if err != nil {
				b.Fatal(err)
			}
			b.Run(fmt.Sprintf("%s/docs_%d", scheme, numDocs), func(b *testing.B) {
				q := []string{"search", "ranking", "uniquec"}
				b.ReportAllocs()
				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					_, _ = Score(scheme, w, q)
				}
			})
		}
	}
}
