// Package scorer accumulates per-document scores for a query, term at a
// time, over the weights of one scheme. Only the posting lists of query
// terms present in the vocabulary are visited.
package scorer

import (
	"math"
	"sort"

	"github.com/adri-41/Recherche-Information/internal/weighting"
	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
)

// Scores maps a document ID to its accumulated score.
type Scores map[string]float64

// Score computes the score map of queryTerms under scheme. w must have been
// derived for the same scheme. Terms absent from the vocabulary contribute
// nothing.
func Score(scheme weighting.Scheme, w *weighting.Weights, queryTerms []string) (Scores, error) {
	if w == nil {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "nil weights")
	}
	if w.Scheme() != scheme {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, "weights derived for %s, scoring %s", w.Scheme(), scheme)
	}
	scores := make(Scores)
	if w.Stats().N == 0 {
		return scores, nil
	}
	vector := w.QueryVector(queryTerms)
	terms := sortedTerms(vector)
	switch scheme {
	case weighting.Ltn, weighting.Ltc:
		for _, term := range terms {
			wq := vector[term]
			for docID, wtd := range w.Postings(term) {
				scores[docID] += wtd * wq
			}
		}
	case weighting.BM25:
		idx := w.Index()
		avdl := w.Stats().Avdl
		params := w.Options().BM25
		for _, term := range terms {
			idf := w.IDF(term)
			if idf <= 0 {
				continue
			}
			for docID, tf := range idx.Postings(term) {
				scores[docID] += idf * weighting.BM25TF(tf, idx.DocLength(docID), avdl, params)
			}
		}
	default:
		return nil, apperrors.Newf(apperrors.ErrUnknownScheme, "%s", scheme)
	}
	for docID, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, apperrors.Newf(apperrors.ErrScoring, "non-finite score %g for document %s", s, docID)
		}
	}
	return scores, nil
}

// Contribution is one query term's share of a document score.
type Contribution struct {
	Term         string
	QueryWeight  float64
	DocWeight    float64
	Contribution float64
}

// Explain breaks the score of docID down by query term, ordered by term.
func Explain(w *weighting.Weights, queryTerms []string, docID string) []Contribution {
	vector := w.QueryVector(queryTerms)
	terms := sortedTerms(vector)
	out := make([]Contribution, 0, len(terms))
	for _, term := range terms {
		wq := vector[term]
		wd := w.Weight(term, docID)
		out = append(out, Contribution{
			Term:         term,
			QueryWeight:  wq,
			DocWeight:    wd,
			Contribution: wq * wd,
		})
	}
	return out
}

// sortedTerms fixes the accumulation order so repeated runs produce
// bit-identical scores.
func sortedTerms(vector map[string]float64) []string {
	terms := make([]string, 0, len(vector))
	for term := range vector {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}
