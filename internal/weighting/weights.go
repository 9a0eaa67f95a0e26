package weighting

import (
	"math"
	"sort"

	"github.com/adri-41/Recherche-Information/internal/indexer/index"
	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
)

// Weights is the derived, read-only data of one scheme over one index.
// For ltn and ltc it holds weighted postings; for bm25 it holds the idf
// table and the parameters, and document contributions are computed at
// query time from the raw postings.
type Weights struct {
	scheme   Scheme
	opts     Options
	stats    index.Stats
	idx      *index.Index
	idf      map[string]float64
	postings map[string]map[string]float64
	norms    map[string]float64
}

// Compute derives the weights of scheme over idx.
func Compute(scheme Scheme, idx *index.Index, opts Options) (*Weights, error) {
	if idx == nil {
		return nil, apperrors.New(apperrors.ErrInvalidInput, "nil index")
	}
	w := &Weights{
		scheme: scheme,
		opts:   opts,
		stats:  idx.Stats(),
		idx:    idx,
		idf:    make(map[string]float64, idx.VocabularySize()),
	}
	switch scheme {
	case Ltn:
		w.computeIDF(IDF)
		w.computeLtn()
	case Ltc:
		w.computeIDF(IDF)
		w.computeLtn()
		w.normalize()
	case BM25:
		w.computeIDF(BM25IDF)
	default:
		return nil, apperrors.Newf(apperrors.ErrUnknownScheme, "%d", int(scheme))
	}
	return w, nil
}

// computeIDF keeps only positive idf values.
func (w *Weights) computeIDF(fn func(n, df int) float64) {
	n := w.stats.N
	w.idx.Terms(func(term string, postings map[string]int) {
		if idf := fn(n, len(postings)); idf > 0 {
			w.idf[term] = idf
		}
	})
}

func (w *Weights) computeLtn() {
	w.postings = make(map[string]map[string]float64, len(w.idf))
	for term, idf := range w.idf {
		raw := w.idx.Postings(term)
		weighted := make(map[string]float64, len(raw))
		for docID, tf := range raw {
			weighted[docID] = LogTF(tf) * idf
		}
		w.postings[term] = weighted
	}
}

// normalize divides every weight by its document's L2 norm. A document
// whose norm is zero keeps zero weights. Squares are summed in term order
// so a document's norm is the same on every Compute.
func (w *Weights) normalize() {
	sumSquares := make(map[string]float64)
	for _, term := range sortedKeys(w.postings) {
		for docID, weight := range w.postings[term] {
			sumSquares[docID] += weight * weight
		}
	}
	w.norms = make(map[string]float64, len(sumSquares))
	for docID, sq := range sumSquares {
		norm := math.Sqrt(sq)
		if norm == 0 {
			norm = 1
		}
		w.norms[docID] = norm
	}
	for _, weighted := range w.postings {
		for docID, weight := range weighted {
			weighted[docID] = weight / w.norms[docID]
		}
	}
}

func (w *Weights) Scheme() Scheme { return w.scheme }

func (w *Weights) Options() Options { return w.opts }

func (w *Weights) Stats() index.Stats { return w.stats }

func (w *Weights) Index() *index.Index { return w.idx }

// IDF returns the scheme's idf for term, 0 when the term carries no weight.
func (w *Weights) IDF(term string) float64 {
	return w.idf[term]
}

// Postings returns the weighted postings of term for ltn and ltc, nil for
// bm25 or terms without weight. Callers must not modify the map.
func (w *Weights) Postings(term string) map[string]float64 {
	return w.postings[term]
}

// DocNorm returns the L2 norm used to normalize docID under ltc, 1 otherwise.
func (w *Weights) DocNorm(docID string) float64 {
	if n, ok := w.norms[docID]; ok {
		return n
	}
	return 1
}

// Weight returns the document-side weight of term in docID.
func (w *Weights) Weight(term, docID string) float64 {
	if w.scheme == BM25 {
		idf, ok := w.idf[term]
		if !ok {
			return 0
		}
		tf := w.idx.Postings(term)[docID]
		return idf * BM25TF(tf, w.idx.DocLength(docID), w.stats.Avdl, w.opts.BM25)
	}
	return w.postings[term][docID]
}

// WeightedTerms returns the number of terms with a nonzero idf.
func (w *Weights) WeightedTerms() int {
	return len(w.idf)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
