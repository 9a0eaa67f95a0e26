// Package weighting derives scheme-specific term weights from a built index.
//
// Three mutually exclusive schemes are supported:
//
//   - ltn: w(t,d) = (1 + log10 tf) * log10(N/df), query side 1 + log10 tf
//   - ltc: the ltn weight divided by the document's L2 norm; the query side
//     is either lnn or a normalized ltc vector, chosen by QueryMode
//   - bm25: idf = ln((N-df+0.5)/(df+0.5)) with tf saturation and document
//     length normalization, computed per query
//
// Terms whose idf is not positive carry no weight under any scheme.
package weighting

import (
	"fmt"
	"strings"

	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
)

type Scheme int

const (
	Ltn Scheme = iota
	Ltc
	BM25
)

// Schemes lists every scheme in run-generation order.
var Schemes = []Scheme{Ltn, Ltc, BM25}

func (s Scheme) String() string {
	switch s {
	case Ltn:
		return "ltn"
	case Ltc:
		return "ltc"
	case BM25:
		return "bm25"
	default:
		return fmt.Sprintf("scheme(%d)", int(s))
	}
}

func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ltn":
		return Ltn, nil
	case "ltc":
		return Ltc, nil
	case "bm25":
		return BM25, nil
	default:
		return 0, apperrors.Newf(apperrors.ErrUnknownScheme, "%q", name)
	}
}

// QueryMode selects the query-side weighting of the ltc scheme.
type QueryMode int

const (
	// QueryLnn weights query terms by 1 + log10 tf without idf or
	// normalization.
	QueryLnn QueryMode = iota
	// QueryLtc weights query terms by (1 + log10 tf) * idf and L2-normalizes
	// the query vector.
	QueryLtc
)

func (m QueryMode) String() string {
	if m == QueryLtc {
		return "ltc"
	}
	return "lnn"
}

func ParseQueryMode(name string) (QueryMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "lnn":
		return QueryLnn, nil
	case "ltc":
		return QueryLtc, nil
	default:
		return 0, apperrors.Newf(apperrors.ErrInvalidInput, "unknown ltc query mode %q", name)
	}
}

// BM25Params are the Okapi free parameters.
type BM25Params struct {
	K1 float64
	B  float64
}

func DefaultBM25Params() BM25Params {
	return BM25Params{K1: 1.2, B: 0.75}
}

// Options configures weight derivation and query weighting.
type Options struct {
	QueryMode QueryMode
	BM25      BM25Params
}

func DefaultOptions() Options {
	return Options{
		QueryMode: QueryLnn,
		BM25:      DefaultBM25Params(),
	}
}
