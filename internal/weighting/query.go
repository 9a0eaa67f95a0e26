package weighting

import "math"

// QueryVector builds the query-side weights of terms. Only distinct terms
// with a positive weight appear in the result.
func (w *Weights) QueryVector(terms []string) map[string]float64 {
	tf := make(map[string]int, len(terms))
	for _, t := range terms {
		tf[t]++
	}
	vector := make(map[string]float64, len(tf))
	switch {
	case w.scheme == BM25:
		for t := range tf {
			if w.idf[t] > 0 {
				vector[t] = 1
			}
		}
	case w.scheme == Ltc && w.opts.QueryMode == QueryLtc:
		var sumSquares float64
		for _, t := range sortedKeys(tf) {
			weight := LogTF(tf[t]) * w.idf[t]
			if weight > 0 {
				vector[t] = weight
				sumSquares += weight * weight
			}
		}
		if sumSquares > 0 {
			norm := math.Sqrt(sumSquares)
			for t := range vector {
				vector[t] /= norm
			}
		}
	default:
		for t, freq := range tf {
			vector[t] = LogTF(freq)
		}
	}
	return vector
}
