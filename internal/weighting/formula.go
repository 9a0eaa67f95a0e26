package weighting

import "math"

// LogTF is the "l" term-frequency component: 1 + log10 tf, or 0 for tf <= 0.
func LogTF(tf int) float64 {
	if tf <= 0 {
		return 0
	}
	return 1 + math.Log10(float64(tf))
}

// IDF is the "t" collection component: log10(N/df), or 0 when df or N is 0.
func IDF(n, df int) float64 {
	if df <= 0 || n <= 0 {
		return 0
	}
	return math.Log10(float64(n) / float64(df))
}

// BM25IDF is ln((N - df + 0.5) / (df + 0.5)). It is negative once a term
// occurs in more than half of the collection; callers skip such terms.
func BM25IDF(n, df int) float64 {
	return math.Log((float64(n) - float64(df) + 0.5) / (float64(df) + 0.5))
}

// BM25TF is the saturated, length-normalized term frequency
// tf*(k1+1) / (tf + k1*(1 - b + b*dl/avdl)). It is 0 when avdl is 0.
func BM25TF(tf int, docLength int, avdl float64, p BM25Params) float64 {
	if avdl == 0 || tf <= 0 {
		return 0
	}
	termFreq := float64(tf)
	lengthRatio := float64(docLength) / avdl
	denominator := termFreq + p.K1*(1-p.B+p.B*lengthRatio)
	return (termFreq * (p.K1 + 1)) / denominator
}
