// Package ranker turns a score map into a fixed-length ranked list. Scored
// documents come first, by descending score and then ascending document ID;
// the list is padded with zero-score documents in registry order.
package ranker

type Result struct {
	DocID string  `json:"doc_id"`
	Rank  int     `json:"rank"`
	Score float64 `json:"score"`
}

// Rank returns the top k documents of scores. When pad is set and fewer
// than k documents are scored, registry documents not already ranked are
// appended with score 0 until k entries exist or the registry is exhausted.
// No document appears twice.
func Rank(scores map[string]float64, registry []string, k int, pad bool) []Result {
	if k <= 0 {
		return []Result{}
	}
	top := selectTop(scores, k)
	result := make([]Result, 0, k)
	for _, d := range top {
		result = append(result, Result{DocID: d.docID, Score: d.score})
	}
	if pad && len(result) < k {
		for _, docID := range registry {
			if len(result) >= k {
				break
			}
			if _, scored := scores[docID]; scored {
				continue
			}
			result = append(result, Result{DocID: docID})
		}
	}
	for i := range result {
		result[i].Rank = i + 1
	}
	return result
}

// less orders a before b in the final ranking.
func less(a, b scoredDoc) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.docID < b.docID
}
