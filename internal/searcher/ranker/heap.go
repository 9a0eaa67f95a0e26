package ranker

import "container/heap"

type scoredDoc struct {
	docID string
	score float64
}

// selectTop keeps the k best entries of scores in a bounded min-heap and
// returns them best first.
func selectTop(scores map[string]float64, limit int) []scoredDoc {
	h := make(scoredDocHeap, 0, min(limit, len(scores))+1)
	for docID, score := range scores {
		d := scoredDoc{docID: docID, score: score}
		if h.Len() < limit {
			heap.Push(&h, d)
			continue
		}
		if less(d, h[0]) {
			h[0] = d
			heap.Fix(&h, 0)
		}
	}
	result := make([]scoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(scoredDoc)
	}
	return result
}

// scoredDocHeap is a min-heap whose root is the worst kept document.
type scoredDocHeap []scoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool { return less(h[j], h[i]) }

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(scoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
