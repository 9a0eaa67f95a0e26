// Package index builds the in-memory inverted index of one (stopword,
// stemmer) configuration: raw postings, document frequencies, document
// lengths and the document registry. An Index is immutable once Build
// returns and may be read from any number of goroutines.
package index

import (
	"sort"

	apperrors "github.com/adri-41/Recherche-Information/pkg/errors"
)

// Normalizer is the text-to-terms capability the builder depends on.
type Normalizer interface {
	Normalize(text string) []string
}

type Index struct {
	postings    map[string]map[string]int
	df          map[string]int
	docLen      map[string]int
	docIDs      []string
	totalTerms  int64
	termLetters int64
}

// Build indexes docs in one pass. Each document is normalized once; its
// term frequencies become postings and each distinct term bumps df by one.
// Empty documents are registered with length zero.
func Build(docs []Document, normalizer Normalizer) (*Index, error) {
	idx := &Index{
		postings: make(map[string]map[string]int),
		df:       make(map[string]int),
		docLen:   make(map[string]int, len(docs)),
		docIDs:   make([]string, 0, len(docs)),
	}
	for _, doc := range docs {
		if _, dup := idx.docLen[doc.ID]; dup {
			return nil, apperrors.Newf(apperrors.ErrDuplicateDocument, "document %q appears more than once", doc.ID)
		}
		terms := normalizer.Normalize(doc.Text)
		idx.docIDs = append(idx.docIDs, doc.ID)
		idx.docLen[doc.ID] = len(terms)
		idx.totalTerms += int64(len(terms))

		tf := make(map[string]int)
		for _, term := range terms {
			tf[term]++
			idx.termLetters += int64(len(term))
		}
		for term, freq := range tf {
			plist, exists := idx.postings[term]
			if !exists {
				plist = make(map[string]int)
				idx.postings[term] = plist
			}
			plist[doc.ID] = freq
			idx.df[term]++
		}
	}
	return idx, nil
}

// Postings returns the raw docID -> tf map of term, or nil when the term is
// not in the vocabulary. Callers must not modify it.
func (idx *Index) Postings(term string) map[string]int {
	return idx.postings[term]
}

// Search returns the postings of term sorted by DocID.
func (idx *Index) Search(term string) PostingList {
	docs, exists := idx.postings[term]
	if !exists {
		return nil
	}
	result := make(PostingList, 0, len(docs))
	for docID, freq := range docs {
		result = append(result, Posting{DocID: docID, Frequency: freq})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	return result
}

// Snapshot returns every term with its sorted postings, ordered by term.
func (idx *Index) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(idx.postings))
	for term := range idx.postings {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: idx.Search(term),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

func (idx *Index) DocFreq(term string) int {
	return idx.df[term]
}

func (idx *Index) DocLength(docID string) int {
	return idx.docLen[docID]
}

// DocIDs returns the registry in collection order. Callers must not modify it.
func (idx *Index) DocIDs() []string {
	return idx.docIDs
}

func (idx *Index) VocabularySize() int {
	return len(idx.df)
}

// Stats returns N and the mean document length; avdl is 0 when N is 0.
func (idx *Index) Stats() Stats {
	s := Stats{N: len(idx.docIDs)}
	if s.N > 0 {
		s.Avdl = float64(idx.totalTerms) / float64(s.N)
	}
	return s
}

func (idx *Index) CorpusStats() CorpusStats {
	st := idx.Stats()
	cs := CorpusStats{
		Documents:      st.N,
		TotalTerms:     idx.totalTerms,
		VocabularySize: len(idx.df),
		AvgDocLength:   st.Avdl,
	}
	if idx.totalTerms > 0 {
		cs.AvgTermLength = float64(idx.termLetters) / float64(idx.totalTerms)
	}
	return cs
}

// Terms calls fn for every vocabulary term with its raw postings.
func (idx *Index) Terms(fn func(term string, postings map[string]int)) {
	for term, plist := range idx.postings {
		fn(term, plist)
	}
}
