package index

// Document is one (docID, raw text) pair produced by the collection reader.
type Document struct {
	ID   string
	Text string
}

type Posting struct {
	DocID     string
	Frequency int
}

type PostingList []Posting

type TermEntry struct {
	Term     string
	Postings PostingList
}

// Stats are the collection statistics every scheme depends on.
type Stats struct {
	N    int
	Avdl float64
}

// CorpusStats summarize the vocabulary of one configuration.
type CorpusStats struct {
	Documents      int
	TotalTerms     int64
	VocabularySize int
	AvgDocLength   float64
	AvgTermLength  float64
}
