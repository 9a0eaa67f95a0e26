// Package tokenizer turns raw text into index terms. It lower-cases input,
// keeps maximal runs of ASCII letters, removes stop-words and maps the
// survivors through a pluggable stemmer whose results are memoized for the
// lifetime of one (stopword, stemmer) configuration.
package tokenizer

import (
	"strings"
)

// Tokenize lower-cases text and returns its maximal runs of ASCII letters.
// Digits, punctuation and non-ASCII letters all act as separators.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	words := strings.FieldsFunc(text, func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	return words
}

// Normalizer applies stop-word removal and stemming with the same settings
// to documents and queries of one configuration.
type Normalizer struct {
	stopwords map[string]struct{}
	stemmer   Stemmer
	cache     *StemCache
}

// NewNormalizer creates a Normalizer owning a fresh StemCache. A nil
// stopword set disables stop-word removal and a nil stemmer means
// IdentityStemmer.
func NewNormalizer(stopwords map[string]struct{}, stemmer Stemmer) *Normalizer {
	if stopwords == nil {
		stopwords = map[string]struct{}{}
	}
	if stemmer == nil {
		stemmer = IdentityStemmer{}
	}
	return &Normalizer{
		stopwords: stopwords,
		stemmer:   stemmer,
		cache:     NewStemCache(stemmer),
	}
}

// Normalize tokenizes text and filters and stems the tokens.
func (n *Normalizer) Normalize(text string) []string {
	return n.FilterAndStem(Tokenize(text))
}

// FilterAndStem drops stop-words and stems the remaining tokens.
func (n *Normalizer) FilterAndStem(tokens []string) []string {
	terms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if _, isStop := n.stopwords[tok]; isStop {
			continue
		}
		term := n.cache.Stem(tok)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// Stemmer returns the configured stemming capability.
func (n *Normalizer) Stemmer() Stemmer {
	return n.stemmer
}

// StopwordCount returns the size of the stop-word set.
func (n *Normalizer) StopwordCount() int {
	return len(n.stopwords)
}

// Cache exposes the memo table, mainly for diagnostics.
func (n *Normalizer) Cache() *StemCache {
	return n.cache
}
