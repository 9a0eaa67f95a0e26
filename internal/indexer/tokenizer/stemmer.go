package tokenizer

import (
	"sync"
	"sync/atomic"

	"github.com/kljensen/snowball/english"
)

// Stemmer maps a token to its stem. Implementations must be pure.
type Stemmer interface {
	Stem(token string) string
	Name() string
}

// IdentityStemmer leaves tokens untouched; it backs the no-stemming
// configuration.
type IdentityStemmer struct{}

func (IdentityStemmer) Stem(token string) string { return token }

func (IdentityStemmer) Name() string { return "nostem" }

// SnowballStemmer is the English Snowball (Porter2) stemmer.
type SnowballStemmer struct{}

func (SnowballStemmer) Stem(token string) string {
	return english.Stem(token, true)
}

func (SnowballStemmer) Name() string { return "porter" }

// StemCache memoizes a Stemmer. It is safe for concurrent use so queries of
// one configuration can be normalized in parallel.
type StemCache struct {
	mu      sync.RWMutex
	stemmer Stemmer
	stems   map[string]string
	hits    atomic.Int64
	misses  atomic.Int64
}

func NewStemCache(stemmer Stemmer) *StemCache {
	return &StemCache{
		stemmer: stemmer,
		stems:   make(map[string]string),
	}
}

func (c *StemCache) Stem(token string) string {
	c.mu.RLock()
	s, ok := c.stems[token]
	c.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return s
	}
	s = c.stemmer.Stem(token)
	c.mu.Lock()
	c.stems[token] = s
	c.mu.Unlock()
	c.misses.Add(1)
	return s
}

func (c *StemCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stems)
}

// Stats returns the number of cache hits and misses so far.
func (c *StemCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
