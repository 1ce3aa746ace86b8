// internal/platform/classifier/cached.go
package classifier

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"ingestrouter/internal/core/domain"
	"ingestrouter/internal/core/ports"
)

const defaultCacheSize = 1024

// Cached memoizes classifications of a long-running process. Classification is
// a pure function of the rule set and filename, so entries never go stale.
// Returned values share their candidate slices with the cache and must not be mutated.
type Cached struct {
	inner ports.Classifier
	cache *lru.Cache[string, domain.Classification]
}

// NewCached wraps inner with an LRU of the given size (<= 0 uses a default).
func NewCached(inner ports.Classifier, size int) (*Cached, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, domain.Classification](size)
	if err != nil {
		return nil, err
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Classify implements ports.Classifier.
func (c *Cached) Classify(filename string) domain.Classification {
	if hit, ok := c.cache.Get(filename); ok {
		return hit
	}
	out := c.inner.Classify(filename)
	c.cache.Add(filename, out)
	return out
}

// Len returns the number of cached entries.
func (c *Cached) Len() int {
	return c.cache.Len()
}
