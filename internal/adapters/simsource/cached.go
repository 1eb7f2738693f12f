package simsource

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/baditaflorin/go_term_reduction/internal/core/domain"
	"github.com/baditaflorin/go_term_reduction/internal/ports"
)

// Cached decorates a similarity source with a caller-owned LRU cache. The
// cache is passed in rather than created globally, so repeated matrix builds
// can share lookups while the core itself stays reentrant and stateless.
// Errors are never cached.
type Cached struct {
	source ports.SimilaritySource
	cache  *lru.Cache[string, float64]
}

// NewCached decorates the source with the given cache.
func NewCached(source ports.SimilaritySource, cache *lru.Cache[string, float64]) *Cached {
	return &Cached{source: source, cache: cache}
}

// NewCachedWithSize decorates the source with a fresh LRU cache of the given
// capacity.
func NewCachedWithSize(source ports.SimilaritySource, size int) (*Cached, error) {
	cache, err := lru.New[string, float64](size)
	if err != nil {
		return nil, err
	}
	return NewCached(source, cache), nil
}

// cacheKey builds an order-independent key for a pair within an ontology.
func cacheKey(a, b domain.Label, ontology string) string {
	if b < a {
		a, b = b, a
	}
	return ontology + "\x00" + string(a) + "\x00" + string(b)
}

// Similarity returns the cached value when present, otherwise consults the
// wrapped source and stores the result.
func (c *Cached) Similarity(ctx context.Context, a, b domain.Label, ontology string) (float64, error) {
	key := cacheKey(a, b, ontology)
	if sim, ok := c.cache.Get(key); ok {
		return sim, nil
	}
	sim, err := c.source.Similarity(ctx, a, b, ontology)
	if err != nil {
		return 0, err
	}
	c.cache.Add(key, sim)
	return sim, nil
}

var _ ports.SimilaritySource = (*Cached)(nil)
