package llm

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEmbedder memoizes Embed calls keyed by exact input text.
// Repeat queries are common (the router embeds the same query string
// the semantic ranker does), so a small LRU removes the second network
// round trip. Errors are never cached.
type CachedEmbedder struct {
	inner EmbedderClient
	cache *lru.Cache[string, []float32]
}

func NewCachedEmbedder(inner EmbedderClient, size int) (*CachedEmbedder, error) {
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.cache.Add(text, vec)
	return vec, nil
}
