// Package cached wraps an embedding provider with an in-process LRU cache
// keyed by input text. Re-embedding the same chunk, a common pattern when
// a knowledge base is rebuilt, becomes a cache hit instead of an API call.
package cached

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/botirk38/ragvec/types"
)

// DefaultCapacity is the cache size used when none is configured.
const DefaultCapacity = 1024

// CachedProvider decorates another EmbeddingProvider with LRU caching.
type CachedProvider struct {
	inner types.EmbeddingProvider
	cache *lru.Cache[string, []float32]
}

var _ types.EmbeddingProvider = (*CachedProvider)(nil)

// New wraps the provider with an LRU cache of the given capacity.
func New(inner types.EmbeddingProvider, capacity int) (*CachedProvider, error) {
	if inner == nil {
		return nil, errors.New("inner provider cannot be nil")
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}

	return &CachedProvider{inner: inner, cache: cache}, nil
}

// EmbedText returns a cached vector when the exact text was embedded
// before, otherwise delegates to the inner provider.
func (p *CachedProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if embedding, ok := p.cache.Get(text); ok {
		return embedding, nil
	}

	embedding, err := p.inner.EmbedText(ctx, text)
	if err != nil {
		return nil, err
	}
	p.cache.Add(text, embedding)
	return embedding, nil
}

// EmbedBatch serves cache hits locally and forwards only the misses to the
// inner provider in a single call.
func (p *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to embed")
	}

	embeddings := make([][]float32, len(texts))
	var missing []string
	var missingIdx []int

	for i, text := range texts {
		if embedding, ok := p.cache.Get(text); ok {
			embeddings[i] = embedding
		} else {
			missing = append(missing, text)
			missingIdx = append(missingIdx, i)
		}
	}

	if len(missing) > 0 {
		fresh, err := p.inner.EmbedBatch(ctx, missing)
		if err != nil {
			return nil, err
		}
		for j, embedding := range fresh {
			embeddings[missingIdx[j]] = embedding
			p.cache.Add(missing[j], embedding)
		}
	}

	return embeddings, nil
}

// Dimension reports the inner provider's vector width.
func (p *CachedProvider) Dimension() int {
	return p.inner.Dimension()
}

// Close purges the cache and closes the inner provider.
func (p *CachedProvider) Close() {
	p.cache.Purge()
	p.inner.Close()
}
