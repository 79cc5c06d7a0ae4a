// Package providers exposes constructors for the supported embedding
// providers behind the shared types.EmbeddingProvider interface.
package providers

import (
	"context"

	"github.com/botirk38/ragvec/providers/cached"
	"github.com/botirk38/ragvec/providers/gemini"
	"github.com/botirk38/ragvec/providers/openai"
	"github.com/botirk38/ragvec/types"
)

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config openai.OpenAIConfig) (types.EmbeddingProvider, error) {
	return openai.NewOpenAIProvider(config)
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(ctx context.Context, config gemini.GeminiConfig) (types.EmbeddingProvider, error) {
	return gemini.NewGeminiProvider(ctx, config)
}

// WithCache wraps any provider with an LRU embedding cache.
func WithCache(provider types.EmbeddingProvider, capacity int) (types.EmbeddingProvider, error) {
	return cached.New(provider, capacity)
}
