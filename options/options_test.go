package options

import (
	"context"
	"testing"

	"github.com/botirk38/ragvec/chunker"
	"github.com/botirk38/ragvec/types"
)

type stubProvider struct{}

func (s *stubProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (s *stubProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (s *stubProvider) Dimension() int { return 2 }
func (s *stubProvider) Close()         {}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	if cfg.TopK != DefaultTopK {
		t.Errorf("Expected TopK %d, got %d", DefaultTopK, cfg.TopK)
	}
	if cfg.StoreConfigs == nil {
		t.Error("Expected StoreConfigs map to be initialized")
	}
}

func TestApplyOptions(t *testing.T) {
	cfg := NewConfig()

	err := cfg.Apply(
		WithCustomProvider(&stubProvider{}),
		WithStores(types.StoreMemory, types.StoreChromem),
		WithDefaultTopK(10),
		WithStoreConfig(types.StoreMemory, types.StoreConfig{Collection: "docs"}),
	)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if cfg.TopK != 10 {
		t.Errorf("Expected TopK 10, got %d", cfg.TopK)
	}
	if len(cfg.StoreKinds) != 2 {
		t.Errorf("Expected 2 store kinds, got %d", len(cfg.StoreKinds))
	}
	if cfg.StoreConfigs[types.StoreMemory].Collection != "docs" {
		t.Error("Expected memory store config to be set")
	}
}

func TestFinalizeBuildsDefaultChunker(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Apply(WithCustomProvider(&stubProvider{})); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if cfg.Chunker == nil {
		t.Fatal("Expected Finalize to build a default chunker")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
}

func TestFinalizeWrapsProviderWithCache(t *testing.T) {
	cfg := NewConfig()
	provider := &stubProvider{}
	err := cfg.Apply(
		WithCustomProvider(provider),
		WithEmbeddingCache(32),
	)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if _, ok := cfg.Provider.(*stubProvider); ok {
		t.Error("Expected provider to be wrapped by the cache")
	}
	if cfg.Provider.Dimension() != 2 {
		t.Errorf("Expected wrapped provider to report dimension 2, got %d", cfg.Provider.Dimension())
	}
}

func TestEmbeddingCacheWithoutProvider(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Apply(WithEmbeddingCache(32)); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if err := cfg.Finalize(); err == nil {
		t.Error("Expected error when cache is requested without a provider")
	}
}

func TestValidateMissingProvider(t *testing.T) {
	cfg := NewConfig()
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected validation error for missing provider")
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name   string
		option Option
	}{
		{"nil provider", WithCustomProvider(nil)},
		{"nil chunker", WithCustomChunker(nil)},
		{"nil logger", WithLogger(nil)},
		{"zero cache capacity", WithEmbeddingCache(0)},
		{"zero topK", WithDefaultTopK(0)},
		{"empty store kinds", WithStores()},
		{"nil token counter", WithTokenBudget(nil, 100)},
		{"overlap >= chunk size", WithChunkConfig(chunker.ChunkConfig{ChunkSize: 10, ChunkOverlap: 10})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			if err := cfg.Apply(tt.option); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
