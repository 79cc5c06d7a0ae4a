package integration_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/botirk38/ragvec"
	"github.com/botirk38/ragvec/options"
	"github.com/botirk38/ragvec/types"
)

// Mock provider for integration tests
type mockProvider struct {
	embeddings map[string][]float32
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		embeddings: map[string][]float32{
			"cat":    {0.8, 0.2, 0.1},
			"dog":    {0.7, 0.3, 0.2},
			"animal": {0.6, 0.3, 0.3},
			"car":    {0.1, 0.8, 0.4},
			"truck":  {0.2, 0.7, 0.5},
		},
	}
}

func (m *mockProvider) embed(text string) []float32 {
	for keyword, embedding := range m.embeddings {
		if strings.Contains(text, keyword) {
			return embedding
		}
	}
	return []float32{0.5, 0.5, 0.5}
}

func (m *mockProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return m.embed(text), nil
}

func (m *mockProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = m.embed(text)
	}
	return out, nil
}

func (m *mockProvider) Dimension() int { return 3 }
func (m *mockProvider) Close()         {}

func TestRetrieverPipeline(t *testing.T) {
	kinds := []struct {
		name      string
		storeType types.StoreType
		config    types.StoreConfig
	}{
		{"Memory", types.StoreMemory, types.StoreConfig{Collection: "pets"}},
		{"Chromem", types.StoreChromem, types.StoreConfig{Collection: "pets"}},
	}

	for _, kind := range kinds {
		t.Run(kind.name, func(t *testing.T) {
			ctx := context.Background()
			retriever, err := ragvec.New(ctx,
				options.WithCustomProvider(newMockProvider()),
				options.WithStores(kind.storeType),
				options.WithStoreConfig(kind.storeType, kind.config),
			)
			if err != nil {
				t.Fatalf("Failed to create retriever: %v", err)
			}
			defer retriever.Close()

			documents := []string{
				"the cat slept in the sun",
				"the truck hauled gravel uphill",
			}
			count, err := retriever.AddDocuments(ctx, documents, kind.storeType, nil)
			if err != nil {
				t.Fatalf("AddDocuments failed: %v", err)
			}
			if count != 2 {
				t.Fatalf("Expected 2 records, got %d", count)
			}

			results, err := retriever.Retrieve(ctx, "a sleepy cat", kind.storeType, 1, nil)
			if err != nil {
				t.Fatalf("Retrieve failed: %v", err)
			}
			if len(results) != 1 {
				t.Fatalf("Expected 1 result, got %d", len(results))
			}
			if !strings.Contains(results[0].Text, "cat") {
				t.Errorf("Expected the cat document, got %q", results[0].Text)
			}

			if err := retriever.ClearStore(ctx, kind.storeType); err != nil {
				t.Fatalf("ClearStore failed: %v", err)
			}
			results, err = retriever.Retrieve(ctx, "a sleepy cat", kind.storeType, 5, nil)
			if err != nil {
				t.Fatalf("Retrieve after clear failed: %v", err)
			}
			if len(results) != 0 {
				t.Errorf("Expected empty store after clear, got %d results", len(results))
			}
		})
	}
}

func TestRetrieverRedisPipeline(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set, skipping redis integration test")
	}

	ctx := context.Background()
	retriever, err := ragvec.New(ctx,
		options.WithCustomProvider(newMockProvider()),
		options.WithStores(types.StoreRedis),
		options.WithStoreConfig(types.StoreRedis, types.StoreConfig{
			Collection:       "ragvec_integration",
			ConnectionString: redisURL,
		}),
	)
	if err != nil {
		t.Fatalf("Failed to create retriever: %v", err)
	}
	defer retriever.Close()
	defer retriever.ClearStore(ctx, types.StoreRedis)

	documents := []string{"the dog fetched the stick", "the car would not start"}
	if _, err := retriever.AddDocuments(ctx, documents, types.StoreRedis, nil); err != nil {
		t.Fatalf("AddDocuments failed: %v", err)
	}

	results, err := retriever.Retrieve(ctx, "a loyal dog", types.StoreRedis, 1, nil)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 1 || !strings.Contains(results[0].Text, "dog") {
		t.Errorf("Expected the dog document, got %v", results)
	}
}
