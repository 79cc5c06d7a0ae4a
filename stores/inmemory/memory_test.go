package inmemory

import (
	"context"
	"testing"

	"github.com/botirk38/ragvec/similarity"
	"github.com/botirk38/ragvec/types"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store, err := NewMemoryStore(types.StoreConfig{})
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}
	if err := store.CreateCollection(context.Background(), 3); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	return store
}

func seedRecords(t *testing.T, store *MemoryStore) {
	t.Helper()
	err := store.AddTexts(context.Background(), []types.Record{
		{ID: "a", Text: "go is a language", Embedding: []float32{1, 0, 0},
			Metadata: map[string]string{"doc_id": "0"}},
		{ID: "b", Text: "redis is a database", Embedding: []float32{0, 1, 0},
			Metadata: map[string]string{"doc_id": "1"}},
		{ID: "c", Text: "go has goroutines", Embedding: []float32{0.9, 0.1, 0},
			Metadata: map[string]string{"doc_id": "0"}},
	})
	if err != nil {
		t.Fatalf("AddTexts() error = %v", err)
	}
}

func TestMemoryStore_Query(t *testing.T) {
	store := newTestStore(t)
	seedRecords(t, store)
	ctx := context.Background()

	t.Run("returns nearest neighbors in score order", func(t *testing.T) {
		results, err := store.Query(ctx, []float32{1, 0, 0}, 2, nil)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}

		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].ID != "a" || results[1].ID != "c" {
			t.Errorf("unexpected order: %s, %s", results[0].ID, results[1].ID)
		}
		if results[0].Score < results[1].Score {
			t.Error("results not sorted by descending score")
		}
		if results[0].Store != types.StoreMemory {
			t.Errorf("expected store tag %q, got %q", types.StoreMemory, results[0].Store)
		}
	})

	t.Run("metadata filter restricts results", func(t *testing.T) {
		results, err := store.Query(ctx, []float32{0, 1, 0}, 10, map[string]string{"doc_id": "0"})
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}

		for _, result := range results {
			if result.Metadata["doc_id"] != "0" {
				t.Errorf("result %s leaked through filter", result.ID)
			}
		}
		if len(results) != 2 {
			t.Errorf("expected 2 filtered results, got %d", len(results))
		}
	})

	t.Run("topK must be positive", func(t *testing.T) {
		if _, err := store.Query(ctx, []float32{1, 0, 0}, 0, nil); err == nil {
			t.Fatal("expected error for topK=0")
		}
	})
}

func TestMemoryStore_CreateCollection(t *testing.T) {
	ctx := context.Background()
	store, _ := NewMemoryStore(types.StoreConfig{})

	if err := store.CreateCollection(ctx, 3); err != nil {
		t.Fatalf("CreateCollection() error = %v", err)
	}
	// Same dimension again is fine
	if err := store.CreateCollection(ctx, 3); err != nil {
		t.Errorf("idempotent CreateCollection() error = %v", err)
	}
	// Conflicting dimension is not
	if err := store.CreateCollection(ctx, 5); err == nil {
		t.Error("expected error for conflicting dimension")
	}
}

func TestMemoryStore_AddTexts(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects mismatched dimensions", func(t *testing.T) {
		store := newTestStore(t)
		err := store.AddTexts(ctx, []types.Record{
			{ID: "bad", Text: "wrong width", Embedding: []float32{1, 0}},
		})
		if err == nil {
			t.Fatal("expected dimension mismatch error")
		}
	})

	t.Run("fills missing IDs", func(t *testing.T) {
		store := newTestStore(t)
		err := store.AddTexts(ctx, []types.Record{
			{Text: "anonymous", Embedding: []float32{1, 0, 0}},
		})
		if err != nil {
			t.Fatalf("AddTexts() error = %v", err)
		}

		results, err := store.Query(ctx, []float32{1, 0, 0}, 1, nil)
		if err != nil {
			t.Fatalf("Query() error = %v", err)
		}
		if len(results) != 1 || results[0].ID == "" {
			t.Error("expected a generated ID on the stored record")
		}
	})

	t.Run("enforces capacity", func(t *testing.T) {
		store, err := NewMemoryStore(types.StoreConfig{Capacity: 1})
		if err != nil {
			t.Fatalf("NewMemoryStore() error = %v", err)
		}
		err = store.AddTexts(ctx, []types.Record{
			{ID: "a", Embedding: []float32{1}},
			{ID: "b", Embedding: []float32{0}},
		})
		if err == nil {
			t.Fatal("expected capacity error")
		}
	})
}

func TestMemoryStore_DeleteCollection(t *testing.T) {
	store := newTestStore(t)
	seedRecords(t, store)
	ctx := context.Background()

	if err := store.DeleteCollection(ctx); err != nil {
		t.Fatalf("DeleteCollection() error = %v", err)
	}

	results, err := store.Query(ctx, []float32{1, 0, 0}, 10, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty store after delete, got %d results", len(results))
	}
}

func TestMemoryStore_CustomComparator(t *testing.T) {
	store, err := NewMemoryStore(types.StoreConfig{
		Options: map[string]any{
			"comparator": similarity.SimilarityFunc(similarity.DotProductSimilarity),
		},
	})
	if err != nil {
		t.Fatalf("NewMemoryStore() error = %v", err)
	}

	ctx := context.Background()
	if err := store.CreateCollection(ctx, 2); err != nil {
		t.Fatal(err)
	}
	err = store.AddTexts(ctx, []types.Record{
		{ID: "long", Embedding: []float32{10, 0}},
		{ID: "short", Embedding: []float32{1, 0}},
	})
	if err != nil {
		t.Fatal(err)
	}

	// Dot product favors magnitude, unlike cosine
	results, err := store.Query(ctx, []float32{1, 0}, 1, nil)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if results[0].ID != "long" {
		t.Errorf("expected dot product to rank %q first, got %q", "long", results[0].ID)
	}
}
