// Package inmemory provides a process-local vector store that scores
// every record against the query. Useful for tests and small demos where
// standing up a real vector database is overkill.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/botirk38/ragvec/similarity"
	"github.com/botirk38/ragvec/types"
)

// MemoryStore implements types.VectorStore with brute-force search.
type MemoryStore struct {
	mu         sync.RWMutex
	records    []types.Record
	dimension  int
	capacity   int
	comparator similarity.SimilarityFunc
}

var _ types.VectorStore = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory store. Capacity 0 means
// unbounded. The comparator option defaults to cosine similarity.
func NewMemoryStore(config types.StoreConfig) (*MemoryStore, error) {
	comparator := similarity.SimilarityFunc(similarity.CosineSimilarity)
	if fnOpt, ok := config.Options["comparator"]; ok {
		fn, ok := fnOpt.(similarity.SimilarityFunc)
		if !ok || fn == nil {
			return nil, errors.New("comparator option must be a similarity.SimilarityFunc")
		}
		comparator = fn
	}

	return &MemoryStore{
		capacity:   config.Capacity,
		comparator: comparator,
	}, nil
}

// CreateCollection records the expected vector dimension. Idempotent.
func (s *MemoryStore) CreateCollection(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("dimension must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension != 0 && s.dimension != dimension {
		return fmt.Errorf("collection already created with dimension %d", s.dimension)
	}
	s.dimension = dimension
	return nil
}

// AddTexts appends records to the store.
func (s *MemoryStore) AddTexts(_ context.Context, records []types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capacity > 0 && len(s.records)+len(records) > s.capacity {
		return fmt.Errorf("store capacity %d exceeded", s.capacity)
	}

	for _, record := range records {
		if s.dimension != 0 && len(record.Embedding) != s.dimension {
			return fmt.Errorf("record %q has dimension %d, want %d",
				record.ID, len(record.Embedding), s.dimension)
		}
		record.EnsureID()
		s.records = append(s.records, record)
	}
	return nil
}

// Query scores every stored record and returns the topK best matches.
func (s *MemoryStore) Query(_ context.Context, embedding []float32, topK int, filter map[string]string) ([]types.SearchResult, error) {
	if topK <= 0 {
		return nil, errors.New("topK must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]types.SearchResult, 0, len(s.records))
	for _, record := range s.records {
		if !matchesFilter(record.Metadata, filter) {
			continue
		}
		results = append(results, types.SearchResult{
			ID:       record.ID,
			Text:     record.Text,
			Score:    s.comparator(embedding, record.Embedding),
			Metadata: record.Metadata,
			Store:    types.StoreMemory,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// DeleteCollection drops all records.
func (s *MemoryStore) DeleteCollection(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.dimension = 0
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

func matchesFilter(metadata, filter map[string]string) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}
