// Package embedded provides a vector store backed by chromem-go, an
// embeddable vector database that can persist to disk without any
// external service.
package embedded

import (
	"context"
	"errors"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/botirk38/ragvec/types"
)

// DefaultCollection is the collection name used when none is configured.
const DefaultCollection = "ragvec"

// ChromemStore implements types.VectorStore on chromem-go.
type ChromemStore struct {
	db         *chromem.DB
	collection string

	mu  sync.Mutex
	col *chromem.Collection
}

var _ types.VectorStore = (*ChromemStore)(nil)

// NewChromemStore creates a chromem-backed store. With an empty Path the
// database lives in memory only; otherwise it persists under Path.
func NewChromemStore(config types.StoreConfig) (*ChromemStore, error) {
	var db *chromem.DB
	if config.Path == "" {
		db = chromem.NewDB()
	} else {
		var err error
		db, err = chromem.NewPersistentDB(config.Path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open chromem database: %w", err)
		}
	}

	collection := config.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	return &ChromemStore{db: db, collection: collection}, nil
}

// CreateCollection ensures the chromem collection exists. The dimension is
// implied by the first added embedding, so it is not passed down.
func (s *ChromemStore) CreateCollection(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("dimension must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.db.GetOrCreateCollection(s.collection, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to create collection %q: %w", s.collection, err)
	}
	s.col = col
	return nil
}

func (s *ChromemStore) getCollection() (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.col == nil {
		col, err := s.db.GetOrCreateCollection(s.collection, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open collection %q: %w", s.collection, err)
		}
		s.col = col
	}
	return s.col, nil
}

// AddTexts upserts records as chromem documents.
func (s *ChromemStore) AddTexts(ctx context.Context, records []types.Record) error {
	col, err := s.getCollection()
	if err != nil {
		return err
	}

	for _, record := range records {
		record.EnsureID()
		err := col.AddDocument(ctx, chromem.Document{
			ID:        record.ID,
			Content:   record.Text,
			Metadata:  record.Metadata,
			Embedding: record.Embedding,
		})
		if err != nil {
			return fmt.Errorf("failed to add document %q: %w", record.ID, err)
		}
	}
	return nil
}

// Query returns the topK nearest documents. chromem rejects result counts
// above the collection size, so topK is clamped first.
func (s *ChromemStore) Query(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]types.SearchResult, error) {
	if topK <= 0 {
		return nil, errors.New("topK must be positive")
	}

	col, err := s.getCollection()
	if err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := col.QueryEmbedding(ctx, embedding, topK, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query failed: %w", err)
	}

	searchResults := make([]types.SearchResult, 0, len(results))
	for _, result := range results {
		searchResults = append(searchResults, types.SearchResult{
			ID:       result.ID,
			Text:     result.Content,
			Score:    result.Similarity,
			Metadata: result.Metadata,
			Store:    types.StoreChromem,
		})
	}
	return searchResults, nil
}

// DeleteCollection drops the collection and all its documents.
func (s *ChromemStore) DeleteCollection(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.DeleteCollection(s.collection); err != nil {
		return fmt.Errorf("failed to delete collection %q: %w", s.collection, err)
	}
	s.col = nil
	return nil
}

// Close is a no-op; chromem persists on write.
func (s *ChromemStore) Close() error { return nil }
