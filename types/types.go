package types

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Record is a single embeddable unit ready for storage: a chunk of text,
// its vector, and whatever positional metadata the caller wants back
// at query time.
type Record struct {
	ID        string
	Text      string
	Embedding []float32
	Metadata  map[string]string
}

// EnsureID fills in a generated ID if the record does not carry one.
func (r *Record) EnsureID() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
}

// SearchResult is a single nearest-neighbor match returned by a store.
type SearchResult struct {
	ID       string
	Text     string
	Score    float32
	Metadata map[string]string

	// Store identifies which backend produced this result, useful when
	// fanning a query out across several stores.
	Store StoreType
}

// VectorStore is the capability set every store adapter must provide.
// Stores receive pre-computed embeddings; they never call the embedding
// provider themselves.
type VectorStore interface {
	// CreateCollection ensures the backing collection/index exists with the
	// given vector dimension. Idempotent.
	CreateCollection(ctx context.Context, dimension int) error

	// AddTexts upserts records into the collection.
	AddTexts(ctx context.Context, records []Record) error

	// Query returns up to topK nearest neighbors of the embedding,
	// optionally restricted by a metadata filter.
	Query(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]SearchResult, error)

	// DeleteCollection drops the collection and all its records.
	DeleteCollection(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}

// StoreConfig provides configuration options for store adapters.
type StoreConfig struct {
	// Collection is the index/collection/dataset name.
	Collection string

	// Dimensions of stored vectors. Stores that create their index eagerly
	// need this up front; others infer it from the first batch.
	Dimensions int

	// For the in-memory store
	Capacity int

	// For embedded stores (chromem)
	Path string

	// For remote stores (redis, milvus)
	ConnectionString string
	Username         string
	Password         string
	Database         int

	// Additional options
	Options map[string]any
}

// StoreType represents the kind of vector store backend.
type StoreType string

const (
	StoreMemory  StoreType = "memory"
	StoreChromem StoreType = "chromem"
	StoreRedis   StoreType = "redis"
	StoreMilvus  StoreType = "milvus"
)

// AllStoreTypes lists every store kind the factory knows about, in a
// stable order.
func AllStoreTypes() []StoreType {
	return []StoreType{StoreMemory, StoreChromem, StoreRedis, StoreMilvus}
}

// UnavailableError reports a store kind that failed its startup probe.
// It replaces runtime dispatch failures: callers learn once, at
// registration time, which backends they cannot use.
type UnavailableError struct {
	Store  StoreType
	Reason error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("store %q unavailable: %v", e.Store, e.Reason)
}

func (e *UnavailableError) Unwrap() error { return e.Reason }

// EmbeddingProvider defines the interface all embedding providers must satisfy.
type EmbeddingProvider interface {
	// EmbedText turns a piece of text into its embedding vector.
	EmbedText(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch embeds several texts in one call where the backing API
	// supports it.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the width of vectors produced by this provider.
	Dimension() int
	// Close frees any resources held by the provider.
	Close()
}

// ProviderType represents the type of embedding provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGemini ProviderType = "gemini"
)
