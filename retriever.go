// Package ragvec chunks documents, embeds them, and retrieves the most
// similar chunks from one or more vector stores.
package ragvec

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/kataras/golog"

	"github.com/botirk38/ragvec/chunker"
	"github.com/botirk38/ragvec/logging"
	"github.com/botirk38/ragvec/options"
	"github.com/botirk38/ragvec/stores"
	"github.com/botirk38/ragvec/tokenizer"
	"github.com/botirk38/ragvec/types"
)

// Retriever wires a chunker, an embedding provider, and a set of vector
// stores into one ingest/query surface. Store connectivity is probed once
// at construction; stores that failed the probe stay disabled for the
// lifetime of the instance.
type Retriever struct {
	chunker      chunker.Chunker
	provider     types.EmbeddingProvider
	factory      stores.Factory
	availability stores.Availability
	configs      map[types.StoreType]types.StoreConfig
	logger       *golog.Logger
	topK         int

	counter   tokenizer.TokenCounter
	maxTokens int

	mu      sync.Mutex
	stores  map[types.StoreType]types.VectorStore
	created map[types.StoreType]bool
}

// New creates a Retriever with functional options. The store probe runs
// here, so construction needs the same network reachability as later
// queries against remote stores.
func New(ctx context.Context, opts ...options.Option) (*Retriever, error) {
	cfg := options.NewConfig()

	if err := cfg.Apply(opts...); err != nil {
		return nil, err
	}
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	if cfg.Comparator != nil {
		memConfig := cfg.StoreConfigs[types.StoreMemory]
		if memConfig.Options == nil {
			memConfig.Options = make(map[string]any)
		}
		memConfig.Options["comparator"] = cfg.Comparator
		cfg.StoreConfigs[types.StoreMemory] = memConfig
	}

	availability := stores.Probe(ctx, cfg.StoreConfigs, cfg.StoreKinds...)
	for kind, reason := range availability.Unavailable {
		logger.Warnf("store %s disabled: %s", kind, reason.Reason)
	}
	if len(availability.Available) == 0 {
		return nil, errors.New("no vector stores available")
	}

	return &Retriever{
		chunker:      cfg.Chunker,
		provider:     cfg.Provider,
		availability: availability,
		configs:      cfg.StoreConfigs,
		logger:       logger,
		topK:         cfg.TopK,
		counter:      cfg.Counter,
		maxTokens:    cfg.MaxTokens,
		stores:       make(map[types.StoreType]types.VectorStore),
		created:      make(map[types.StoreType]bool),
	}, nil
}

// AvailableStores returns the store kinds that passed the construction
// probe, in probe order.
func (r *Retriever) AvailableStores() []types.StoreType {
	return append([]types.StoreType(nil), r.availability.Available...)
}

// AddDocuments chunks, embeds, and stores the given documents in one
// store. Documents whose chunks exceed the configured token budget are
// skipped and logged rather than failing the batch. Returns the number of
// chunk records written.
func (r *Retriever) AddDocuments(ctx context.Context, documents []string, storeType types.StoreType, metadata map[string]string) (int, error) {
	records, err := r.chunker.ChunkDocuments(documents)
	if err != nil {
		return 0, fmt.Errorf("chunk documents: %w", err)
	}

	records = r.applyTokenBudget(ctx, records)
	if len(records) == 0 {
		r.logger.Warn("no chunks to store")
		return 0, nil
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Text
	}
	embeddings, err := r.provider.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(records) {
		return 0, fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(records))
	}

	storeRecords := make([]types.Record, len(records))
	for i, rec := range records {
		meta := map[string]string{
			"doc_id":       strconv.Itoa(rec.DocID),
			"chunk_id":     strconv.Itoa(rec.ChunkID),
			"total_chunks": strconv.Itoa(rec.TotalChunks),
		}
		for k, v := range metadata {
			meta[k] = v
		}
		storeRecords[i] = types.Record{
			ID:        fmt.Sprintf("doc_%d_chunk_%d", rec.DocID, rec.ChunkID),
			Text:      rec.Text,
			Embedding: embeddings[i],
			Metadata:  meta,
		}
	}

	store, err := r.getStore(ctx, storeType)
	if err != nil {
		return 0, err
	}
	if err := store.AddTexts(ctx, storeRecords); err != nil {
		return 0, fmt.Errorf("store %s: %w", storeType, err)
	}

	r.logger.Infof("stored %d chunks from %d documents in %s", len(storeRecords), len(documents), storeType)
	return len(storeRecords), nil
}

// Retrieve embeds the query and returns the topK most similar chunks from
// one store. topK <= 0 falls back to the configured default.
func (r *Retriever) Retrieve(ctx context.Context, query string, storeType types.StoreType, topK int, filter map[string]string) ([]types.SearchResult, error) {
	if topK <= 0 {
		topK = r.topK
	}

	store, err := r.getStore(ctx, storeType)
	if err != nil {
		return nil, err
	}

	embedding, err := r.provider.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := store.Query(ctx, embedding, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", storeType, err)
	}
	for i := range results {
		results[i].Store = storeType
	}
	return results, nil
}

// RetrieveAll queries every available store, or just the given kinds, and
// merges the results by score, best first. Stores that fail are logged
// and skipped, so the result may be partial; it is never nil.
func (r *Retriever) RetrieveAll(ctx context.Context, query string, topK int, filter map[string]string, kinds ...types.StoreType) []types.SearchResult {
	if topK <= 0 {
		topK = r.topK
	}
	if len(kinds) == 0 {
		kinds = r.availability.Available
	}

	embedding, err := r.provider.EmbedText(ctx, query)
	if err != nil {
		r.logger.Errorf("embed query: %v", err)
		return []types.SearchResult{}
	}

	merged := []types.SearchResult{}
	for _, kind := range kinds {
		store, err := r.getStore(ctx, kind)
		if err != nil {
			r.logger.Warnf("store %s: %v", kind, err)
			continue
		}
		results, err := store.Query(ctx, embedding, topK, filter)
		if err != nil {
			r.logger.Warnf("store %s query failed: %v", kind, err)
			continue
		}
		for i := range results {
			results[i].Store = kind
		}
		merged = append(merged, results...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

// ClearStore drops the collection in one store and forgets the cached
// connection.
func (r *Retriever) ClearStore(ctx context.Context, storeType types.StoreType) error {
	store, err := r.getStore(ctx, storeType)
	if err != nil {
		return err
	}
	if err := store.DeleteCollection(ctx); err != nil {
		return fmt.Errorf("store %s: %w", storeType, err)
	}

	r.mu.Lock()
	delete(r.stores, storeType)
	delete(r.created, storeType)
	r.mu.Unlock()

	if err := store.Close(); err != nil {
		r.logger.Warnf("store %s close: %v", storeType, err)
	}
	r.logger.Infof("cleared store %s", storeType)
	return nil
}

// ClearAllStores clears every available store, continuing past failures
// and returning the first error seen.
func (r *Retriever) ClearAllStores(ctx context.Context) error {
	var firstErr error
	for _, kind := range r.availability.Available {
		if err := r.ClearStore(ctx, kind); err != nil {
			r.logger.Warnf("clear %s: %v", kind, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// ReplaceKnowledgeBase clears one store and loads the given documents into
// it. Returns the number of chunk records written.
func (r *Retriever) ReplaceKnowledgeBase(ctx context.Context, documents []string, storeType types.StoreType, metadata map[string]string) (int, error) {
	if err := r.ClearStore(ctx, storeType); err != nil {
		return 0, err
	}
	return r.AddDocuments(ctx, documents, storeType, metadata)
}

// Close releases every open store connection and the embedding provider.
func (r *Retriever) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for kind, store := range r.stores {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", kind, err)
		}
	}
	r.stores = make(map[types.StoreType]types.VectorStore)
	r.created = make(map[types.StoreType]bool)
	r.provider.Close()
	return firstErr
}

// getStore returns the connection for a store kind, creating it on first
// use. Kinds that failed the construction probe return the probe's
// UnavailableError.
func (r *Retriever) getStore(ctx context.Context, storeType types.StoreType) (types.VectorStore, error) {
	if !r.availability.Enabled(storeType) {
		if reason := r.availability.Reason(storeType); reason != nil {
			return nil, reason
		}
		return nil, &types.UnavailableError{Store: storeType, Reason: errors.New("not in the enabled store set")}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if store, ok := r.stores[storeType]; ok {
		return store, nil
	}

	store, err := r.factory.NewStore(ctx, storeType, r.configs[storeType])
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", storeType, err)
	}
	if !r.created[storeType] {
		if err := store.CreateCollection(ctx, r.provider.Dimension()); err != nil {
			store.Close()
			return nil, fmt.Errorf("create collection in %s: %w", storeType, err)
		}
		r.created[storeType] = true
	}
	r.stores[storeType] = store
	return store, nil
}

// applyTokenBudget drops whole documents containing any chunk over the
// configured token limit. Documents whose chunks cannot be counted are
// skipped and logged, not fatal. Without a configured counter it is a
// no-op.
func (r *Retriever) applyTokenBudget(ctx context.Context, records []chunker.ChunkRecord) []chunker.ChunkRecord {
	if r.counter == nil || r.maxTokens <= 0 {
		return records
	}

	skipped := make(map[int]bool)
	for _, rec := range records {
		if skipped[rec.DocID] {
			continue
		}
		count, err := r.counter.CountTokens(ctx, rec.Text)
		if err != nil {
			skipped[rec.DocID] = true
			r.logger.Warnf("skipping document %d: token count failed: %v", rec.DocID, err)
			continue
		}
		if count > r.maxTokens {
			skipped[rec.DocID] = true
			r.logger.Warnf("skipping document %d: chunk %d has %d tokens, budget is %d",
				rec.DocID, rec.ChunkID, count, r.maxTokens)
		}
	}
	if len(skipped) == 0 {
		return records
	}

	kept := records[:0]
	for _, rec := range records {
		if !skipped[rec.DocID] {
			kept = append(kept, rec)
		}
	}
	return kept
}
