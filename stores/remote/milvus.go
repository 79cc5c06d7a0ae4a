package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	milvus "github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/botirk38/ragvec/types"
)

const (
	milvusIDMaxLength   = 64
	milvusTextMaxLength = 65535
)

// MilvusStore implements types.VectorStore on a Milvus collection with an
// HNSW cosine index.
type MilvusStore struct {
	client     milvus.Client
	collection string
}

var _ types.VectorStore = (*MilvusStore)(nil)

func milvusConfig(config types.StoreConfig) milvus.Config {
	return milvus.Config{
		Address:  config.ConnectionString,
		Username: config.Username,
		Password: config.Password,
	}
}

// PingMilvus checks that a Milvus server is reachable with this config.
// Used by the startup capability probe.
func PingMilvus(ctx context.Context, config types.StoreConfig) error {
	if config.ConnectionString == "" {
		return errors.New("milvus address is not configured")
	}

	client, err := milvus.NewClient(ctx, milvusConfig(config))
	if err != nil {
		return err
	}
	return client.Close()
}

// NewMilvusStore connects to Milvus and returns a store bound to the
// configured collection.
func NewMilvusStore(ctx context.Context, config types.StoreConfig) (*MilvusStore, error) {
	client, err := milvus.NewClient(ctx, milvusConfig(config))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus: %w", err)
	}

	collection := config.Collection
	if collection == "" {
		collection = "ragvec"
	}

	return &MilvusStore{client: client, collection: collection}, nil
}

// CreateCollection creates the collection schema and its HNSW index.
// Idempotent: an existing collection is left alone.
func (s *MilvusStore) CreateCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("dimension must be positive")
	}

	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	idField := entity.NewField().WithName("id").
		WithDataType(entity.FieldTypeVarChar).
		WithMaxLength(milvusIDMaxLength).
		WithIsPrimaryKey(true).
		WithIsAutoID(false)
	vectorField := entity.NewField().WithName("embedding").
		WithDataType(entity.FieldTypeFloatVector).
		WithDim(int64(dimension))
	textField := entity.NewField().WithName("text").
		WithDataType(entity.FieldTypeVarChar).
		WithMaxLength(milvusTextMaxLength)
	metaField := entity.NewField().WithName("metadata").
		WithDataType(entity.FieldTypeJSON)

	schema := entity.NewSchema().WithName(s.collection).WithAutoID(false).
		WithField(idField).
		WithField(vectorField).
		WithField(textField).
		WithField(metaField)

	if err := s.client.CreateCollection(ctx, schema, 0); err != nil {
		return fmt.Errorf("failed to create collection %q: %w", s.collection, err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return fmt.Errorf("failed to build index config: %w", err)
	}
	if err := s.client.CreateIndex(ctx, s.collection, "embedding", idx, false,
		milvus.WithIndexName("embedding_idx")); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// AddTexts inserts records as column data.
func (s *MilvusStore) AddTexts(ctx context.Context, records []types.Record) error {
	if len(records) == 0 {
		return nil
	}

	dim := len(records[0].Embedding)

	ids := make([]string, 0, len(records))
	vectors := make([][]float32, 0, len(records))
	texts := make([]string, 0, len(records))
	metas := make([][]byte, 0, len(records))

	for _, record := range records {
		record.EnsureID()
		ids = append(ids, record.ID)
		vectors = append(vectors, record.Embedding)
		texts = append(texts, record.Text)

		meta := record.Metadata
		if meta == nil {
			meta = map[string]string{}
		}
		bs, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %q: %w", record.ID, err)
		}
		metas = append(metas, bs)
	}

	_, err := s.client.Insert(ctx, s.collection, "",
		entity.NewColumnVarChar("id", ids),
		entity.NewColumnFloatVector("embedding", dim, vectors),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnJSONBytes("metadata", metas),
	)
	if err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}

	if err := s.client.Flush(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to flush collection: %w", err)
	}
	return nil
}

// Query runs an HNSW search and maps result columns back to SearchResults.
func (s *MilvusStore) Query(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]types.SearchResult, error) {
	if topK <= 0 {
		return nil, errors.New("topK must be positive")
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}

	sp, err := entity.NewIndexHNSWSearchParam(max(topK, 64))
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	results, err := s.client.Search(ctx, s.collection, nil, filterExpr(filter),
		[]string{"id", "text", "metadata"},
		[]entity.Vector{entity.FloatVector(embedding)},
		"embedding", entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	var searchResults []types.SearchResult
	for _, result := range results {
		idCol := result.Fields.GetColumn("id")
		textCol := result.Fields.GetColumn("text")
		metaCol := result.Fields.GetColumn("metadata")

		for i := 0; i < result.ResultCount; i++ {
			sr := types.SearchResult{Store: types.StoreMilvus}

			if idCol != nil {
				sr.ID, _ = idCol.GetAsString(i)
			}
			if textCol != nil {
				sr.Text, _ = textCol.GetAsString(i)
			}
			if metaCol != nil {
				if raw, err := metaCol.GetAsString(i); err == nil && raw != "" {
					var meta map[string]string
					if err := json.Unmarshal([]byte(raw), &meta); err == nil {
						sr.Metadata = meta
					}
				}
			}
			if i < len(result.Scores) {
				sr.Score = result.Scores[i]
			}

			searchResults = append(searchResults, sr)
		}
	}

	return searchResults, nil
}

// filterExpr builds a Milvus boolean expression matching the metadata
// filter, e.g. metadata["doc_id"] == "0".
func filterExpr(filter map[string]string) string {
	if len(filter) == 0 {
		return ""
	}

	terms := make([]string, 0, len(filter))
	for key, value := range filter {
		terms = append(terms, fmt.Sprintf(`metadata[%q] == %q`, key, value))
	}
	return strings.Join(terms, " && ")
}

// DeleteCollection drops the Milvus collection.
func (s *MilvusStore) DeleteCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return nil
	}

	if err := s.client.DropCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to drop collection %q: %w", s.collection, err)
	}
	return nil
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close() error {
	return s.client.Close()
}
