// Package remote provides vector stores backed by networked databases:
// Redis (RediSearch vector index) and Milvus.
package remote

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/botirk38/ragvec/types"
)

// RedisStore implements types.VectorStore using Redis with a RediSearch
// vector index over JSON documents.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	indexName  string
	dimensions int
}

var _ types.VectorStore = (*RedisStore)(nil)

// redisDocument is the JSON shape of one stored record.
type redisDocument struct {
	ID        string            `json:"id"`
	Text      string            `json:"text"`
	Embedding []float64         `json:"embedding"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp int64             `json:"timestamp"`
}

// parseRedisURL parses a Redis URL and returns redis.Options
func parseRedisURL(connectionString string) (*redis.Options, error) {
	// Handle redis:// or rediss:// URLs
	if strings.HasPrefix(connectionString, "redis://") || strings.HasPrefix(connectionString, "rediss://") {
		parsedURL, err := url.Parse(connectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}

		opts := &redis.Options{
			Addr: parsedURL.Host,
		}

		if parsedURL.Scheme == "rediss" {
			opts.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
			}
		}

		if parsedURL.User != nil {
			opts.Username = parsedURL.User.Username()
			if password, ok := parsedURL.User.Password(); ok {
				opts.Password = password
			}
		}

		if parsedURL.Path != "" && parsedURL.Path != "/" {
			dbStr := strings.TrimPrefix(parsedURL.Path, "/")
			if db, err := strconv.Atoi(dbStr); err == nil {
				opts.DB = db
			}
		}

		return opts, nil
	}

	// Simple host:port address
	return &redis.Options{
		Addr: connectionString,
	}, nil
}

func redisOptions(config types.StoreConfig) (*redis.Options, error) {
	opts, err := parseRedisURL(config.ConnectionString)
	if err != nil {
		return nil, err
	}

	// Explicit config values win over URL components
	if config.Username != "" {
		opts.Username = config.Username
	}
	if config.Password != "" {
		opts.Password = config.Password
	}
	if config.Database != 0 {
		opts.DB = config.Database
	}

	return opts, nil
}

// PingRedis checks that a Redis server is reachable with this config.
// Used by the startup capability probe.
func PingRedis(ctx context.Context, config types.StoreConfig) error {
	opts, err := redisOptions(config)
	if err != nil {
		return err
	}

	client := redis.NewClient(opts)
	defer client.Close()

	return client.Ping(ctx).Err()
}

// NewRedisStore creates a Redis-backed vector store and verifies the
// connection.
func NewRedisStore(ctx context.Context, config types.StoreConfig) (*RedisStore, error) {
	opts, err := redisOptions(config)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	collection := config.Collection
	if collection == "" {
		collection = "ragvec"
	}

	return &RedisStore{
		client:     client,
		prefix:     collection + ":",
		indexName:  collection + ":idx",
		dimensions: config.Dimensions,
	}, nil
}

// CreateCollection creates the RediSearch vector index. Idempotent: an
// already-existing index is left alone.
func (s *RedisStore) CreateCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("dimension must be positive")
	}
	s.dimensions = dimension

	_, err := s.client.FTCreate(ctx, s.indexName, &redis.FTCreateOptions{
		OnJSON: true,
		Prefix: []any{s.prefix},
	},
		&redis.FieldSchema{
			FieldName: "$.id",
			As:        "id",
			FieldType: redis.SearchFieldTypeText,
		},
		&redis.FieldSchema{
			FieldName: "$.timestamp",
			As:        "timestamp",
			FieldType: redis.SearchFieldTypeNumeric,
		},
		&redis.FieldSchema{
			FieldName: "$.embedding",
			As:        "embedding",
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				HNSWOptions: &redis.FTHNSWOptions{
					Type:           "FLOAT64",
					Dim:            dimension,
					DistanceMetric: "COSINE",
				},
			},
		},
	).Result()
	if err != nil && !strings.Contains(err.Error(), "Index already exists") {
		return fmt.Errorf("failed to create index %q: %w", s.indexName, err)
	}

	return nil
}

// AddTexts stores records as JSON documents under the collection prefix.
func (s *RedisStore) AddTexts(ctx context.Context, records []types.Record) error {
	for _, record := range records {
		record.EnsureID()

		doc := redisDocument{
			ID:        record.ID,
			Text:      record.Text,
			Embedding: float32ToFloat64(record.Embedding),
			Metadata:  record.Metadata,
			Timestamp: time.Now().Unix(),
		}

		if _, err := s.client.JSONSet(ctx, s.prefix+record.ID, "$", doc).Result(); err != nil {
			return fmt.Errorf("failed to store record %q: %w", record.ID, err)
		}
	}
	return nil
}

// Query runs a KNN search against the vector index. Metadata filtering is
// applied client-side after the KNN pass, so a heavily filtered query may
// return fewer than topK results.
func (s *RedisStore) Query(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]types.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	// Over-fetch when filtering to leave room for filtered-out docs
	limit := topK
	if len(filter) > 0 {
		limit = topK * 4
	}

	embeddingBytes := floatsToBytes(float32ToFloat64(embedding))
	query := fmt.Sprintf("*=>[KNN %d @embedding $vec AS vector_distance]", limit)

	results, err := s.client.FTSearchWithArgs(ctx, s.indexName, query, &redis.FTSearchOptions{
		Return: []redis.FTSearchReturn{
			{FieldName: "vector_distance"},
		},
		SortBy: []redis.FTSearchSortBy{
			{FieldName: "vector_distance", Asc: true},
		},
		DialectVersion: 2,
		LimitOffset:    0,
		Limit:          limit,
		Params: map[string]any{
			"vec": embeddingBytes,
		},
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("vector search error: %w", err)
	}

	searchResults := make([]types.SearchResult, 0, topK)
	for _, found := range results.Docs {
		distanceStr, ok := found.Fields["vector_distance"]
		if !ok {
			continue
		}
		distance, err := strconv.ParseFloat(distanceStr, 32)
		if err != nil {
			continue
		}

		doc, ok, err := s.getDocument(ctx, found.ID)
		if err != nil || !ok {
			continue
		}
		if !matchesFilter(doc.Metadata, filter) {
			continue
		}

		searchResults = append(searchResults, types.SearchResult{
			ID:       doc.ID,
			Text:     doc.Text,
			Score:    float32(1.0 - distance), // cosine distance to similarity
			Metadata: doc.Metadata,
			Store:    types.StoreRedis,
		})
		if len(searchResults) == topK {
			break
		}
	}

	return searchResults, nil
}

func (s *RedisStore) getDocument(ctx context.Context, key string) (redisDocument, bool, error) {
	result, err := s.client.JSONGet(ctx, key, "$").Result()
	if err == redis.Nil {
		return redisDocument{}, false, nil
	}
	if err != nil {
		return redisDocument{}, false, fmt.Errorf("failed to fetch document %q: %w", key, err)
	}

	var docs []redisDocument
	if err := json.Unmarshal([]byte(result), &docs); err != nil {
		return redisDocument{}, false, fmt.Errorf("failed to unmarshal document %q: %w", key, err)
	}
	if len(docs) == 0 {
		return redisDocument{}, false, nil
	}
	return docs[0], true, nil
}

// DeleteCollection drops the index and every document under the prefix.
func (s *RedisStore) DeleteCollection(ctx context.Context) error {
	// Index may not exist yet; that is fine
	_ = s.client.FTDropIndex(ctx, s.indexName).Err()

	pattern := s.prefix + "*"
	var keys []string
	var cursor uint64

	for {
		result, nextCursor, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan keys: %w", err)
		}

		keys = append(keys, result...)
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	if len(keys) > 0 {
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("failed to delete documents: %w", err)
		}
	}

	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// floatsToBytes converts a float64 slice to the little-endian byte layout
// RediSearch expects for FLOAT64 vectors.
func floatsToBytes(fs []float64) []byte {
	buf := make([]byte, len(fs)*8)
	for i, f := range fs {
		binary.LittleEndian.PutUint64(buf[i*8:(i+1)*8], math.Float64bits(f))
	}
	return buf
}

func float32ToFloat64(fs []float32) []float64 {
	result := make([]float64, len(fs))
	for i, f := range fs {
		result[i] = float64(f)
	}
	return result
}

func matchesFilter(metadata, filter map[string]string) bool {
	for key, want := range filter {
		if metadata[key] != want {
			return false
		}
	}
	return true
}
