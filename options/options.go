// Package options provides functional options for configuring Retriever instances.
package options

import (
	"context"
	"errors"

	"github.com/kataras/golog"

	"github.com/botirk38/ragvec/chunker"
	"github.com/botirk38/ragvec/providers/cached"
	"github.com/botirk38/ragvec/providers/gemini"
	"github.com/botirk38/ragvec/providers/openai"
	"github.com/botirk38/ragvec/similarity"
	"github.com/botirk38/ragvec/tokenizer"
	"github.com/botirk38/ragvec/types"
)

// DefaultTopK is the result count used when a query does not specify one.
const DefaultTopK = 5

// Option represents a configuration option for a Retriever.
type Option func(*Config) error

// Config holds the configuration for building a Retriever.
type Config struct {
	Provider     types.EmbeddingProvider
	Chunker      chunker.Chunker
	Comparator   similarity.SimilarityFunc
	Logger       *golog.Logger
	StoreConfigs map[types.StoreType]types.StoreConfig
	StoreKinds   []types.StoreType
	TopK         int

	// Optional pre-flight token budget for chunks
	Counter   tokenizer.TokenCounter
	MaxTokens int

	cacheCapacity int
	chunkConfig   *chunker.ChunkConfig
}

// NewConfig creates a new configuration with default values.
func NewConfig() *Config {
	return &Config{
		StoreConfigs: make(map[types.StoreType]types.StoreConfig),
		TopK:         DefaultTopK,
	}
}

// Apply applies all the given options to the config.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// Finalize fills derived defaults that depend on earlier options: the
// chunker is built last so it picks up the configured logger, and the
// embedding cache wraps whichever provider was chosen.
func (c *Config) Finalize() error {
	if c.Chunker == nil {
		chunkConfig := chunker.DefaultChunkConfig()
		if c.chunkConfig != nil {
			chunkConfig = *c.chunkConfig
		}
		if chunkConfig.Logger == nil {
			chunkConfig.Logger = c.Logger
		}
		ch, err := chunker.NewFixedOverlapChunker(chunkConfig)
		if err != nil {
			return err
		}
		c.Chunker = ch
	}

	if c.cacheCapacity > 0 {
		if c.Provider == nil {
			return errors.New("embedding cache requires a provider - set a provider option first")
		}
		provider, err := cached.New(c.Provider, c.cacheCapacity)
		if err != nil {
			return err
		}
		c.Provider = provider
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Provider == nil {
		return errors.New("embedding provider is required - use WithOpenAIProvider, etc.")
	}
	if c.Chunker == nil {
		return errors.New("chunker is required")
	}
	return nil
}

// WithOpenAIProvider sets up the OpenAI embedding provider.
func WithOpenAIProvider(config openai.OpenAIConfig) Option {
	return func(cfg *Config) error {
		provider, err := openai.NewOpenAIProvider(config)
		if err != nil {
			return err
		}
		cfg.Provider = provider
		return nil
	}
}

// WithGeminiProvider sets up the Gemini embedding provider.
func WithGeminiProvider(ctx context.Context, config gemini.GeminiConfig) Option {
	return func(cfg *Config) error {
		provider, err := gemini.NewGeminiProvider(ctx, config)
		if err != nil {
			return err
		}
		cfg.Provider = provider
		return nil
	}
}

// WithCustomProvider allows using a pre-configured embedding provider.
func WithCustomProvider(provider types.EmbeddingProvider) Option {
	return func(cfg *Config) error {
		if provider == nil {
			return errors.New("provider cannot be nil")
		}
		cfg.Provider = provider
		return nil
	}
}

// WithEmbeddingCache wraps the configured provider with an LRU embedding
// cache of the given capacity.
func WithEmbeddingCache(capacity int) Option {
	return func(cfg *Config) error {
		if capacity <= 0 {
			return errors.New("cache capacity must be positive")
		}
		cfg.cacheCapacity = capacity
		return nil
	}
}

// WithChunkConfig configures the built-in fixed-overlap chunker.
func WithChunkConfig(chunkConfig chunker.ChunkConfig) Option {
	return func(cfg *Config) error {
		if err := chunkConfig.Validate(); err != nil {
			return err
		}
		cfg.chunkConfig = &chunkConfig
		return nil
	}
}

// WithCustomChunker allows using a pre-configured chunker.
func WithCustomChunker(ch chunker.Chunker) Option {
	return func(cfg *Config) error {
		if ch == nil {
			return errors.New("chunker cannot be nil")
		}
		cfg.Chunker = ch
		return nil
	}
}

// WithSimilarity sets the similarity function used by stores that score
// in-process (the memory store); remote stores rank with their own index
// metric.
func WithSimilarity(fn similarity.SimilarityFunc) Option {
	return func(cfg *Config) error {
		if fn == nil {
			return errors.New("similarity function cannot be nil")
		}
		cfg.Comparator = fn
		return nil
	}
}

// WithLogger injects the logging handle used by the retriever and, unless
// overridden, by the chunker it builds.
func WithLogger(logger *golog.Logger) Option {
	return func(cfg *Config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.Logger = logger
		return nil
	}
}

// WithStoreConfig sets the configuration for one store kind.
func WithStoreConfig(storeType types.StoreType, storeConfig types.StoreConfig) Option {
	return func(cfg *Config) error {
		cfg.StoreConfigs[storeType] = storeConfig
		return nil
	}
}

// WithStores restricts which store kinds are probed and usable.
// Default: the whole closed set.
func WithStores(kinds ...types.StoreType) Option {
	return func(cfg *Config) error {
		if len(kinds) == 0 {
			return errors.New("at least one store kind is required")
		}
		cfg.StoreKinds = kinds
		return nil
	}
}

// WithDefaultTopK sets the result count used when a query passes topK <= 0.
func WithDefaultTopK(topK int) Option {
	return func(cfg *Config) error {
		if topK <= 0 {
			return errors.New("topK must be positive")
		}
		cfg.TopK = topK
		return nil
	}
}

// WithTokenBudget enables a pre-flight token count on every chunk before
// it is embedded; documents with chunks over maxTokens are skipped and
// reported rather than submitted.
func WithTokenBudget(counter tokenizer.TokenCounter, maxTokens int) Option {
	return func(cfg *Config) error {
		if counter == nil {
			return errors.New("token counter cannot be nil")
		}
		if maxTokens <= 0 {
			return errors.New("max tokens must be positive")
		}
		cfg.Counter = counter
		cfg.MaxTokens = maxTokens
		return nil
	}
}
