// Package config loads retriever settings from the environment, with an
// optional YAML file overlay.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/botirk38/ragvec/types"
)

// Defaults applied when neither the environment nor a config file sets a value.
const (
	DefaultEmbeddingModel     = "text-embedding-3-large"
	DefaultEmbeddingDimension = 3072
	DefaultCollection         = "ragvec"
	DefaultLogLevel           = "info"
)

// Settings holds every tunable the retriever reads from its environment.
type Settings struct {
	OpenAIAPIKey string `yaml:"openai_api_key"`
	GeminiAPIKey string `yaml:"gemini_api_key"`

	EmbeddingModel     string `yaml:"embedding_model"`
	EmbeddingDimension int    `yaml:"embedding_dimension"`

	RedisURL      string `yaml:"redis_url"`
	ChromemPath   string `yaml:"chromem_path"`
	MilvusAddress string `yaml:"milvus_address"`
	MilvusUser    string `yaml:"milvus_username"`
	MilvusPass    string `yaml:"milvus_password"`

	Collection string `yaml:"collection"`
	LogLevel   string `yaml:"log_level"`
	LogDir     string `yaml:"log_dir"`
}

// FromEnv reads settings from environment variables, applying defaults
// for anything unset.
func FromEnv() *Settings {
	s := &Settings{
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		EmbeddingModel:     os.Getenv("EMBEDDING_MODEL"),
		EmbeddingDimension: intEnv("EMBEDDING_DIMENSION", DefaultEmbeddingDimension),
		RedisURL:           os.Getenv("REDIS_URL"),
		ChromemPath:        os.Getenv("CHROMEM_PATH"),
		MilvusAddress:      os.Getenv("MILVUS_ADDRESS"),
		MilvusUser:         os.Getenv("MILVUS_USERNAME"),
		MilvusPass:         os.Getenv("MILVUS_PASSWORD"),
		Collection:         os.Getenv("RAGVEC_COLLECTION"),
		LogLevel:           os.Getenv("RAGVEC_LOG_LEVEL"),
		LogDir:             os.Getenv("RAGVEC_LOG_DIR"),
	}
	s.applyDefaults()
	return s
}

// LoadFile reads a YAML settings file and overlays it on top of the
// environment: file values win where set, environment values fill the rest.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var file Settings
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	s := FromEnv()
	s.merge(&file)
	return s, nil
}

func (s *Settings) applyDefaults() {
	if s.EmbeddingModel == "" {
		s.EmbeddingModel = DefaultEmbeddingModel
	}
	if s.EmbeddingDimension <= 0 {
		s.EmbeddingDimension = DefaultEmbeddingDimension
	}
	if s.Collection == "" {
		s.Collection = DefaultCollection
	}
	if s.LogLevel == "" {
		s.LogLevel = DefaultLogLevel
	}
}

func (s *Settings) merge(file *Settings) {
	if file.OpenAIAPIKey != "" {
		s.OpenAIAPIKey = file.OpenAIAPIKey
	}
	if file.GeminiAPIKey != "" {
		s.GeminiAPIKey = file.GeminiAPIKey
	}
	if file.EmbeddingModel != "" {
		s.EmbeddingModel = file.EmbeddingModel
	}
	if file.EmbeddingDimension > 0 {
		s.EmbeddingDimension = file.EmbeddingDimension
	}
	if file.RedisURL != "" {
		s.RedisURL = file.RedisURL
	}
	if file.ChromemPath != "" {
		s.ChromemPath = file.ChromemPath
	}
	if file.MilvusAddress != "" {
		s.MilvusAddress = file.MilvusAddress
	}
	if file.MilvusUser != "" {
		s.MilvusUser = file.MilvusUser
	}
	if file.MilvusPass != "" {
		s.MilvusPass = file.MilvusPass
	}
	if file.Collection != "" {
		s.Collection = file.Collection
	}
	if file.LogLevel != "" {
		s.LogLevel = file.LogLevel
	}
	if file.LogDir != "" {
		s.LogDir = file.LogDir
	}
}

// Validate checks that every required setting is present and reports all
// missing ones in a single error rather than the first.
func (s *Settings) Validate() error {
	var missing []string
	if s.OpenAIAPIKey == "" && s.GeminiAPIKey == "" {
		missing = append(missing, "OPENAI_API_KEY or GEMINI_API_KEY")
	}
	if s.EmbeddingModel == "" {
		missing = append(missing, "EMBEDDING_MODEL")
	}
	if s.EmbeddingDimension <= 0 {
		missing = append(missing, "EMBEDDING_DIMENSION")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Redacted returns a printable summary with secrets masked.
func (s *Settings) Redacted() string {
	return fmt.Sprintf(
		"openai_api_key=%s gemini_api_key=%s embedding_model=%s embedding_dimension=%d redis_url=%s chromem_path=%s milvus_address=%s collection=%s log_level=%s",
		mask(s.OpenAIAPIKey), mask(s.GeminiAPIKey),
		s.EmbeddingModel, s.EmbeddingDimension,
		redactURL(s.RedisURL), s.ChromemPath, s.MilvusAddress,
		s.Collection, s.LogLevel,
	)
}

// StoreConfigs maps the settings onto per-store configurations keyed by
// store kind, ready to hand to the retriever.
func (s *Settings) StoreConfigs() map[types.StoreType]types.StoreConfig {
	return map[types.StoreType]types.StoreConfig{
		types.StoreMemory: {
			Collection: s.Collection,
			Dimensions: s.EmbeddingDimension,
		},
		types.StoreChromem: {
			Collection: s.Collection,
			Dimensions: s.EmbeddingDimension,
			Path:       s.ChromemPath,
		},
		types.StoreRedis: {
			Collection:       s.Collection,
			Dimensions:       s.EmbeddingDimension,
			ConnectionString: s.RedisURL,
		},
		types.StoreMilvus: {
			Collection:       s.Collection,
			Dimensions:       s.EmbeddingDimension,
			ConnectionString: s.MilvusAddress,
			Username:         s.MilvusUser,
			Password:         s.MilvusPass,
		},
	}
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func mask(secret string) string {
	if secret == "" {
		return "<unset>"
	}
	return "***"
}

func redactURL(url string) string {
	if url == "" {
		return "<unset>"
	}
	at := strings.LastIndex(url, "@")
	if at < 0 {
		return url
	}
	scheme := ""
	if i := strings.Index(url, "://"); i >= 0 {
		scheme = url[:i+3]
	}
	return scheme + "***" + url[at:]
}
