// Package openai provides an embedding provider backed by OpenAI's
// embeddings API.
package openai

import (
	"context"
	"errors"
	"os"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

const (
	DefaultOpenAIModel = openai.EmbeddingModelTextEmbedding3Large
)

// modelDimensions maps known OpenAI embedding models to their vector width.
var modelDimensions = map[string]int{
	string(openai.EmbeddingModelTextEmbedding3Large): 3072,
	string(openai.EmbeddingModelTextEmbedding3Small): 1536,
	string(openai.EmbeddingModelTextEmbeddingAda002): 1536,
}

// OpenAIProvider uses OpenAI's API to embed text.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// OpenAIConfig provides configuration options for the OpenAI embedding provider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	OrgID   string
	Model   string
}

// NewOpenAIProvider creates an embedding provider for OpenAI. The API key
// falls back to the OPENAI_API_KEY environment variable.
func NewOpenAIProvider(config OpenAIConfig) (*OpenAIProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OpenAI API key is required")
		}
	}

	model := config.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}

	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{client: &client, model: model}, nil
}

// EmbedText sends a single-input embedding request to OpenAI.
func (p *OpenAIProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds several texts in one API call.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to embed")
	}

	resp, err := p.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(p.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, errors.New("OpenAI returned an unexpected number of embeddings")
	}

	// OpenAI returns []float64; convert to []float32
	embeddings := make([][]float32, len(resp.Data))
	for i, item := range resp.Data {
		embedding := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			embedding[j] = float32(v)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimension returns the vector width for the configured model, or 0 for
// unknown models.
func (p *OpenAIProvider) Dimension() int {
	return modelDimensions[p.model]
}

func (p *OpenAIProvider) Close() {}
