// Package gemini provides an embedding provider backed by Google's Gemini
// embedding models.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel = "gemini-embedding-001"
)

// modelDimensions maps known Gemini embedding models to their vector width.
var modelDimensions = map[string]int{
	"gemini-embedding-001": 3072,
	"text-embedding-004":   768,
}

// GeminiProvider uses the Gemini API to embed text.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// GeminiConfig provides configuration options for the Gemini embedding provider.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiProvider creates an embedding provider for Gemini. The API key
// falls back to the GEMINI_API_KEY environment variable.
func NewGeminiProvider(ctx context.Context, config GeminiConfig) (*GeminiProvider, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("Gemini API key is required")
		}
	}

	model := config.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// EmbedText sends a single-input embedding request to Gemini.
func (p *GeminiProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch embeds several texts in one API call.
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to embed")
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	resp, err := p.client.Models.EmbedContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, errors.New("Gemini returned an unexpected number of embeddings")
	}

	embeddings := make([][]float32, len(resp.Embeddings))
	for i, item := range resp.Embeddings {
		embeddings[i] = item.Values
	}
	return embeddings, nil
}

// Dimension returns the vector width for the configured model, or 0 for
// unknown models.
func (p *GeminiProvider) Dimension() int {
	return modelDimensions[p.model]
}

func (p *GeminiProvider) Close() {}
