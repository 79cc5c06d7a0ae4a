package tokenizer

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiTokenizer counts tokens via Gemini's native token counting
// endpoint. Each count is an API call.
type GeminiTokenizer struct {
	client *genai.Client
	model  string
}

var _ TokenCounter = (*GeminiTokenizer)(nil)

// NewGeminiTokenizer creates a counter using the provided client and model.
func NewGeminiTokenizer(client *genai.Client, model string) *GeminiTokenizer {
	return &GeminiTokenizer{
		client: client,
		model:  model,
	}
}

// CountTokens counts tokens in the text using the Gemini API.
func (t *GeminiTokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	if t.client == nil {
		return 0, fmt.Errorf("gemini client is required for token counting")
	}
	if t.model == "" {
		return 0, fmt.Errorf("gemini model is required for token counting")
	}

	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	result, err := t.client.Models.CountTokens(ctx, t.model, contents, nil)
	if err != nil {
		return 0, fmt.Errorf("gemini token counting failed: %w", err)
	}

	return int(result.TotalTokens), nil
}
