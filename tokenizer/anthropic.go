package tokenizer

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicTokenizer counts tokens via Anthropic's native token counting
// endpoint. Each count is an API call.
type AnthropicTokenizer struct {
	client *anthropic.Client
	model  anthropic.Model
}

var _ TokenCounter = (*AnthropicTokenizer)(nil)

// NewAnthropicTokenizer creates a counter using the provided client.
// An empty model defaults to claude-3-5-sonnet.
func NewAnthropicTokenizer(client *anthropic.Client, model anthropic.Model) *AnthropicTokenizer {
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	return &AnthropicTokenizer{
		client: client,
		model:  model,
	}
}

// CountTokens counts tokens in the text using the Anthropic API.
func (t *AnthropicTokenizer) CountTokens(ctx context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	if t.client == nil {
		return 0, fmt.Errorf("anthropic client is required for token counting")
	}

	params := anthropic.MessageCountTokensParams{
		Model: t.model,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}

	result, err := t.client.Messages.CountTokens(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("anthropic token counting failed: %w", err)
	}

	return int(result.InputTokens), nil
}
