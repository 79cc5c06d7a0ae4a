package tokenizer

import (
	"context"
	"fmt"

	"github.com/tiktoken-go/tokenizer"
)

// OpenAITokenizer counts tokens locally using tiktoken. No API call is
// made, so it is cheap enough to run per chunk.
type OpenAITokenizer struct {
	codec tokenizer.Codec
}

var _ TokenCounter = (*OpenAITokenizer)(nil)

// NewOpenAITokenizer creates a counter for the given tiktoken encoding.
// An empty encoding defaults to cl100k_base, the vocabulary of OpenAI's
// embedding models.
func NewOpenAITokenizer(encoding tokenizer.Encoding) (*OpenAITokenizer, error) {
	if encoding == "" {
		encoding = tokenizer.Cl100kBase
	}

	codec, err := tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer %q: %w", encoding, err)
	}

	return &OpenAITokenizer{codec: codec}, nil
}

// CountTokens counts tokens in the text using the configured encoding.
func (t *OpenAITokenizer) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	ids, _, err := t.codec.Encode(text)
	if err != nil {
		return 0, err
	}

	return len(ids), nil
}
