// Package tokenizer provides per-provider token counting for plain text.
// Counts are used as pre-flight checks that a chunk fits an embedding
// call's token budget before it is submitted.
package tokenizer

import "context"

// TokenCounter counts the tokens a provider would charge for the text.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
