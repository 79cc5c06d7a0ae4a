package chunker

import "strings"

const (
	// DefaultSimpleSplitMaxLength is the character budget per chunk
	// used when SimpleSplit is called with maxLength <= 0.
	DefaultSimpleSplitMaxLength = 1000

	// DefaultSimpleSplitSeparator is the separator used when SimpleSplit
	// is called with an empty separator.
	DefaultSimpleSplitSeparator = "\n\n"
)

// SimpleSplit splits text on a literal separator and greedily packs the
// parts into chunks of at most maxLength characters. It needs no
// tokenizer, which makes it a cheap alternative to token-aware chunking.
//
// A part is appended to the running chunk only if the running length plus
// the separator plus the part stays within maxLength; otherwise the chunk
// is flushed and the part starts a new one. A single part longer than
// maxLength is still emitted whole, so the bound is not strict.
func SimpleSplit(text string, maxLength int, separator string) []string {
	if text == "" {
		return nil
	}
	if maxLength <= 0 {
		maxLength = DefaultSimpleSplitMaxLength
	}
	if separator == "" {
		separator = DefaultSimpleSplitSeparator
	}

	parts := strings.Split(text, separator)

	var chunks []string
	current := ""

	for _, part := range parts {
		if len(current)+len(part)+len(separator) <= maxLength {
			if current != "" {
				current += separator + part
			} else {
				current = part
			}
		} else {
			if current != "" {
				chunks = append(chunks, current)
			}
			current = part
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}
