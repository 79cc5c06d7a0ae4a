// Package chunker splits text into token-bounded, overlapping chunks
// suitable for embedding. Chunk boundaries are measured in tokenizer
// tokens, not characters, so every chunk fits an embedding model's
// context window.
package chunker

import (
	"github.com/kataras/golog"
	"github.com/tiktoken-go/tokenizer"
)

// Chunker defines the interface for text chunking strategies.
// Different implementations can provide various chunking approaches
// (fixed-size with overlap, semantic boundaries, sentence-based, etc.)
type Chunker interface {
	// ChunkText splits text into chunks based on the chunker's strategy
	// and the token limits configured in the chunker. Empty or
	// whitespace-only input yields no chunks and no error.
	ChunkText(text string) ([]Chunk, error)

	// ChunkDocuments chunks each document in input order and returns one
	// flat record sequence with per-document positions attached.
	ChunkDocuments(documents []string) ([]ChunkRecord, error)

	// CountTokens counts the number of tokens in the given text.
	// This delegates to the underlying tokenizer.
	CountTokens(text string) (int, error)
}

// ChunkConfig holds configuration for text chunking behavior.
type ChunkConfig struct {
	// ChunkSize is the maximum number of tokens per chunk.
	// Default: 512 tokens
	ChunkSize int

	// ChunkOverlap is the number of tokens shared between consecutive
	// chunks. Preserves context at chunk boundaries.
	// Default: 50 tokens
	ChunkOverlap int

	// Encoding selects the tiktoken vocabulary used to measure tokens.
	// Default: cl100k_base (OpenAI embedding models)
	Encoding tokenizer.Encoding

	// Logger receives diagnostic token/chunk counts. Defaults to a
	// disabled logger when nil.
	Logger *golog.Logger
}

// Chunk represents a single chunk of text with its token range.
type Chunk struct {
	// Text is the actual text content of this chunk
	Text string

	// StartToken is the starting token index in the original text
	StartToken int

	// EndToken is the ending token index in the original text (exclusive)
	EndToken int

	// Index is the chunk's position in the sequence (0-based)
	Index int
}

// ChunkRecord associates a chunk with its source document, for storing
// chunks as separately addressable but traceable vector records.
type ChunkRecord struct {
	Text        string `json:"text"`
	DocID       int    `json:"doc_id"`
	ChunkID     int    `json:"chunk_id"`
	TotalChunks int    `json:"total_chunks"`
}

// DefaultChunkConfig returns the default chunking configuration.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize:    512, // Good balance of context and granularity
		ChunkOverlap: 50,  // Preserves context at boundaries
		Encoding:     tokenizer.Cl100kBase,
	}
}

// Validate checks if the chunk configuration is valid.
func (c ChunkConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return ErrInvalidChunkSize
	}

	if c.ChunkOverlap < 0 {
		return ErrInvalidOverlap
	}
	// An overlap >= size means the walk's start index never advances and
	// the chunk loop cannot terminate, so this is rejected up front.
	if c.ChunkOverlap >= c.ChunkSize {
		return ErrOverlapTooLarge
	}

	return nil
}
