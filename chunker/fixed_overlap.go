package chunker

import (
	"fmt"
	"strings"

	"github.com/kataras/golog"
	"github.com/tiktoken-go/tokenizer"

	"github.com/botirk38/ragvec/logging"
)

// FixedOverlapChunker implements the Chunker interface using a fixed-size
// chunking strategy with overlap between chunks. It is immutable after
// construction and safe for concurrent use.
type FixedOverlapChunker struct {
	config   ChunkConfig
	encoding tokenizer.Codec
	logger   *golog.Logger
}

var _ Chunker = (*FixedOverlapChunker)(nil)

// NewFixedOverlapChunker creates a new FixedOverlapChunker with the given
// configuration. An unknown encoding or an overlap >= chunk size is a
// configuration error.
func NewFixedOverlapChunker(config ChunkConfig) (*FixedOverlapChunker, error) {
	if config.ChunkSize == 0 {
		config.ChunkSize = DefaultChunkConfig().ChunkSize
		config.ChunkOverlap = DefaultChunkConfig().ChunkOverlap
	}
	if config.Encoding == "" {
		config.Encoding = tokenizer.Cl100kBase
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid chunk config: %w", err)
	}

	enc, err := tokenizer.Get(config.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tokenizer %q: %w", config.Encoding, err)
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	return &FixedOverlapChunker{
		config:   config,
		encoding: enc,
		logger:   logger,
	}, nil
}

// CountTokens counts the number of tokens in the given text.
func (c *FixedOverlapChunker) CountTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	ids, _, err := c.encoding.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
	}

	return len(ids), nil
}

// ChunkText splits the text into overlapping chunks based on token count.
// Text that fits within ChunkSize comes back as a single chunk carrying
// the original string untouched, so formatting survives exactly.
func (c *FixedOverlapChunker) ChunkText(text string) ([]Chunk, error) {
	if strings.TrimSpace(text) == "" {
		c.logger.Warn("empty text provided to chunker")
		return nil, nil
	}

	tokens, _, err := c.encoding.Encode(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
	}

	totalTokens := len(tokens)

	if totalTokens <= c.config.ChunkSize {
		c.logger.Debugf("text fits in single chunk (%d tokens)", totalTokens)
		return []Chunk{
			{
				Text:       text,
				StartToken: 0,
				EndToken:   totalTokens,
				Index:      0,
			},
		}, nil
	}

	var chunks []Chunk
	startIdx := 0

	// Overlap < size is guaranteed by Validate, so startIdx strictly
	// advances and the walk terminates.
	for startIdx < totalTokens {
		endIdx := min(startIdx+c.config.ChunkSize, totalTokens)

		chunkText, err := c.encoding.Decode(tokens[startIdx:endIdx])
		if err != nil {
			return nil, fmt.Errorf("failed to decode chunk %d: %w", len(chunks), err)
		}

		chunks = append(chunks, Chunk{
			Text:       chunkText,
			StartToken: startIdx,
			EndToken:   endIdx,
			Index:      len(chunks),
		})

		if endIdx == totalTokens {
			break
		}
		startIdx = endIdx - c.config.ChunkOverlap
	}

	c.logger.Infof("split text into %d chunks (total tokens: %d)", len(chunks), totalTokens)
	return chunks, nil
}

// ChunkDocuments chunks multiple documents and tracks their source.
// Documents that chunk to nothing (empty or whitespace-only) contribute
// no records.
func (c *FixedOverlapChunker) ChunkDocuments(documents []string) ([]ChunkRecord, error) {
	var records []ChunkRecord

	for docID, docText := range documents {
		chunks, err := c.ChunkText(docText)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", docID, err)
		}

		for chunkID, chunk := range chunks {
			records = append(records, ChunkRecord{
				Text:        chunk.Text,
				DocID:       docID,
				ChunkID:     chunkID,
				TotalChunks: len(chunks),
			})
		}
	}

	c.logger.Infof("chunked %d documents into %d total chunks", len(documents), len(records))
	return records, nil
}
