package chunk

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pactly/contract-analyzer/internal/common"
)

// Chunk is one token-bounded slice of a document's text.
type Chunk struct {
	Index      int
	Content    string
	TokenCount int
}

// Chunker splits text into overlapping token windows. Consecutive chunks share
// the last `overlap` tokens so a clause straddling a boundary appears in both
// neighbors and is never missed by retrieval.
type Chunker struct {
	size      int
	overlap   int
	tokenizer Tokenizer
	log       *slog.Logger
}

// NewChunker fails fast when overlap >= size: the window would never advance.
func NewChunker(size, overlap int, tokenizer Tokenizer, log *slog.Logger) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", common.ErrInvalidInput, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap must be in [0, size), got size=%d overlap=%d", common.ErrInvalidInput, size, overlap)
	}
	if tokenizer == nil {
		tokenizer = WordTokenizer{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Chunker{size: size, overlap: overlap, tokenizer: tokenizer, log: log}, nil
}

// Chunk tokenizes text once and windows over the token stream. Indices are
// contiguous from 0. Empty or whitespace-only input yields no chunks.
func (c *Chunker) Chunk(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	tokens := c.tokenizer.Encode(text)
	if len(tokens) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	index := 0
	for start < len(tokens) {
		end := start + c.size
		if end > len(tokens) {
			end = len(tokens)
		}
		window := tokens[start:end]
		chunks = append(chunks, Chunk{
			Index:      index,
			Content:    c.tokenizer.Decode(window),
			TokenCount: len(window),
		})
		if end == len(tokens) {
			break
		}
		start = end - c.overlap
		index++
	}

	c.log.Info("chunked text", "chunks", len(chunks), "tokens", len(tokens), "size", c.size, "overlap", c.overlap)
	return chunks
}

// TotalTokens sums the token counts of chunks.
func TotalTokens(chunks []Chunk) int {
	total := 0
	for _, ch := range chunks {
		total += ch.TokenCount
	}
	return total
}
