package chunk

import "strings"

// Tokenizer converts text to a token stream and back. The chunker only needs
// the round trip; the concrete token shape is up to the implementation.
type Tokenizer interface {
	Encode(text string) []string
	Decode(tokens []string) string
}

// WordTokenizer splits on whitespace. Token counts are therefore word counts,
// which is the granularity the retrieval layer budgets in.
type WordTokenizer struct{}

func (WordTokenizer) Encode(text string) []string {
	return strings.Fields(text)
}

func (WordTokenizer) Decode(tokens []string) string {
	return strings.Join(tokens, " ")
}
