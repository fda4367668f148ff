package completion

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/julianstephens/architect/internal/logger"
)

// TokenCounter estimates prompt size. A nil counter, or one built without an
// encoding, uses a four-characters-per-token heuristic.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

// NewTokenCounter loads the named tiktoken encoding (for example
// "cl100k_base"). An empty name or "heuristic" skips loading. Encodings may
// be fetched over the network on first use; failures fall back to the
// heuristic.
func NewTokenCounter(encoding string) *TokenCounter {
	if encoding == "" || encoding == "heuristic" {
		return &TokenCounter{}
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		logger.Warn("Tokenizer unavailable, using heuristic", "encoding", encoding, "error", err)
		return &TokenCounter{}
	}
	return &TokenCounter{enc: enc}
}

// Exact reports whether counts come from a real tokenizer.
func (c *TokenCounter) Exact() bool { return c != nil && c.enc != nil }

func (c *TokenCounter) Count(s string) int {
	if s == "" {
		return 0
	}
	if c.Exact() {
		return len(c.enc.Encode(s, nil, nil))
	}
	return (utf8.RuneCountInString(s) + 3) / 4
}
