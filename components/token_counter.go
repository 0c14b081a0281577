package components

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the tiktoken encoding used for OpenAI chat models
const DefaultEncoding = "cl100k_base"

// TokenCounter counts and truncates text by model tokens.
type TokenCounter interface {
	Count(text string) int
	// Truncate returns text cut to at most maxTokens tokens
	Truncate(text string, maxTokens int) string
}

// WordCounter approximates tokens by whitespace separated words.
// It is the fallback when no tiktoken encoding can be loaded.
type WordCounter struct{}

func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

func (WordCounter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= maxTokens {
		return text
	}
	return strings.Join(words[:maxTokens], " ")
}

// TikTokenCounter counts tokens with the tokenizer OpenAI models use.
type TikTokenCounter struct {
	tke *tiktoken.Tiktoken
}

// NewTikTokenCounter creates a new TikTokenCounter using the specified encoding.
func NewTikTokenCounter(encoding string) (*TikTokenCounter, error) {
	tke, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get encoding: %w", err)
	}
	return &TikTokenCounter{tke: tke}, nil
}

// NewTokenCounter returns a tiktoken counter, or a WordCounter when the
// encoding cannot be loaded.
func NewTokenCounter() TokenCounter {
	if c, err := NewTikTokenCounter(DefaultEncoding); err == nil {
		return c
	}
	return WordCounter{}
}

func (ttc *TikTokenCounter) Count(text string) int {
	return len(ttc.tke.Encode(text, nil, nil))
}

func (ttc *TikTokenCounter) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := ttc.tke.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	return ttc.tke.Decode(tokens[:maxTokens])
}
