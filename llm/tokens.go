package llm

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the token encoding used when none is configured
const DefaultEncoding = "cl100k_base"

// TokenCounter measures text length in model tokens. The search engines use
// it to keep context windows inside their budgets.
type TokenCounter interface {
	NumTokens(text string) int
}

// TiktokenCounter counts tokens with a tiktoken encoding
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

var _ TokenCounter = (*TiktokenCounter)(nil)

// NewTokenCounter creates a counter for the named encoding, e.g. "cl100k_base"
func NewTokenCounter(encodingName string) (*TiktokenCounter, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %q: %w", encodingName, err)
	}
	return &TiktokenCounter{encoding: encoding, name: encodingName}, nil
}

// NewTokenCounterForModel creates a counter matching a model name, e.g. "gpt-4"
func NewTokenCounterForModel(modelName string) (*TiktokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding for model %q: %w", modelName, err)
	}
	return &TiktokenCounter{encoding: encoding, name: modelName}, nil
}

// NumTokens returns the token count of text
func (c *TiktokenCounter) NumTokens(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Encode converts text to token ids
func (c *TiktokenCounter) Encode(text string) []int {
	return c.encoding.Encode(text, nil, nil)
}

// Decode converts token ids back to text
func (c *TiktokenCounter) Decode(tokens []int) string {
	return c.encoding.Decode(tokens)
}

// ApproxTokenCounter estimates tokens as characters divided by four. It needs
// no encoding files, which makes it the fallback for offline use and tests.
type ApproxTokenCounter struct{}

var _ TokenCounter = ApproxTokenCounter{}

// NumTokens returns the approximate token count of text
func (ApproxTokenCounter) NumTokens(text string) int {
	return (len(text) + 3) / 4
}
