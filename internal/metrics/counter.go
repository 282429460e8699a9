package metrics

import (
	"bytes"
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// Counter counts bytes, tokens, and lines in a piece of emitted content.
type Counter interface {
	Count(text string) (bytes, tokens, lines int)
}

// SimpleCounter estimates tokens as bytes/4, which is roughly right for
// English prose and source code.
type SimpleCounter struct{}

// Count returns bytes, estimated tokens, and lines for the given text.
func (c *SimpleCounter) Count(text string) (int, int, int) {
	return len(text), len(text) / 4, countLines(text)
}

// TiktokenCounter counts tokens with the tiktoken tokenizer for a specific
// model. Slower than SimpleCounter but exact.
type TiktokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTiktokenCounter creates a TiktokenCounter for the given model. The
// encoding is resolved once up front so an unsupported model fails early.
func NewTiktokenCounter(model string) (*TiktokenCounter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("unsupported model for tiktoken: %s", model)
	}
	return &TiktokenCounter{encoding: encoding}, nil
}

// Count returns bytes, tiktoken tokens, and lines for the given text.
func (c *TiktokenCounter) Count(text string) (int, int, int) {
	tokens := c.encoding.Encode(text, nil, nil)
	return len(text), len(tokens), countLines(text)
}

func countLines(text string) int {
	return bytes.Count([]byte(text), []byte{'\n'}) + 1
}
