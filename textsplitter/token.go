package textsplitter

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TokenSplitter cuts text into windows of model tokens, so chunk sizes
// track what the embedding model actually sees.
type TokenSplitter struct {
	chunkSize    int
	chunkOverlap int
	encoding     *tiktoken.Tiktoken
}

// NewToken returns a token-window splitter using the named tiktoken
// encoding.
func NewToken(chunkSize, chunkOverlap int, encodingName string) (*TokenSplitter, error) {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	if encodingName == "" {
		encodingName = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("get tiktoken encoding failed, err: %w", err)
	}
	return &TokenSplitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap, encoding: enc}, nil
}

// SplitText implements Splitter.
func (s *TokenSplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	tokens := s.encoding.Encode(text, nil, nil)
	step := s.chunkSize - s.chunkOverlap
	var out []string
	for start := 0; start < len(tokens); start += step {
		end := start + s.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunk := strings.TrimSpace(s.encoding.Decode(tokens[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(tokens) {
			break
		}
	}
	return out
}
