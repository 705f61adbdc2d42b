package textsplitter

import (
	"strings"
)

// CharacterSplitter cuts text into fixed-size rune windows with overlap,
// ignoring structure. Useful for corpora without reliable punctuation.
type CharacterSplitter struct {
	chunkSize    int
	chunkOverlap int
}

// NewCharacter returns a fixed-window splitter.
func NewCharacter(chunkSize, chunkOverlap int) *CharacterSplitter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &CharacterSplitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// SplitText implements Splitter.
func (s *CharacterSplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	r := []rune(text)
	step := s.chunkSize - s.chunkOverlap
	var out []string
	for start := 0; start < len(r); start += step {
		end := start + s.chunkSize
		if end > len(r) {
			end = len(r)
		}
		chunk := strings.TrimSpace(string(r[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(r) {
			break
		}
	}
	return out
}
