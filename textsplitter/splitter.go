// Package textsplitter cuts cleaned text into bounded, overlapping
// chunks for embedding and storage.
package textsplitter

import (
	"fmt"

	"github.com/studyhall/tutor-rag/config"
)

// Splitter cuts text into chunks of a configured target size.
type Splitter interface {
	// SplitText returns the chunks in document order. Whitespace-only
	// chunks are dropped.
	SplitText(text string) []string
}

// New builds the splitter selected by the configuration.
func New(cfg config.SplitterConfig) (Splitter, error) {
	switch cfg.Provider {
	case "recursive":
		return NewRecursive(cfg.ChunkSize, cfg.ChunkOverlap), nil
	case "character":
		return NewCharacter(cfg.ChunkSize, cfg.ChunkOverlap), nil
	case "token":
		return NewToken(cfg.ChunkSize, cfg.ChunkOverlap, cfg.TokenEncoding)
	default:
		return nil, fmt.Errorf("unknown splitter provider: %s", cfg.Provider)
	}
}

func lastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
