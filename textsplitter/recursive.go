package textsplitter

import (
	"strings"
	"unicode/utf8"
)

// defaultSeparators is the structural preference order: paragraph break,
// line break, sentence-ending punctuation, comma, space, single rune.
var defaultSeparators = []string{"\n\n", "\n", ". ", "! ", "? ", ", ", " ", ""}

// RecursiveSplitter splits on the strongest separator that keeps pieces
// within the target size, falling through to weaker separators for
// oversized pieces.
type RecursiveSplitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
}

// NewRecursive returns a recursive splitter with the default separator
// ladder.
func NewRecursive(chunkSize, chunkOverlap int) *RecursiveSplitter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}
	return &RecursiveSplitter{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		separators:   defaultSeparators,
	}
}

// SplitText implements Splitter.
func (s *RecursiveSplitter) SplitText(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	units := s.atomize(text, s.separators)
	return s.merge(units)
}

// atomize recursively cuts text into units no longer than the chunk
// size. Units keep their trailing separators so concatenation restores
// the original text.
func (s *RecursiveSplitter) atomize(text string, seps []string) []string {
	if utf8.RuneCountInString(text) <= s.chunkSize {
		return []string{text}
	}
	if len(seps) == 0 || seps[0] == "" {
		return splitRunes(text, s.chunkSize)
	}
	sep := seps[0]
	rest := seps[1:]
	if !strings.Contains(text, sep) {
		return s.atomize(text, rest)
	}
	var units []string
	for _, piece := range strings.SplitAfter(text, sep) {
		if piece == "" {
			continue
		}
		if utf8.RuneCountInString(piece) <= s.chunkSize {
			units = append(units, piece)
			continue
		}
		units = append(units, s.atomize(piece, rest)...)
	}
	return units
}

// merge greedily packs units into chunks up to the target size, seeding
// each new chunk with the tail of the previous one for overlap.
func (s *RecursiveSplitter) merge(units []string) []string {
	var chunks []string
	var current strings.Builder
	curLen := 0
	// seedLen tracks the overlap tail carried into the current chunk, so
	// a chunk holding nothing but the echo of its predecessor is never
	// emitted.
	seedLen := 0

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		curLen = 0
		seedLen = 0
		if s.chunkOverlap > 0 && chunk != "" {
			tail := lastRunes(chunk, s.chunkOverlap)
			current.WriteString(tail)
			seedLen = utf8.RuneCountInString(tail)
			curLen = seedLen
		}
	}

	for _, u := range units {
		uLen := utf8.RuneCountInString(u)
		if curLen > seedLen && curLen+uLen > s.chunkSize {
			flush()
		}
		current.WriteString(u)
		curLen += uLen
	}
	if curLen > seedLen {
		if chunk := strings.TrimSpace(current.String()); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

func splitRunes(text string, size int) []string {
	r := []rune(text)
	var out []string
	for start := 0; start < len(r); start += size {
		end := start + size
		if end > len(r) {
			end = len(r)
		}
		out = append(out, string(r[start:end]))
	}
	return out
}
