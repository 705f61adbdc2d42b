package textsplitter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhall/tutor-rag/config"
)

func TestRecursiveShortTextSingleChunk(t *testing.T) {
	s := NewRecursive(500, 50)
	chunks := s.SplitText("Белки являются строительным материалом для мышц.")
	require.Len(t, chunks, 1)
}

func TestRecursiveRespectsChunkSize(t *testing.T) {
	s := NewRecursive(100, 10)
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Это предложение про питание и здоровье. ")
	}
	chunks := s.SplitText(b.String())
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 110,
			"chunk exceeds size budget: %q", c)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestRecursivePrefersParagraphBreaks(t *testing.T) {
	s := NewRecursive(60, 0)
	text := "Первый абзац про белки и аминокислоты в питании.\n\nВторой абзац про жиры и липиды в рационе."
	chunks := s.SplitText(text)
	require.Len(t, chunks, 2)
	assert.Contains(t, chunks[0], "Первый абзац")
	assert.Contains(t, chunks[1], "Второй абзац")
}

func TestRecursiveEmptyInput(t *testing.T) {
	s := NewRecursive(500, 50)
	assert.Nil(t, s.SplitText(""))
	assert.Nil(t, s.SplitText("   \n  "))
}

func TestRecursiveHandlesUnbreakableText(t *testing.T) {
	s := NewRecursive(50, 0)
	text := strings.Repeat("а", 120)
	chunks := s.SplitText(text)
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 50)
	}
}

func TestCharacterSplitterOverlap(t *testing.T) {
	s := NewCharacter(20, 5)
	text := strings.Repeat("abcde", 10)
	chunks := s.SplitText(text)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 20)
	}
	// Consecutive windows share the configured overlap.
	assert.Equal(t, chunks[0][15:], chunks[1][:5])
}

func TestFactorySelectsProvider(t *testing.T) {
	cases := []struct {
		provider string
		wantErr  bool
	}{
		{"recursive", false},
		{"character", false},
		{"semantic", true},
	}
	for _, tc := range cases {
		s, err := New(config.SplitterConfig{Provider: tc.provider, ChunkSize: 100, ChunkOverlap: 10})
		if tc.wantErr {
			assert.Error(t, err, tc.provider)
			continue
		}
		require.NoError(t, err, tc.provider)
		assert.NotNil(t, s)
	}
}
