package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_OverlapBetweenAdjacentChunks(t *testing.T) {
	text := strings.Repeat("abcdefghij", 50) // 500 chars
	chunks := Chunk(text, 120, 20)

	require.Greater(t, len(chunks), 1)
	for i := 0; i < len(chunks)-1; i++ {
		assert.Len(t, []rune(chunks[i]), 120, "chunk %d should be exactly size runes", i)
		// The tail of each chunk reappears at the head of the next one.
		tail := string([]rune(chunks[i])[120-20:])
		head := string([]rune(chunks[i+1])[:20])
		assert.Equal(t, tail, head, "chunks %d and %d should overlap", i, i+1)
	}
}

func TestChunk_ReconstructsOriginalText(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("x", 300)
	size, overlap := 100, 30
	chunks := Chunk(text, size, overlap)
	require.NotEmpty(t, chunks)

	// Dropping the overlapping prefix of every chunk after the first
	// must reproduce the original text.
	var b strings.Builder
	b.WriteString(chunks[0])
	for _, c := range chunks[1:] {
		b.WriteString(string([]rune(c)[overlap:]))
	}
	assert.Equal(t, text, b.String())
}

func TestChunk_ShortTextSingleChunk(t *testing.T) {
	chunks := Chunk("short", 1200, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short", chunks[0])
}

func TestChunk_MultiByteRunesCountedAsSingleChars(t *testing.T) {
	text := strings.Repeat("心力衰竭指南", 40) // 240 runes
	chunks := Chunk(text, 100, 10)
	require.Greater(t, len(chunks), 1)
	assert.Len(t, []rune(chunks[0]), 100)
}

func TestChunk_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		size, overlap int
	}{
		{name: "empty text", text: "", size: 100, overlap: 10},
		{name: "zero size", text: "abc", size: 0, overlap: 0},
		{name: "negative overlap", text: "abc", size: 10, overlap: -1},
		{name: "overlap equals size", text: "abc", size: 10, overlap: 10},
		{name: "overlap exceeds size", text: "abc", size: 10, overlap: 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, Chunk(tt.text, tt.size, tt.overlap))
		})
	}
}

func TestChunk_LastChunkMayBeShorter(t *testing.T) {
	text := strings.Repeat("a", 250)
	chunks := Chunk(text, 100, 0)
	require.Len(t, chunks, 3)
	assert.Len(t, chunks[2], 50)
}
