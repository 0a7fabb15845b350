package chunker

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestSplit_EmptyText(t *testing.T) {
	require.Nil(t, NewSplitter(500, 50).Split("   \n\n  "))
}

func TestSplit_ShortTextIsSingleChunk(t *testing.T) {
	chunks := NewSplitter(500, 50).Split("  Horario de atención: lunes a viernes.  ")
	require.Equal(t, []string{"Horario de atención: lunes a viernes."}, chunks)
}

func TestSplit_WordsOverlap(t *testing.T) {
	var words []string
	for i := 1; i <= 8; i++ {
		words = append(words, fmt.Sprintf("w%03d", i))
	}
	text := strings.Join(words, " ")

	chunks := NewSplitter(20, 10).Split(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	require.Equal(t, "w001 w002 w003 w004", chunks[0])
	require.True(t, strings.HasPrefix(chunks[1], "w003 w004"), chunks[1])
	for _, c := range chunks {
		require.LessOrEqual(t, utf8.RuneCountInString(c), 20)
	}
	require.True(t, strings.HasSuffix(chunks[len(chunks)-1], "w008"))
}

func TestSplit_PrefersParagraphs(t *testing.T) {
	first := strings.Repeat("a", 30)
	second := strings.Repeat("b", 30)

	chunks := NewSplitter(40, 0).Split(first + "\n\n" + second)

	require.Equal(t, []string{first, second}, chunks)
}

func TestSplit_HardCutsUnbrokenText(t *testing.T) {
	text := strings.Repeat("x", 45)

	chunks := NewSplitter(20, 5).Split(text)

	require.Len(t, chunks, 3)
	require.Equal(t, text, strings.Join(chunks, ""))
}

func TestNewSplitter_InvalidOverlapIsDropped(t *testing.T) {
	s := NewSplitter(10, 10)
	require.Equal(t, 0, s.overlap)
}
