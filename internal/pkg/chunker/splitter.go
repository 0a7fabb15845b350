package chunker

import (
	"strings"
	"unicode/utf8"
)

var defaultSeparators = []string{"\n\n", "\n", ". ", " "}

// Splitter cuts text into chunks of at most size runes. Consecutive chunks
// share up to overlap runes. Paragraph breaks are preferred over line
// breaks, line breaks over sentence ends, and sentence ends over spaces.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

func NewSplitter(size, overlap int) *Splitter {
	if size <= 0 {
		size = 500
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	return &Splitter{
		size:       size,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split returns the chunks of text in document order.
func (s *Splitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return s.merge(s.pieces(text, s.separators))
}

// pieces breaks text into segments no longer than size, keeping separators
// attached to the preceding segment so the chunks can be rebuilt verbatim.
func (s *Splitter) pieces(text string, separators []string) []string {
	if runeLen(text) <= s.size {
		return []string{text}
	}

	for i, sep := range separators {
		if !strings.Contains(text, sep) {
			continue
		}

		var out []string
		for _, part := range strings.SplitAfter(text, sep) {
			if part == "" {
				continue
			}
			if runeLen(part) > s.size {
				out = append(out, s.pieces(part, separators[i+1:])...)
				continue
			}
			out = append(out, part)
		}
		return out
	}

	return hardCut(text, s.size)
}

func (s *Splitter) merge(pieces []string) []string {
	var (
		chunks  []string
		current []string
		length  int
	)

	flush := func() {
		if chunk := strings.TrimSpace(strings.Join(current, "")); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, piece := range pieces {
		n := runeLen(piece)
		if length+n > s.size && len(current) > 0 {
			flush()
			for len(current) > 0 && (length > s.overlap || length+n > s.size) {
				length -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		length += n
	}
	flush()

	return chunks
}

func hardCut(text string, size int) []string {
	runes := []rune(text)
	out := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
