package formatter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/unidoc/unioffice/document"
)

// ExtractText returns the plain text of an uploaded document. The format is
// chosen by file extension.
func ExtractText(filename string, content []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		if !utf8.Valid(content) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8", entity.ErrInvalidInput, filename)
		}
		return string(content), nil
	case docxFileExtension:
		return extractDOCX(content)
	default:
		return "", fmt.Errorf("%w: %s", entity.ErrInvalidExtension, filepath.Ext(filename))
	}
}

func extractDOCX(content []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	var paragraphs []string
	for _, p := range doc.Paragraphs() {
		var sb strings.Builder
		for _, r := range p.Runs() {
			sb.WriteString(r.Text())
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}
