package formatter

import (
	"bytes"
	"fmt"

	"github.com/futig/rag-gateway/internal/entity"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(conversationID string, turns []*entity.ConversationTurn) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n`%s`\n", transcriptTitle, conversationID)

	for _, turn := range turns {
		header, question, answer := turnLines(turn)
		fmt.Fprintf(&buf, "\n## %s\n\n**%s**\n\n%s\n", header, question, answer)
	}

	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
