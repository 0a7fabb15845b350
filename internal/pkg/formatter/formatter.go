package formatter

import (
	"fmt"
	"strings"

	"github.com/futig/rag-gateway/internal/entity"
)

const transcriptTitle = "Conversation transcript"

// Formatter renders a conversation transcript into a downloadable file.
type Formatter interface {
	Format(conversationID string, turns []*entity.ConversationTurn) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format entity.ResultFormat) (Formatter, error) {
	switch format {
	case entity.FormatMarkdown:
		return NewMarkdownFormatter(), nil
	case entity.FormatDOCX:
		return NewDOCXFormatter(), nil
	case entity.FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", entity.ErrUnsupportedFormat, format)
	}
}

// turnLines renders one turn as the lines shared by every format.
func turnLines(turn *entity.ConversationTurn) (header, question, answer string) {
	header = fmt.Sprintf("%s (%s, %d ms)",
		turn.CreatedAt.UTC().Format("2006-01-02 15:04:05 MST"),
		turn.UserID,
		turn.ResponseTimeMs,
	)
	question = "Q: " + strings.TrimSpace(turn.Question)
	answer = "A: " + strings.TrimSpace(turn.Answer)
	return header, question, answer
}
