package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/stretchr/testify/require"
)

func sampleTurns() []*entity.ConversationTurn {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []*entity.ConversationTurn{
		{ConversationID: "conv_1", UserID: "anonymous", Question: "¿Horario?", Answer: "De 9 a 18.", ResponseTimeMs: 120, CreatedAt: created},
		{ConversationID: "conv_1", UserID: "anonymous", Question: "¿Sábados?", Answer: "Cerrado.", ResponseTimeMs: 95, CreatedAt: created.Add(time.Minute)},
	}
}

func TestFactory_Create(t *testing.T) {
	f := NewFactory()

	md, err := f.Create(entity.FormatMarkdown)
	require.NoError(t, err)
	require.Equal(t, ".md", md.FileExtension())

	pdf, err := f.Create(entity.FormatPDF)
	require.NoError(t, err)
	require.Equal(t, "application/pdf", pdf.ContentType())

	_, err = f.Create(entity.ResultFormat("xls"))
	require.ErrorIs(t, err, entity.ErrUnsupportedFormat)
}

func TestMarkdownFormatter_KeepsTurnOrder(t *testing.T) {
	out, err := NewMarkdownFormatter().Format("conv_1", sampleTurns())
	require.NoError(t, err)

	text := string(out)
	require.True(t, strings.HasPrefix(text, "# "+transcriptTitle))
	require.Contains(t, text, "`conv_1`")
	require.Less(t, strings.Index(text, "¿Horario?"), strings.Index(text, "¿Sábados?"))
	require.Contains(t, text, "A: Cerrado.")
	require.Contains(t, text, "(anonymous, 120 ms)")
}

func TestPDFFormatter_ProducesPDF(t *testing.T) {
	turns := []*entity.ConversationTurn{
		{ConversationID: "conv_1", UserID: "u1", Question: "Hours?", Answer: "Nine to six.", CreatedAt: time.Now()},
	}
	out, err := (&PDFFormatter{}).Format("conv_1", turns)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestExtractText_PlainFormats(t *testing.T) {
	text, err := ExtractText("notes.MD", []byte("# Horarios\nLunes a viernes"))
	require.NoError(t, err)
	require.Equal(t, "# Horarios\nLunes a viernes", text)

	_, err = ExtractText("notes.txt", []byte{0xff, 0xfe, 0xfd})
	require.ErrorIs(t, err, entity.ErrInvalidInput)

	_, err = ExtractText("slides.pptx", []byte("x"))
	require.ErrorIs(t, err, entity.ErrInvalidExtension)
}
