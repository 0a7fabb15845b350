package formatter

import (
	"bytes"
	"os"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"
	pdfFontName      = "DejaVuSans"
)

// fontCandidates lists where a UTF-8 TTF font may live, in lookup order.
var fontCandidates = []string{
	"ttf/DejaVuSans.ttf",
	"internal/pkg/formatter/ttf/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter() *PDFFormatter {
	return &PDFFormatter{fontPath: resolveFontPath()}
}

func resolveFontPath() string {
	for _, candidate := range fontCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func (mf *PDFFormatter) Format(conversationID string, turns []*entity.ConversationTurn) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Latin-1 core fonts cannot render accents; prefer the bundled UTF-8 font.
	fontName := "Arial"
	if mf.fontPath != "" {
		pdf.AddUTF8Font(pdfFontName, "", mf.fontPath)
		pdf.AddUTF8Font(pdfFontName, "B", mf.fontPath)
		fontName = pdfFontName
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.Cell(0, 10, transcriptTitle)
	pdf.Ln(10)

	pdf.SetFont(fontName, "", 10)
	pdf.Cell(0, 8, conversationID)
	pdf.Ln(12)

	for _, turn := range turns {
		header, question, answer := turnLines(turn)

		pdf.SetFont(fontName, "B", 11)
		pdf.MultiCell(0, 6, header, "", "", false)
		pdf.MultiCell(0, 6, question, "", "", false)

		pdf.SetFont(fontName, "", 11)
		_, lineHeight := pdf.GetFontSize()
		pdf.MultiCell(0, lineHeight*1.5, answer, "", "", false)
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (mf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
