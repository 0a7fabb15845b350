package formatter

import (
	"bytes"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (mf *DOCXFormatter) Format(conversationID string, turns []*entity.ConversationTurn) ([]byte, error) {
	doc := document.New()
	defer doc.Close()

	titlePar := doc.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(transcriptTitle)

	doc.AddParagraph().AddRun().AddText(conversationID)

	for _, turn := range turns {
		header, question, answer := turnLines(turn)

		headerPar := doc.AddParagraph()
		headerPar.SetStyle("Heading2")
		headerPar.AddRun().AddText(header)

		questionRun := doc.AddParagraph().AddRun()
		questionRun.Properties().SetBold(true)
		questionRun.AddText(question)

		doc.AddParagraph().AddRun().AddText(answer)
	}

	var buf bytes.Buffer
	if err := doc.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (mf *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (mf *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
