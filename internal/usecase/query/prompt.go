package query

import (
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/futig/rag-gateway/internal/entity"
)

const (
	systemPrompt = "Eres un asistente de atención al cliente. Responde de forma clara, breve y amable, " +
		"basándote únicamente en la siguiente información de la empresa. " +
		"Si la información no alcanza para responder, dilo con honestidad."

	userPrompt = "Información de la empresa:\n{context}\n\nPregunta del cliente:\n{question}"
)

// PromptAssembler owns the single-turn template the generator chain renders
// and builds the variables it is rendered with.
type PromptAssembler struct {
	template prompt.ChatTemplate
}

func NewPromptAssembler() *PromptAssembler {
	return &PromptAssembler{
		template: prompt.FromMessages(schema.FString,
			schema.SystemMessage(systemPrompt),
			schema.UserMessage(userPrompt),
		),
	}
}

// BuildContext joins passage texts in retrieval order, one per line.
func BuildContext(passages []entity.Passage) string {
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n")
}

// Template is compiled into the generator chain ahead of the chat model.
func (a *PromptAssembler) Template() prompt.ChatTemplate {
	return a.template
}

func (a *PromptAssembler) Variables(passages []entity.Passage, question string) map[string]any {
	return map[string]any{
		"context":  BuildContext(passages),
		"question": question,
	}
}
