package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// ChatUsecase serves conversational channels (the messages endpoint and the
// Telegram bot) on top of the query and speech usecases.
type ChatUsecase struct {
	answerer Answerer
	speech   Speech
}

func NewUsecase(answerer Answerer, speech Speech) *ChatUsecase {
	return &ChatUsecase{answerer: answerer, speech: speech}
}

// Reply transcribes audio when present, answers the question and optionally
// synthesizes the answer. A failed synthesis degrades to a text-only reply
// because the turn is already persisted.
func (uc *ChatUsecase) Reply(ctx context.Context, msg *entity.ChatMessage) (*entity.ChatReply, error) {
	question := strings.TrimSpace(msg.Text)
	var transcript string
	if len(msg.Audio) > 0 {
		out, err := uc.speech.TranscribeAudio(ctx, msg.Audio)
		if err != nil {
			return nil, err
		}
		transcript = out.Text
		question = strings.TrimSpace(out.Text)
	}
	if question == "" {
		return nil, fmt.Errorf("%w: message is required", entity.ErrInvalidInput)
	}

	answer, err := uc.answerer.Answer(ctx, &entity.AskRequest{
		Query:          question,
		ConversationID: msg.ConversationID,
		UserID:         msg.UserID,
	})
	if err != nil {
		return nil, err
	}

	reply := &entity.ChatReply{
		Text:           answer.Text,
		Transcript:     transcript,
		ConversationID: answer.ConversationID,
	}
	if !msg.WantAudio {
		return reply, nil
	}

	audio, err := uc.speech.Synthesize(ctx, answer.Text)
	if err != nil {
		ctxzap.Warn(ctx, "reply synthesis failed, answering with text only",
			zap.String("conversation_id", answer.ConversationID),
			zap.Error(err),
		)
		return reply, nil
	}
	reply.Audio = audio.Audio
	reply.AudioFormat = audio.Format
	return reply, nil
}
