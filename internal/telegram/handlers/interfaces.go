package handlers

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type ChatUsecase interface {
	Reply(ctx context.Context, msg *entity.ChatMessage) (*entity.ChatReply, error)
}

// BotAPI is the subset of *tgbotapi.BotAPI the handlers use.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}
