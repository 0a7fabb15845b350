package telegram

import (
	"fmt"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/telegram/bot"
	"github.com/futig/rag-gateway/internal/telegram/handlers"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// NewBot authorizes against the Bot API and wires the chat handler.
func NewBot(cfg config.TelegramConfig, chat handlers.ChatUsecase, logger *zap.Logger) (*bot.Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}
	api.Debug = false

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	handler := handlers.NewChatHandler(api, chat, cfg, logger)
	return bot.New(api, cfg, handler, logger), nil
}
