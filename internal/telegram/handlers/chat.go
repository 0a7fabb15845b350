package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	pkgRetry "github.com/futig/rag-gateway/internal/pkg/retry"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const conversationIDPrefix = "tg_"

// ConversationID keeps every Telegram chat in a single conversation.
func ConversationID(chatID int64) string {
	return conversationIDPrefix + strconv.FormatInt(chatID, 10)
}

// ChatHandler answers text and voice messages through the chat usecase.
type ChatHandler struct {
	api    BotAPI
	chat   ChatUsecase
	voice  *voiceLoader
	cfg    config.TelegramConfig
	logger *zap.Logger
}

func NewChatHandler(api BotAPI, chat ChatUsecase, cfg config.TelegramConfig, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		api:  api,
		chat: chat,
		voice: &voiceLoader{
			api:        api,
			client:     secureHTTPClient,
			maxSize:    cfg.MaxVoiceSize,
			ffmpegPath: cfg.FFmpegPath,
		},
		cfg:    cfg,
		logger: logger,
	}
}

// WithHTTPClient replaces the client used to download voice files.
func (h *ChatHandler) WithHTTPClient(client *http.Client) *ChatHandler {
	h.voice.client = client
	return h
}

// Handle implements Handler
func (h *ChatHandler) Handle(ctx context.Context, msg *Message) error {
	ctx = logger.AddFields(ctx,
		zap.Int64("chat_id", msg.ChatID),
		zap.Int64("user_id", msg.UserID),
	)

	switch msg.Command {
	case "start", "help":
		return h.sendText(ctx, msg.ChatID, 0, msgWelcome)
	}

	chatMsg := &entity.ChatMessage{
		ConversationID: ConversationID(msg.ChatID),
		UserID:         strconv.FormatInt(msg.UserID, 10),
	}

	switch {
	case msg.Voice != nil:
		audio, err := h.voice.load(ctx, msg.Voice)
		if err != nil {
			h.replyError(ctx, msg, err)
			return fmt.Errorf("load voice: %w", err)
		}
		chatMsg.Audio = audio
		chatMsg.WantAudio = h.cfg.VoiceReplies
	case strings.TrimSpace(msg.Text) != "":
		chatMsg.Text = msg.Text
	default:
		return h.sendText(ctx, msg.ChatID, msg.MessageID, msgUnsupported)
	}

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)
	reply, err := h.chat.Reply(ctx, chatMsg)
	typing.Stop()
	if err != nil {
		h.replyError(ctx, msg, err)
		return fmt.Errorf("chat reply: %w", err)
	}

	if err := h.sendText(ctx, msg.ChatID, msg.MessageID, reply.Text); err != nil {
		return err
	}

	if len(reply.Audio) > 0 {
		audio := tgbotapi.NewAudio(msg.ChatID, tgbotapi.FileBytes{
			Name:  "respuesta." + audioExtension(reply.AudioFormat),
			Bytes: reply.Audio,
		})
		if err := h.send(ctx, audio); err != nil {
			return fmt.Errorf("send audio reply: %w", err)
		}
	}

	ctxzap.Info(ctx, "telegram message answered",
		zap.String("conversation_id", reply.ConversationID),
		zap.Bool("voice", msg.Voice != nil),
		zap.Bool("audio_reply", len(reply.Audio) > 0),
	)
	return nil
}

func (h *ChatHandler) replyError(ctx context.Context, msg *Message, err error) {
	ctxzap.Warn(ctx, "telegram message failed", zap.Error(err))
	_ = h.sendText(ctx, msg.ChatID, msg.MessageID, userMessage(err))
}

func (h *ChatHandler) sendText(ctx context.Context, chatID int64, replyTo int, text string) error {
	out := tgbotapi.NewMessage(chatID, text)
	out.ReplyToMessageID = replyTo
	if err := h.send(ctx, out); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// send retries transient Bot API failures with the configured backoff.
func (h *ChatHandler) send(ctx context.Context, c tgbotapi.Chattable) error {
	err := pkgRetry.Do(ctx, &h.cfg.Retry, "telegram send", func() error {
		_, err := h.api.Send(c)
		return err
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send telegram message", zap.Error(err))
	}
	return err
}

func audioExtension(format string) string {
	switch format {
	case "", "mpeg", "mp3":
		return "mp3"
	default:
		return format
	}
}
