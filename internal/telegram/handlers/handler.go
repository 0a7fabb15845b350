package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Message represents a normalized Telegram message
type Message struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Command   string
	Text      string
	Voice     *VoiceFile
}

// VoiceFile points at a voice note or audio file stored on Telegram servers.
type VoiceFile struct {
	FileID   string
	FileSize int64
	MimeType string
}

// Handler processes one normalized message.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// NewMessage normalizes an incoming update message. Voice notes win over
// audio attachments.
func NewMessage(m *tgbotapi.Message) *Message {
	msg := &Message{
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	if m.Chat != nil {
		msg.ChatID = m.Chat.ID
	}
	if m.From != nil {
		msg.UserID = m.From.ID
	}
	if m.IsCommand() {
		msg.Command = m.Command()
	}

	switch {
	case m.Voice != nil:
		msg.Voice = &VoiceFile{FileID: m.Voice.FileID, FileSize: int64(m.Voice.FileSize), MimeType: m.Voice.MimeType}
	case m.Audio != nil:
		msg.Voice = &VoiceFile{FileID: m.Audio.FileID, FileSize: int64(m.Audio.FileSize), MimeType: m.Audio.MimeType}
	}
	return msg
}
