package middleware

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers notices to a chat.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Next is the rest of the update pipeline.
type Next func(tgbotapi.Update)

// origin returns the user and chat of a message update; ok is false for
// every other update kind.
func origin(update tgbotapi.Update) (userID, chatID int64, ok bool) {
	m := update.Message
	if m == nil || m.Chat == nil {
		return 0, 0, false
	}
	if m.From != nil {
		userID = m.From.ID
	}
	return userID, m.Chat.ID, true
}

func messageType(m *tgbotapi.Message) string {
	switch {
	case m == nil:
		return "none"
	case m.Voice != nil:
		return "voice"
	case m.Audio != nil:
		return "audio"
	case m.IsCommand():
		return "command"
	case m.Text != "":
		return "text"
	default:
		return "other"
	}
}
