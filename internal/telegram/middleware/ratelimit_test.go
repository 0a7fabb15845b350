package middleware

import (
	"sync"
	"testing"
	"time"

	"github.com/futig/rag-gateway/internal/telegram/handlers"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []string
}

func (r *recordingSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		r.sent = append(r.sent, m.Text)
	}
	return tgbotapi.Message{}, nil
}

func messageUpdate(userID, chatID int64) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "hola",
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
	}}
}

func TestRateLimiter(t *testing.T) {
	sender := &recordingSender{}
	rl := NewRateLimiterMiddleware(1, 2, sender, zap.NewNop())
	defer rl.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	handled := 0
	next := func(tgbotapi.Update) { handled++ }

	for i := 0; i < 4; i++ {
		rl.Handle(messageUpdate(7, 42), next)
	}
	require.Equal(t, 2, handled)
	require.Equal(t, []string{handlers.MsgRateLimited}, sender.sent)

	// Other users have their own bucket.
	rl.Handle(messageUpdate(8, 43), next)
	require.Equal(t, 3, handled)

	now = now.Add(time.Minute)
	rl.Handle(messageUpdate(7, 42), next)
	require.Equal(t, 4, handled)
}

func TestRateLimiter_RemovesInactiveUsers(t *testing.T) {
	rl := NewRateLimiterMiddleware(10, 1, &recordingSender{}, zap.NewNop())
	defer rl.Close()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Handle(messageUpdate(7, 42), func(tgbotapi.Update) {})
	require.Len(t, rl.limits, 1)

	now = now.Add(2 * time.Hour)
	rl.removeInactive()
	require.Empty(t, rl.limits)
}

func TestRateLimiter_PassesNonMessageUpdates(t *testing.T) {
	rl := NewRateLimiterMiddleware(1, 1, &recordingSender{}, zap.NewNop())
	defer rl.Close()

	handled := 0
	for i := 0; i < 3; i++ {
		rl.Handle(tgbotapi.Update{UpdateID: i}, func(tgbotapi.Update) { handled++ })
	}
	require.Equal(t, 3, handled)
}

func TestRecovery(t *testing.T) {
	sender := &recordingSender{}
	m := NewRecoveryMiddleware(zap.NewNop(), sender)

	require.NotPanics(t, func() {
		m.Handle(messageUpdate(7, 42), func(tgbotapi.Update) { panic("boom") })
	})
	require.Equal(t, []string{handlers.MsgPanicRecovered}, sender.sent)
}
