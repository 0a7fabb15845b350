package middleware

import (
	"sync"
	"time"

	"github.com/futig/rag-gateway/internal/telegram/handlers"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	warningInterval   = 30 * time.Second
	cleanupInterval   = 10 * time.Minute
	inactiveThreshold = time.Hour
)

type userLimit struct {
	limiter       *rate.Limiter
	lastSeen      time.Time
	lastWarningAt time.Time
}

// RateLimiterMiddleware keeps a token bucket per user and drops updates
// over the limit, warning the chat at most once per warningInterval.
type RateLimiterMiddleware struct {
	mu     sync.Mutex
	limits map[int64]*userLimit
	limit  rate.Limit
	burst  int
	now    func() time.Time
	sender Sender
	logger *zap.Logger
	done   chan struct{}
	once   sync.Once
}

func NewRateLimiterMiddleware(requestsPerMinute, burst int, sender Sender, logger *zap.Logger) *RateLimiterMiddleware {
	rl := &RateLimiterMiddleware{
		limits: make(map[int64]*userLimit),
		limit:  rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:  burst,
		now:    time.Now,
		sender: sender,
		logger: logger,
		done:   make(chan struct{}),
	}

	go rl.cleanupInactiveUsers()

	return rl
}

func (rl *RateLimiterMiddleware) Handle(update tgbotapi.Update, next Next) {
	userID, chatID, ok := origin(update)
	if !ok {
		next(update)
		return
	}

	allowed, warn := rl.allow(userID)
	if !allowed {
		rl.logger.Warn("rate limit exceeded",
			zap.Int64("user_id", userID),
			zap.Int64("chat_id", chatID),
		)
		if warn {
			rl.sendWarning(chatID)
		}
		return
	}

	next(update)
}

// Close stops the cleanup loop.
func (rl *RateLimiterMiddleware) Close() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *RateLimiterMiddleware) allow(userID int64) (allowed, warn bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	l, exists := rl.limits[userID]
	if !exists {
		l = &userLimit{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limits[userID] = l
	}
	l.lastSeen = now

	if l.limiter.AllowN(now, 1) {
		return true, false
	}

	if now.Sub(l.lastWarningAt) > warningInterval {
		l.lastWarningAt = now
		return false, true
	}
	return false, false
}

func (rl *RateLimiterMiddleware) sendWarning(chatID int64) {
	if _, err := rl.sender.Send(tgbotapi.NewMessage(chatID, handlers.MsgRateLimited)); err != nil {
		rl.logger.Error("failed to send rate limit warning",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
	}
}

func (rl *RateLimiterMiddleware) cleanupInactiveUsers() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.removeInactive()
		}
	}
}

func (rl *RateLimiterMiddleware) removeInactive() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for userID, l := range rl.limits {
		if now.Sub(l.lastSeen) > inactiveThreshold {
			delete(rl.limits, userID)
		}
	}
}
