package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/telegram/handlers"
	"github.com/futig/rag-gateway/internal/telegram/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot long-polls Telegram and feeds message updates through the middleware
// chain into the handler.
type Bot struct {
	api         *tgbotapi.BotAPI
	cfg         config.TelegramConfig
	handler     handlers.Handler
	logger      *zap.Logger
	loggingMW   *middleware.LoggingMiddleware
	recoveryMW  *middleware.RecoveryMiddleware
	rateLimitMW *middleware.RateLimiterMiddleware
	updatesChan tgbotapi.UpdatesChannel
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

func New(api *tgbotapi.BotAPI, cfg config.TelegramConfig, handler handlers.Handler, logger *zap.Logger) *Bot {
	return &Bot{
		api:         api,
		cfg:         cfg,
		handler:     handler,
		logger:      logger,
		loggingMW:   middleware.NewLoggingMiddleware(logger),
		recoveryMW:  middleware.NewRecoveryMiddleware(logger, api),
		rateLimitMW: middleware.NewRateLimiterMiddleware(cfg.RateLimitPerMinute, cfg.RateLimitBurst, api, logger),
		stopChan:    make(chan struct{}),
	}
}

// Start begins long polling; updates are processed until Stop or ctx ends.
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	b.updatesChan = b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx)

	b.logger.Info("telegram bot started successfully",
		zap.String("username", b.api.Self.UserName),
	)
	return nil
}

// Stop stops polling and waits up to the shutdown timeout for in-flight
// updates.
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	close(b.stopChan)
	b.api.StopReceivingUpdates()
	b.rateLimitMW.Close()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("all telegram handlers completed")
	case <-time.After(b.cfg.ShutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", b.cfg.ShutdownTimeout),
		)
		return fmt.Errorf("telegram shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-b.updatesChan:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(u)
			}(update)
		}
	}
}

// handleUpdateWithMiddleware runs rate limiting, then logging, then panic
// recovery around the handler.
func (b *Bot) handleUpdateWithMiddleware(update tgbotapi.Update) {
	b.rateLimitMW.Handle(update, func(u tgbotapi.Update) {
		b.loggingMW.Handle(u, func(u2 tgbotapi.Update) {
			b.recoveryMW.Handle(u2, b.handleUpdate)
		})
	})
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	// Detached from the polling context so Stop can drain in-flight work.
	ctx := ctxzap.ToContext(context.Background(), b.logger)

	if err := b.handler.Handle(ctx, handlers.NewMessage(update.Message)); err != nil {
		b.logger.Warn("telegram handler failed",
			zap.Int("update_id", update.UpdateID),
			zap.Error(err),
		)
	}
}
