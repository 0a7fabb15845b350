package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/rag-gateway/internal/telegram/bot"
	"github.com/futig/rag-gateway/internal/usecase/indexer"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

type closer struct {
	name string
	fn   func(ctx context.Context) error
}

// closers releases opened backends in reverse order of opening.
type closers []closer

func (c *closers) add(name string, fn func(ctx context.Context) error) {
	*c = append(*c, closer{name: name, fn: fn})
}

func (c closers) closeAll(ctx context.Context, logger *zap.Logger) {
	for i := len(c) - 1; i >= 0; i-- {
		logger.Info("closing", zap.String("component", c[i].name))
		if err := c[i].fn(ctx); err != nil {
			logger.Error("close failed", zap.String("component", c[i].name), zap.Error(err))
		}
	}
}

// App is the HTTP gateway, the optional Telegram bot and everything they
// opened.
type App struct {
	server  *http.Server
	bot     *bot.Bot
	closers closers
	logger  *zap.Logger
}

// Run serves until SIGINT/SIGTERM or a server error, then shuts down.
func (a *App) Run() error {
	errChan := make(chan error, 2)
	go func() {
		a.logger.Info("starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	if a.bot != nil {
		if err := a.bot.Start(context.Background()); err != nil {
			a.logger.Error("telegram bot failed to start", zap.Error(err))
			errChan <- err
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case runErr = <-errChan:
		a.logger.Error("server error", zap.Error(runErr))
	case sig := <-sigChan:
		a.logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	}

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if a.bot != nil {
		if err := a.bot.Stop(); err != nil {
			a.logger.Error("telegram bot stop error", zap.Error(err))
		}
	}

	a.logger.Info("shutting down server gracefully")
	err := a.server.Shutdown(ctx)
	if err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}

	a.closers.closeAll(ctx, a.logger)
	a.logger.Info("application stopped")
	_ = a.logger.Sync()
	return err
}

// IndexerApp is the background indexing worker.
type IndexerApp struct {
	indexer *indexer.IndexerUsecase
	closers closers
	logger  *zap.Logger
}

// Run polls for pending documents until SIGINT/SIGTERM.
func (a *IndexerApp) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := a.indexer.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.indexer.Close(); err != nil {
		a.logger.Warn("indexer jobs did not finish in time", zap.Error(err))
	}
	a.closers.closeAll(shutdownCtx, a.logger)
	a.logger.Info("indexer stopped")
	_ = a.logger.Sync()
	return runErr
}
