package blob

import (
	"context"
	"fmt"

	"github.com/futig/rag-gateway/internal/config"
	"go.uber.org/zap"
)

// Store persists raw uploaded files. Get and Delete return
// entity.ErrBlobNotFound for unknown keys.
type Store interface {
	EnsureContainer(ctx context.Context) error
	Put(ctx context.Context, key, contentType string, data []byte) (url string, err error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// New returns nil without error when no backend is configured; callers
// treat a nil store as storage being unavailable.
func New(ctx context.Context, cfg config.BlobConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "":
		logger.Warn("blob storage is not configured, uploads are disabled")
		return nil, nil
	case config.BlobBackendS3:
		return NewS3Store(ctx, cfg)
	case config.BlobBackendFilesystem:
		return NewFilesystemStore(cfg.Root, cfg.PublicBaseURL)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
