package system

import (
	"context"

	"github.com/futig/rag-gateway/internal/entity"
)

type MonitorUsecase interface {
	Stats(ctx context.Context) (*entity.Stats, error)
	Health(ctx context.Context) *entity.HealthResponse
}
