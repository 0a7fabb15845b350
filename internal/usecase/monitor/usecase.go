package monitor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	probeTimeout = 2 * time.Second
	statsWindow  = 24 * time.Hour

	statusOK       = "ok"
	statusDegraded = "degraded"
)

// Probes groups the health dependencies. Nil members are reported as
// not configured (blob, rag) or disabled (secrets).
type Probes struct {
	Database         Pinger
	Blob             Pinger
	RAG              Pinger
	Secrets          Pinger
	TelemetryEnabled bool
}

type MonitorUsecase struct {
	conversationRepo repository.ConversationRepository
	documentRepo     repository.DocumentRepository
	probes           Probes
	now              func() time.Time
}

func NewUsecase(
	conversationRepo repository.ConversationRepository,
	documentRepo repository.DocumentRepository,
	probes Probes,
) *MonitorUsecase {
	return &MonitorUsecase{
		conversationRepo: conversationRepo,
		documentRepo:     documentRepo,
		probes:           probes,
		now:              time.Now,
	}
}

func (uc *MonitorUsecase) Stats(ctx context.Context) (*entity.Stats, error) {
	convStats, err := uc.conversationRepo.ConversationStats(ctx, uc.now().Add(-statsWindow))
	if err != nil {
		return nil, fmt.Errorf("conversation stats: %w", err)
	}
	docs, err := uc.documentRepo.CountDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	return &entity.Stats{
		TotalConversations:   convStats.TotalConversations,
		TotalDocuments:       docs,
		AvgResponseTime:      int64(math.Round(convStats.AvgResponseTimeMs)),
		ConversationsLast24h: convStats.ConversationsLast24h,
	}, nil
}

// Health never fails: each dependency reports its own status and only the
// database decides the overall status.
func (uc *MonitorUsecase) Health(ctx context.Context) *entity.HealthResponse {
	services := entity.HealthServices{
		Database:     uc.probe(ctx, "database", uc.probes.Database, entity.ServiceNotConfigured),
		BlobStorage:  uc.probe(ctx, "blob_storage", uc.probes.Blob, entity.ServiceNotConfigured),
		RAG:          uc.probe(ctx, "rag", uc.probes.RAG, entity.ServiceNotConfigured),
		SecretsVault: uc.probe(ctx, "secrets_vault", uc.probes.Secrets, entity.ServiceDisabled),
		Telemetry:    entity.ServiceDisabled,
	}
	if uc.probes.TelemetryEnabled {
		services.Telemetry = entity.ServiceEnabled
	}

	status := statusOK
	if services.Database != entity.ServiceOK {
		status = statusDegraded
	}
	return &entity.HealthResponse{Status: status, Services: services}
}

func (uc *MonitorUsecase) probe(ctx context.Context, name string, p Pinger, absent entity.ServiceStatus) entity.ServiceStatus {
	if p == nil {
		return absent
	}
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		ctxzap.Warn(ctx, "health probe failed", zap.String("service", name), zap.Error(err))
		return entity.ServiceError
	}
	return entity.ServiceOK
}
