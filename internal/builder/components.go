package builder

import (
	"context"
	"fmt"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/integration/embedding"
	"github.com/futig/rag-gateway/internal/integration/generator"
	"github.com/futig/rag-gateway/internal/integration/rag"
	"github.com/futig/rag-gateway/internal/integration/secrets"
	"github.com/futig/rag-gateway/internal/integration/speech"
	"github.com/futig/rag-gateway/internal/integration/telemetry"
	"github.com/futig/rag-gateway/internal/integration/vector"
	"github.com/futig/rag-gateway/internal/repository"
	"github.com/futig/rag-gateway/internal/usecase/monitor"
	"github.com/futig/rag-gateway/internal/usecase/query"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type vectorStore interface {
	EnsureCollection(ctx context.Context) error
	Insert(ctx context.Context, chunks []entity.Chunk) error
	Search(ctx context.Context, embedding []float32, topK int) ([]entity.Passage, error)
	DeleteDocument(ctx context.Context, documentID string) error
	Ping(ctx context.Context) error
}

type embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// setupSecrets overlays vault secrets onto cfg. The returned client is nil
// when the vault is disabled.
func setupSecrets(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*secrets.Client, error) {
	if !cfg.SecretsCfg.Enabled {
		return nil, nil
	}

	client, err := secrets.NewFromConfig(ctx, cfg.SecretsCfg)
	if err != nil {
		return nil, fmt.Errorf("setup secrets vault: %w", err)
	}
	if err := secrets.Overlay(ctx, client, cfg, logger); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}
	return client, nil
}

func setupVectorStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger *zap.Logger, cl *closers) (vectorStore, error) {
	backend := cfg.VectorBackend
	if cfg.EnableMocks {
		backend = config.VectorBackendMemory
	}

	switch backend {
	case config.VectorBackendMilvus:
		store, err := vector.NewMilvusStore(ctx, cfg.MilvusCfg, logger)
		if err != nil {
			return nil, err
		}
		cl.add("milvus", store.Close)
		return store, nil

	case config.VectorBackendPgvector:
		if pool == nil {
			return nil, fmt.Errorf("pgvector backend needs DATABASE_URL")
		}
		return vector.NewPgvectorStore(ctx, pool, cfg.PgvectorCfg)

	case config.VectorBackendMemory:
		logger.Warn("using in-process vector store, chunks are not shared between processes")
		return vector.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.VectorBackend)
	}
}

func vectorDimension(cfg *config.Config) int {
	if cfg.VectorBackend == config.VectorBackendMilvus {
		return cfg.MilvusCfg.Dimension
	}
	return cfg.PgvectorCfg.Dimension
}

func setupEmbedder(cfg *config.Config, logger *zap.Logger) embedder {
	if cfg.EnableMocks {
		return embedding.NewMockConnector(vectorDimension(cfg), logger)
	}
	return embedding.NewConnector(cfg.EmbeddingCfg, logger)
}

// setupAnswerChain picks the in-process retrieval chain or the external RAG
// service. The second result is what health probes for "rag".
func setupAnswerChain(
	ctx context.Context,
	cfg *config.Config,
	vectors vectorStore,
	logger *zap.Logger,
) (query.AnswerChain, monitor.Pinger, error) {
	if cfg.RAGMode == config.RAGModeRemote {
		if cfg.EnableMocks {
			c := rag.NewMockConnector(logger)
			return c, c, nil
		}
		c := rag.NewConnector(cfg.RemoteRAGCfg, logger)
		return c, c, nil
	}

	assembler := query.NewPromptAssembler()

	var gen query.Generator
	if cfg.EnableMocks {
		gen = generator.NewMockGenerator(logger)
	} else {
		g, err := generator.NewArkGenerator(ctx, cfg.GeneratorCfg, assembler.Template(), logger)
		if err != nil {
			return nil, nil, err
		}
		gen = g
	}

	chain := query.NewLocalChain(
		setupEmbedder(cfg, logger),
		vectors,
		assembler,
		gen,
		cfg.RetrievalCfg.TopK,
		cfg.RetrievalCfg.Timeout,
	)
	return chain, vectors, nil
}

func setupSpeech(cfg *config.Config, logger *zap.Logger) (speech.Provider, error) {
	if cfg.EnableMocks {
		return speech.NewMockProvider(logger), nil
	}
	return speech.New(cfg, logger)
}

func setupSessions(ctx context.Context, cfg *config.Config, cl *closers) (repository.SessionStore, error) {
	switch cfg.SessionCfg.Backend {
	case config.SessionBackendRedis:
		store, err := repository.NewSessionRedis(ctx, cfg.SessionCfg)
		if err != nil {
			return nil, fmt.Errorf("setup redis sessions: %w", err)
		}
		cl.add("redis", func(context.Context) error { return store.Close() })
		return store, nil
	default:
		return repository.NewSessionCache(cfg.SessionCfg.TTL, cfg.SessionCfg.CleanupInterval), nil
	}
}

// setupTelemetry returns a nil tracker when telemetry is disabled.
func setupTelemetry(ctx context.Context, cfg *config.Config, logger *zap.Logger, cl *closers) (*telemetry.Tracker, error) {
	tracker, err := telemetry.New(ctx, cfg.TelemetryCfg, logger)
	if err != nil {
		return nil, err
	}
	if tracker != nil {
		cl.add("telemetry", tracker.Shutdown)
	}
	return tracker, nil
}
