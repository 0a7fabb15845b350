package builder

import (
	"context"
	"fmt"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type stores struct {
	conversations repository.ConversationRepository
	documents     repository.DocumentRepository
	// pool is set whenever DATABASE_URL is, so pgvector can share it.
	pool *pgxpool.Pool
}

// setupStores opens the record store selected by STORE_BACKEND.
func setupStores(ctx context.Context, cfg *config.Config, logger *zap.Logger, cl *closers) (*stores, error) {
	s := &stores{}

	if cfg.DatabaseURL != "" {
		pool, err := setupDatabase(ctx, cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("setup database: %w", err)
		}
		cl.add("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})
		s.pool = pool
	}

	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		logger.Info("running database migrations")
		if err := repository.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		s.conversations = repository.NewConversationPostgres(s.pool)
		s.documents = repository.NewDocumentPostgres(s.pool)

	case config.StoreBackendMongo:
		client, db, err := repository.ConnectMongo(ctx, cfg.MongoCfg)
		if err != nil {
			return nil, fmt.Errorf("setup mongo: %w", err)
		}
		cl.add("mongo", func(context.Context) error {
			return repository.DisconnectMongo(client)
		})
		logger.Info("mongo connection established", zap.String("database", db.Name()))
		s.conversations = repository.NewConversationMongo(db)
		s.documents = repository.NewDocumentMongo(db)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	logger.Info("record stores initialized", zap.String("backend", cfg.StoreBackend))
	return s, nil
}

// setupDatabase creates a new database connection pool
func setupDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.DBCfg.MaxConns)
	poolConfig.MinConns = int32(cfg.DBCfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.DBCfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.DBCfg.MaxConnIdleTime
	poolConfig.HealthCheckPeriod = cfg.DBCfg.HealthCheckPeriod

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("database connection pool established",
		zap.Int32("max_conns", poolConfig.MaxConns),
		zap.Int32("min_conns", poolConfig.MinConns),
		zap.Duration("max_conn_lifetime", poolConfig.MaxConnLifetime),
		zap.Duration("max_conn_idle_time", poolConfig.MaxConnIdleTime),
	)

	return pool, nil
}
