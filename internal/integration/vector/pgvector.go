package vector

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// PgvectorStore keeps chunks in a Postgres table with a vector column and
// ranks them by L2 distance.
type PgvectorStore struct {
	pool      *pgxpool.Pool
	table     string
	dimension int
}

func NewPgvectorStore(ctx context.Context, pool *pgxpool.Pool, cfg config.PgvectorConfig) (*PgvectorStore, error) {
	if !tableNamePattern.MatchString(cfg.Table) {
		return nil, fmt.Errorf("invalid pgvector table name %q", cfg.Table)
	}
	if cfg.Dimension <= 0 {
		return nil, errors.New("pgvector dimension must be positive")
	}

	s := &PgvectorStore{pool: pool, table: cfg.Table, dimension: cfg.Dimension}
	if err := s.EnsureCollection(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// EnsureCollection creates the extension, table and index when missing.
func (s *PgvectorStore) EnsureCollection(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			document_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			text TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)`, s.table, s.dimension),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_document_id_idx ON %s (document_id)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("prepare pgvector table: %w", err)
		}
	}
	return nil
}

func (s *PgvectorStore) Insert(ctx context.Context, chunks []entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	query := fmt.Sprintf(`INSERT INTO %s (document_id, chunk_index, text, embedding) VALUES ($1, $2, $3, $4)`, s.table)

	batch := &pgx.Batch{}
	for _, c := range chunks {
		if len(c.Embedding) != s.dimension {
			return fmt.Errorf("chunk %d: embedding dimension %d, table expects %d", c.Index, len(c.Embedding), s.dimension)
		}
		batch.Queue(query, c.DocumentID, c.Index, c.Text, pgvector.NewVector(c.Embedding))
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}

func (s *PgvectorStore) Search(ctx context.Context, embedding []float32, topK int) ([]entity.Passage, error) {
	if topK <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT text, embedding <-> $1 AS distance
		FROM %s
		ORDER BY distance, id
		LIMIT $2`, s.table)

	rows, err := s.pool.Query(ctx, query, pgvector.NewVector(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	defer rows.Close()

	passages := make([]entity.Passage, 0, topK)
	for rows.Next() {
		var (
			text     string
			distance float64
		)
		if err := rows.Scan(&text, &distance); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		passages = append(passages, entity.Passage{Text: text, EmbeddingDistance: float32(distance)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return passages, nil
}

func (s *PgvectorStore) DeleteDocument(ctx context.Context, documentID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE document_id = $1`, s.table)
	if _, err := s.pool.Exec(ctx, query, documentID); err != nil {
		return fmt.Errorf("delete chunks of %s: %w", documentID, err)
	}
	return nil
}

func (s *PgvectorStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
