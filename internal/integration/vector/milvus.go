package vector

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/milvus-io/milvus/client/v2/column"
	mentity "github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.uber.org/zap"
)

const (
	fieldID         = "id"
	fieldEmbedding  = "embedding"
	fieldDocumentID = "document_id"
	fieldChunkIndex = "chunk_index"
	fieldText       = "text"

	maxTextLength = 65535
	maxInsertRows = 1000
)

type MilvusStore struct {
	client     *milvusclient.Client
	collection string
	dimension  int
	logger     *zap.Logger
}

// NewMilvusStore connects to Milvus and makes sure the chunk collection
// exists, is indexed and is loaded.
func NewMilvusStore(ctx context.Context, cfg config.MilvusConfig, logger *zap.Logger) (*MilvusStore, error) {
	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address:  cfg.Address,
		Username: cfg.Username,
		Password: cfg.Password,
		DBName:   cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to milvus: %w", err)
	}

	s := &MilvusStore{
		client:     c,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		logger:     logger,
	}

	if err := s.EnsureCollection(ctx); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	return s, nil
}

// EnsureCollection creates, indexes and loads the collection when needed.
func (s *MilvusStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}

	if !exists {
		schema := mentity.NewSchema().
			WithName(s.collection).
			WithDescription("document chunks").
			WithAutoID(true).
			WithField(mentity.NewField().
				WithName(fieldID).
				WithDataType(mentity.FieldTypeInt64).
				WithIsPrimaryKey(true).
				WithIsAutoID(true)).
			WithField(mentity.NewField().
				WithName(fieldEmbedding).
				WithDataType(mentity.FieldTypeFloatVector).
				WithDim(int64(s.dimension))).
			WithField(mentity.NewField().
				WithName(fieldDocumentID).
				WithDataType(mentity.FieldTypeVarChar).
				WithMaxLength(64)).
			WithField(mentity.NewField().
				WithName(fieldChunkIndex).
				WithDataType(mentity.FieldTypeInt64)).
			WithField(mentity.NewField().
				WithName(fieldText).
				WithDataType(mentity.FieldTypeVarChar).
				WithMaxLength(maxTextLength))

		if err := s.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(s.collection, schema)); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}

		idxTask, err := s.client.CreateIndex(ctx,
			milvusclient.NewCreateIndexOption(s.collection, fieldEmbedding, index.NewIvfFlatIndex(mentity.L2, 128)))
		if err != nil {
			return fmt.Errorf("create index: %w", err)
		}
		if err := idxTask.Await(ctx); err != nil {
			return fmt.Errorf("wait for index: %w", err)
		}
		s.logger.Info("milvus collection created", zap.String("collection", s.collection))
	}

	loadTask, err := s.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	if err := loadTask.Await(ctx); err != nil {
		return fmt.Errorf("wait for collection load: %w", err)
	}
	return nil
}

func (s *MilvusStore) Insert(ctx context.Context, chunks []entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	for start := 0; start < len(chunks); start += maxInsertRows {
		if err := s.insertRows(ctx, chunks[start:min(start+maxInsertRows, len(chunks))]); err != nil {
			return err
		}
	}

	flushTask, err := s.client.Flush(ctx, milvusclient.NewFlushOption(s.collection))
	if err != nil {
		return fmt.Errorf("flush collection: %w", err)
	}
	if err := flushTask.Await(ctx); err != nil {
		return fmt.Errorf("wait for flush: %w", err)
	}
	return nil
}

func (s *MilvusStore) insertRows(ctx context.Context, chunks []entity.Chunk) error {
	embeddings := make([][]float32, len(chunks))
	docIDs := make([]string, len(chunks))
	indexes := make([]int64, len(chunks))
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		if len(c.Embedding) != s.dimension {
			return fmt.Errorf("chunk %d: embedding dimension %d, collection expects %d", c.Index, len(c.Embedding), s.dimension)
		}
		embeddings[i] = c.Embedding
		docIDs[i] = c.DocumentID
		indexes[i] = int64(c.Index)
		texts[i] = truncateBytes(c.Text, maxTextLength)
	}

	_, err := s.client.Insert(ctx, milvusclient.NewColumnBasedInsertOption(s.collection,
		column.NewColumnFloatVector(fieldEmbedding, s.dimension, embeddings),
		column.NewColumnVarChar(fieldDocumentID, docIDs),
		column.NewColumnInt64(fieldChunkIndex, indexes),
		column.NewColumnVarChar(fieldText, texts),
	))
	if err != nil {
		return fmt.Errorf("insert chunks %d-%d: %w", chunks[0].Index, chunks[len(chunks)-1].Index, err)
	}
	return nil
}

func (s *MilvusStore) Search(ctx context.Context, embedding []float32, topK int) ([]entity.Passage, error) {
	if topK <= 0 {
		return nil, nil
	}

	results, err := s.client.Search(ctx, milvusclient.NewSearchOption(
		s.collection,
		topK,
		[]mentity.Vector{mentity.FloatVector(embedding)},
	).WithANNSField(fieldEmbedding).
		WithSearchParam("nprobe", "16").
		WithOutputFields(fieldText))
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if len(results) == 0 {
		return []entity.Passage{}, nil
	}

	rs := results[0]
	passages := make([]entity.Passage, 0, rs.ResultCount)
	for i := 0; i < rs.ResultCount; i++ {
		p := entity.Passage{EmbeddingDistance: rs.Scores[i]}
		for _, field := range rs.Fields {
			if col, ok := field.(*column.ColumnVarChar); ok && col.Name() == fieldText {
				p.Text = col.Data()[i]
			}
		}
		passages = append(passages, p)
	}
	return passages, nil
}

func (s *MilvusStore) DeleteDocument(ctx context.Context, documentID string) error {
	expr := fmt.Sprintf("%s == %q", fieldDocumentID, documentID)
	if _, err := s.client.Delete(ctx, milvusclient.NewDeleteOption(s.collection).WithExpr(expr)); err != nil {
		return fmt.Errorf("delete chunks of %s: %w", documentID, err)
	}
	return nil
}

func (s *MilvusStore) Ping(ctx context.Context) error {
	if _, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection)); err != nil {
		return fmt.Errorf("milvus ping: %w", err)
	}
	return nil
}

func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// truncateBytes cuts s to at most max bytes without splitting a rune.
func truncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
