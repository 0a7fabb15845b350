package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/entity"
	"github.com/futig/rag-gateway/internal/pkg/chunker"
	"github.com/futig/rag-gateway/internal/pkg/formatter"
	"github.com/futig/rag-gateway/internal/pkg/logger"
	pkgRetry "github.com/futig/rag-gateway/internal/pkg/retry"
	"github.com/futig/rag-gateway/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

const releaseTimeout = 30 * time.Second

// IndexerUsecase moves documents from pending to indexed: it fetches the
// blob, extracts text, chunks it, embeds the chunks and writes them to the
// vector index. Failures are recorded on the document and not retried by
// later polls.
type IndexerUsecase struct {
	documentRepo repository.DocumentRepository
	blobs        BlobReader
	embedder     BatchEmbedder
	chunks       ChunkWriter
	splitter     *chunker.Splitter
	retryCfg     pkgRetry.RetryConfig
	batchSize    int
	embedBatch   int
	insertBatch  int
	pollInterval time.Duration
	pool         *ants.Pool
	logger       *zap.Logger
	now          func() time.Time
}

func NewUsecase(
	documentRepo repository.DocumentRepository,
	blobs BlobReader,
	embedder BatchEmbedder,
	chunks ChunkWriter,
	cfg config.IndexerConfig,
	logger *zap.Logger,
) (*IndexerUsecase, error) {
	pool, err := ants.NewPool(cfg.Workers,
		ants.WithPanicHandler(func(p any) {
			logger.Error("indexing job panicked", zap.Any("panic", p))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create indexer pool: %w", err)
	}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = cfg.Workers
	}

	embedBatch, insertBatch := cfg.EmbedBatch, cfg.InsertBatch
	if embedBatch <= 0 {
		embedBatch = 100
	}
	if insertBatch <= 0 {
		insertBatch = 500
	}

	return &IndexerUsecase{
		documentRepo: documentRepo,
		blobs:        blobs,
		embedder:     embedder,
		chunks:       chunks,
		splitter:     chunker.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		retryCfg:     cfg.Retry,
		batchSize:    batchSize,
		embedBatch:   embedBatch,
		insertBatch:  insertBatch,
		pollInterval: cfg.PollInterval,
		pool:         pool,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Run polls for pending documents until ctx is cancelled.
func (uc *IndexerUsecase) Run(ctx context.Context) error {
	uc.logger.Info("indexer started",
		zap.Duration("poll_interval", uc.pollInterval),
		zap.Int("workers", uc.pool.Cap()),
	)

	ticker := time.NewTicker(uc.pollInterval)
	defer ticker.Stop()

	for {
		if _, err := uc.RunOnce(ctx); err != nil && ctx.Err() == nil {
			uc.logger.Error("indexing pass failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			uc.logger.Info("indexer stopping")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce indexes one batch of pending documents on the worker pool and
// waits for all of them, so a document is never picked up by two passes.
// It returns how many documents were indexed successfully.
func (uc *IndexerUsecase) RunOnce(ctx context.Context) (int, error) {
	ctx = ctxzap.ToContext(ctx, uc.logger)

	pending, err := uc.documentRepo.ListPending(ctx, uc.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending documents: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	ctxzap.Info(ctx, "indexing pending documents", zap.Int("count", len(pending)))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		indexed int
	)
	for _, doc := range pending {
		wg.Add(1)
		err := uc.pool.Submit(func() {
			defer wg.Done()
			if err := uc.IndexDocument(ctx, doc); err != nil {
				return
			}
			mu.Lock()
			indexed++
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			ctxzap.Error(ctx, "submit indexing job", zap.String("document_id", doc.ID), zap.Error(err))
		}
	}
	wg.Wait()

	return indexed, nil
}

// IndexDocument indexes a single document and records the outcome on it.
// A cancelled ctx leaves the document pending for the next run. Chunks never
// outlive a failed run or a record deleted while the run was in flight.
func (uc *IndexerUsecase) IndexDocument(ctx context.Context, doc *entity.Document) error {
	ctx = logger.AddFields(ctx, zap.String("document_id", doc.ID), zap.String("filename", doc.Filename))
	start := uc.now()

	total, err := uc.index(ctx, doc)
	if err != nil {
		if ctx.Err() != nil {
			ctxzap.Warn(ctx, "indexing interrupted", zap.Error(err))
			return err
		}
		ctxzap.Error(ctx, "indexing failed", zap.Error(err))
		uc.dropChunks(ctx, doc.ID)
		if markErr := uc.documentRepo.MarkFailed(ctx, doc.ID, err.Error()); markErr != nil {
			ctxzap.Error(ctx, "record indexing failure", zap.Error(markErr))
		}
		return err
	}

	if err := uc.documentRepo.MarkIndexed(ctx, doc.ID, total, uc.now().UTC()); err != nil {
		if errors.Is(err, entity.ErrDocumentNotFound) {
			ctxzap.Warn(ctx, "document deleted while indexing, removing its chunks")
			uc.dropChunks(ctx, doc.ID)
		} else {
			ctxzap.Error(ctx, "mark document indexed", zap.Error(err))
		}
		return fmt.Errorf("mark indexed: %w", err)
	}

	ctxzap.Info(ctx, "document indexed",
		zap.Int("total_chunks", total),
		zap.Int64("duration_ms", uc.now().Sub(start).Milliseconds()),
	)
	return nil
}

// dropChunks removes whatever the run managed to insert. It ignores ctx
// cancellation so a shutdown does not leave chunks behind.
func (uc *IndexerUsecase) dropChunks(ctx context.Context, documentID string) {
	ctx = context.WithoutCancel(ctx)
	err := pkgRetry.Do(ctx, &uc.retryCfg, "drop chunks", func() error {
		return uc.chunks.DeleteDocument(ctx, documentID)
	})
	if err != nil {
		ctxzap.Error(ctx, "remove chunks", zap.Error(err))
	}
}

func (uc *IndexerUsecase) index(ctx context.Context, doc *entity.Document) (int, error) {
	content, err := uc.blobs.Get(ctx, doc.BlobKey)
	if err != nil {
		return 0, fmt.Errorf("fetch blob %s: %w", doc.BlobKey, err)
	}

	text, err := formatter.ExtractText(doc.Filename, content)
	if err != nil {
		return 0, fmt.Errorf("extract text: %w", err)
	}

	pieces := uc.splitter.Split(text)
	if len(pieces) == 0 {
		return 0, errors.New("document contains no text")
	}

	chunks := make([]entity.Chunk, 0, len(pieces))
	for start := 0; start < len(pieces); start += uc.embedBatch {
		batch := pieces[start:min(start+uc.embedBatch, len(pieces))]

		var embeddings [][]float32
		err = pkgRetry.Do(ctx, &uc.retryCfg, "embed chunks", func() error {
			var embedErr error
			embeddings, embedErr = uc.embedder.EmbedBatch(ctx, batch)
			return embedErr
		})
		if err != nil {
			return 0, fmt.Errorf("embed chunks %d-%d: %w", start, start+len(batch)-1, err)
		}
		if len(embeddings) != len(batch) {
			return 0, fmt.Errorf("embedding provider returned %d vectors for %d chunks", len(embeddings), len(batch))
		}

		for i, p := range batch {
			chunks = append(chunks, entity.Chunk{
				DocumentID: doc.ID,
				Index:      start + i,
				Text:       p,
				Embedding:  embeddings[i],
			})
		}
	}
	ctxzap.Debug(ctx, "chunks embedded", zap.Int("count", len(chunks)))

	// Chunks left by an earlier interrupted run are replaced, not duplicated.
	err = pkgRetry.Do(ctx, &uc.retryCfg, "clear chunks", func() error {
		return uc.chunks.DeleteDocument(ctx, doc.ID)
	})
	if err != nil {
		return 0, fmt.Errorf("clear chunks: %w", err)
	}

	for start := 0; start < len(chunks); start += uc.insertBatch {
		batch := chunks[start:min(start+uc.insertBatch, len(chunks))]
		err = pkgRetry.Do(ctx, &uc.retryCfg, "insert chunks", func() error {
			return uc.chunks.Insert(ctx, batch)
		})
		if err != nil {
			return 0, fmt.Errorf("insert chunks %d-%d: %w", start, start+len(batch)-1, err)
		}
	}

	return len(chunks), nil
}

// Close waits for running jobs and releases the pool.
func (uc *IndexerUsecase) Close() error {
	return uc.pool.ReleaseTimeout(releaseTimeout)
}
