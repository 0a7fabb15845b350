package builder

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/futig/rag-gateway/internal/api"
	adminapi "github.com/futig/rag-gateway/internal/api/admin"
	askapi "github.com/futig/rag-gateway/internal/api/ask"
	chatapi "github.com/futig/rag-gateway/internal/api/chat"
	documentapi "github.com/futig/rag-gateway/internal/api/document"
	speechapi "github.com/futig/rag-gateway/internal/api/speech"
	systemapi "github.com/futig/rag-gateway/internal/api/system"
	"github.com/futig/rag-gateway/internal/config"
	"github.com/futig/rag-gateway/internal/integration/blob"
	"github.com/futig/rag-gateway/internal/pkg/formatter"
	pkglogger "github.com/futig/rag-gateway/internal/pkg/logger"
	"github.com/futig/rag-gateway/internal/pkg/response"
	"github.com/futig/rag-gateway/internal/pkg/validator"
	"github.com/futig/rag-gateway/internal/telegram"
	"github.com/futig/rag-gateway/internal/telegram/bot"
	"github.com/futig/rag-gateway/internal/usecase/admin"
	"github.com/futig/rag-gateway/internal/usecase/chat"
	"github.com/futig/rag-gateway/internal/usecase/conversation"
	"github.com/futig/rag-gateway/internal/usecase/indexer"
	"github.com/futig/rag-gateway/internal/usecase/ingest"
	"github.com/futig/rag-gateway/internal/usecase/monitor"
	"github.com/futig/rag-gateway/internal/usecase/query"
	"github.com/futig/rag-gateway/internal/usecase/speech"
	"go.uber.org/zap"
)

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 30 * time.Second
	idleTimeout  = 60 * time.Second
)

// Build wires the HTTP gateway.
func Build() (app *App, err error) {
	ctx := context.Background()

	cfg, logger, err := bootstrap()
	if err != nil {
		return nil, err
	}

	logger.Info("building gateway",
		zap.String("environment", cfg.Environment),
		zap.String("server_addr", cfg.ServerAddr),
		zap.String("rag_mode", cfg.RAGMode),
		zap.Bool("mocks", cfg.EnableMocks),
	)

	var cl closers
	defer func() {
		if err != nil {
			cl.closeAll(ctx, logger)
		}
	}()

	secretsClient, err := setupSecrets(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	st, err := setupStores(ctx, cfg, logger, &cl)
	if err != nil {
		return nil, err
	}

	vectors, err := setupVectorStore(ctx, cfg, st.pool, logger, &cl)
	if err != nil {
		return nil, fmt.Errorf("setup vector store: %w", err)
	}

	chain, ragProbe, err := setupAnswerChain(ctx, cfg, vectors, logger)
	if err != nil {
		return nil, fmt.Errorf("setup answer chain: %w", err)
	}

	speechProvider, err := setupSpeech(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup speech provider: %w", err)
	}

	blobs, err := blob.New(ctx, cfg.BlobCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup blob storage: %w", err)
	}

	sessions, err := setupSessions(ctx, cfg, &cl)
	if err != nil {
		return nil, err
	}

	tracker, err := setupTelemetry(ctx, cfg, logger, &cl)
	if err != nil {
		return nil, err
	}
	logger.Info("integrations initialized",
		zap.String("speech_provider", speechProvider.Name()),
		zap.String("vector_backend", cfg.VectorBackend),
		zap.Bool("blob_storage", blobs != nil),
		zap.Bool("telemetry", tracker != nil),
	)

	// Nil pointers must stay nil interfaces.
	var (
		queryTracker  query.Tracker
		speechTracker speech.Tracker
		blobStore     ingest.BlobStore
		probes        = monitor.Probes{
			Database:         st.conversations,
			RAG:              ragProbe,
			TelemetryEnabled: tracker != nil,
		}
	)
	if tracker != nil {
		queryTracker, speechTracker = tracker, tracker
	}
	if blobs != nil {
		blobStore = blobs
		probes.Blob = blobs
	}
	if secretsClient != nil {
		probes.Secrets = secretsClient
	}

	fileValidator := validator.NewValidator(cfg.FileUploadCfg)

	queryUC := query.NewUsecase(chain, st.conversations, queryTracker)
	conversationUC := conversation.NewUsecase(st.conversations, formatter.NewFactory())
	ingestUC := ingest.NewUsecase(st.documents, blobStore, vectors, fileValidator)
	speechUC := speech.NewUsecase(speechProvider, fileValidator, speechTracker, cfg.SpeechCfg.Timeout)
	chatUC := chat.NewUsecase(queryUC, speechUC)
	monitorUC := monitor.NewUsecase(st.conversations, st.documents, probes)
	adminUC, err := admin.NewUsecase(cfg.AdminCfg, sessions)
	if err != nil {
		return nil, err
	}
	logger.Info("use cases initialized")

	rs := response.NewResponder(!cfg.IsProduction())
	// base64 inflates audio by 4/3; leave room for the JSON envelope
	maxSpeechBody := cfg.FileUploadCfg.MaxAudioSize/3*4 + 4096

	router := api.SetupRouter(api.Handlers{
		Ask:      askapi.NewHandler(queryUC, conversationUC, rs),
		Chat:     chatapi.NewHandler(chatUC, rs, maxSpeechBody),
		Speech:   speechapi.NewHandler(speechUC, rs, maxSpeechBody),
		Document: documentapi.NewHandler(ingestUC, cfg.FileUploadCfg, rs),
		Admin:    adminapi.NewHandler(adminUC, conversationUC, rs),
		System:   systemapi.NewHandler(monitorUC, rs),
	}, adminUC, rs, logger)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	var telegramBot *bot.Bot
	if cfg.TelegramCfg.Enabled() {
		telegramBot, err = telegram.NewBot(cfg.TelegramCfg, chatUC, logger)
		if err != nil {
			return nil, fmt.Errorf("initialize telegram bot: %w", err)
		}
	}

	logger.Info("gateway built successfully", zap.Bool("telegram", telegramBot != nil))

	return &App{
		server:  server,
		bot:     telegramBot,
		closers: cl,
		logger:  logger,
	}, nil
}

// BuildIndexer wires the background indexing worker.
func BuildIndexer() (app *IndexerApp, err error) {
	ctx := context.Background()

	cfg, logger, err := bootstrap()
	if err != nil {
		return nil, err
	}

	logger.Info("building indexer",
		zap.String("environment", cfg.Environment),
		zap.String("vector_backend", cfg.VectorBackend),
		zap.Int("workers", cfg.IndexerCfg.Workers),
	)

	var cl closers
	defer func() {
		if err != nil {
			cl.closeAll(ctx, logger)
		}
	}()

	if _, err = setupSecrets(ctx, cfg, logger); err != nil {
		return nil, err
	}

	st, err := setupStores(ctx, cfg, logger, &cl)
	if err != nil {
		return nil, err
	}

	blobs, err := blob.New(ctx, cfg.BlobCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setup blob storage: %w", err)
	}
	if blobs == nil {
		return nil, fmt.Errorf("indexer needs BLOB_BACKEND to read uploaded documents")
	}

	vectors, err := setupVectorStore(ctx, cfg, st.pool, logger, &cl)
	if err != nil {
		return nil, fmt.Errorf("setup vector store: %w", err)
	}

	indexerUC, err := indexer.NewUsecase(
		st.documents,
		blobs,
		setupEmbedder(cfg, logger),
		vectors,
		cfg.IndexerCfg,
		logger,
	)
	if err != nil {
		return nil, err
	}

	return &IndexerApp{
		indexer: indexerUC,
		closers: cl,
		logger:  logger,
	}, nil
}

func bootstrap() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := pkglogger.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("setup logger: %w", err)
	}
	return cfg, logger, nil
}
