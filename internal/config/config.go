package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	pkgRetry "github.com/futig/rag-gateway/internal/pkg/retry"
	"github.com/joho/godotenv"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMongo    = "mongo"

	VectorBackendMilvus   = "milvus"
	VectorBackendPgvector = "pgvector"
	VectorBackendMemory   = "memory"

	RAGModeLocal  = "local"
	RAGModeRemote = "remote"

	SpeechProviderAzure      = "azure"
	SpeechProviderElevenLabs = "elevenlabs"
	SpeechProviderMock       = "mock"

	BlobBackendS3         = "s3"
	BlobBackendFilesystem = "filesystem"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	TelemetryExporterStdout = "stdout"
	TelemetryExporterOTLP   = "otlp"
	TelemetryExporterNone   = "none"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR" envDefault:":3000"`

	// Record store configuration
	StoreBackend string      `env:"STORE_BACKEND" envDefault:"postgres"`
	DatabaseURL  string      `env:"DATABASE_URL"`
	DBCfg        DBConfig    `envPrefix:"DB_"`
	MongoCfg     MongoConfig `envPrefix:"MONGO_"`

	// Retrieval chain configuration
	RAGMode       string            `env:"RAG_MODE" envDefault:"local"`
	RemoteRAGCfg  HTTPClientConfig  `envPrefix:"RAG_"`
	EmbeddingCfg  EmbeddingConfig   `envPrefix:"EMBEDDING_"`
	GeneratorCfg  GeneratorConfig   `envPrefix:"GENERATOR_"`
	RetrievalCfg  RetrievalConfig   `envPrefix:"RETRIEVAL_"`
	VectorBackend string            `env:"VECTOR_BACKEND" envDefault:"pgvector"`
	MilvusCfg     MilvusConfig      `envPrefix:"MILVUS_"`
	PgvectorCfg   PgvectorConfig    `envPrefix:"PGVECTOR_"`
	IndexerCfg    IndexerConfig     `envPrefix:"INDEXER_"`
	SpeechCfg     SpeechConfig      `envPrefix:"SPEECH_"`
	AzureSpeech   AzureSpeechConfig `envPrefix:"AZURE_SPEECH_"`
	ElevenLabsCfg ElevenLabsConfig  `envPrefix:"ELEVENLABS_"`
	BlobCfg       BlobConfig        `envPrefix:"BLOB_"`
	SessionCfg    SessionConfig     `envPrefix:"SESSION_"`
	AdminCfg      AdminConfig       `envPrefix:"ADMIN_"`
	SecretsCfg    SecretsConfig     `envPrefix:"SECRETS_"`
	TelemetryCfg  TelemetryConfig   `envPrefix:"TELEMETRY_"`
	FileUploadCfg FileUploadConfig  `envPrefix:"FILE_UPLOAD_"`
	TelegramCfg   TelegramConfig    `envPrefix:"TELEGRAM_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

type DBConfig struct {
	MaxConns          int           `env:"MAX_CONNS" envDefault:"25"`
	MinConns          int           `env:"MIN_CONNS" envDefault:"5"`
	MaxConnLifetime   time.Duration `env:"MAX_CONN_LIFETIME" envDefault:"1h"`
	MaxConnIdleTime   time.Duration `env:"MAX_CONN_IDLE_TIME" envDefault:"30m"`
	HealthCheckPeriod time.Duration `env:"HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

type MongoConfig struct {
	URI            string        `env:"URI"`
	Database       string        `env:"DATABASE" envDefault:"rag_gateway"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"5s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"10s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL"`
}

type EmbeddingConfig struct {
	HTTPClientConfig
	Model    string `env:"MODEL" envDefault:"text-embedding-3-small"`
	Endpoint string `env:"ENDPOINT" envDefault:"/embeddings"`
}

type GeneratorConfig struct {
	BaseURL     string  `env:"BASE_URL"`
	Region      string  `env:"REGION"`
	APIKey      string  `env:"API_KEY"`
	Model       string  `env:"MODEL"`
	Temperature float32 `env:"TEMPERATURE" envDefault:"0.3"`
	MaxTokens   int     `env:"MAX_TOKENS" envDefault:"500"`
}

type RetrievalConfig struct {
	TopK    int           `env:"TOP_K" envDefault:"3"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"8s"`
}

type MilvusConfig struct {
	Address    string `env:"ADDRESS" envDefault:"localhost:19530"`
	Username   string `env:"USERNAME"`
	Password   string `env:"PASSWORD"`
	DBName     string `env:"DB_NAME"`
	Collection string `env:"COLLECTION" envDefault:"knowledge_chunks"`
	Dimension  int    `env:"DIMENSION" envDefault:"1536"`
}

type PgvectorConfig struct {
	Table     string `env:"TABLE" envDefault:"document_chunks"`
	Dimension int    `env:"DIMENSION" envDefault:"1536"`
}

type IndexerConfig struct {
	PollInterval time.Duration        `env:"POLL_INTERVAL" envDefault:"15s"`
	BatchSize    int                  `env:"BATCH_SIZE" envDefault:"10"`
	Workers      int                  `env:"WORKERS" envDefault:"4"`
	ChunkSize    int                  `env:"CHUNK_SIZE" envDefault:"500"`
	ChunkOverlap int                  `env:"CHUNK_OVERLAP" envDefault:"50"`
	EmbedBatch   int                  `env:"EMBED_BATCH" envDefault:"100"`
	InsertBatch  int                  `env:"INSERT_BATCH" envDefault:"500"`
	Retry        pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type SpeechConfig struct {
	Provider string        `env:"PROVIDER" envDefault:"mock"`
	Timeout  time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

type AzureSpeechConfig struct {
	HTTPClientConfig
	Key          string `env:"KEY"`
	Region       string `env:"REGION"`
	Language     string `env:"LANGUAGE" envDefault:"es-AR"`
	Voice        string `env:"VOICE" envDefault:"es-AR-ElenaNeural"`
	OutputFormat string `env:"OUTPUT_FORMAT" envDefault:"audio-16khz-32kbitrate-mono-mp3"`
}

type ElevenLabsConfig struct {
	HTTPClientConfig
	APIKey     string `env:"API_KEY"`
	VoiceID    string `env:"VOICE_ID"`
	TTSModelID string `env:"TTS_MODEL_ID" envDefault:"eleven_multilingual_v2"`
	STTModelID string `env:"STT_MODEL_ID" envDefault:"scribe_v1"`
}

type BlobConfig struct {
	Backend   string `env:"BACKEND"`
	Container string `env:"CONTAINER" envDefault:"documents"`

	// S3 settings
	Region        string `env:"REGION" envDefault:"us-east-1"`
	Endpoint      string `env:"ENDPOINT"`
	UsePathStyle  bool   `env:"USE_PATH_STYLE" envDefault:"false"`
	AccessKey     string `env:"ACCESS_KEY"`
	SecretKey     string `env:"SECRET_KEY"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`

	// Filesystem settings
	Root string `env:"ROOT" envDefault:"./data/blobs"`
}

func (c BlobConfig) Configured() bool {
	return c.Backend != ""
}

type SessionConfig struct {
	Backend         string        `env:"BACKEND" envDefault:"memory"`
	TTL             time.Duration `env:"TTL" envDefault:"12h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
	RedisAddr       string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	RedisKeyPrefix  string        `env:"REDIS_KEY_PREFIX" envDefault:"admin_session:"`
}

type AdminConfig struct {
	Username     string `env:"USERNAME" envDefault:"admin"`
	Password     string `env:"PASSWORD"`
	PasswordHash string `env:"PASSWORD_HASH"`
}

// SecretsConfig maps SSM parameter names onto secret configuration fields.
// Empty names are skipped.
type SecretsConfig struct {
	Enabled           bool          `env:"ENABLED" envDefault:"false"`
	Region            string        `env:"REGION"`
	Timeout           time.Duration `env:"TIMEOUT" envDefault:"5s"`
	AdminPasswordHash string        `env:"ADMIN_PASSWORD_HASH_PARAM"`
	GeneratorAPIKey   string        `env:"GENERATOR_API_KEY_PARAM"`
	EmbeddingToken    string        `env:"EMBEDDING_TOKEN_PARAM"`
	AzureSpeechKey    string        `env:"AZURE_SPEECH_KEY_PARAM"`
	ElevenLabsAPIKey  string        `env:"ELEVENLABS_API_KEY_PARAM"`
	BlobSecretKey     string        `env:"BLOB_SECRET_KEY_PARAM"`
	HealthCheckParam  string        `env:"HEALTH_CHECK_PARAM"`
}

type TelemetryConfig struct {
	Exporter    string  `env:"EXPORTER" envDefault:"none"`
	Endpoint    string  `env:"ENDPOINT"`
	Insecure    bool    `env:"INSECURE" envDefault:"false"`
	ServiceName string  `env:"SERVICE_NAME" envDefault:"rag-gateway"`
	SampleRatio float64 `env:"SAMPLE_RATIO" envDefault:"1"`
}

func (c TelemetryConfig) Enabled() bool {
	return c.Exporter != "" && c.Exporter != TelemetryExporterNone
}

// TelegramConfig configures the optional Telegram chat channel. The bot
// starts only when BotToken is set.
type TelegramConfig struct {
	BotToken           string               `env:"BOT_TOKEN"`
	UpdateTimeout      int                  `env:"UPDATE_TIMEOUT" envDefault:"30"`
	RateLimitPerMinute int                  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int                  `env:"RATE_LIMIT_BURST" envDefault:"5"`
	ShutdownTimeout    time.Duration        `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
	VoiceReplies       bool                 `env:"VOICE_REPLIES" envDefault:"true"`
	FFmpegPath         string               `env:"FFMPEG_PATH" envDefault:"ffmpeg"`
	MaxVoiceSize       int64                `env:"MAX_VOICE_SIZE" envDefault:"10485760"`
	Retry              pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

func (c TelegramConfig) Enabled() bool {
	return c.BotToken != ""
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"`   // 10 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"11534336"` // 11 MiB, multipart overhead included
	MaxAudioSize  int64 `env:"MAX_AUDIO_SIZE" envDefault:"26214400"`  // 25 MiB
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	switch c.Environment {
	case "prod", "production":
		return true
	default:
		return false
	}
}

func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	envFile := getEnvFile(*envFlag)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	return Parse(*envFlag)
}

// Parse reads the process environment into a validated Config.
func Parse(environment string) (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	switch cfg.StoreBackend {
	case StoreBackendPostgres:
		if cfg.DatabaseURL == "" {
			errors = append(errors, "DATABASE_URL is required for the postgres store backend")
		}
	case StoreBackendMongo:
		if cfg.MongoCfg.URI == "" {
			errors = append(errors, "MONGO_URI is required for the mongo store backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("STORE_BACKEND must be postgres or mongo, got %q", cfg.StoreBackend))
	}

	if cfg.DBCfg.MaxConns < 1 || cfg.DBCfg.MaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBCfg.MaxConns))
	}

	if cfg.DBCfg.MinConns < 0 || cfg.DBCfg.MinConns > cfg.DBCfg.MaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBCfg.MaxConns, cfg.DBCfg.MinConns))
	}

	switch cfg.RAGMode {
	case RAGModeLocal:
	case RAGModeRemote:
		if cfg.RemoteRAGCfg.Url == "" && !cfg.EnableMocks {
			errors = append(errors, "RAG_SERVICE_URL is required when RAG_MODE=remote")
		}
	default:
		errors = append(errors, fmt.Sprintf("RAG_MODE must be local or remote, got %q", cfg.RAGMode))
	}

	switch cfg.VectorBackend {
	case VectorBackendMilvus, VectorBackendMemory:
	case VectorBackendPgvector:
		if cfg.StoreBackend != StoreBackendPostgres && cfg.DatabaseURL == "" {
			errors = append(errors, "VECTOR_BACKEND=pgvector needs DATABASE_URL")
		}
	default:
		errors = append(errors, fmt.Sprintf("VECTOR_BACKEND must be milvus, pgvector or memory, got %q", cfg.VectorBackend))
	}

	if cfg.RetrievalCfg.TopK < 1 {
		errors = append(errors, fmt.Sprintf("RETRIEVAL_TOP_K must be positive, got %d", cfg.RetrievalCfg.TopK))
	}

	if cfg.RetrievalCfg.Timeout <= 0 {
		errors = append(errors, "RETRIEVAL_TIMEOUT must be positive")
	}

	if cfg.IndexerCfg.ChunkSize < 1 || cfg.IndexerCfg.ChunkOverlap < 0 || cfg.IndexerCfg.ChunkOverlap >= cfg.IndexerCfg.ChunkSize {
		errors = append(errors, fmt.Sprintf("INDEXER_CHUNK_OVERLAP(%d) must be below INDEXER_CHUNK_SIZE(%d)", cfg.IndexerCfg.ChunkOverlap, cfg.IndexerCfg.ChunkSize))
	}

	if cfg.IndexerCfg.EmbedBatch < 1 || cfg.IndexerCfg.InsertBatch < 1 {
		errors = append(errors, fmt.Sprintf("INDEXER_EMBED_BATCH(%d) and INDEXER_INSERT_BATCH(%d) must be positive", cfg.IndexerCfg.EmbedBatch, cfg.IndexerCfg.InsertBatch))
	}

	if cfg.IndexerCfg.Workers < 1 {
		errors = append(errors, fmt.Sprintf("INDEXER_WORKERS must be positive, got %d", cfg.IndexerCfg.Workers))
	}

	switch cfg.SpeechCfg.Provider {
	case SpeechProviderAzure:
		if cfg.AzureSpeech.Region == "" {
			errors = append(errors, "AZURE_SPEECH_REGION is required for the azure speech provider")
		}
	case SpeechProviderElevenLabs:
		if cfg.ElevenLabsCfg.VoiceID == "" {
			errors = append(errors, "ELEVENLABS_VOICE_ID is required for the elevenlabs speech provider")
		}
	case SpeechProviderMock:
	default:
		errors = append(errors, fmt.Sprintf("SPEECH_PROVIDER must be azure, elevenlabs or mock, got %q", cfg.SpeechCfg.Provider))
	}

	switch cfg.BlobCfg.Backend {
	case "", BlobBackendS3, BlobBackendFilesystem:
	default:
		errors = append(errors, fmt.Sprintf("BLOB_BACKEND must be s3, filesystem or empty, got %q", cfg.BlobCfg.Backend))
	}

	switch cfg.SessionCfg.Backend {
	case SessionBackendMemory, SessionBackendRedis:
	default:
		errors = append(errors, fmt.Sprintf("SESSION_BACKEND must be memory or redis, got %q", cfg.SessionCfg.Backend))
	}

	if cfg.SessionCfg.TTL <= 0 {
		errors = append(errors, "SESSION_TTL must be positive")
	}

	switch cfg.TelemetryCfg.Exporter {
	case TelemetryExporterNone, TelemetryExporterStdout, TelemetryExporterOTLP:
	default:
		errors = append(errors, fmt.Sprintf("TELEMETRY_EXPORTER must be none, stdout or otlp, got %q", cfg.TelemetryCfg.Exporter))
	}

	if cfg.TelegramCfg.Enabled() {
		if cfg.TelegramCfg.RateLimitPerMinute < 1 || cfg.TelegramCfg.RateLimitPerMinute > 60 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_PER_MINUTE must be between 1 and 60, got %d", cfg.TelegramCfg.RateLimitPerMinute))
		}
		if cfg.TelegramCfg.RateLimitBurst < 1 || cfg.TelegramCfg.RateLimitBurst > 20 {
			errors = append(errors, fmt.Sprintf("TELEGRAM_RATE_LIMIT_BURST must be between 1 and 20, got %d", cfg.TelegramCfg.RateLimitBurst))
		}
		if cfg.TelegramCfg.ShutdownTimeout <= 0 {
			errors = append(errors, "TELEGRAM_SHUTDOWN_TIMEOUT must be positive")
		}
	}

	if cfg.FileUploadCfg.MaxFileSize < 1 {
		errors = append(errors, "FILE_UPLOAD_MAX_FILE_SIZE must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation errors:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
