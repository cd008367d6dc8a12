package config

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgRetry "github.com/seonho-lab/incident-rag/internal/pkg/retry"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr string `env:"SERVER_ADDR,notEmpty"`

	// Database configuration (chat history)
	DatabaseURL         string        `env:"DATABASE_URL,notEmpty"`
	DBMaxConns          int           `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns          int           `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`

	// External collaborator configurations
	OpenAICfg  OpenAIConfig     `envPrefix:"OPENAI_"`
	QdrantCfg  QdrantConfig     `envPrefix:"QDRANT_"`
	StorageCfg StorageConfig    `envPrefix:"STORAGE_"`
	HTTPCfg    HTTPClientConfig `envPrefix:"HTTP_CLIENT_"`

	// Startup-only retry for collection/bucket bootstrap. Pipeline calls
	// themselves are never retried.
	BootstrapRetry pkgRetry.RetryConfig `envPrefix:"BOOTSTRAP_RETRY_"`

	// Logging configuration
	LogLevel string `env:"LOG_LEVEL,notEmpty"`

	// File upload configuration
	FileUploadCfg FileUploadConfig `envPrefix:"FILE_UPLOAD_"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS,notEmpty"`

	// Environment (set from flag, not from env var)
	Environment string
}

// OpenAIConfig holds the chat/embedding collaborator configuration.
// BaseURL may point at any OpenAI-compatible endpoint.
type OpenAIConfig struct {
	APIKey         string `env:"API_KEY"`
	BaseURL        string `env:"BASE_URL"`
	ChatModel      string `env:"CHAT_MODEL" envDefault:"gpt-4o-mini"`
	EmbeddingModel string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
}

// QdrantConfig holds the document index configuration. VectorDim is fixed at
// collection creation and must match the embedding model's output length.
type QdrantConfig struct {
	Host       string `env:"HOST" envDefault:"localhost"`
	Port       int    `env:"PORT" envDefault:"6334"`
	APIKey     string `env:"API_KEY"`
	UseTLS     bool   `env:"USE_TLS" envDefault:"false"`
	Collection string `env:"COLLECTION" envDefault:"incident-reports"`
	VectorDim  int    `env:"VECTOR_DIM" envDefault:"1536"`
}

// StorageConfig holds the object store configuration for original report
// files. SignedURLTTL bounds the lifetime of derived download URLs.
type StorageConfig struct {
	Endpoint        string        `env:"ENDPOINT"`
	AccessKeyID     string        `env:"ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"SECRET_ACCESS_KEY"`
	UseSSL          bool          `env:"USE_SSL" envDefault:"true"`
	Bucket          string        `env:"BUCKET" envDefault:"incident-reports"`
	SignedURLTTL    time.Duration `env:"SIGNED_URL_TTL" envDefault:"1h"`
}

// HTTPClientConfig tunes the shared outbound HTTP client handed to SDKs.
type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"30s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"120s"`
}

// FileUploadConfig holds file upload limits
type FileUploadConfig struct {
	MaxFileSize   int64 `env:"MAX_FILE_SIZE" envDefault:"10485760"`   // 10 MiB
	MaxUploadSize int64 `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"` // 32 MiB
	MaxTitleLen   int   `env:"MAX_TITLE_LEN" envDefault:"200"`
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

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = *envFlag

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errors []string

	if cfg.DBMaxConns < 1 || cfg.DBMaxConns > 200 {
		errors = append(errors, fmt.Sprintf("DB_MAX_CONNS must be between 1 and 200, got %d", cfg.DBMaxConns))
	}

	if cfg.DBMinConns < 0 || cfg.DBMinConns > cfg.DBMaxConns {
		errors = append(errors, fmt.Sprintf("DB_MIN_CONNS must be between 0 and DB_MAX_CONNS(%d), got %d", cfg.DBMaxConns, cfg.DBMinConns))
	}

	if cfg.QdrantCfg.VectorDim < 1 {
		errors = append(errors, fmt.Sprintf("QDRANT_VECTOR_DIM must be positive, got %d", cfg.QdrantCfg.VectorDim))
	}

	if cfg.StorageCfg.SignedURLTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("STORAGE_SIGNED_URL_TTL must be at least 1m, got %s", cfg.StorageCfg.SignedURLTTL))
	}

	// Real collaborators need credentials; mocks do not.
	if !cfg.EnableMocks {
		if cfg.OpenAICfg.APIKey == "" {
			errors = append(errors, "OPENAI_API_KEY is required when mocks are disabled")
		}
		if cfg.StorageCfg.Endpoint == "" {
			errors = append(errors, "STORAGE_ENDPOINT is required when mocks are disabled")
		}
		if cfg.StorageCfg.AccessKeyID == "" || cfg.StorageCfg.SecretAccessKey == "" {
			errors = append(errors, "STORAGE_ACCESS_KEY_ID and STORAGE_SECRET_ACCESS_KEY are required when mocks are disabled")
		}
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
